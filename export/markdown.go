package export

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading1
	blockHeading2
	blockHeading3
	blockBullet
)

type block struct {
	kind blockKind
	text string
}

// parseMarkdown handles the subset the summaries use: three heading
// levels, bullet lists and paragraphs. Inline emphasis markers are
// stripped, not styled.
func parseMarkdown(markdown string) []block {
	var blocks []block
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimRight(line, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, block{blockHeading3, stripEmphasis(trimmed[4:])})
		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, block{blockHeading2, stripEmphasis(trimmed[3:])})
		case strings.HasPrefix(trimmed, "# "):
			blocks = append(blocks, block{blockHeading1, stripEmphasis(trimmed[2:])})
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			blocks = append(blocks, block{blockBullet, stripEmphasis(trimmed[2:])})
		default:
			blocks = append(blocks, block{blockParagraph, stripEmphasis(trimmed)})
		}
	}
	return blocks
}

func stripEmphasis(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

func renderMarkdown(markdown string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, b := range parseMarkdown(markdown) {
		switch b.kind {
		case blockHeading1:
			doc.SetFont("Helvetica", "B", 16)
			doc.MultiCell(0, 8, tr(b.text), "", "L", false)
			doc.Ln(3)
		case blockHeading2:
			doc.SetFont("Helvetica", "B", 13)
			doc.MultiCell(0, 7, tr(b.text), "", "L", false)
			doc.Ln(2)
		case blockHeading3:
			doc.SetFont("Helvetica", "B", 11)
			doc.MultiCell(0, 6, tr(b.text), "", "L", false)
			doc.Ln(1)
		case blockBullet:
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, tr("- "+b.text), "", "L", false)
		default:
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, tr(b.text), "", "L", false)
			doc.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
