package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"docqa/types"
)

// ExtractDOCX reads word/document.xml out of the OOXML container and
// collects the character data, inserting newlines on paragraph and line
// break elements.
func ExtractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open DOCX container: %v", types.ErrParse, err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: DOCX has no word/document.xml", types.ErrParse)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open DOCX document: %v", types.ErrParse, err)
	}
	defer rc.Close()

	text, err := collectDocumentText(rc)
	if err != nil {
		return "", fmt.Errorf("%w: parse DOCX document: %v", types.ErrParse, err)
	}
	return text, nil
}

func collectDocumentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "br":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		}
	}
	return sb.String(), nil
}
