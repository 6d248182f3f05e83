package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"docqa/types"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractPDF validates the PDF structure first, then pulls the plain text
// of every page. Corrupt files fail at validation instead of producing
// garbage text.
func ExtractPDF(data []byte) (string, error) {
	conf := api.LoadConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return "", fmt.Errorf("%w: invalid PDF: %v", types.ErrParse, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open PDF: %v", types.ErrParse, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract PDF text: %v", types.ErrParse, err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("%w: read PDF text: %v", types.ErrParse, err)
	}
	return sb.String(), nil
}
