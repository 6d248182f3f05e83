package parser

import (
	"fmt"
	"unicode/utf8"

	"docqa/types"
)

func ExtractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", types.ErrParse)
	}
	return string(data), nil
}
