package wordlist

import (
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX extracts text content from a DOCX file.
func extractDOCX(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer doc.Close()

	content := doc.Editable()
	text := content.GetContent()

	if len(strings.TrimSpace(text)) == 0 {
		return "", fmt.Errorf("no text content found in DOCX")
	}

	return text, nil
}
