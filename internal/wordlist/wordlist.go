// Package wordlist extracts German-English vocable pairs from word-list
// files. Supported inputs are PDF, DOCX and plain-text files whose lines
// look like "Haus - house" (separator: tab, semicolon or a spaced dash).
package wordlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Pair is one extracted vocable pair.
type Pair struct {
	DE string
	EN string
}

// FileType represents the type of word-list file.
type FileType int

const (
	TypeUnknown FileType = iota
	TypePDF
	TypeDOCX
	TypeText
)

// MaxFileSize is the maximum allowed file size (10MB).
const MaxFileSize = 10 * 1024 * 1024

// DetectFileType determines the file type based on extension.
func DetectFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".docx":
		return TypeDOCX
	case ".txt", ".csv":
		return TypeText
	default:
		return TypeUnknown
	}
}

// ValidateFileSize checks if a file is within the size limit.
func ValidateFileSize(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), MaxFileSize)
	}
	return nil
}

// Extract reads the file, pulls out its plain text and scans it for
// vocable pairs.
func Extract(filePath string) ([]Pair, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file")
	}
	if err := ValidateFileSize(filePath); err != nil {
		return nil, err
	}

	var text string
	switch DetectFileType(filePath) {
	case TypePDF:
		text, err = extractPDF(filePath)
	case TypeDOCX:
		text, err = extractDOCX(filePath)
	case TypeText:
		var data []byte
		data, err = os.ReadFile(filePath)
		text = string(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (only .pdf, .docx, .txt and .csv are supported)", filepath.Ext(filePath))
	}
	if err != nil {
		return nil, err
	}

	pairs := ScanPairs(text)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no vocable pairs found in %s", filepath.Base(filePath))
	}
	return pairs, nil
}

// separators tried in order on each line. The spaced dash variants avoid
// splitting hyphenated words like "E-Mail".
var separators = []string{"\t", ";", " – ", " — ", " - "}

// ScanPairs scans text line by line for "german <sep> english" pairs.
// Both sides are trimmed; lines without a separator or with an empty
// side are skipped.
func ScanPairs(text string) []Pair {
	var pairs []Pair
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if de, en, ok := splitPair(line); ok {
			pairs = append(pairs, Pair{DE: de, EN: en})
		}
	}
	return pairs
}

func splitPair(line string) (de, en string, ok bool) {
	for _, sep := range separators {
		i := strings.Index(line, sep)
		if i < 0 {
			continue
		}
		de = strings.TrimSpace(line[:i])
		en = strings.TrimSpace(line[i+len(sep):])
		if de == "" || en == "" {
			return "", "", false
		}
		return de, en, true
	}
	return "", "", false
}
