package ocr

import (
	"strconv"
	"strings"
)

// Token is one OCR-recognized word with its top-left pixel position inside
// the cropped image. Conf is the engine-reported confidence (0-100), or -1
// when the engine did not report one.
type Token struct {
	Text string
	X    int
	Y    int
	Conf int
}

// Minimum column count of one tesseract TSV word row:
// level page_num block_num par_num line_num word_num left top width height conf text
const tsvColumns = 12

// ParseTSV converts tesseract's TSV table output into tokens. The header
// row is skipped; rows with too few columns, blank text, or unparsable
// position fields are dropped silently.
func ParseTSV(tsv string) []Token {
	lines := strings.Split(tsv, "\n")
	var out []Token
	for i := 1; i < len(lines); i++ {
		parts := strings.Split(strings.TrimRight(lines[i], "\r"), "\t")
		if len(parts) < tsvColumns {
			continue
		}
		text := strings.TrimSpace(parts[11])
		if text == "" {
			continue
		}
		left := safeAtoi(parts[6])
		top := safeAtoi(parts[7])
		if left < 0 || top < 0 {
			continue
		}
		out = append(out, Token{Text: text, X: left, Y: top, Conf: safeAtoi(parts[10])})
	}
	return out
}

// safeAtoi parses a non-negative integer, returning -1 on any failure.
// Tesseract reports conf as -1 on non-word rows and occasionally as a
// float; both land on -1 here, which downstream treats as "unknown".
func safeAtoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
