package hierarchy

import (
	"fmt"
	"strings"
)

// NormalizeCode trims a raw code and left-pads purely numeric codes with
// zeros up to width. Non-numeric codes are returned trimmed.
func NormalizeCode(raw string, width int) string {
	code := strings.TrimSpace(raw)
	if code == "" || !isDigits(code) || len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// compareCodes orders normalized codes lexicographically. Codes of one level
// share a width after normalization, so this matches numeric order for them.
func compareCodes(a, b string) int {
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func childCode(parent string, seq int) string {
	return fmt.Sprintf("%s%02d", parent, seq)
}
