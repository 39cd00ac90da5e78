package wellness

import (
	"strings"
	"unicode"
)

const (
	maxTips = 3
	// minTipLength is the cleaned length a line must exceed to count as a tip.
	minTipLength = 10
	listMarkers  = "0123456789.-* "
)

// SanitizeTips turns free-form model output into at most three tips.
// It never fails; output without usable lines yields an empty slice.
func SanitizeTips(raw string) []string {
	tips := make([]string, 0, maxTips)

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isAllDigits(line) {
			continue
		}

		cleaned := strings.TrimSpace(strings.TrimLeft(line, listMarkers))
		if len([]rune(cleaned)) <= minTipLength {
			continue
		}

		tips = append(tips, cleaned)
		if len(tips) == maxTips {
			break
		}
	}

	return tips
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
