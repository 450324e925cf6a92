package ocr

import (
	"regexp"
	"strings"
)

// snippet returns a shortened version of text for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// normalizeOCRText collapses whitespace and replaces newlines/tabs.
func normalizeOCRText(t string) string {
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}

var noiseRE = regexp.MustCompile(`[^\w\s.,\-+:()/]`)

// Clean lowercases OCR output, replaces characters that cannot be part of an
// amount or label with spaces and collapses whitespace per line. Empty lines
// are dropped; line structure is kept for candidate scanning.
func Clean(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = noiseRE.ReplaceAllString(line, " ")
		line = strings.ToLower(strings.Join(strings.Fields(line), " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// onlyDigits extracts decimal digits from a string.
func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
