package ocr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var centsRE = regexp.MustCompile(`[.,]\d{2}$`)

// ParseAmountFromMatch normalizes a matched numeral into whole currency units.
// A trailing decimal part of exactly two digits is dropped (10.000,00 -> 10000).
func ParseAmountFromMatch(found string) (int64, error) {
	trimmed := strings.TrimSpace(found)
	if trimmed == "" {
		return 0, fmt.Errorf("empty")
	}
	integerPart := trimmed
	if centsRE.MatchString(trimmed) {
		cut := strings.LastIndexAny(trimmed, ".,")
		integerPart = trimmed[:cut]
	}
	digits := onlyDigits(integerPart)
	if digits == "" {
		return 0, fmt.Errorf("no digits extracted from %q", found)
	}
	amt, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", digits, err)
	}
	return amt, nil
}
