package ocr

import "strings"

// isPlausibleAmount decides whether a bare numeral (no currency marker or
// magnitude suffix) looks like money rather than a phone number, receipt
// id or date fragment.
func isPlausibleAmount(s string) bool {
	s = strings.TrimSpace(s)
	d := onlyDigits(s)
	if len(d) < 3 || d[0] == '0' {
		return false
	}
	if strings.ContainsAny(s, ".,") {
		return groupedRE.MatchString(s) || centsRE.MatchString(s)
	}
	if len(d) > 9 {
		return false
	}
	if len(d) >= 6 && !(strings.HasSuffix(d, "000") || strings.HasSuffix(d, "500")) {
		return false
	}
	return true
}
