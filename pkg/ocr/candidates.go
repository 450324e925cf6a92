package ocr

import (
	"regexp"
	"strings"

	"keubot/pkg/parser"
)

// Candidate contexts
const (
	ContextIncome  = "income"
	ContextExpense = "expense"
	ContextUnknown = "unknown"
)

// Candidate is an unconfirmed transaction guess found on one OCR line.
type Candidate struct {
	Line    string
	Raw     string
	Amount  int64
	Context string
}

var (
	rpRE      = regexp.MustCompile(`\b(?:rp|idr)\.?\s*(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|\d+(?:[.,]\d{2})?)`)
	suffixRE  = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:jt|juta|rb|ribu|rts|ratus|k)\b`)
	rupiahRE  = regexp.MustCompile(`\b(\d{1,3}(?:[.,]\d{3})+|\d+)\s*rupiah\b`)
	bareRE    = regexp.MustCompile(`\d[\d.,]*\d`)
	groupedRE = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?$`)
)

var incomeContext = []string{"transfer masuk", "terima", "diterima", "gaji", "pendapatan", "income", "masuk"}

var expenseContext = []string{"transfer keluar", "pembayaran", "pembelian", "bayar", "belanja", "beli", "total", "tunai"}

// FindCandidates scans cleaned OCR text line by line and returns at most one
// candidate per line, in line order. Currency-marked amounts win over
// magnitude suffixes, which win over bare numerals.
func FindCandidates(cleaned string) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		raw, amount, ok := amountOnLine(line)
		if !ok {
			continue
		}
		out = append(out, Candidate{Line: line, Raw: raw, Amount: amount, Context: lineContext(line)})
	}
	return out
}

func amountOnLine(line string) (string, int64, bool) {
	if m := rpRE.FindStringSubmatch(line); m != nil {
		if amt, err := ParseAmountFromMatch(m[1]); err == nil && amt > 0 {
			return m[0], amt, true
		}
	}
	if m := suffixRE.FindString(line); m != "" {
		if amt, ok := parser.ParseAmount(m); ok {
			return m, amt, true
		}
	}
	if m := rupiahRE.FindStringSubmatch(line); m != nil {
		if amt, err := ParseAmountFromMatch(m[1]); err == nil && amt > 0 {
			return m[0], amt, true
		}
	}
	for _, loc := range bareRE.FindAllStringIndex(line, -1) {
		if partOfDateOrCode(line, loc[0], loc[1]) {
			continue
		}
		raw := strings.TrimRight(line[loc[0]:loc[1]], ".,")
		if !isPlausibleAmount(raw) {
			continue
		}
		if amt, err := ParseAmountFromMatch(raw); err == nil && amt > 0 {
			return raw, amt, true
		}
	}
	return "", 0, false
}

// partOfDateOrCode rejects numerals glued to letters or to date/time separators.
func partOfDateOrCode(line string, start, end int) bool {
	if start > 0 {
		if c := line[start-1]; c == '/' || c == ':' || c == '-' || isLetter(c) {
			return true
		}
	}
	if end < len(line) {
		if c := line[end]; c == '/' || c == ':' || c == '-' || isLetter(c) {
			return true
		}
	}
	return false
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func lineContext(line string) string {
	for _, kw := range incomeContext {
		if strings.Contains(line, kw) {
			return ContextIncome
		}
	}
	for _, kw := range expenseContext {
		if strings.Contains(line, kw) {
			return ContextExpense
		}
	}
	return ContextUnknown
}
