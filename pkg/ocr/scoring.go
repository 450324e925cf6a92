package ocr

import "strings"

// Best picks the candidate most likely to be the receipt total: currency
// markers, a "total" label and grouping separators score higher; ties go
// to the larger amount, then to the earlier line.
func Best(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	scoreFor := func(c Candidate) int {
		s := 0
		if strings.Contains(c.Raw, "rp") || strings.Contains(c.Raw, "idr") || strings.Contains(c.Raw, "rupiah") {
			s += 10
		}
		if strings.Contains(c.Line, "total") {
			s += 8
		}
		if strings.ContainsAny(c.Raw, ".,") {
			s += 5
		}
		if strings.HasSuffix(c.Raw, ",00") || strings.HasSuffix(c.Raw, ".00") {
			s += 3
		}
		if len(onlyDigits(c.Raw)) >= 4 {
			s++
		}
		return s
	}
	best, bestScore := cands[0], scoreFor(cands[0])
	for _, c := range cands[1:] {
		sc := scoreFor(c)
		if sc > bestScore || (sc == bestScore && c.Amount > best.Amount) {
			best, bestScore = c, sc
		}
	}
	return best, true
}

// BestAmount is Best reduced to its amount, ErrNoAmount when there is none.
func BestAmount(cands []Candidate) (int64, error) {
	c, ok := Best(cands)
	if !ok {
		return 0, ErrNoAmount
	}
	return c.Amount, nil
}
