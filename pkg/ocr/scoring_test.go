package ocr

import "testing"

func TestBestTotalPriority(t *testing.T) {
	// Rp50.000 is larger, but the TOTAL line must win.
	cands := FindCandidates(Clean("subtotal barang\nharga rp50.000\ntotal rp40.000"))
	best, ok := Best(cands)
	if !ok {
		t.Fatalf("no amount chosen")
	}
	if best.Amount != 40000 {
		t.Fatalf("expected 40000 (TOTAL) got %d raw=%s", best.Amount, best.Raw)
	}
}

func TestBestAmountEmpty(t *testing.T) {
	if _, err := BestAmount(nil); err != ErrNoAmount {
		t.Fatalf("expected ErrNoAmount got %v", err)
	}
}
