package parser

import (
	"testing"

	"keubot/models"
)

func TestParseAmountSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"bayar makan 25rb", 25000},
		{"bayar makan 25 ribu", 25000},
		{"terima gaji 5jt", 5000000},
		{"terima gaji 1,5 juta", 1500000},
		{"terima gaji 1.5jt", 1500000},
		{"bonus 1 juta 500 ribu", 1500000},
		{"beli 17,5k", 17500},
		{"beli pulsa 50k", 50000},
		{"parkir 5 ratus", 500},
		{"parkir 2,5rts", 250},
		{"sedekah 3 puluh", 30},
		{"sedekah 7plh", 70},
		{"bayar listrik rp 250.000", 250000},
		{"bayar listrik Rp250.000", 250000},
		{"total 1.250.000 idr", 1250000},
		{"beli bensin 30000", 30000},
		{"makan25000siang", 25000},
		{"thr 2jt dan 300rb", 2000000},
	}
	for _, c := range cases {
		got, ok := ParseAmount(c.in)
		if !ok {
			t.Fatalf("%q: expected amount %d, got none", c.in, c.want)
		}
		if got != c.want {
			t.Fatalf("%q: expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"no digits here", "bayar makan 0", "", "rp", "0k"} {
		if tx := Parse(in); tx != nil {
			t.Fatalf("%q: expected nil, got %+v", in, tx)
		}
	}
}

func TestIncomeKeywordWins(t *testing.T) {
	cases := []string{
		"bayar gaji 5jt",
		"terima transfer 200rb",
		"beli lalu jual untung 50rb",
		"bonus buat kirim 100k",
	}
	for _, in := range cases {
		tx := Parse(in)
		if tx == nil {
			t.Fatalf("%q: expected transaction", in)
		}
		if tx.Type != models.TypeIncome {
			t.Fatalf("%q: expected income, got %s", in, tx.Type)
		}
	}
}

func TestDefaultsToExpense(t *testing.T) {
	tx := Parse("kopi 18rb")
	if tx == nil || tx.Type != models.TypeExpense || tx.Category != "Makan" {
		t.Fatalf("unexpected %+v", tx)
	}
	tx = Parse("sumbangan 20000")
	if tx == nil || tx.Type != models.TypeExpense || tx.Category != CategoryExpense {
		t.Fatalf("unexpected %+v", tx)
	}
}

func TestCategories(t *testing.T) {
	cases := []struct {
		in, typ, cat string
	}{
		{"bayar makan 25000", models.TypeExpense, "Makan"},
		{"beli bensin 30rb", models.TypeExpense, "Transport"},
		{"bayar wifi 350rb", models.TypeExpense, "Tagihan"},
		{"belanja bulanan 500rb", models.TypeExpense, "Belanja"},
		{"bayar cicilan motor 1jt", models.TypeExpense, "Cicilan"},
		{"terima gaji 5jt", models.TypeIncome, "Gaji"},
		{"dapat thr 2jt", models.TypeIncome, "Bonus"},
		{"fee freelance 750rb", models.TypeIncome, "Freelance"},
		{"terima komisi 300rb", models.TypeIncome, "Komisi"},
		{"terima hadiah 100rb", models.TypeIncome, CategoryIncome},
	}
	for _, c := range cases {
		tx := Parse(c.in)
		if tx == nil {
			t.Fatalf("%q: expected transaction", c.in)
		}
		if tx.Type != c.typ || tx.Category != c.cat {
			t.Fatalf("%q: expected %s/%s, got %s/%s", c.in, c.typ, c.cat, tx.Type, tx.Category)
		}
	}
}

func TestPaymentMethod(t *testing.T) {
	cases := map[string]string{
		"bayar makan 25000":              models.PaymentCash,
		"bayar listrik via qris 200rb":   models.PaymentBank,
		"terima transfer bca 1jt":        models.PaymentBank,
		"bayar pakai gopay 15rb":         models.PaymentBank,
		"transfer tunai ke adik 100rb":   models.PaymentCash,
		"total 50000 bayar tunai":        models.PaymentCash,
		"beli kopi pakai dompet 20000":   models.PaymentCash,
		"bayar hutang lewat mandiri 2jt": models.PaymentBank,
	}
	for in, want := range cases {
		if got := PaymentMethod(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestKeywordBoundaries(t *testing.T) {
	if ClassifyType("coffee 20000") != models.TypeExpense {
		t.Fatal("fee must not match inside coffee")
	}
	if ClassifyType("gajian 3jt") != models.TypeIncome {
		t.Fatal("gajian should match gaji")
	}
}

func TestDescriptionIsLowercased(t *testing.T) {
	tx := Parse("  Bayar Makan 25RB ")
	if tx == nil || tx.Description != "bayar makan 25rb" || tx.Amount != 25000 {
		t.Fatalf("unexpected %+v", tx)
	}
}
