package bot

import (
	"strconv"
	"strings"
	"time"

	"keubot/models"
)

// rupiah renders 1500000 as "Rp 1.500.000" and -25000 as "-Rp 25.000".
func rupiah(v int64) string {
	if v < 0 {
		return "-Rp " + grouping(strconv.FormatInt(-v, 10))
	}
	return "Rp " + grouping(strconv.FormatInt(v, 10))
}

// signedRupiah prefixes a + for income and - for expense.
func signedRupiah(t models.Transaction) string {
	if t.Type == models.TypeIncome {
		return "+" + rupiah(t.Amount)
	}
	return "-" + rupiah(t.Amount)
}

// grouping adds dot separators every 3 digits.
func grouping(ds string) string {
	n := len(ds)
	if n <= 3 {
		return ds
	}
	var parts []string
	for n > 3 {
		parts = append([]string{ds[n-3:]}, parts...)
		ds = ds[:n-3]
		n = len(ds)
	}
	parts = append([]string{ds}, parts...)
	return strings.Join(parts, ".")
}

func typeLabel(typ string) string {
	if typ == models.TypeIncome {
		return "Pemasukan"
	}
	return "Pengeluaran"
}

func paymentLabel(method string) string {
	if method == models.PaymentBank {
		return "🏦 Rekening"
	}
	return "💵 Tunai"
}

// truncate shortens s to n runes for display.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

var (
	monthNames = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"}
	dayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
)

func monthName(m time.Month) string { return monthNames[m-1] }

// longDate renders "Senin, 5 Januari 2026".
func longDate(t time.Time) string {
	return dayNames[t.Weekday()] + ", " + strconv.Itoa(t.Day()) + " " + monthName(t.Month()) + " " + strconv.Itoa(t.Year())
}

// monthLabel renders "Januari 2026".
func monthLabel(t time.Time) string {
	return monthName(t.Month()) + " " + strconv.Itoa(t.Year())
}

// dayMonth turns "2026-01-05" into "05/01".
func dayMonth(date string) string {
	if len(date) != len(models.DateLayout) {
		return date
	}
	return date[8:10] + "/" + date[5:7]
}

func day(t time.Time) string { return t.Format(models.DateLayout) }

// monthRange returns the first and last calendar dates of t's month.
func monthRange(t time.Time) (string, string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return day(first), day(first.AddDate(0, 1, -1))
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
