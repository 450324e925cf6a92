package parser

import (
	"regexp"
	"strings"

	"keubot/models"
)

var incomeKeywords = []string{
	"terima", "dapat", "dapet", "gaji", "salary", "bonus", "thr", "masuk", "income",
	"pendapatan", "pemasukan", "honor", "fee", "freelance", "komisi", "untung", "profit",
	"dividen", "penjualan", "jual",
}

var expenseKeywords = []string{
	"bayar", "beli", "buat", "untuk", "hutang", "cicilan", "angsuran", "keluar", "spend",
	"belanja", "shopping", "transfer", "kirim",
}

type categoryRule struct {
	keywords []string
	label    string
}

// Fallback category labels.
const (
	CategoryIncome  = "Pemasukan"
	CategoryExpense = "Pengeluaran"
)

var incomeCategories = []categoryRule{
	{[]string{"gaji", "salary", "gajian"}, "Gaji"},
	{[]string{"bonus", "thr"}, "Bonus"},
	{[]string{"freelance", "project", "proyek"}, "Freelance"},
	{[]string{"komisi", "fee"}, "Komisi"},
	{[]string{"penjualan", "jual"}, "Penjualan"},
	{[]string{"dividen", "profit", "untung", "bunga"}, "Investasi"},
}

var expenseCategories = []categoryRule{
	{[]string{"makan", "minum", "restoran", "kopi", "jajan", "sarapan"}, "Makan"},
	{[]string{"bensin", "transport", "ojek", "grab", "gojek", "parkir", "tol", "taksi"}, "Transport"},
	{[]string{"listrik", "tagihan", "wifi", "pulsa", "internet", "pdam"}, "Tagihan"},
	{[]string{"hutang", "cicilan", "angsuran", "kredit"}, "Cicilan"},
	{[]string{"belanja", "beli", "shopping"}, "Belanja"},
}

var cashKeywords = []string{"tunai", "cash", "dompet"}

var bankKeywords = []string{
	"transfer", "tf", "qris", "ovo", "gopay", "dana", "shopeepay", "linkaja",
	"bca", "bri", "bni", "mandiri", "bsi", "rekening", "debit", "atm", "bank",
}

var wordRE = regexp.MustCompile(`[a-z]+`)

// words splits lowercase text into alphabetic tokens.
func words(text string) []string {
	return wordRE.FindAllString(strings.ToLower(text), -1)
}

// hasKeyword reports whether any token starts with one of the keywords, so
// "gajian" matches "gaji" but "coffee" does not match "fee". Keywords of
// three letters or fewer must match a whole token.
func hasKeyword(tokens []string, keywords []string) bool {
	for _, tok := range tokens {
		for _, kw := range keywords {
			if len(kw) <= 3 {
				if tok == kw {
					return true
				}
				continue
			}
			if strings.HasPrefix(tok, kw) {
				return true
			}
		}
	}
	return false
}

// ClassifyType returns income when any income keyword is present, expense otherwise.
func ClassifyType(text string) string {
	tokens := words(text)
	if hasKeyword(tokens, incomeKeywords) {
		return models.TypeIncome
	}
	return models.TypeExpense
}

// Categorize applies the ordered rules of the given type.
func Categorize(text, typ string) string {
	tokens := words(text)
	rules, fallback := expenseCategories, CategoryExpense
	if typ == models.TypeIncome {
		rules, fallback = incomeCategories, CategoryIncome
	}
	for _, r := range rules {
		if hasKeyword(tokens, r.keywords) {
			return r.label
		}
	}
	return fallback
}

// PaymentMethod infers cash or bank. An explicit cash keyword wins.
func PaymentMethod(text string) string {
	tokens := words(text)
	if hasKeyword(tokens, cashKeywords) {
		return models.PaymentCash
	}
	if hasKeyword(tokens, bankKeywords) {
		return models.PaymentBank
	}
	return models.PaymentCash
}
