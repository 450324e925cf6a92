// Package parser turns free-text Indonesian ledger messages such as
// "bayar makan 25rb" or "terima gaji 5jt" into transactions.
package parser

import "strings"

// Transaction is a parsed, not yet persisted ledger entry.
type Transaction struct {
	Type          string
	Amount        int64
	Category      string
	Description   string
	PaymentMethod string
}

// Parse returns nil when the text carries no usable amount.
func Parse(text string) *Transaction {
	amount, ok := ParseAmount(text)
	if !ok {
		return nil
	}
	typ := ClassifyType(text)
	return &Transaction{
		Type:          typ,
		Amount:        amount,
		Category:      Categorize(text, typ),
		Description:   strings.TrimSpace(strings.ToLower(text)),
		PaymentMethod: PaymentMethod(text),
	}
}
