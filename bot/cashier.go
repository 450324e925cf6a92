package bot

import (
	"context"
	"fmt"
	"strings"

	"keubot/models"
	"keubot/pkg/parser"
)

const saleCategory = "Penjualan"

func (b *Bot) cashierCommands() map[string]handlerFunc {
	return map[string]handlerFunc{
		"/jual":    b.cmdSale,
		"/laporan": b.cmdSalesReport,
		"/stok":    b.text(msgStockUnavailable),
		"/ocr":     b.cmdOCR,
		"/menu":    b.text(msgCashierMenu),
		"/help":    b.text(msgCashierHelp),
	}
}

func (b *Bot) cashierQuick() map[string]handlerFunc {
	return map[string]handlerFunc{
		"1": b.text(msgSaleFormat),
		"2": b.cmdSalesReport,
		"3": b.text(msgStockUnavailable),
		"4": b.text(msgCashierHelp),
		"5": b.text(msgCashierMenu),
	}
}

// cmdSale records "/jual <amount> [description]" as income in the sales category.
func (b *Bot) cmdSale(ctx context.Context, r *request, args []string) error {
	if len(args) == 0 {
		return b.reply(ctx, r, msgSaleFormat)
	}
	text := strings.Join(args, " ")
	amount, ok := parser.ParseAmount(text)
	if !ok {
		return b.reply(ctx, r, msgSaleFormat)
	}
	desc := text
	if _, lead := parser.ParseAmount(args[0]); lead {
		desc = strings.Join(args[1:], " ")
	}
	desc = strings.TrimSpace("penjualan " + strings.ToLower(desc))
	p := &parser.Transaction{
		Type:          models.TypeIncome,
		Amount:        amount,
		Category:      saleCategory,
		Description:   desc,
		PaymentMethod: parser.PaymentMethod(text),
	}
	return b.record(ctx, r, p)
}

func (b *Bot) cmdSalesReport(ctx context.Context, r *request, _ []string) error {
	now := b.now()
	today := day(now)
	txs, err := b.repo.ListTransactionsByCategory(ctx, r.user.ID, saleCategory, today, today)
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏪 *LAPORAN PENJUALAN*\n📅 %s\n\n", longDate(now))
	if len(txs) == 0 {
		sb.WriteString("❌ Belum ada penjualan hari ini\n\n💡 Catat dengan: /jual 150rb kopi susu")
		return b.reply(ctx, r, sb.String())
	}
	var total, cash, bank int64
	for _, t := range txs {
		if t.Type != models.TypeIncome {
			continue
		}
		total += t.Amount
		if t.PaymentMethod == models.PaymentBank {
			bank += t.Amount
		} else {
			cash += t.Amount
		}
	}
	for i, t := range txs {
		if i == 10 {
			fmt.Fprintf(&sb, "… dan %d lainnya\n", len(txs)-10)
			break
		}
		fmt.Fprintf(&sb, "#%d %s %s\n", t.ID, rupiah(t.Amount), truncate(t.Description, 30))
	}
	fmt.Fprintf(&sb, "\n💵 Tunai: %s\n🏦 Non-tunai: %s\n💰 *Total: %s* (%d transaksi)", rupiah(cash), rupiah(bank), rupiah(total), len(txs))
	return b.reply(ctx, r, sb.String())
}
