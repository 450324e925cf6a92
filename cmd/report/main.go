package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"keubot/config"
	"keubot/models"
	"keubot/pkg/address"
	"keubot/pkg/export"
	"keubot/store"

	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default ./config.yaml when present)")
	number := flag.String("phone", "", "user phone number to report for")
	month := flag.String("month", time.Now().Format("2006-01"), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching rows")
	xlsx := flag.String("xlsx", "", "also write the transactions to this .xlsx file")
	flag.Parse()
	if *number == "" {
		fmt.Println("usage: go run ./cmd/report -phone <number> [-month YYYY-MM] [-list] [-xlsx out.xlsx]")
		os.Exit(2)
	}

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	t, err := time.Parse("2006-01", *month)
	if err != nil {
		log.Fatal("invalid month format, expected YYYY-MM", zap.Error(err))
	}
	from := t.Format(models.DateLayout)
	to := t.AddDate(0, 1, -1).Format(models.DateLayout)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	phone := address.Phone(*number)
	u, err := st.FindUserByPhone(ctx, phone)
	if err != nil {
		log.Fatal("user not found", zap.String("phone", phone), zap.Error(err))
	}
	txs, err := st.ListTransactions(ctx, u.ID, from, to)
	if err != nil {
		log.Fatal("list transactions", zap.Error(err))
	}
	cats, err := st.CategoryTotals(ctx, u.ID, from, to)
	if err != nil {
		log.Fatal("category totals", zap.Error(err))
	}
	bal, err := st.GetBalance(ctx, u.ID)
	if err != nil {
		log.Fatal("get balance", zap.Error(err))
	}

	var income, expense int64
	for _, tx := range txs {
		if tx.Type == models.TypeIncome {
			income += tx.Amount
		} else {
			expense += tx.Amount
		}
	}
	fmt.Printf("Report for phone=%s month=%s:\n", phone, *month)
	fmt.Printf("  records=%d income=%d expense=%d net=%d\n", len(txs), income, expense, income-expense)
	fmt.Printf("  balance cash=%d bank=%d total=%d\n", bal.Cash, bal.Bank, bal.Total())
	for _, c := range cats {
		fmt.Printf("  %-7s %-20s %12d (%dx)\n", c.Type, c.Category, c.Total, c.Count)
	}
	if *list {
		for _, tx := range txs {
			fmt.Printf("%d|%s|%s|%d|%s|%s|%s\n", tx.ID, tx.Date, tx.Type, tx.Amount, tx.Category, tx.PaymentMethod, tx.Description)
		}
	}
	if *xlsx != "" {
		doc, err := export.Transactions("Transaksi "+*month, txs)
		if err != nil {
			log.Fatal("build workbook", zap.Error(err))
		}
		if err := os.WriteFile(*xlsx, doc, 0o644); err != nil {
			log.Fatal("write workbook", zap.Error(err))
		}
		fmt.Printf("wrote %s\n", *xlsx)
	}
}
