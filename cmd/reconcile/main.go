package main

import (
	"context"
	"flag"
	"fmt"

	"keubot/config"
	"keubot/models"
	"keubot/pkg/address"
	"keubot/store"

	"go.uber.org/zap"
)

// reconcile recomputes stored balances from the transaction history. With no
// -phone every user is checked.
func main() {
	cfgPath := flag.String("config", "", "config file (default ./config.yaml when present)")
	number := flag.String("phone", "", "only reconcile this user")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

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
	var users []models.User
	if *number != "" {
		u, err := st.FindUserByPhone(ctx, address.Phone(*number))
		if err != nil {
			log.Fatal("user not found", zap.String("phone", *number), zap.Error(err))
		}
		users = append(users, *u)
	} else if users, err = st.ListUsers(ctx); err != nil {
		log.Fatal("list users", zap.Error(err))
	}

	fixed := 0
	for _, u := range users {
		before, err := st.GetBalance(ctx, u.ID)
		if err != nil {
			log.Error("get balance", zap.String("phone", u.Phone), zap.Error(err))
			continue
		}
		after, err := st.ReconcileBalance(ctx, u.ID)
		if err != nil {
			log.Error("reconcile", zap.String("phone", u.Phone), zap.Error(err))
			continue
		}
		if before.Cash != after.Cash || before.Bank != after.Bank {
			fixed++
			fmt.Printf("%s: cash %d -> %d, bank %d -> %d\n", u.Phone, before.Cash, after.Cash, before.Bank, after.Bank)
		}
	}
	fmt.Printf("checked %d users, corrected %d\n", len(users), fixed)
}
