package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"keubot/config"
	"keubot/pkg/address"
	"keubot/pkg/rbac"
	"keubot/store"

	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default ./config.yaml when present)")
	number := flag.String("phone", "", "user phone number, e.g. 0812... or 62812...")
	role := flag.String("role", "", "role name: finance, attendance, cashier, admin")
	remove := flag.Bool("remove", false, "remove the role instead of assigning it")
	flag.Parse()
	if *number == "" || *role == "" {
		fmt.Println("usage: go run ./cmd/assign_role -phone <number> -role <name> [-remove]")
		os.Exit(2)
	}

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
	roles := rbac.NewResolver(st)
	if err := roles.Seed(ctx, rbac.DefaultRoles()); err != nil {
		log.Fatal("seed roles", zap.Error(err))
	}

	phone := address.Phone(*number)
	if phone == "" {
		log.Fatal("invalid phone number", zap.String("phone", *number))
	}
	// unlike the chat command, operators may grant access before first contact
	u, err := st.GetOrCreateUser(ctx, phone, "")
	if err != nil {
		log.Fatal("get user", zap.Error(err))
	}

	if *remove {
		r, err := roles.RemoveRoleByName(ctx, u.ID, *role, nil)
		switch {
		case errors.Is(err, rbac.ErrNoActiveAssignment):
			fmt.Printf("user %s has no active role %s\n", phone, r.Name)
			return
		case err != nil:
			log.Fatal("remove role", zap.Error(err))
		}
		fmt.Printf("removed role %s from %s (user id=%d)\n", r.Name, phone, u.ID)
		return
	}
	r, err := roles.AssignRoleByName(ctx, u.ID, *role, nil)
	if err != nil {
		log.Fatal("assign role", zap.Error(err))
	}
	fmt.Printf("assigned role %s to %s (user id=%d)\n", r.Name, phone, u.ID)
}
