package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/access"
	"github.com/gloria-mdrrmo/sigurado/internal/account"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/auth"
)

var provisionFlags struct {
	name     string
	email    string
	password string
	role     string
	district string
	contact  string
}

func init() {
	f := provisionCmd.Flags()
	f.StringVar(&provisionFlags.name, "name", "", "display name")
	f.StringVar(&provisionFlags.email, "email", "", "login email")
	f.StringVar(&provisionFlags.password, "password", "", "initial password")
	f.StringVar(&provisionFlags.role, "role", "official", "citizen, responder, official or mdrrmo")
	f.StringVar(&provisionFlags.district, "district", "", "district code, e.g. GLR-POB (required for officials)")
	f.StringVar(&provisionFlags.contact, "contact", "", "contact number")
	for _, name := range []string{"name", "email", "password"} {
		_ = provisionCmd.MarkFlagRequired(name)
	}
}

func runProvision(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Store.Driver == "memory" {
		return fmt.Errorf("provision needs the postgres store driver")
	}

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	gate, err := access.NewGate(cfg.Access, log.Named("access"))
	if err != nil {
		return err
	}
	accounts := account.NewService(store, gate, auth.NewTokens(cfg.Auth), cfg.Auth, log)

	in := account.RegisterInput{
		Name:          provisionFlags.name,
		Email:         provisionFlags.email,
		Password:      provisionFlags.password,
		Role:          provisionFlags.role,
		ContactNumber: provisionFlags.contact,
	}
	if provisionFlags.district != "" {
		d, err := store.GetDistrictByCode(ctx, provisionFlags.district)
		if err != nil {
			return err
		}
		in.DistrictID = &d.ID
	}

	actor, err := accounts.Provision(ctx, in)
	if err != nil {
		return err
	}
	log.Info("provisioned account", zap.String("actor_id", actor.ID.String()), zap.String("email", actor.Email))
	return nil
}
