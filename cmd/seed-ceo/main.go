// Command seed-ceo creates the CEO account from CEO_NAME, CEO_EMAIL and CEO_PASSWORD. It is a
// no-op when an account with that email already exists.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"shopledger-backend/internal/config"
	"shopledger-backend/internal/service"
	"shopledger-backend/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	ceo, created, err := service.EnsureCEO(ctx, st, cfg.CEOName, cfg.CEOEmail, cfg.CEOPassword)
	st.Close()
	if err != nil {
		logger.Error("seed ceo failed", "err", err)
		cancel()
		os.Exit(1)
	}
	if !created {
		logger.Info("ceo already exists", "shop_id", ceo.ID, "role", ceo.Role)
		return
	}
	logger.Info("ceo created", "shop_id", ceo.ID, "email", ceo.Email)
}
