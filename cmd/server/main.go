package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shopledger-backend/internal/config"
	"shopledger-backend/internal/handler"
	"shopledger-backend/internal/ledger"
	"shopledger-backend/internal/ports"
	"shopledger-backend/internal/server"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	err = run(ctx, cfg, logger, st)
	st.Close()
	if err != nil {
		logger.Error("server error", "err", err)
		stop()
		os.Exit(1)
	}
}

// run seeds the CEO when configured, wires services and handlers over st and serves until ctx
// is cancelled. The caller owns st.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, st ports.Store) error {
	if cfg.CEOEmail != "" {
		ceo, created, err := service.EnsureCEO(ctx, st, cfg.CEOName, cfg.CEOEmail, cfg.CEOPassword)
		if err != nil {
			return fmt.Errorf("seeding ceo: %w", err)
		}
		if created {
			logger.Info("ceo created", "shop_id", ceo.ID, "email", ceo.Email)
		}
	}

	// services
	authSvc := service.AuthService{Config: cfg, Shops: st, Logger: logger}
	shopSvc := service.ShopService{Shops: st, Auth: authSvc, Logger: logger}
	ledgerSvc := ledger.Service{Shops: st, Records: st, Logger: logger}
	statsSvc := service.StatisticsService{Ledger: ledgerSvc}

	// handlers
	secure := cfg.Production()
	handlers := server.Handlers{
		Health:       handler.HealthHandler{DB: st},
		Auth:         handler.AuthHandler{Service: &authSvc, CookieName: cfg.AuthCookieName, SecureCookie: secure},
		Shops:        handler.ShopHandler{Service: &shopSvc, CookieName: cfg.AuthCookieName, SecureCookie: secure},
		DailyRecords: handler.DailyRecordHandler{Ledger: ledgerSvc},
		Statistics:   handler.StatisticsHandler{Service: &statsSvc},
		Docs:         handler.DocsHandler{},
	}

	router := server.NewRouter(cfg, logger, &authSvc, handlers)
	return server.Start(ctx, cfg, router, logger)
}
