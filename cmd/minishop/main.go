package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/config"
	"MiniShop/internal/session"
	"MiniShop/internal/shop"
	"MiniShop/internal/user"
	"MiniShop/pkg/kit"
)

func main() {
	service := "minishop"

	cfg, err := config.Load()
	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}

	users := newUserStore(cfg, log)
	cat := catalog.NewStore()

	s := &shop.Server{
		Log:   log,
		Users: users,
		Sessions: session.NewRegistry(session.Options{
			TTL:           cfg.SessionTTL,
			SingleSession: cfg.SingleSession,
		}),
		Catalog: cat,
		Carts:   cart.NewRegistry(cat),
	}

	h := shop.NewHandler(s, shop.HTTPDeps{
		Log:               log,
		Service:           service,
		Registry:          prometheus.NewRegistry(),
		MetricsEnabled:    cfg.MetricsEnabled,
		MetricsToken:      cfg.MetricsToken,
		LoginLimitPerMin:  cfg.LoginLimitPerMin,
		SignupLimitPerMin: cfg.SignupLimitPerMin,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newUserStore(cfg config.Config, log *zap.Logger) user.Store {
	if cfg.DatabaseURL == "" {
		log.Info("using file user store", zap.String("path", cfg.UsersFile))
		return user.NewFileStore(cfg.UsersFile, log)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}

	store := user.NewPostgresStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Fatal("database unreachable", zap.Error(err))
	}

	log.Info("using postgres user store")
	return store
}
