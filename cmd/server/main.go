package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.FromConfig(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	pub, err := events.FromBrokers(cfg.KafkaBrokers)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}

	var index search.Index
	if cfg.ESURL != "" {
		esIndex, err := search.NewESIndex(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_index_unavailable", "reason", "falling back to db search", "error", err)
		} else {
			index = esIndex
		}
	}

	r := repo.New(gdb)
	authSvc := &service.AuthService{Repo: r, Secret: cfg.SessionSecret, TTL: cfg.SessionTTL, Events: pub}
	if n, err := authSvc.PurgeSessions(context.Background()); err != nil {
		logger.Warn("purge_sessions_failed", "error", err)
	} else if n > 0 {
		logger.Info("purge_sessions", "removed", n)
	}

	e := httpserver.New(&httpserver.Deps{
		DB:             gdb,
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		ProductHandler: &httpserver.ProductHTTP{Svc: &service.ProductService{Repo: r, Index: index, Events: pub}},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: pub}},
		SessionAuth:    authmw.NewSessionAuth(authSvc, cfg.CookieSecure),
	}, logger, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("%s listening on %s", cfg.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := pub.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("db close error: %v", err)
	}

	log.Println("shutdown complete")
}
