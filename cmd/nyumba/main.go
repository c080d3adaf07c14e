package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nyumba/internal/config"
	"nyumba/internal/http/handlers"
	"nyumba/internal/repos"
	"nyumba/internal/validate"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	pool := repos.NewPool(cfg.DBDSN)
	defer pool.Close()

	deps, err := handlers.NewDeps(pool, cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.AdminEmail != "" {
		if !validate.Password(cfg.AdminPassword) {
			log.Printf("[warn] ADMIN_PASSWORD is weak; use 8+ chars mixing cases, digits and symbols")
		}
		db, err := pool.DB()
		if err != nil {
			log.Fatal(err)
		}
		if err := repos.SeedAdmin(context.Background(), db, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	app := handlers.NewApp(deps, handlers.Options{
		CSRF:         cfg.CSRFEnabled,
		CookieSecure: cfg.CookieSecure,
		CORSOrigins:  cfg.CORSOrigins,
		AccessLog:    true,
		Health: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx)
		},
	})
	if cfg.Debug {
		log.Printf("[debug] %d routes registered", len(app.GetRoutes(true)))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("[shutdown] draining connections")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
