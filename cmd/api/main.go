package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lavka.org/internal/auth"
	"lavka.org/internal/bot"
	"lavka.org/internal/config"
	"lavka.org/internal/httpapi"
	"lavka.org/internal/obs"
	"lavka.org/internal/product"
	"lavka.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	var store *pg.Store
	if cfg.PGDSN != "" {
		store, err = pg.Open(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
	}
	if store == nil {
		log.Fatal("missing LAVKA_PG_DSN")
	}

	codec, err := auth.NewCodec(auth.TokenConfig{
		Secret: []byte(cfg.TokenSecret),
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	sessions, err := auth.NewService(store.Accounts(), codec,
		auth.WithDefaultRole(cfg.DefaultRole),
		auth.WithBcryptCost(cfg.BcryptCost),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	accounts, err := auth.NewAccountService(store.Accounts(),
		auth.WithAccountBcryptCost(cfg.BcryptCost),
	)
	if err != nil {
		log.Fatalf("account service: %v", err)
	}
	products, err := product.NewService(store.Products())
	if err != nil {
		log.Fatalf("product service: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Ready:         httpapi.ReadyProbe{DB: store.DB()},
		Version:       version,
		Sessions:      sessions,
		Accounts:      accounts,
		Products:      products,
		RateBurst:     cfg.RateBurst,
		RatePerSecond: cfg.RatePerSecond,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})

	// Telegram approval console, only when a token is configured.
	var console *bot.Bot
	if cfg.BotToken != "" {
		console, err = bot.New(cfg.BotToken, accounts, cfg.BotAdminIDs)
		if err != nil {
			log.Fatalf("telegram bot: %v", err)
		}
		go func() {
			if err := console.Run(); err != nil {
				log.Printf("telegram bot stopped: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting lavka-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if console != nil {
		console.Stop()
	}
	_ = store.Close()
	log.Println("Stopped")
}
