package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/explorecali/tours-api/internal/auth"
	"github.com/explorecali/tours-api/internal/config"
	"github.com/explorecali/tours-api/internal/feature"
	httpserver "github.com/explorecali/tours-api/internal/http"
	"github.com/explorecali/tours-api/internal/repository"
	"github.com/explorecali/tours-api/internal/service"
	"github.com/explorecali/tours-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.New(os.Stdout, "[tours-api] ", log.LstdFlags|log.Lshortfile)

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:     time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	users, err := auth.NewUserStore(
		auth.Account{Name: cfg.UserName, Password: cfg.UserPassword, Role: auth.RoleUser},
		auth.Account{Name: cfg.AdminName, Password: cfg.AdminPassword, Role: auth.RoleAdmin},
	)
	if err != nil {
		log.Fatalf("init user store: %v", err)
	}

	repo := repository.New(st)
	ratings := service.NewTourRatings(repo.Tours, repo.Customers, repo.Ratings)
	flags := feature.NewFromEnv()
	server := httpserver.New(cfg, st, repo, ratings, flags, users, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
