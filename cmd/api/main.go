package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iguajardo/serenity-api/internal/app/migrate"
	httpx "github.com/iguajardo/serenity-api/internal/http"
	"github.com/iguajardo/serenity-api/internal/mail"
	"github.com/iguajardo/serenity-api/internal/repository/postgres"
	"github.com/iguajardo/serenity-api/internal/service/account"
	"github.com/iguajardo/serenity-api/internal/service/auth"
	"github.com/iguajardo/serenity-api/pkg/config"
	"github.com/iguajardo/serenity-api/pkg/logger"
	"github.com/iguajardo/serenity-api/pkg/token"
)

func main() {
	cfg := config.Load()
	log := logger.New("api", logger.Level(cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	codec := token.NewCodec(cfg.JWTSecret)

	var mailer mail.Mailer
	if cfg.MailHost != "" {
		smtp, err := mail.NewSMTP(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailFrom)
		if err != nil {
			log.Error("failed to configure smtp", "error", err)
			os.Exit(1)
		}
		mailer = smtp
	} else {
		log.Warn("MAIL_HOST not set, outbound mail will only be logged")
		mailer = mail.LogMailer{Logger: log}
	}

	authSvc := auth.New(repo, codec, mailer, log, cfg)
	accountSvc := account.New(repo, repo, repo, repo, log)

	router := httpx.NewRouter(log, authSvc, accountSvc, cfg.ClientFrontURL)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
