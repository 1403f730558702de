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

	"github.com/api-sage/wallet-ledger/internal/adapter/gateway"
	"github.com/api-sage/wallet-ledger/internal/adapter/http/controller"
	"github.com/api-sage/wallet-ledger/internal/adapter/http/middleware"
	"github.com/api-sage/wallet-ledger/internal/adapter/http/router"
	"github.com/api-sage/wallet-ledger/internal/adapter/repository/implementations"
	"github.com/api-sage/wallet-ledger/internal/config"
	"github.com/api-sage/wallet-ledger/internal/logger"
	"github.com/api-sage/wallet-ledger/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := implementations.RunMigrations(startupCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := implementations.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	walletRepo := implementations.NewWalletRepository(db)
	ledgerRepo := implementations.NewLedgerRepository(db)
	paystack := gateway.NewPaystackClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.GatewayTimeout)

	walletService := services.NewWalletService(
		walletRepo,
		ledgerRepo,
		paystack,
		cfg.MinimumDepositAmount,
		cfg.MinimumTransferAmount,
		cfg.TransactionsPageSize,
		cfg.PendingDepositExpiry,
	)
	webhookService := services.NewWebhookService(ledgerRepo)

	mux := router.New(
		controller.NewWalletController(walletService),
		controller.NewWebhookController(webhookService, paystack),
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runDepositSweeper(rootCtx, walletService, cfg.SweepInterval)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", logger.Fields{
		"addr": cfg.ListenAddr,
	})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
}

// runDepositSweeper periodically expires pending deposit entries the gateway
// never resolved.
func runDepositSweeper(ctx context.Context, walletService *services.WalletService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			if _, err := walletService.SweepStaleDeposits(sweepCtx); err != nil {
				logger.Error("deposit sweeper failed", err, nil)
			}
			cancel()
		}
	}
}
