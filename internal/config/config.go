package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=wallet_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultListenAddr = ":8080"
const defaultChannelID = "WalletApp"
const defaultChannelKey = "WalletChannelKey001"
const defaultPaystackBaseURL = "https://api.paystack.co"
const defaultMigrationsDir = "migrations"

type Config struct {
	DatabaseDSN           string
	MigrationsDir         string
	ListenAddr            string
	ChannelID             string
	ChannelKey            string
	PaystackBaseURL       string
	PaystackSecretKey     string
	GatewayTimeout        time.Duration
	MinimumDepositAmount  decimal.Decimal
	MinimumTransferAmount decimal.Decimal
	TransactionsPageSize  int
	PendingDepositExpiry  time.Duration
	SweepInterval         time.Duration
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		DatabaseDSN:          normalizeConnectionString(envOrDefault("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir:        envOrDefault("MIGRATIONS_DIR", defaultMigrationsDir),
		ListenAddr:           envOrDefault("LISTEN_ADDR", defaultListenAddr),
		ChannelID:            envOrDefault("CHANNEL_ID", defaultChannelID),
		ChannelKey:           envOrDefault("CHANNEL_KEY", defaultChannelKey),
		PaystackBaseURL:      envOrDefault("PAYSTACK_BASE_URL", defaultPaystackBaseURL),
		PaystackSecretKey:    strings.TrimSpace(os.Getenv("PAYSTACK_SECRET_KEY")),
		GatewayTimeout:       time.Duration(envIntOrDefault("GATEWAY_TIMEOUT_SECONDS", 15)) * time.Second,
		TransactionsPageSize: envIntOrDefault("TRANSACTIONS_PAGE_SIZE", 50),
		PendingDepositExpiry: time.Duration(envIntOrDefault("PENDING_DEPOSIT_EXPIRY_HOURS", 24)) * time.Hour,
		SweepInterval:        time.Duration(envIntOrDefault("SWEEP_INTERVAL_MINUTES", 30)) * time.Minute,
	}

	minimumDeposit, err := decimal.NewFromString(envOrDefault("MINIMUM_DEPOSIT_AMOUNT", "100"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MINIMUM_DEPOSIT_AMOUNT: %w", err)
	}
	minimumTransfer, err := decimal.NewFromString(envOrDefault("MINIMUM_TRANSFER_AMOUNT", "100"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MINIMUM_TRANSFER_AMOUNT: %w", err)
	}
	cfg.MinimumDepositAmount = minimumDeposit
	cfg.MinimumTransferAmount = minimumTransfer

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
