package repo_interfaces

import (
	"context"

	"github.com/api-sage/wallet-ledger/internal/domain"
)

type WalletRepository interface {
	Create(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error)
	GetByUserID(ctx context.Context, userID string) (domain.Wallet, error)
	GetByWalletNumber(ctx context.Context, walletNumber string) (domain.Wallet, error)
	SetTransactionPIN(ctx context.Context, walletID string, pinHash string) error
}
