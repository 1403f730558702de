package service_interfaces

import (
	"context"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/commons"
)

type WalletService interface {
	CreateWallet(ctx context.Context, req models.CreateWalletRequest) (commons.Response[models.WalletResponse], error)
	GetBalance(ctx context.Context, userID string) (commons.Response[models.WalletResponse], error)
	SetTransactionPIN(ctx context.Context, userID string, req models.SetTransactionPINRequest) (commons.Response[struct{}], error)
	InitiateDeposit(ctx context.Context, userID string, req models.InitiateDepositRequest) (commons.Response[models.InitiateDepositResponse], error)
	Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	GetTransactions(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error)
	GetDepositStatus(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error)
	VerifyDeposit(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error)
	SweepStaleDeposits(ctx context.Context) (int64, error)
}
