package services_test

import (
	"context"
	"time"

	"github.com/api-sage/wallet-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/api-sage/wallet-ledger/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

type walletRepoStub struct {
	createFn            func(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error)
	getByUserIDFn       func(ctx context.Context, userID string) (domain.Wallet, error)
	getByWalletNumberFn func(ctx context.Context, walletNumber string) (domain.Wallet, error)
	setTransactionPINFn func(ctx context.Context, walletID string, pinHash string) error
}

func (s walletRepoStub) Create(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error) {
	if s.createFn != nil {
		return s.createFn(ctx, wallet)
	}
	return wallet, nil
}

func (s walletRepoStub) GetByUserID(ctx context.Context, userID string) (domain.Wallet, error) {
	if s.getByUserIDFn != nil {
		return s.getByUserIDFn(ctx, userID)
	}
	return domain.Wallet{}, nil
}

func (s walletRepoStub) GetByWalletNumber(ctx context.Context, walletNumber string) (domain.Wallet, error) {
	if s.getByWalletNumberFn != nil {
		return s.getByWalletNumberFn(ctx, walletNumber)
	}
	return domain.Wallet{}, nil
}

func (s walletRepoStub) SetTransactionPIN(ctx context.Context, walletID string, pinHash string) error {
	if s.setTransactionPINFn != nil {
		return s.setTransactionPINFn(ctx, walletID, pinHash)
	}
	return nil
}

type ledgerRepoStub struct {
	createEntryFn         func(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error)
	getEntryByReferenceFn func(ctx context.Context, reference string) (domain.LedgerEntry, error)
	listEntriesByWalletFn func(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error)
	performTransferFn     func(ctx context.Context, posting repo_interfaces.TransferPosting) error
	applyChargeSuccessFn  func(ctx context.Context, reference string, amountMinor int64, gatewayResponse string, paidAt string) (repo_interfaces.ChargeResult, error)
	applyChargeFailureFn  func(ctx context.Context, reference string, reason string) (repo_interfaces.ChargeResult, error)
	expireStaleFn         func(ctx context.Context, olderThan time.Time) (int64, error)
}

func (s ledgerRepoStub) CreateEntry(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	if s.createEntryFn != nil {
		return s.createEntryFn(ctx, entry)
	}
	return entry, nil
}

func (s ledgerRepoStub) GetEntryByReference(ctx context.Context, reference string) (domain.LedgerEntry, error) {
	if s.getEntryByReferenceFn != nil {
		return s.getEntryByReferenceFn(ctx, reference)
	}
	return domain.LedgerEntry{}, nil
}

func (s ledgerRepoStub) ListEntriesByWallet(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error) {
	if s.listEntriesByWalletFn != nil {
		return s.listEntriesByWalletFn(ctx, walletID, limit)
	}
	return nil, nil
}

func (s ledgerRepoStub) PerformTransfer(ctx context.Context, posting repo_interfaces.TransferPosting) error {
	if s.performTransferFn != nil {
		return s.performTransferFn(ctx, posting)
	}
	return nil
}

func (s ledgerRepoStub) ApplyChargeSuccess(ctx context.Context, reference string, amountMinor int64, gatewayResponse string, paidAt string) (repo_interfaces.ChargeResult, error) {
	if s.applyChargeSuccessFn != nil {
		return s.applyChargeSuccessFn(ctx, reference, amountMinor, gatewayResponse, paidAt)
	}
	return repo_interfaces.ChargeResult{}, nil
}

func (s ledgerRepoStub) ApplyChargeFailure(ctx context.Context, reference string, reason string) (repo_interfaces.ChargeResult, error) {
	if s.applyChargeFailureFn != nil {
		return s.applyChargeFailureFn(ctx, reference, reason)
	}
	return repo_interfaces.ChargeResult{}, nil
}

func (s ledgerRepoStub) ExpireStalePendingDeposits(ctx context.Context, olderThan time.Time) (int64, error) {
	if s.expireStaleFn != nil {
		return s.expireStaleFn(ctx, olderThan)
	}
	return 0, nil
}

type gatewayStub struct {
	initializeFn      func(ctx context.Context, email string, amount decimal.Decimal, reference string) (service_interfaces.InitializeTransactionResult, error)
	verifyFn          func(ctx context.Context, reference string) (service_interfaces.VerifyTransactionResult, error)
	verifySignatureFn func(payload []byte, signatureHeader string) bool
}

func (s gatewayStub) InitializeTransaction(ctx context.Context, email string, amount decimal.Decimal, reference string) (service_interfaces.InitializeTransactionResult, error) {
	if s.initializeFn != nil {
		return s.initializeFn(ctx, email, amount, reference)
	}
	return service_interfaces.InitializeTransactionResult{}, nil
}

func (s gatewayStub) VerifyTransaction(ctx context.Context, reference string) (service_interfaces.VerifyTransactionResult, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, reference)
	}
	return service_interfaces.VerifyTransactionResult{}, nil
}

func (s gatewayStub) VerifySignature(payload []byte, signatureHeader string) bool {
	if s.verifySignatureFn != nil {
		return s.verifySignatureFn(payload, signatureHeader)
	}
	return true
}
