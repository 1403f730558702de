package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// TransferPosting carries everything the atomic transfer transaction needs.
// Both wallet rows are locked in ascending wallet id order inside the
// transaction, never in sender-then-recipient order. Reference names the
// debit leg; the credit leg is stored under Reference + "_credit" so both
// legs stay pair-addressable while the reference column stays unique.
type TransferPosting struct {
	SenderWalletID        string
	SenderWalletNumber    string
	RecipientWalletID     string
	RecipientWalletNumber string
	Amount                decimal.Decimal
	Reference             string
	SenderMetadata        domain.Metadata
	RecipientMetadata     domain.Metadata
}

// ChargeResult reports what a reconciliation transaction actually did.
// AlreadyProcessed means the entry was in the implied terminal status before
// the call and the transaction committed as a no-op.
type ChargeResult struct {
	Entry            domain.LedgerEntry
	AlreadyProcessed bool
}

type LedgerRepository interface {
	CreateEntry(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error)
	GetEntryByReference(ctx context.Context, reference string) (domain.LedgerEntry, error)
	ListEntriesByWallet(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error)
	PerformTransfer(ctx context.Context, posting TransferPosting) error
	ApplyChargeSuccess(ctx context.Context, reference string, amountMinor int64, gatewayResponse string, paidAt string) (ChargeResult, error)
	ApplyChargeFailure(ctx context.Context, reference string, reason string) (ChargeResult, error)
	ExpireStalePendingDeposits(ctx context.Context, olderThan time.Time) (int64, error)
}
