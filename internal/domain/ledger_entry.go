package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindDeposit     EntryKind = "deposit"
	EntryKindTransferOut EntryKind = "transfer_out"
	EntryKindTransferIn  EntryKind = "transfer_in"
)

type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusSuccess EntryStatus = "success"
	EntryStatusFailed  EntryStatus = "failed"
)

// Metadata is the free-form key/value blob persisted alongside an entry.
// Known keys are listed below; unknown keys are preserved as written.
type Metadata map[string]any

const (
	MetadataKeyChannel         = "channel"
	MetadataKeyGatewayResponse = "gateway_response"
	MetadataKeyReceived        = "webhook_received"
	MetadataKeySuccessAt       = "success_at"
	MetadataKeyFailedAt        = "failed_at"
	MetadataKeyFailureReason   = "failure_reason"
	MetadataKeyPaidAt          = "paid_at"
	MetadataKeyExpiredAt       = "expired_at"
	MetadataKeySenderName      = "sender_name"
	MetadataKeyRecipientName   = "recipient_name"
)

type LedgerEntry struct {
	ID                       string
	WalletID                 string
	Kind                     EntryKind
	Amount                   decimal.Decimal
	Status                   EntryStatus
	Reference                string
	CounterpartyWalletNumber *string
	Metadata                 Metadata
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
