package implementations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/wallet-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/api-sage/wallet-ledger/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// minorUnitsPerMajor converts gateway amounts (kobo) to wallet balance units.
var minorUnitsPerMajor = decimal.NewFromInt(100)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreateEntry(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	logger.Info("ledger repository create entry", logger.Fields{
		"walletId":  entry.WalletID,
		"kind":      entry.Kind,
		"reference": entry.Reference,
		"status":    entry.Status,
	})

	metadataValue, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("encode entry metadata: %w", err)
	}

	const query = `
INSERT INTO ledger_entries (
	id,
	wallet_id,
	kind,
	amount,
	status,
	reference,
	counterparty_wallet_number,
	metadata
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at`

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.ID,
		entry.WalletID,
		entry.Kind,
		entry.Amount,
		entry.Status,
		entry.Reference,
		entry.CounterpartyWalletNumber,
		metadataValue,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt); err != nil {
		logger.Error("ledger repository create entry failed", err, logger.Fields{
			"reference": entry.Reference,
		})
		return domain.LedgerEntry{}, fmt.Errorf("create ledger entry: %w", err)
	}

	logger.Info("ledger repository create entry success", logger.Fields{
		"entryId":   entry.ID,
		"reference": entry.Reference,
	})

	return entry, nil
}

func (r *LedgerRepository) GetEntryByReference(ctx context.Context, reference string) (domain.LedgerEntry, error) {
	logger.Info("ledger repository get entry by reference", logger.Fields{
		"reference": reference,
	})

	const query = `
SELECT id, wallet_id, kind, amount, status, reference, counterparty_wallet_number, metadata, created_at, updated_at
FROM ledger_entries
WHERE reference = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, reference))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			logger.Info("ledger repository record not found", logger.Fields{
				"reference": reference,
			})
			return domain.LedgerEntry{}, commons.ErrRecordNotFound
		}
		logger.Error("ledger repository get entry failed", err, logger.Fields{
			"reference": reference,
		})
		return domain.LedgerEntry{}, err
	}

	return entry, nil
}

func (r *LedgerRepository) ListEntriesByWallet(ctx context.Context, walletID string, limit int) ([]domain.LedgerEntry, error) {
	logger.Info("ledger repository list entries by wallet", logger.Fields{
		"walletId": walletID,
		"limit":    limit,
	})

	const query = `
SELECT id, wallet_id, kind, amount, status, reference, counterparty_wallet_number, metadata, created_at, updated_at
FROM ledger_entries
WHERE wallet_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, walletID, limit)
	if err != nil {
		logger.Error("ledger repository list entries failed", err, logger.Fields{
			"walletId": walletID,
		})
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			logger.Error("ledger repository scan entry failed", err, logger.Fields{
				"walletId": walletID,
			})
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return entries, nil
}

func (r *LedgerRepository) PerformTransfer(ctx context.Context, posting repo_interfaces.TransferPosting) error {
	logger.Info("ledger repository perform transfer", logger.Fields{
		"senderWalletId":    posting.SenderWalletID,
		"recipientWalletId": posting.RecipientWalletID,
		"amount":            posting.Amount,
		"reference":         posting.Reference,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock both wallet rows in ascending id order so that mirror transfers
	// (A to B and B to A at the same time) cannot deadlock.
	firstID, secondID := orderWalletIDs(posting.SenderWalletID, posting.RecipientWalletID)

	const lockQuery = `SELECT balance FROM wallets WHERE id = $1 FOR UPDATE`

	var firstBalance, secondBalance decimal.Decimal
	if err = tx.QueryRowContext(ctx, lockQuery, firstID).Scan(&firstBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = commons.ErrRecordNotFound
			return err
		}
		return fmt.Errorf("lock wallet %s: %w", firstID, err)
	}
	if err = tx.QueryRowContext(ctx, lockQuery, secondID).Scan(&secondBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = commons.ErrRecordNotFound
			return err
		}
		return fmt.Errorf("lock wallet %s: %w", secondID, err)
	}

	senderBalance := firstBalance
	if posting.SenderWalletID == secondID {
		senderBalance = secondBalance
	}
	if senderBalance.LessThan(posting.Amount) {
		err = commons.ErrInsufficientBalance
		return err
	}

	debitQuery := `
UPDATE wallets
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2::numeric`
	if _, err = execRequiredRows(ctx, tx, debitQuery, posting.SenderWalletID, posting.Amount); err != nil {
		return err
	}

	creditQuery := `
UPDATE wallets
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1`
	if _, err = execRequiredRows(ctx, tx, creditQuery, posting.RecipientWalletID, posting.Amount); err != nil {
		return err
	}

	const entryQuery = `
INSERT INTO ledger_entries (
	id,
	wallet_id,
	kind,
	amount,
	status,
	reference,
	counterparty_wallet_number,
	metadata
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	senderMetadata, err := marshalMetadata(posting.SenderMetadata)
	if err != nil {
		return fmt.Errorf("encode sender metadata: %w", err)
	}
	recipientMetadata, err := marshalMetadata(posting.RecipientMetadata)
	if err != nil {
		return fmt.Errorf("encode recipient metadata: %w", err)
	}

	if _, err = tx.ExecContext(
		ctx,
		entryQuery,
		uuid.New().String(),
		posting.SenderWalletID,
		domain.EntryKindTransferOut,
		posting.Amount,
		domain.EntryStatusSuccess,
		posting.Reference,
		posting.RecipientWalletNumber,
		senderMetadata,
	); err != nil {
		return fmt.Errorf("insert transfer-out entry: %w", err)
	}

	if _, err = tx.ExecContext(
		ctx,
		entryQuery,
		uuid.New().String(),
		posting.RecipientWalletID,
		domain.EntryKindTransferIn,
		posting.Amount,
		domain.EntryStatusSuccess,
		posting.Reference+"_credit",
		posting.SenderWalletNumber,
		recipientMetadata,
	); err != nil {
		return fmt.Errorf("insert transfer-in entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit transfer failed", err, logger.Fields{
			"reference": posting.Reference,
		})
		return fmt.Errorf("commit transfer transaction: %w", err)
	}

	logger.Info("ledger repository perform transfer success", logger.Fields{
		"reference": posting.Reference,
	})
	return nil
}

func (r *LedgerRepository) ApplyChargeSuccess(ctx context.Context, reference string, amountMinor int64, gatewayResponse string, paidAt string) (repo_interfaces.ChargeResult, error) {
	logger.Info("ledger repository apply charge success", logger.Fields{
		"reference":   reference,
		"amountMinor": amountMinor,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return repo_interfaces.ChargeResult{}, fmt.Errorf("begin reconciliation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	entry, err := lockEntryByReference(ctx, tx, reference)
	if err != nil {
		return repo_interfaces.ChargeResult{}, err
	}

	if entry.Status == domain.EntryStatusSuccess {
		// Duplicate delivery. Commit the no-op so the lock is released and
		// the gateway sees success.
		if err = tx.Commit(); err != nil {
			return repo_interfaces.ChargeResult{}, fmt.Errorf("commit no-op reconciliation: %w", err)
		}
		logger.Info("ledger repository charge already applied", logger.Fields{
			"reference": reference,
		})
		return repo_interfaces.ChargeResult{Entry: entry, AlreadyProcessed: true}, nil
	}

	// A previously failed entry is deliberately recovered to success here:
	// the gateway's confirmation outranks an earlier failure or expiry.
	now := time.Now().UTC().Format(time.RFC3339)
	if entry.Metadata == nil {
		entry.Metadata = domain.Metadata{}
	}
	entry.Metadata[domain.MetadataKeyReceived] = true
	entry.Metadata[domain.MetadataKeySuccessAt] = now
	entry.Metadata[domain.MetadataKeyGatewayResponse] = gatewayResponse
	if paidAt != "" {
		entry.Metadata[domain.MetadataKeyPaidAt] = paidAt
	}
	delete(entry.Metadata, domain.MetadataKeyFailureReason)

	metadataValue, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return repo_interfaces.ChargeResult{}, fmt.Errorf("encode entry metadata: %w", err)
	}

	updateEntryQuery := `
UPDATE ledger_entries
SET status = $2,
    metadata = $3,
    updated_at = NOW()
WHERE id = $1`
	if _, err = execRequiredRows(ctx, tx, updateEntryQuery, entry.ID, domain.EntryStatusSuccess, metadataValue); err != nil {
		return repo_interfaces.ChargeResult{}, err
	}

	creditAmount := decimal.NewFromInt(amountMinor).Div(minorUnitsPerMajor)
	creditQuery := `
UPDATE wallets
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1`
	if _, err = execRequiredRows(ctx, tx, creditQuery, entry.WalletID, creditAmount); err != nil {
		return repo_interfaces.ChargeResult{}, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit reconciliation failed", err, logger.Fields{
			"reference": reference,
		})
		return repo_interfaces.ChargeResult{}, fmt.Errorf("commit reconciliation transaction: %w", err)
	}

	entry.Status = domain.EntryStatusSuccess
	logger.Info("ledger repository apply charge success done", logger.Fields{
		"reference":    reference,
		"creditAmount": creditAmount,
	})
	return repo_interfaces.ChargeResult{Entry: entry}, nil
}

func (r *LedgerRepository) ApplyChargeFailure(ctx context.Context, reference string, reason string) (repo_interfaces.ChargeResult, error) {
	logger.Info("ledger repository apply charge failure", logger.Fields{
		"reference": reference,
		"reason":    reason,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return repo_interfaces.ChargeResult{}, fmt.Errorf("begin reconciliation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	entry, err := lockEntryByReference(ctx, tx, reference)
	if err != nil {
		return repo_interfaces.ChargeResult{}, err
	}

	// Already failed: duplicate delivery. Already success: a late failure
	// never regresses a credited entry. Both commit as no-ops.
	if entry.Status == domain.EntryStatusFailed || entry.Status == domain.EntryStatusSuccess {
		if err = tx.Commit(); err != nil {
			return repo_interfaces.ChargeResult{}, fmt.Errorf("commit no-op reconciliation: %w", err)
		}
		logger.Info("ledger repository charge failure ignored", logger.Fields{
			"reference": reference,
			"status":    entry.Status,
		})
		return repo_interfaces.ChargeResult{Entry: entry, AlreadyProcessed: true}, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if entry.Metadata == nil {
		entry.Metadata = domain.Metadata{}
	}
	entry.Metadata[domain.MetadataKeyReceived] = true
	entry.Metadata[domain.MetadataKeyFailedAt] = now
	if reason != "" {
		entry.Metadata[domain.MetadataKeyFailureReason] = reason
	}

	metadataValue, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return repo_interfaces.ChargeResult{}, fmt.Errorf("encode entry metadata: %w", err)
	}

	updateEntryQuery := `
UPDATE ledger_entries
SET status = $2,
    metadata = $3,
    updated_at = NOW()
WHERE id = $1`
	if _, err = execRequiredRows(ctx, tx, updateEntryQuery, entry.ID, domain.EntryStatusFailed, metadataValue); err != nil {
		return repo_interfaces.ChargeResult{}, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit reconciliation failed", err, logger.Fields{
			"reference": reference,
		})
		return repo_interfaces.ChargeResult{}, fmt.Errorf("commit reconciliation transaction: %w", err)
	}

	entry.Status = domain.EntryStatusFailed
	return repo_interfaces.ChargeResult{Entry: entry}, nil
}

func (r *LedgerRepository) ExpireStalePendingDeposits(ctx context.Context, olderThan time.Time) (int64, error) {
	logger.Info("ledger repository expire stale pending deposits", logger.Fields{
		"olderThan": olderThan,
	})

	const query = `
UPDATE ledger_entries
SET status = 'failed',
    metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object(
        'failure_reason', 'expired',
        'expired_at', to_char(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
    ),
    updated_at = NOW()
WHERE kind = 'deposit'
  AND status = 'pending'
  AND created_at < $1`

	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		logger.Error("ledger repository expire stale pending deposits failed", err, nil)
		return 0, fmt.Errorf("expire stale pending deposits: %w", err)
	}

	expired, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire stale pending deposits rows affected: %w", err)
	}

	if expired > 0 {
		logger.Info("ledger repository expired stale pending deposits", logger.Fields{
			"count": expired,
		})
	}
	return expired, nil
}

// lockEntryByReference locks the entry row and its owning wallet row for the
// duration of the surrounding transaction.
func lockEntryByReference(ctx context.Context, tx *sql.Tx, reference string) (domain.LedgerEntry, error) {
	const query = `
SELECT e.id, e.wallet_id, e.kind, e.amount, e.status, e.reference, e.counterparty_wallet_number, e.metadata, e.created_at, e.updated_at
FROM ledger_entries e
JOIN wallets w ON w.id = e.wallet_id
WHERE e.reference = $1
FOR UPDATE OF e, w`

	entry, err := scanEntry(tx.QueryRowContext(ctx, query, reference))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.LedgerEntry{}, commons.ErrRecordNotFound
		}
		return domain.LedgerEntry{}, fmt.Errorf("lock ledger entry %q: %w", reference, err)
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var counterparty sql.NullString
	var metadataRaw []byte

	if err := row.Scan(
		&entry.ID,
		&entry.WalletID,
		&entry.Kind,
		&entry.Amount,
		&entry.Status,
		&entry.Reference,
		&counterparty,
		&metadataRaw,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LedgerEntry{}, commons.ErrRecordNotFound
		}
		return domain.LedgerEntry{}, fmt.Errorf("scan ledger entry: %w", err)
	}

	if counterparty.Valid {
		value := counterparty.String
		entry.CounterpartyWalletNumber = &value
	}
	entry.Metadata = decodeMetadata(metadataRaw, entry.Reference)

	return entry, nil
}

// decodeMetadata tolerates malformed stored metadata: the entry is still
// usable, the blob is just dropped.
func decodeMetadata(raw []byte, reference string) domain.Metadata {
	if len(raw) == 0 {
		return nil
	}

	var metadata domain.Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		logger.Error("ledger repository malformed entry metadata", err, logger.Fields{
			"reference": reference,
		})
		return nil
	}
	return metadata
}

func marshalMetadata(metadata domain.Metadata) (any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// orderWalletIDs returns the two ids in the deterministic global lock order.
func orderWalletIDs(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
