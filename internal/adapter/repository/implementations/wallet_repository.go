package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/api-sage/wallet-ledger/internal/logger"
)

type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error) {
	logger.Info("wallet repository create", logger.Fields{
		"userId":       wallet.UserID,
		"walletNumber": wallet.WalletNumber,
	})

	const query = `
INSERT INTO wallets (
	id,
	user_id,
	wallet_number,
	balance
) VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`

	var createdAt time.Time
	var updatedAt time.Time

	if err := r.db.QueryRowContext(
		ctx,
		query,
		wallet.ID,
		wallet.UserID,
		wallet.WalletNumber,
		wallet.Balance,
	).Scan(&createdAt, &updatedAt); err != nil {
		logger.Error("wallet repository create failed", err, logger.Fields{
			"userId":       wallet.UserID,
			"walletNumber": wallet.WalletNumber,
		})
		return domain.Wallet{}, fmt.Errorf("create wallet: %w", err)
	}

	wallet.CreatedAt = createdAt
	wallet.UpdatedAt = updatedAt
	logger.Info("wallet repository create success", logger.Fields{
		"walletId":     wallet.ID,
		"walletNumber": wallet.WalletNumber,
	})

	return wallet, nil
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (domain.Wallet, error) {
	logger.Info("wallet repository get by user id", logger.Fields{
		"userId": userID,
	})

	const query = `
SELECT id, user_id, wallet_number, balance, transaction_pin_hash, created_at, updated_at
FROM wallets
WHERE user_id = $1`

	return r.scanWallet(r.db.QueryRowContext(ctx, query, userID), logger.Fields{"userId": userID})
}

func (r *WalletRepository) GetByWalletNumber(ctx context.Context, walletNumber string) (domain.Wallet, error) {
	logger.Info("wallet repository get by wallet number", logger.Fields{
		"walletNumber": walletNumber,
	})

	const query = `
SELECT id, user_id, wallet_number, balance, transaction_pin_hash, created_at, updated_at
FROM wallets
WHERE wallet_number = $1`

	return r.scanWallet(r.db.QueryRowContext(ctx, query, walletNumber), logger.Fields{"walletNumber": walletNumber})
}

func (r *WalletRepository) SetTransactionPIN(ctx context.Context, walletID string, pinHash string) error {
	logger.Info("wallet repository set transaction pin", logger.Fields{
		"walletId": walletID,
	})

	const query = `
UPDATE wallets
SET transaction_pin_hash = $2,
    updated_at = NOW()
WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, walletID, pinHash)
	if err != nil {
		logger.Error("wallet repository set transaction pin failed", err, logger.Fields{
			"walletId": walletID,
		})
		return fmt.Errorf("set transaction pin: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set transaction pin rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return commons.ErrRecordNotFound
	}

	return nil
}

func (r *WalletRepository) scanWallet(row *sql.Row, fields logger.Fields) (domain.Wallet, error) {
	var wallet domain.Wallet
	var pinHash sql.NullString

	if err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.WalletNumber,
		&wallet.Balance,
		&pinHash,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("wallet repository record not found", fields)
			return domain.Wallet{}, commons.ErrRecordNotFound
		}
		logger.Error("wallet repository get failed", err, fields)
		return domain.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}

	if pinHash.Valid {
		value := pinHash.String
		wallet.TransactionPINHash = &value
	}

	return wallet, nil
}
