package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/api-sage/wallet-ledger/internal/logger"
	"github.com/api-sage/wallet-ledger/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const referenceAttempts = 5

type WalletService struct {
	walletRepo           repo_interfaces.WalletRepository
	ledgerRepo           repo_interfaces.LedgerRepository
	gateway              service_interfaces.PaymentGateway
	minimumDeposit       decimal.Decimal
	minimumTransfer      decimal.Decimal
	transactionsPageSize int
	pendingDepositExpiry time.Duration
}

var _ service_interfaces.WalletService = (*WalletService)(nil)

func NewWalletService(
	walletRepo repo_interfaces.WalletRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	gateway service_interfaces.PaymentGateway,
	minimumDeposit decimal.Decimal,
	minimumTransfer decimal.Decimal,
	transactionsPageSize int,
	pendingDepositExpiry time.Duration,
) *WalletService {
	return &WalletService{
		walletRepo:           walletRepo,
		ledgerRepo:           ledgerRepo,
		gateway:              gateway,
		minimumDeposit:       minimumDeposit,
		minimumTransfer:      minimumTransfer,
		transactionsPageSize: transactionsPageSize,
		pendingDepositExpiry: pendingDepositExpiry,
	}
}

func (s *WalletService) CreateWallet(ctx context.Context, req models.CreateWalletRequest) (commons.Response[models.WalletResponse], error) {
	logger.Info("wallet service create wallet", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.WalletResponse]("validation failed", err.Error()), err
	}

	userID := strings.TrimSpace(req.UserID)
	if _, err := s.walletRepo.GetByUserID(ctx, userID); err == nil {
		err = commons.ErrInvalidOperation
		return commons.ErrorResponse[models.WalletResponse]("Wallet already exists for user"), err
	} else if !errors.Is(err, commons.ErrRecordNotFound) {
		return commons.ErrorResponse[models.WalletResponse]("failed to create wallet", "Unable to create wallet right now"), err
	}

	var created domain.Wallet
	var err error
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		created, err = s.walletRepo.Create(ctx, domain.Wallet{
			ID:           uuid.New().String(),
			UserID:       userID,
			WalletNumber: generateWalletNumber(),
			Balance:      decimal.Zero,
		})
		if err == nil {
			break
		}
		if !isUniqueViolation(err) {
			return commons.ErrorResponse[models.WalletResponse]("failed to create wallet", "Unable to create wallet right now"), err
		}
	}
	if err != nil {
		return commons.ErrorResponse[models.WalletResponse]("failed to create wallet", "Unable to create wallet right now"), err
	}

	return commons.SuccessResponse("Wallet created", models.WalletResponse{
		WalletNumber: created.WalletNumber,
		Balance:      created.Balance,
	}), nil
}

func (s *WalletService) GetBalance(ctx context.Context, userID string) (commons.Response[models.WalletResponse], error) {
	logger.Info("wallet service get balance", logger.Fields{
		"userId": userID,
	})

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.WalletResponse]("Wallet not found"), err
		}
		return commons.ErrorResponse[models.WalletResponse]("failed to get balance", "Unable to get balance right now"), err
	}

	return commons.SuccessResponse("Balance retrieved", models.WalletResponse{
		WalletNumber: wallet.WalletNumber,
		Balance:      wallet.Balance,
	}), nil
}

func (s *WalletService) SetTransactionPIN(ctx context.Context, userID string, req models.SetTransactionPINRequest) (commons.Response[struct{}], error) {
	logger.Info("wallet service set transaction pin", logger.Fields{
		"userId": userID,
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[struct{}]("validation failed", err.Error()), err
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[struct{}]("Wallet not found"), err
		}
		return commons.ErrorResponse[struct{}]("failed to set transaction pin", "Unable to set transaction pin right now"), err
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.TransactionPIN)), bcrypt.DefaultCost)
	if err != nil {
		return commons.ErrorResponse[struct{}]("failed to set transaction pin", "Unable to set transaction pin right now"), err
	}

	if err := s.walletRepo.SetTransactionPIN(ctx, wallet.ID, string(pinHash)); err != nil {
		return commons.ErrorResponse[struct{}]("failed to set transaction pin", "Unable to set transaction pin right now"), err
	}

	return commons.SuccessResponse("Transaction pin set", struct{}{}), nil
}

func (s *WalletService) InitiateDeposit(ctx context.Context, userID string, req models.InitiateDepositRequest) (commons.Response[models.InitiateDepositResponse], error) {
	logger.Info("wallet service initiate deposit", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.InitiateDepositResponse]("validation failed", err.Error()), err
	}
	if req.Amount.LessThan(s.minimumDeposit) {
		err := commons.ErrInvalidAmount
		return commons.ErrorResponse[models.InitiateDepositResponse](
			"Invalid amount",
			fmt.Sprintf("minimum deposit amount is %s", s.minimumDeposit.String()),
		), err
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.InitiateDepositResponse]("Wallet not found"), err
		}
		return commons.ErrorResponse[models.InitiateDepositResponse]("failed to initiate deposit", "Unable to initiate deposit right now"), err
	}

	var entry domain.LedgerEntry
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		entry, err = s.ledgerRepo.CreateEntry(ctx, domain.LedgerEntry{
			WalletID:  wallet.ID,
			Kind:      domain.EntryKindDeposit,
			Amount:    req.Amount,
			Status:    domain.EntryStatusPending,
			Reference: generateReference("DEP"),
			Metadata: domain.Metadata{
				domain.MetadataKeyChannel: "paystack",
			},
		})
		if err == nil {
			break
		}
		if !isUniqueViolation(err) {
			return commons.ErrorResponse[models.InitiateDepositResponse]("failed to initiate deposit", "Unable to initiate deposit right now"), err
		}
	}
	if err != nil {
		return commons.ErrorResponse[models.InitiateDepositResponse]("failed to initiate deposit", "Unable to initiate deposit right now"), err
	}

	// The pending entry is committed before the gateway call and stays
	// committed if the call fails: the caller may retry, and the sweeper
	// expires entries that never resolve.
	initResult, err := s.gateway.InitializeTransaction(ctx, strings.TrimSpace(req.Email), req.Amount, entry.Reference)
	if err != nil {
		logger.Error("wallet service deposit initialization failed upstream", err, logger.Fields{
			"reference": entry.Reference,
		})
		if !errors.Is(err, commons.ErrUpstreamFailure) {
			err = commons.ErrUpstreamFailure
		}
		return commons.ErrorResponse[models.InitiateDepositResponse]("Deposit initiation failed", "Payment gateway is unavailable, please retry"), err
	}

	return commons.SuccessResponse("Deposit initiated", models.InitiateDepositResponse{
		Reference:        entry.Reference,
		AuthorizationURL: initResult.AuthorizationURL,
		AccessCode:       initResult.AccessCode,
	}), nil
}

func (s *WalletService) Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("wallet service transfer", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}
	if req.Amount.LessThan(s.minimumTransfer) {
		err := commons.ErrInvalidAmount
		return commons.ErrorResponse[models.TransferResponse](
			"Invalid amount",
			fmt.Sprintf("minimum transfer amount is %s", s.minimumTransfer.String()),
		), err
	}

	sender, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Wallet not found"), err
		}
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	recipientWalletNumber := strings.TrimSpace(req.RecipientWalletNumber)
	if sender.WalletNumber == recipientWalletNumber {
		err := commons.ErrInvalidOperation
		return commons.ErrorResponse[models.TransferResponse]("Invalid operation", "cannot transfer to self"), err
	}

	recipient, err := s.walletRepo.GetByWalletNumber(ctx, recipientWalletNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Recipient wallet not found"), err
		}
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}
	if recipient.ID == sender.ID {
		err := commons.ErrInvalidOperation
		return commons.ErrorResponse[models.TransferResponse]("Invalid operation", "cannot transfer to self"), err
	}

	if sender.TransactionPINHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*sender.TransactionPINHash), []byte(strings.TrimSpace(req.TransactionPIN))) != nil {
			err := commons.ErrUnauthorized
			return commons.ErrorResponse[models.TransferResponse]("Unauthorized", "invalid transaction pin"), err
		}
	}

	// Unlocked pre-check for a friendly error; the posting transaction
	// re-checks under the row lock.
	if sender.Balance.LessThan(req.Amount) {
		err := commons.ErrInsufficientBalance
		return commons.ErrorResponse[models.TransferResponse]("Insufficient balance"), err
	}

	var reference string
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		reference = generateReference("TRF")
		err = s.ledgerRepo.PerformTransfer(ctx, repo_interfaces.TransferPosting{
			SenderWalletID:        sender.ID,
			SenderWalletNumber:    sender.WalletNumber,
			RecipientWalletID:     recipient.ID,
			RecipientWalletNumber: recipient.WalletNumber,
			Amount:                req.Amount,
			Reference:             reference,
			SenderMetadata: domain.Metadata{
				domain.MetadataKeyChannel: "transfer",
			},
			RecipientMetadata: domain.Metadata{
				domain.MetadataKeyChannel: "transfer",
			},
		})
		if err == nil || !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, commons.ErrInsufficientBalance) {
			return commons.ErrorResponse[models.TransferResponse]("Insufficient balance"), err
		}
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransferResponse]("Wallet not found"), err
		}
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	logger.Info("wallet service transfer success", logger.Fields{
		"reference": reference,
		"amount":    req.Amount,
	})

	return commons.SuccessResponse("Transfer successful", models.TransferResponse{
		Reference:             reference,
		RecipientWalletNumber: recipient.WalletNumber,
		Amount:                req.Amount,
		Status:                string(domain.EntryStatusSuccess),
	}), nil
}

func (s *WalletService) GetTransactions(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error) {
	logger.Info("wallet service get transactions", logger.Fields{
		"userId": userID,
	})

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[[]models.TransactionResponse]("Wallet not found"), err
		}
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to get transactions", "Unable to get transactions right now"), err
	}

	entries, err := s.ledgerRepo.ListEntriesByWallet(ctx, wallet.ID, s.transactionsPageSize)
	if err != nil {
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to get transactions", "Unable to get transactions right now"), err
	}

	responses := make([]models.TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToTransaction(entry))
	}

	return commons.SuccessResponse("Transactions retrieved", responses), nil
}

func (s *WalletService) GetDepositStatus(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error) {
	logger.Info("wallet service get deposit status", logger.Fields{
		"userId":    userID,
		"reference": reference,
	})

	entry, err := s.getOwnedDeposit(ctx, userID, reference)
	if err != nil {
		return commons.ErrorResponse[models.DepositStatusResponse]("Transaction not found"), err
	}

	return commons.SuccessResponse("Deposit status retrieved", models.DepositStatusResponse{
		Reference: entry.Reference,
		Status:    string(entry.Status),
		Amount:    entry.Amount,
		Metadata:  entry.Metadata,
	}), nil
}

func (s *WalletService) VerifyDeposit(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error) {
	logger.Info("wallet service verify deposit", logger.Fields{
		"userId":    userID,
		"reference": reference,
	})

	entry, err := s.getOwnedDeposit(ctx, userID, reference)
	if err != nil {
		return commons.ErrorResponse[models.DepositStatusResponse]("Transaction not found"), err
	}

	verifyResult, err := s.gateway.VerifyTransaction(ctx, entry.Reference)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			// The gateway never saw this reference; report local state.
			return commons.SuccessResponse("Deposit status retrieved", models.DepositStatusResponse{
				Reference: entry.Reference,
				Status:    string(entry.Status),
				Amount:    entry.Amount,
				Metadata:  entry.Metadata,
			}), nil
		}
		return commons.ErrorResponse[models.DepositStatusResponse]("failed to verify deposit", "Payment gateway is unavailable, please retry"), err
	}

	switch strings.ToLower(strings.TrimSpace(verifyResult.Status)) {
	case "success":
		result, applyErr := s.ledgerRepo.ApplyChargeSuccess(ctx, entry.Reference, verifyResult.AmountMinor, verifyResult.GatewayResponse, verifyResult.PaidAt)
		if applyErr != nil {
			return commons.ErrorResponse[models.DepositStatusResponse]("failed to verify deposit", "Unable to verify deposit right now"), applyErr
		}
		entry = result.Entry
	case "failed", "abandoned":
		result, applyErr := s.ledgerRepo.ApplyChargeFailure(ctx, entry.Reference, verifyResult.GatewayResponse)
		if applyErr != nil {
			return commons.ErrorResponse[models.DepositStatusResponse]("failed to verify deposit", "Unable to verify deposit right now"), applyErr
		}
		entry = result.Entry
	}

	return commons.SuccessResponse("Deposit status retrieved", models.DepositStatusResponse{
		Reference: entry.Reference,
		Status:    string(entry.Status),
		Amount:    entry.Amount,
		Metadata:  entry.Metadata,
	}), nil
}

func (s *WalletService) SweepStaleDeposits(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.pendingDepositExpiry)
	return s.ledgerRepo.ExpireStalePendingDeposits(ctx, cutoff)
}

// getOwnedDeposit loads the entry and enforces cross-tenant isolation: a
// reference owned by another wallet reads as not found so existence is not
// leaked.
func (s *WalletService) getOwnedDeposit(ctx context.Context, userID string, reference string) (domain.LedgerEntry, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	entry, err := s.ledgerRepo.GetEntryByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	if entry.WalletID != wallet.ID {
		logger.Info("wallet service cross-tenant reference access denied", logger.Fields{
			"userId":    userID,
			"reference": reference,
		})
		return domain.LedgerEntry{}, commons.ErrUnauthorized
	}
	if entry.Kind != domain.EntryKindDeposit {
		return domain.LedgerEntry{}, commons.ErrRecordNotFound
	}

	return entry, nil
}

func mapEntryToTransaction(entry domain.LedgerEntry) models.TransactionResponse {
	response := models.TransactionResponse{
		Reference: entry.Reference,
		Kind:      string(entry.Kind),
		Amount:    entry.Amount,
		Status:    string(entry.Status),
		Metadata:  entry.Metadata,
		CreatedAt: entry.CreatedAt,
	}
	if entry.CounterpartyWalletNumber != nil {
		response.CounterpartyWalletNumber = strings.TrimSpace(*entry.CounterpartyWalletNumber)
	}
	return response
}

var walletNumberCounter uint32

// generateWalletNumber produces a 10 digit wallet number. Uniqueness is
// enforced by the store; callers retry on collision.
func generateWalletNumber() string {
	now := time.Now().UTC()
	counter := atomic.AddUint32(&walletNumberCounter, 1) % 1000
	return fmt.Sprintf("2%06d%03d", now.UnixNano()%1000000, counter)
}

func generateReference(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
