package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateWalletRequest struct {
	UserID string `json:"userId"`
}

func (r CreateWalletRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("userId is required")
	}
	return nil
}

type WalletResponse struct {
	WalletNumber string          `json:"walletNumber"`
	Balance      decimal.Decimal `json:"balance"`
}

type SetTransactionPINRequest struct {
	TransactionPIN string `json:"transactionPIN"`
}

func (r SetTransactionPINRequest) Validate() error {
	pin := strings.TrimSpace(r.TransactionPIN)
	if len(pin) != 4 || !digitsOnly(pin) {
		return errors.New("transactionPIN must be exactly 4 digits")
	}
	return nil
}

type InitiateDepositRequest struct {
	Email  string          `json:"email"`
	Amount decimal.Decimal `json:"amount"`
}

func (r InitiateDepositRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type InitiateDepositResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode,omitempty"`
}

type TransferRequest struct {
	RecipientWalletNumber string          `json:"recipientWalletNumber"`
	Amount                decimal.Decimal `json:"amount"`
	TransactionPIN        string          `json:"transactionPIN"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if !isTenDigits(r.RecipientWalletNumber) {
		errs = append(errs, "recipientWalletNumber must be exactly 10 digits")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransferResponse struct {
	Reference             string          `json:"reference"`
	RecipientWalletNumber string          `json:"recipientWalletNumber"`
	Amount                decimal.Decimal `json:"amount"`
	Status                string          `json:"status"`
}

type TransactionResponse struct {
	Reference                string          `json:"reference"`
	Kind                     string          `json:"kind"`
	Amount                   decimal.Decimal `json:"amount"`
	Status                   string          `json:"status"`
	CounterpartyWalletNumber string          `json:"counterpartyWalletNumber,omitempty"`
	Metadata                 domain.Metadata `json:"metadata,omitempty"`
	CreatedAt                time.Time       `json:"createdAt"`
}

type DepositStatusResponse struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
}

func isTenDigits(value string) bool {
	trimmed := strings.TrimSpace(value)
	return len(trimmed) == 10 && digitsOnly(trimmed)
}

func digitsOnly(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
