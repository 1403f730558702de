package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID                 string
	UserID             string
	WalletNumber       string
	Balance            decimal.Decimal
	TransactionPINHash *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
