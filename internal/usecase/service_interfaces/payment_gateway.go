package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

type InitializeTransactionResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyTransactionResult struct {
	Status          string
	AmountMinor     int64
	GatewayResponse string
	PaidAt          string
}

// PaymentGateway is the outbound boundary to the payment provider. Amounts
// cross it in the wallet's major unit; the adapter owns minor-unit conversion
// on the wire.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, email string, amount decimal.Decimal, reference string) (InitializeTransactionResult, error)
	VerifyTransaction(ctx context.Context, reference string) (VerifyTransactionResult, error)
	VerifySignature(payload []byte, signatureHeader string) bool
}
