package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateWalletRequestValidate(t *testing.T) {
	if err := (CreateWalletRequest{}).Validate(); err == nil {
		t.Fatal("expected error for missing userId")
	}
	if err := (CreateWalletRequest{UserID: "user-1"}).Validate(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSetTransactionPINRequestValidate(t *testing.T) {
	for _, pin := range []string{"", "123", "12345", "12a4"} {
		if err := (SetTransactionPINRequest{TransactionPIN: pin}).Validate(); err == nil {
			t.Fatalf("expected error for pin %q", pin)
		}
	}
	if err := (SetTransactionPINRequest{TransactionPIN: "1234"}).Validate(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestInitiateDepositRequestValidate(t *testing.T) {
	err := InitiateDepositRequest{}.Validate()
	if err == nil {
		t.Fatal("expected error for empty request")
	}
	if !strings.Contains(err.Error(), "email") || !strings.Contains(err.Error(), "amount") {
		t.Fatalf("expected both field errors, got %v", err)
	}

	valid := InitiateDepositRequest{Email: "user@example.com", Amount: decimal.NewFromInt(500)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestTransferRequestValidate(t *testing.T) {
	err := TransferRequest{RecipientWalletNumber: "12345", Amount: decimal.NewFromInt(-5)}.Validate()
	if err == nil {
		t.Fatal("expected error for short wallet number and negative amount")
	}

	valid := TransferRequest{RecipientWalletNumber: "2000000002", Amount: decimal.NewFromInt(100)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
