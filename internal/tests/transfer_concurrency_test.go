package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// memoryLedger posts transfers against an in-memory balance map under a single
// mutex, standing in for the row-locked postgres transaction.
type memoryLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	postings []repo_interfaces.TransferPosting
}

func (l *memoryLedger) post(ctx context.Context, posting repo_interfaces.TransferPosting) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	senderBalance := l.balances[posting.SenderWalletID]
	if senderBalance.LessThan(posting.Amount) {
		return commons.ErrInsufficientBalance
	}
	l.balances[posting.SenderWalletID] = senderBalance.Sub(posting.Amount)
	l.balances[posting.RecipientWalletID] = l.balances[posting.RecipientWalletID].Add(posting.Amount)
	l.postings = append(l.postings, posting)
	return nil
}

func TestWalletServiceMirrorTransfersBothComplete(t *testing.T) {
	walletA := senderWallet()
	walletB := recipientWallet()

	ledger := &memoryLedger{balances: map[string]decimal.Decimal{
		walletA.ID: walletA.Balance,
		walletB.ID: walletB.Balance,
	}}
	startingTotal := walletA.Balance.Add(walletB.Balance)

	walletsByUser := map[string]domain.Wallet{
		walletA.UserID: walletA,
		walletB.UserID: walletB,
	}
	walletsByNumber := map[string]domain.Wallet{
		walletA.WalletNumber: walletA,
		walletB.WalletNumber: walletB,
	}

	svc := newWalletService(walletRepoStub{
		getByUserIDFn: func(ctx context.Context, userID string) (domain.Wallet, error) {
			wallet, ok := walletsByUser[userID]
			if !ok {
				return domain.Wallet{}, commons.ErrRecordNotFound
			}
			return wallet, nil
		},
		getByWalletNumberFn: func(ctx context.Context, walletNumber string) (domain.Wallet, error) {
			wallet, ok := walletsByNumber[walletNumber]
			if !ok {
				return domain.Wallet{}, commons.ErrRecordNotFound
			}
			return wallet, nil
		},
	}, ledgerRepoStub{
		performTransferFn: ledger.post,
	}, gatewayStub{})

	var group errgroup.Group
	group.Go(func() error {
		_, err := svc.Transfer(context.Background(), walletA.UserID, models.TransferRequest{
			RecipientWalletNumber: walletB.WalletNumber,
			Amount:                decimal.NewFromInt(300),
		})
		return err
	})
	group.Go(func() error {
		_, err := svc.Transfer(context.Background(), walletB.UserID, models.TransferRequest{
			RecipientWalletNumber: walletA.WalletNumber,
			Amount:                decimal.NewFromInt(200),
		})
		return err
	})
	if err := group.Wait(); err != nil {
		t.Fatalf("mirror transfers: %v", err)
	}

	if len(ledger.postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(ledger.postings))
	}
	total := ledger.balances[walletA.ID].Add(ledger.balances[walletB.ID])
	if !total.Equal(startingTotal) {
		t.Fatalf("expected total balance %s preserved, got %s", startingTotal.String(), total.String())
	}
	if !ledger.balances[walletA.ID].Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected wallet A balance 900, got %s", ledger.balances[walletA.ID].String())
	}
	if !ledger.balances[walletB.ID].Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected wallet B balance 600, got %s", ledger.balances[walletB.ID].String())
	}
}
