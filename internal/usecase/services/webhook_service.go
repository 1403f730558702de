package services

import (
	"context"
	"errors"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/domain"
	"github.com/api-sage/wallet-ledger/internal/logger"
	"github.com/api-sage/wallet-ledger/internal/usecase/service_interfaces"
)

// WebhookService applies gateway charge notifications to the ledger.
// Signature verification is the caller's responsibility: this service trusts
// every event it is handed.
type WebhookService struct {
	ledgerRepo repo_interfaces.LedgerRepository
}

var _ service_interfaces.WebhookService = (*WebhookService)(nil)

func NewWebhookService(ledgerRepo repo_interfaces.LedgerRepository) *WebhookService {
	return &WebhookService{ledgerRepo: ledgerRepo}
}

func (s *WebhookService) Reconcile(ctx context.Context, req models.GatewayWebhookRequest) (commons.Response[struct{}], error) {
	event := req.ToChargeEvent()

	logger.Info("webhook service reconcile", logger.Fields{
		"event":     req.Event,
		"kind":      event.Kind,
		"reference": event.Reference,
	})

	switch event.Kind {
	case domain.WebhookEventChargeSuccess:
		return s.applySuccess(ctx, event)
	case domain.WebhookEventChargeFailed:
		return s.applyFailure(ctx, event)
	default:
		// Unknown events are acknowledged so the gateway stops retrying.
		logger.Info("webhook service ignoring unknown event", logger.Fields{
			"event": req.Event,
		})
		return commons.SuccessResponse("Event ignored", struct{}{}), nil
	}
}

func (s *WebhookService) applySuccess(ctx context.Context, event domain.ChargeEvent) (commons.Response[struct{}], error) {
	result, err := s.ledgerRepo.ApplyChargeSuccess(ctx, event.Reference, event.AmountMinor, event.GatewayResponse, event.PaidAt)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			// Failing here is safe: the gateway retries delivery and the
			// entry may commit before the next attempt.
			return commons.ErrorResponse[struct{}]("Transaction not found"), err
		}
		logger.Error("webhook service apply charge success failed", err, logger.Fields{
			"reference": event.Reference,
		})
		return commons.ErrorResponse[struct{}]("failed to process webhook", "Unable to process webhook right now"), err
	}

	if result.AlreadyProcessed {
		return commons.SuccessResponse("Charge already processed", struct{}{}), nil
	}

	logger.Info("webhook service charge success applied", logger.Fields{
		"reference":   event.Reference,
		"amountMinor": event.AmountMinor,
	})
	return commons.SuccessResponse("Charge processed", struct{}{}), nil
}

func (s *WebhookService) applyFailure(ctx context.Context, event domain.ChargeEvent) (commons.Response[struct{}], error) {
	result, err := s.ledgerRepo.ApplyChargeFailure(ctx, event.Reference, event.FailureReason)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[struct{}]("Transaction not found"), err
		}
		logger.Error("webhook service apply charge failure failed", err, logger.Fields{
			"reference": event.Reference,
		})
		return commons.ErrorResponse[struct{}]("failed to process webhook", "Unable to process webhook right now"), err
	}

	if result.AlreadyProcessed {
		return commons.SuccessResponse("Charge already processed", struct{}{}), nil
	}

	logger.Info("webhook service charge failure applied", logger.Fields{
		"reference": event.Reference,
		"reason":    event.FailureReason,
	})
	return commons.SuccessResponse("Charge failure recorded", struct{}{}), nil
}
