package service_interfaces

import (
	"context"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/commons"
)

type WebhookService interface {
	Reconcile(ctx context.Context, req models.GatewayWebhookRequest) (commons.Response[struct{}], error)
}
