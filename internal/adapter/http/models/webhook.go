package models

import (
	"encoding/json"
	"strings"

	"github.com/api-sage/wallet-ledger/internal/domain"
)

type GatewayWebhookData struct {
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
	PaidAt          string `json:"paid_at"`
}

type GatewayWebhookRequest struct {
	Event string             `json:"event"`
	Data  GatewayWebhookData `json:"data"`
}

// ParseGatewayWebhook classifies the raw gateway payload into the known
// charge events. Event names outside the known set come back as
// WebhookEventUnknown so callers can acknowledge and drop them.
func ParseGatewayWebhook(raw []byte) (domain.ChargeEvent, error) {
	var req GatewayWebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return domain.ChargeEvent{}, err
	}
	return req.ToChargeEvent(), nil
}

func (r GatewayWebhookRequest) ToChargeEvent() domain.ChargeEvent {
	event := domain.ChargeEvent{
		Reference:       strings.TrimSpace(r.Data.Reference),
		AmountMinor:     r.Data.Amount,
		GatewayResponse: r.Data.GatewayResponse,
		PaidAt:          r.Data.PaidAt,
	}

	switch strings.ToLower(strings.TrimSpace(r.Event)) {
	case "charge.success":
		event.Kind = domain.WebhookEventChargeSuccess
	case "charge.failed":
		event.Kind = domain.WebhookEventChargeFailed
		event.FailureReason = r.Data.GatewayResponse
	default:
		event.Kind = domain.WebhookEventUnknown
	}

	return event
}
