package models

import (
	"testing"

	"github.com/api-sage/wallet-ledger/internal/domain"
)

func TestParseGatewayWebhook_ChargeSuccess(t *testing.T) {
	raw := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "DEP_abc",
			"amount": 50000,
			"status": "success",
			"gateway_response": "Approved",
			"paid_at": "2024-05-01T10:00:00Z"
		}
	}`)

	event, err := ParseGatewayWebhook(raw)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if event.Kind != domain.WebhookEventChargeSuccess {
		t.Fatalf("expected charge success kind, got %s", event.Kind)
	}
	if event.Reference != "DEP_abc" || event.AmountMinor != 50000 {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestParseGatewayWebhook_ChargeFailedCarriesReason(t *testing.T) {
	raw := []byte(`{
		"event": "charge.failed",
		"data": {
			"reference": "DEP_abc",
			"amount": 50000,
			"status": "failed",
			"gateway_response": "Declined by issuer"
		}
	}`)

	event, err := ParseGatewayWebhook(raw)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if event.Kind != domain.WebhookEventChargeFailed {
		t.Fatalf("expected charge failed kind, got %s", event.Kind)
	}
	if event.FailureReason != "Declined by issuer" {
		t.Fatalf("expected gateway response as failure reason, got %q", event.FailureReason)
	}
}

func TestParseGatewayWebhook_UnknownEvent(t *testing.T) {
	event, err := ParseGatewayWebhook([]byte(`{"event": "transfer.success", "data": {"reference": "TRF_x"}}`))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if event.Kind != domain.WebhookEventUnknown {
		t.Fatalf("expected unknown kind, got %s", event.Kind)
	}
}

func TestParseGatewayWebhook_MalformedPayload(t *testing.T) {
	if _, err := ParseGatewayWebhook([]byte(`{"event":`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestToChargeEvent_NormalizesEventName(t *testing.T) {
	req := GatewayWebhookRequest{
		Event: "  Charge.Success ",
		Data:  GatewayWebhookData{Reference: " DEP_abc "},
	}

	event := req.ToChargeEvent()
	if event.Kind != domain.WebhookEventChargeSuccess {
		t.Fatalf("expected charge success kind, got %s", event.Kind)
	}
	if event.Reference != "DEP_abc" {
		t.Fatalf("expected trimmed reference, got %q", event.Reference)
	}
}
