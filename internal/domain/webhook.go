package domain

type WebhookEventKind string

const (
	WebhookEventChargeSuccess WebhookEventKind = "charge.success"
	WebhookEventChargeFailed  WebhookEventKind = "charge.failed"
	// WebhookEventUnknown covers event names the gateway may add later.
	// Unknown events are acknowledged and ignored.
	WebhookEventUnknown WebhookEventKind = "unknown"
)

// ChargeEvent is the reconciler's view of a gateway notification after the
// raw payload has been classified into one of the known kinds.
type ChargeEvent struct {
	Kind            WebhookEventKind
	Reference       string
	AmountMinor     int64
	GatewayResponse string
	FailureReason   string
	PaidAt          string
}
