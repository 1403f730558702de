package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/logger"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookService interface {
	Reconcile(ctx context.Context, req models.GatewayWebhookRequest) (commons.Response[struct{}], error)
}

type SignatureVerifier interface {
	VerifySignature(payload []byte, signatureHeader string) bool
}

type WebhookController struct {
	service  WebhookService
	verifier SignatureVerifier
}

func NewWebhookController(service WebhookService, verifier SignatureVerifier) *WebhookController {
	return &WebhookController{service: service, verifier: verifier}
}

func (c *WebhookController) RegisterRoutes(mux *http.ServeMux) {
	// No channel auth here: the gateway authenticates with its payload
	// signature instead.
	mux.Handle("/webhook/paystack", http.HandlerFunc(c.handleWebhook))
}

func (c *WebhookController) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[struct{}]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[struct{}]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	// Reconcile trusts its input, so the signature check has to happen
	// before anything else touches the event.
	if !c.verifier.VerifySignature(payload, r.Header.Get("x-paystack-signature")) {
		logger.Info("webhook controller rejected unsigned payload", logger.Fields{
			"path": r.URL.Path,
		})
		response := commons.ErrorResponse[struct{}]("unauthorized", "invalid webhook signature")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return
	}

	var req models.GatewayWebhookRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[struct{}]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.Reconcile(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		// Non-2xx tells the gateway to retry delivery; reconciliation is
		// idempotent so the retry is safe.
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
