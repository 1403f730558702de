package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/wallet-ledger/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/logger"
)

type WalletService interface {
	CreateWallet(ctx context.Context, req models.CreateWalletRequest) (commons.Response[models.WalletResponse], error)
	GetBalance(ctx context.Context, userID string) (commons.Response[models.WalletResponse], error)
	SetTransactionPIN(ctx context.Context, userID string, req models.SetTransactionPINRequest) (commons.Response[struct{}], error)
	InitiateDeposit(ctx context.Context, userID string, req models.InitiateDepositRequest) (commons.Response[models.InitiateDepositResponse], error)
	Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	GetTransactions(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error)
	GetDepositStatus(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error)
	VerifyDeposit(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error)
}

type WalletController struct {
	service WalletService
}

func NewWalletController(service WalletService) *WalletController {
	return &WalletController{service: service}
}

func (c *WalletController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(handler http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(handler)
		}
		return handler
	}

	mux.Handle("/wallets", wrap(c.createWallet))
	mux.Handle("/wallet/balance", wrap(c.getBalance))
	mux.Handle("/wallet/pin", wrap(c.setTransactionPIN))
	mux.Handle("/deposits", wrap(c.initiateDeposit))
	mux.Handle("/deposits/status", wrap(c.getDepositStatus))
	mux.Handle("/deposits/verify", wrap(c.verifyDeposit))
	mux.Handle("/transfers", wrap(c.transfer))
	mux.Handle("/transactions", wrap(c.getTransactions))
}

func (c *WalletController) createWallet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.WalletResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.WalletResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateWallet(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *WalletController) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.WalletResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID, ok := callerID(w, r, start)
	if !ok {
		return
	}

	response, err := c.service.GetBalance(r.Context(), userID)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *WalletController) setTransactionPIN(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[struct{}]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID, ok := callerID(w, r, start)
	if !ok {
		return
	}

	var req models.SetTransactionPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[struct{}]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.SetTransactionPIN(r.Context(), userID, req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *WalletController) initiateDeposit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.InitiateDepositResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID, ok := callerID(w, r, start)
	if !ok {
		return
	}

	var req models.InitiateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.InitiateDepositResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.InitiateDeposit(r.Context(), userID, req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *WalletController) getDepositStatus(w http.ResponseWriter, r *http.Request) {
	c.depositByReference(w, r, http.MethodGet, c.service.GetDepositStatus)
}

func (c *WalletController) verifyDeposit(w http.ResponseWriter, r *http.Request) {
	c.depositByReference(w, r, http.MethodPost, c.service.VerifyDeposit)
}

func (c *WalletController) depositByReference(
	w http.ResponseWriter,
	r *http.Request,
	method string,
	handler func(ctx context.Context, userID string, reference string) (commons.Response[models.DepositStatusResponse], error),
) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != method {
		response := commons.ErrorResponse[models.DepositStatusResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID, ok := callerID(w, r, start)
	if !ok {
		return
	}

	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	if reference == "" {
		response := commons.ErrorResponse[models.DepositStatusResponse]("validation failed", "reference is required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := handler(r.Context(), userID, reference)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *WalletController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransferResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID, ok := callerID(w, r, start)
	if !ok {
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.Transfer(r.Context(), userID, req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *WalletController) getTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[[]models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	userID, ok := callerID(w, r, start)
	if !ok {
		return
	}

	response, err := c.service.GetTransactions(r.Context(), userID)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err, response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

// callerID pulls the authenticated user id injected by the upstream auth
// layer. Requests that reach these handlers without it are rejected.
func callerID(w http.ResponseWriter, r *http.Request, start time.Time) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		response := commons.ErrorResponse[struct{}]("unauthorized", "X-User-Id header is required")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForError(err error, message string) int {
	switch {
	case errors.Is(err, commons.ErrRecordNotFound), errors.Is(err, commons.ErrUnauthorized):
		// Cross-tenant access reads as not found so reference existence
		// is not leaked.
		return http.StatusNotFound
	case errors.Is(err, commons.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commons.ErrInvalidAmount), errors.Is(err, commons.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, commons.ErrUpstreamFailure):
		return http.StatusBadGateway
	case message == "validation failed" || message == "invalid request body":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
