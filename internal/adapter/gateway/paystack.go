package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/wallet-ledger/internal/commons"
	"github.com/api-sage/wallet-ledger/internal/logger"
	"github.com/api-sage/wallet-ledger/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

type PaystackClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaystackClient(baseURL, secretKey string, timeout time.Duration) *PaystackClient {
	return &PaystackClient{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secretKey: strings.TrimSpace(secretKey),
		client:    &http.Client{Timeout: timeout},
	}
}

type initializeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"`
		Amount          int64  `json:"amount"`
		GatewayResponse string `json:"gateway_response"`
		PaidAt          string `json:"paid_at"`
	} `json:"data"`
}

func (c *PaystackClient) InitializeTransaction(ctx context.Context, email string, amount decimal.Decimal, reference string) (service_interfaces.InitializeTransactionResult, error) {
	logger.Info("paystack client initialize transaction", logger.Fields{
		"reference": reference,
		"amount":    amount,
	})

	payload := initializeRequest{
		Email:     email,
		Amount:    amount.Mul(minorUnitsPerMajor).IntPart(),
		Reference: reference,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return service_interfaces.InitializeTransactionResult{}, fmt.Errorf("encode initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return service_interfaces.InitializeTransactionResult{}, fmt.Errorf("build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("paystack client initialize request failed", err, logger.Fields{
			"reference": reference,
		})
		return service_interfaces.InitializeTransactionResult{}, commons.ErrUpstreamFailure
	}
	defer resp.Body.Close()

	var decoded initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		logger.Error("paystack client initialize decode failed", err, logger.Fields{
			"reference": reference,
		})
		return service_interfaces.InitializeTransactionResult{}, commons.ErrUpstreamFailure
	}

	if resp.StatusCode != http.StatusOK || !decoded.Status {
		logger.Error("paystack client initialize rejected", nil, logger.Fields{
			"reference":  reference,
			"statusCode": resp.StatusCode,
			"message":    decoded.Message,
		})
		return service_interfaces.InitializeTransactionResult{}, commons.ErrUpstreamFailure
	}

	logger.Info("paystack client initialize transaction success", logger.Fields{
		"reference": reference,
	})

	return service_interfaces.InitializeTransactionResult{
		AuthorizationURL: decoded.Data.AuthorizationURL,
		AccessCode:       decoded.Data.AccessCode,
		Reference:        decoded.Data.Reference,
	}, nil
}

func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (service_interfaces.VerifyTransactionResult, error) {
	logger.Info("paystack client verify transaction", logger.Fields{
		"reference": reference,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return service_interfaces.VerifyTransactionResult{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("paystack client verify request failed", err, logger.Fields{
			"reference": reference,
		})
		return service_interfaces.VerifyTransactionResult{}, commons.ErrUpstreamFailure
	}
	defer resp.Body.Close()

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		logger.Error("paystack client verify decode failed", err, logger.Fields{
			"reference": reference,
		})
		return service_interfaces.VerifyTransactionResult{}, commons.ErrUpstreamFailure
	}

	if resp.StatusCode == http.StatusNotFound {
		return service_interfaces.VerifyTransactionResult{}, commons.ErrRecordNotFound
	}
	if resp.StatusCode != http.StatusOK || !decoded.Status {
		logger.Error("paystack client verify rejected", nil, logger.Fields{
			"reference":  reference,
			"statusCode": resp.StatusCode,
			"message":    decoded.Message,
		})
		return service_interfaces.VerifyTransactionResult{}, commons.ErrUpstreamFailure
	}

	return service_interfaces.VerifyTransactionResult{
		Status:          decoded.Data.Status,
		AmountMinor:     decoded.Data.Amount,
		GatewayResponse: decoded.Data.GatewayResponse,
		PaidAt:          decoded.Data.PaidAt,
	}, nil
}

// VerifySignature checks the x-paystack-signature header: an HMAC-SHA512 of
// the raw payload keyed with the secret key, hex encoded.
func (c *PaystackClient) VerifySignature(payload []byte, signatureHeader string) bool {
	if c.secretKey == "" || strings.TrimSpace(signatureHeader) == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(signatureHeader))) == 1
}
