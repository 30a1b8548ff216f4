package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPaystackBaseURL is the production Paystack API.
const DefaultPaystackBaseURL = "https://api.paystack.co"

// PaystackConfig holds the client settings.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Paystack is a Gateway backed by the Paystack transaction API.
type Paystack struct {
	secretKey string
	baseURL   string
	client    *http.Client
	logger    zerolog.Logger
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitializeRequest struct {
	Email     string         `json:"email"`
	Amount    int64          `json:"amount"`
	Reference string         `json:"reference"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	PaidAt    string `json:"paid_at"`
}

// NewPaystack creates a Paystack client.
func NewPaystack(cfg PaystackConfig, logger zerolog.Logger) (*Paystack, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("paystack secret key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Paystack{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "paystack").Logger(),
	}, nil
}

// Initialize opens a transaction and returns the hosted payment page.
func (p *Paystack) Initialize(ctx context.Context, req Request) (*Authorization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := paystackInitializeRequest{
		Email:     req.Email,
		Amount:    req.AmountMinor,
		Reference: req.Reference,
		Metadata:  req.Metadata,
	}

	var data paystackInitializeData
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		p.logger.Error().Err(err).Str("reference", req.Reference).Msg("failed to initialize transaction")
		return nil, fmt.Errorf("failed to initialize transaction %s: %w", req.Reference, err)
	}

	ref := data.Reference
	if ref == "" {
		ref = req.Reference
	}

	p.logger.Info().
		Str("reference", ref).
		Int64("amount", req.AmountMinor).
		Msg("transaction initialized")

	return &Authorization{
		Reference:        ref,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

// Verify fetches the status of a transaction.
func (p *Paystack) Verify(ctx context.Context, reference string) (*Verification, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidRequest)
	}

	var data paystackVerifyData
	if err := p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		p.logger.Error().Err(err).Str("reference", reference).Msg("failed to verify transaction")
		return nil, fmt.Errorf("failed to verify transaction %s: %w", reference, err)
	}

	v := &Verification{
		Reference:   data.Reference,
		Status:      data.Status,
		AmountMinor: data.Amount,
	}
	if v.Reference == "" {
		v.Reference = reference
	}
	if data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			v.PaidAt = t
		}
	}

	p.logger.Info().
		Str("reference", v.Reference).
		Str("status", v.Status).
		Msg("transaction verified")

	return v, nil
}

func (p *Paystack) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.secretKey)
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("paystack API error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Status {
		return fmt.Errorf("paystack rejected request: %s", env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}

var _ Gateway = (*Paystack)(nil)
