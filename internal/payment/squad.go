package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ErrGateway is wrapped by every failed gateway call.
var ErrGateway = errors.New("payment gateway error")

// Verification statuses reported by the gateway.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Metadata travels with the transaction and comes back on verification.
type Metadata struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Items        interface{} `json:"items,omitempty"`
}

// InitializeRequest describes a payment to start.
type InitializeRequest struct {
	Amount      decimal.Decimal // major units
	Email       string
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    Metadata
}

// InitializeResult is what the customer needs to complete payment.
type InitializeResult struct {
	CheckoutURL string
	Reference   string
}

// Verification is the gateway's view of a transaction.
type Verification struct {
	Status    string
	Reference string
	Amount    int64 // minor units
	Currency  string
	OrderID   string
	PaidAt    string
}

// Gateway is the payment provider used by checkout and confirmation.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// Config holds Squad connection details.
type Config struct {
	BaseURL   string
	SecretKey string
	Currency  string
	Timeout   time.Duration
}

// SquadClient talks to the Squad transaction API.
type SquadClient struct {
	cfg Config
}

// NewSquadClient creates a new SquadClient.
func NewSquadClient(cfg Config) *SquadClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	return &SquadClient{cfg: cfg}
}

// MinorUnits converts a major-unit amount to the integer the gateway expects.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type initializePayload struct {
	Amount       int64  `json:"amount"`
	Email        string `json:"email"`
	Currency     string `json:"currency"`
	Reference    string `json:"reference"`
	CallbackURL  string `json:"callback_url"`
	Metadata     string `json:"metadata"`
	InitiateType string `json:"initiate_type"`
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize starts a transaction and returns the hosted checkout URL.
func (c *SquadClient) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	meta, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment metadata: %w", err)
	}
	currency := req.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}
	body, err := json.Marshal(initializePayload{
		Amount:       MinorUnits(req.Amount),
		Email:        req.Email,
		Currency:     currency,
		Reference:    req.Reference,
		CallbackURL:  req.CallbackURL,
		Metadata:     string(meta),
		InitiateType: "inline",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	env, err := c.do(ctx, fiber.MethodPost, c.cfg.BaseURL+"/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		CheckoutURL    string `json:"checkout_url"`
		TransactionRef string `json:"transaction_ref"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: invalid initialize response", ErrGateway)
	}
	ref := data.TransactionRef
	if ref == "" {
		ref = req.Reference
	}
	return &InitializeResult{CheckoutURL: data.CheckoutURL, Reference: ref}, nil
}

// Verify fetches the current state of a transaction.
func (c *SquadClient) Verify(ctx context.Context, reference string) (*Verification, error) {
	env, err := c.do(ctx, fiber.MethodGet, c.cfg.BaseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	// Older API versions use the short field names.
	var data struct {
		TransactionStatus string          `json:"transaction_status"`
		Status            string          `json:"status"`
		TransactionRef    string          `json:"transaction_ref"`
		Reference         string          `json:"reference"`
		TransactionAmount int64           `json:"transaction_amount"`
		Amount            int64           `json:"amount"`
		Currency          string          `json:"currency"`
		PaidAt            string          `json:"paid_at"`
		Meta              json.RawMessage `json:"meta"`
		Metadata          json.RawMessage `json:"metadata"`
	}
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil {
		return nil, fmt.Errorf("%w: invalid verify response", ErrGateway)
	}

	v := &Verification{
		Status:    normalizeStatus(firstNonEmpty(data.TransactionStatus, data.Status)),
		Reference: firstNonEmpty(data.TransactionRef, data.Reference, reference),
		Amount:    data.TransactionAmount,
		Currency:  data.Currency,
		PaidAt:    data.PaidAt,
	}
	if v.Amount == 0 {
		v.Amount = data.Amount
	}
	md := data.Metadata
	if len(md) == 0 {
		md = data.Meta
	}
	if m, ok := decodeMetadata(md); ok {
		v.OrderID = m.OrderID
	}
	return v, nil
}

func (c *SquadClient) do(ctx context.Context, method, uri string, body []byte) (*envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	a.Set(fiber.HeaderAuthorization, "Bearer "+c.cfg.SecretKey)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if body != nil {
		a.ContentType(fiber.MIMEApplicationJSON)
		a.Body(body)
	}
	a.Timeout(timeout)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	code, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrGateway, errors.Join(errs...))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("%w: unreadable response (HTTP %d)", ErrGateway, code)
	}
	if code < 200 || code >= 300 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", code)
		}
		return nil, fmt.Errorf("%w: %s", ErrGateway, msg)
	}
	return &env, nil
}

// decodeMetadata accepts metadata as an object or as a JSON-encoded string.
func decodeMetadata(raw json.RawMessage) (Metadata, bool) {
	var m Metadata
	if len(raw) == 0 || string(raw) == "null" {
		return m, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return m, false
		}
		raw = json.RawMessage(s)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, false
	}
	return m, true
}

func normalizeStatus(s string) string {
	switch strings.ToLower(s) {
	case "success", "successful":
		return StatusSuccess
	case "pending":
		return StatusPending
	default:
		return StatusFailed
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
