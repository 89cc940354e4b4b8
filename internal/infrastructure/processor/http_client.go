package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainerrors "fixer.backend/internal/domain/errors"
)

const (
	// IdempotencyHeader carries the per-attempt key to the processor.
	IdempotencyHeader = "Idempotency-Key"

	defaultAuthorizeTimeout = 15 * time.Second
	defaultStatusTimeout    = 5 * time.Second
)

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a processor client against the given API base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultAuthorizeTimeout,
		},
	}
}

type apiError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

type chargePayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type refundPayload struct {
	ID     string `json:"id"`
	Charge string `json:"charge"`
	Status string `json:"status"`
}

type customerPayload struct {
	ID string `json:"id"`
}

type paymentMethodPayload struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}

type accountPayload struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
	Requirements   struct {
		CurrentlyDue   []string `json:"currently_due"`
		DisabledReason string   `json:"disabled_reason"`
	} `json:"requirements"`
}

type accountLinkPayload struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// Authorize creates a charge. Exactly one processor call per invocation;
// the idempotency key makes a caller-side retry safe.
func (c *HTTPClient) Authorize(ctx context.Context, params AuthorizeParams) (*Charge, error) {
	form := url.Values{}
	form.Set("customer", params.CustomerRef)
	form.Set("payment_method", params.PaymentMethodID)
	form.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	form.Set("currency", "usd")
	form.Set("description", params.Description)
	form.Set("confirm", "true")

	var out chargePayload
	if err := c.post(ctx, "/v1/charges", form, params.IdempotencyKey, defaultAuthorizeTimeout, &out); err != nil {
		return nil, err
	}
	return &Charge{ID: out.ID, Status: out.Status, Amount: out.Amount}, nil
}

// Refund reverses a charge in full.
func (c *HTTPClient) Refund(ctx context.Context, chargeID, idempotencyKey string) (*Refund, error) {
	form := url.Values{}
	form.Set("charge", chargeID)

	var out refundPayload
	if err := c.post(ctx, "/v1/refunds", form, idempotencyKey, defaultAuthorizeTimeout, &out); err != nil {
		return nil, err
	}
	return &Refund{ID: out.ID, ChargeID: out.Charge, Status: out.Status}, nil
}

// CreateCustomer registers a payer and returns the customer reference.
func (c *HTTPClient) CreateCustomer(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("email", email)

	var out customerPayload
	if err := c.post(ctx, "/v1/customers", form, "", defaultAuthorizeTimeout, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// GetPaymentMethod fetches a stored payment method and its owner.
func (c *HTTPClient) GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error) {
	var out paymentMethodPayload
	if err := c.get(ctx, "/v1/payment_methods/"+url.PathEscape(id), defaultStatusTimeout, &out); err != nil {
		return nil, err
	}
	return &PaymentMethod{ID: out.ID, CustomerRef: out.Customer}, nil
}

// CreateAccount creates an express payout account for a worker.
func (c *HTTPClient) CreateAccount(ctx context.Context, email string) (*Account, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("email", email)

	var out accountPayload
	if err := c.post(ctx, "/v1/accounts", form, "", defaultAuthorizeTimeout, &out); err != nil {
		return nil, err
	}
	return toAccount(&out), nil
}

// CreateAccountLink issues a fresh single-use onboarding link. Safe to
// call repeatedly; each call invalidates nothing and returns a new URL.
func (c *HTTPClient) CreateAccountLink(ctx context.Context, accountID string) (*AccountLink, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("type", "account_onboarding")

	var out accountLinkPayload
	if err := c.post(ctx, "/v1/account_links", form, "", defaultAuthorizeTimeout, &out); err != nil {
		return nil, err
	}
	return &AccountLink{URL: out.URL, ExpiresAt: time.Unix(out.ExpiresAt, 0)}, nil
}

// GetAccount fetches current account capability flags and requirements.
func (c *HTTPClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var out accountPayload
	if err := c.get(ctx, "/v1/accounts/"+url.PathEscape(accountID), defaultStatusTimeout, &out); err != nil {
		return nil, err
	}
	return toAccount(&out), nil
}

func toAccount(p *accountPayload) *Account {
	return &Account{
		ID:             p.ID,
		ChargesEnabled: p.ChargesEnabled,
		PayoutsEnabled: p.PayoutsEnabled,
		Requirements:   p.Requirements.CurrentlyDue,
		DisabledReason: p.Requirements.DisabledReason,
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, form url.Values, idempotencyKey string, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}
	return c.do(req, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, timeout time.Duration, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport errors are transient: safe to retry
		// with the same idempotency key.
		return fmt.Errorf("%w: %v", domainerrors.ErrProcessorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domainerrors.ErrProcessorUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.Unmarshal(body, out)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", domainerrors.ErrProcessorUnavailable, resp.StatusCode)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("%w: status %d", domainerrors.ErrProcessorUnavailable, resp.StatusCode)
	}
	return mapAPIError(&apiErr)
}

// mapAPIError translates processor error codes into the domain taxonomy.
// Declines are final; anything unrecognized is treated as transient.
func mapAPIError(e *apiError) error {
	code := e.Error.Code
	if e.Error.DeclineCode != "" {
		code = e.Error.DeclineCode
	}
	msg := e.Error.Message

	switch code {
	case "insufficient_funds":
		return fmt.Errorf("%w: %s", domainerrors.ErrInsufficientFunds, msg)
	case "card_declined", "generic_decline", "expired_card", "incorrect_cvc", "do_not_honor":
		return fmt.Errorf("%w: %s", domainerrors.ErrCardDeclined, msg)
	case "resource_missing", "payment_method_unactivated", "invalid_payment_method":
		return fmt.Errorf("%w: %s", domainerrors.ErrInvalidPaymentMethod, msg)
	default:
		return fmt.Errorf("%w: %s (%s)", domainerrors.ErrProcessorUnavailable, msg, code)
	}
}
