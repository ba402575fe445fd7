// Package payment wraps the external payment processor. The marketplace only
// needs two operations, capture and refund, so the adapter talks to the
// Stripe REST API directly rather than pulling in an SDK.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/peerrent/rental-system/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.stripe.com/v1"
	clientTimeout  = 30 * time.Second
)

// StripeProcessor implements ports.PaymentProcessor against the Stripe
// PaymentIntents API. Charges are created with confirm=true so a successful
// response means captured funds.
type StripeProcessor struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	return &StripeProcessor{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: clientTimeout},
	}
}

// NewStripeProcessorWithBaseURL is used by tests to point the adapter at a
// stub server.
func NewStripeProcessorWithBaseURL(secretKey, baseURL string) *StripeProcessor {
	p := NewStripeProcessor(secretKey)
	p.baseURL = baseURL
	return p
}

type paymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (p *StripeProcessor) Charge(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(input.AmountCents, 10))
	form.Set("currency", input.Currency)
	form.Set("payment_method", input.PaymentMethodID)
	form.Set("description", input.Description)
	form.Set("confirm", "true")
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")

	var intent paymentIntent
	if err := p.post(ctx, "/payment_intents", input.IdempotencyKey, form, &intent); err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return nil, fmt.Errorf("payment intent %s not captured: status %s", intent.ID, intent.Status)
	}

	return &ports.Charge{ProviderRef: intent.ID, Status: intent.Status}, nil
}

func (p *StripeProcessor) Refund(ctx context.Context, providerRef string, amountCents int64) error {
	form := url.Values{}
	form.Set("payment_intent", providerRef)
	form.Set("amount", strconv.FormatInt(amountCents, 10))

	var out struct {
		ID string `json:"id"`
	}
	return p.post(ctx, "/refunds", "", form, &out)
}

func (p *StripeProcessor) post(ctx context.Context, path, idempotencyKey string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("stripe call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var se stripeError
		if json.NewDecoder(resp.Body).Decode(&se) == nil && se.Error.Message != "" {
			return fmt.Errorf("stripe %s: %s", path, se.Error.Message)
		}
		return fmt.Errorf("stripe %s: %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}
