package dues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
	"github.com/shopspring/decimal"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// EventTypeCheckoutCompleted is the only gateway event type the engine
// acts on; everything else is stored and acknowledged.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// StripeClient creates hosted checkout sessions. Amounts cross the API
// in minor units; metadata carries the base amount and plan linkage back
// through the webhook.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string
	SuccessURL string
	CancelURL  string

	HTTPClient *http.Client
}

// CheckoutSession is the subset of Stripe's session object we read back.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams describes one checkout to create. BaseAmount is the
// amount the organization should net; the charged total includes the
// processing-fee markup.
type CheckoutParams struct {
	MemberEmail string
	Description string
	BaseAmount  decimal.Decimal
	PaymentType string
	PlanID      *uint
}

func NewStripeClientFromEnv() *StripeClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		SuccessURL: base + "/payments/success",
		CancelURL:  base + "/payments/cancel",
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a hosted checkout for the grossed-up
// total and stamps the base amount and plan reference into metadata so
// the webhook can reconstruct the intended payment.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	if !params.BaseAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	total := TotalWithFees(params.BaseAmount)
	totalMinor := total.Mul(decimal.NewFromInt(100)).IntPart()

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", params.MemberEmail)
	form.Set("success_url", c.SuccessURL)
	form.Set("cancel_url", c.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(totalMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.Description)
	form.Set("metadata[base_amount]", params.BaseAmount.StringFixed(2))
	form.Set("metadata[payment_type]", params.PaymentType)
	if params.PlanID != nil {
		form.Set("metadata[plan_id]", strconv.FormatUint(uint64(*params.PlanID), 10))
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.SecretKey, "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe checkout session failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out CheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("stripe checkout session response missing id")
	}
	return &out, nil
}

// ParseStripeEvent normalizes a raw Stripe webhook body into an
// InboundEvent. Only checkout.session.completed payloads carry payment
// detail; other event types still parse so the guard can store them.
func ParseStripeEvent(payload []byte) (*InboundEvent, error) {
	type rawPayload struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Created int64  `json:"created"`
		Data    struct {
			Object struct {
				AmountTotal     int64  `json:"amount_total"`
				CustomerEmail   string `json:"customer_email"`
				CustomerDetails struct {
					Email string `json:"email"`
				} `json:"customer_details"`
				Metadata map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("stripe event payload missing id")
	}

	event := &InboundEvent{
		ExternalEventID:  strings.TrimSpace(raw.ID),
		EventType:        strings.TrimSpace(raw.Type),
		GrossAmountMinor: raw.Data.Object.AmountTotal,
		RawPayload:       string(payload),
	}
	if raw.Created > 0 {
		event.OccurredAt = time.Unix(raw.Created, 0)
	}

	email := strings.TrimSpace(raw.Data.Object.CustomerDetails.Email)
	if email == "" {
		email = strings.TrimSpace(raw.Data.Object.CustomerEmail)
	}
	event.PayerEmail = email

	meta := raw.Data.Object.Metadata
	if rawBase, ok := meta["base_amount"]; ok {
		base, err := decimal.NewFromString(strings.TrimSpace(rawBase))
		if err == nil && base.IsPositive() {
			event.BaseAmount = &base
		}
	}
	if paymentType, ok := meta["payment_type"]; ok {
		event.PaymentType = strings.TrimSpace(paymentType)
	}
	if rawPlanID, ok := meta["plan_id"]; ok {
		id, err := strconv.ParseUint(strings.TrimSpace(rawPlanID), 10, 64)
		if err == nil && id > 0 {
			planID := uint(id)
			event.PlanID = &planID
		}
	}
	return event, nil
}
