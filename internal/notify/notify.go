// Package notify talks to the external mailer that emails users when a
// payment's review status changes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendPaymentEmailPath = "/send-payment-email"

// Actions reported to the mailer.
const (
	ActionApproved   = "approved"
	ActionDenied     = "denied"
	ActionSetPending = "set to pending"
)

// PaymentEmail is the body of POST /send-payment-email.
type PaymentEmail struct {
	UserEmail       string `json:"userEmail"`
	Action          string `json:"action"`
	ReferenceNumber string `json:"referenceNumber"`
	Amount          int64  `json:"amount"`
}

// Notifier sends payment status emails.
type Notifier interface {
	PaymentStatusChanged(ctx context.Context, email PaymentEmail) error
}

// Client is the HTTP Notifier.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the mailer at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// PaymentStatusChanged posts the email request. Only the status code of the
// response is inspected.
func (c *Client) PaymentStatusChanged(ctx context.Context, email PaymentEmail) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal payment email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPaymentEmailPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build payment email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send payment email: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send payment email: mailer returned %d", resp.StatusCode)
	}
	return nil
}

// Nop drops every notification. Used when NOTIFY_URL is unset.
type Nop struct{}

func (Nop) PaymentStatusChanged(context.Context, PaymentEmail) error { return nil }
