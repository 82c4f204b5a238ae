package moneyunify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
)

const (
	liveBase    = "https://api.moneyunify.one"
	sandboxBase = "https://sandbox.moneyunify.one"
)

// ErrUnavailable means MoneyUnify could not be reached or answered with a
// non-2xx. Callers verifying a payment must treat this as "still pending
// and retry later", never as a failed payment.
var ErrUnavailable = errors.New("moneyunify unavailable")

// RejectedError is an explicit decline from MoneyUnify (well-formed
// response, no transaction id), carrying the provider's own message so it
// can be shown to the buyer.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "moneyunify rejected request: " + e.Message
}

type apiResponse struct {
	Message string `json:"message"`
	Data    struct {
		TransactionID string `json:"transaction_id"`
		Status        string `json:"status"`
	} `json:"data"`
}

// Client is the only thing in the service that talks to MoneyUnify.
// The sandbox flag is fixed at construction; it picks the base URL and
// nothing else.
type Client struct {
	authID string
	base   string
	http   *http.Client
}

func NewClient(authID string, sandbox bool) *Client {
	base := liveBase
	if sandbox {
		base = sandboxBase
	}
	return &Client{
		authID: authID,
		base:   base,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// RequestPayment asks MoneyUnify to push a USSD approval prompt to the
// payer's phone. Returns the provider-assigned transaction id.
func (c *Client) RequestPayment(ctx context.Context, phone string, amount domain.Money, reference string) (string, error) {
	if !domain.ValidPhone(phone) {
		return "", &domain.ValidationError{Field: "from_payer", Reason: "must be 9-12 digits"}
	}
	if !amount.Positive() {
		return "", &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !amount.Currency.Supported() {
		return "", &domain.ValidationError{Field: "currency", Reason: "unsupported currency " + string(amount.Currency)}
	}

	form := url.Values{
		"auth_id":    {c.authID},
		"from_payer": {phone},
		"amount":     {amount.MajorString()},
		"currency":   {string(amount.Currency)},
		"reference":  {reference},
	}

	resp, err := c.postForm(ctx, "/payments/request", form)
	if err != nil {
		return "", err
	}

	if resp.Data.TransactionID == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Payment request failed. Try again."
		}
		return "", &RejectedError{Message: msg}
	}

	return resp.Data.TransactionID, nil
}

// VerifyPayment asks MoneyUnify for the current state of a transaction.
// Safe to call any number of times; it has no side effect on the provider.
func (c *Client) VerifyPayment(ctx context.Context, transactionID string) (domain.VerificationStatus, error) {
	form := url.Values{"transaction_id": {transactionID}}

	resp, err := c.postForm(ctx, "/payments/verify", form)
	if err != nil {
		return domain.VerificationPending, err
	}

	return domain.ParseVerificationStatus(resp.Data.Status), nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unreadable response: %v", ErrUnavailable, err)
	}

	return &parsed, nil
}
