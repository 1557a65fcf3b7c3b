// Package daraja integrates with the Safaricom Daraja API: OAuth token
// exchange and STK push (CustomerPayBillOnline) payment requests.
package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	// tokenSafetyMargin is subtracted from the provider TTL so a token is
	// never presented right at its expiry instant.
	tokenSafetyMargin = 10 * time.Second
)

var (
	// ErrAuthFailure indicates the OAuth credential exchange was rejected or
	// could not be completed.
	ErrAuthFailure = errors.New("daraja: could not obtain access token")

	// ErrInvalidPhone indicates the payee identifier does not match an
	// accepted local (07.., 01..) or international (254..) format.
	ErrInvalidPhone = errors.New("invalid phone number format, must start with 07, 01, or 254")
)

// PushError carries the provider's raw error payload for a rejected STK push.
type PushError struct {
	StatusCode int
	Payload    string
}

func (e *PushError) Error() string {
	return fmt.Sprintf("daraja: stk push rejected (status %d): %s", e.StatusCode, e.Payload)
}

// Config holds merchant credentials and endpoints for the Daraja API.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
}

// Client talks to the Daraja API and caches the short-lived OAuth token.
// Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock substitutes the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient builds a Daraja client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken returns a valid bearer token, reusing the cached one while it
// has not reached its expiry. Failures are never cached.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrAuthFailure, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrAuthFailure, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrAuthFailure)
	}

	ttl := 3600 * time.Second
	if secs, err := strconv.Atoi(tr.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	c.token = tr.AccessToken
	c.tokenExpiry = c.now().Add(ttl - tokenSafetyMargin)
	return c.token, nil
}

// StkPushInput captures an STK push request.
type StkPushInput struct {
	Phone            string
	Amount           int64
	AccountReference string
}

// StkPushResult carries the provider identifiers for an accepted push request.
type StkPushResult struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// StkPush initiates a CustomerPayBillOnline push payment to the given phone.
func (c *Client) StkPush(ctx context.Context, input StkPushInput) (StkPushResult, error) {
	phone, err := NormalizePhone(input.Phone)
	if err != nil {
		return StkPushResult{}, err
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return StkPushResult{}, err
	}

	// Daraja expects the request password as base64(shortcode+passkey+timestamp)
	// with the timestamp in local time.
	timestamp := c.now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))

	accountRef := input.AccountReference
	if accountRef == "" {
		accountRef = "Budget Tracker"
	}

	body := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            strconv.FormatInt(input.Amount, 10),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   "Payment for Personal Budget Tracker",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return StkPushResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, bytes.NewReader(payload))
	if err != nil {
		return StkPushResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return StkPushResult{}, fmt.Errorf("daraja: stk push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return StkPushResult{}, fmt.Errorf("daraja: read stk push response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StkPushResult{}, &PushError{StatusCode: resp.StatusCode, Payload: string(raw)}
	}

	var result StkPushResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return StkPushResult{}, fmt.Errorf("daraja: decode stk push response: %w", err)
	}
	return result, nil
}

// NormalizePhone converts a payee phone number to the 2547XXXXXXXX form
// Daraja requires. Local numbers starting with 0 are rewritten to the 254
// prefix; numbers already in international form pass through.
func NormalizePhone(phone string) (string, error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")

	switch {
	case len(trimmed) > 1 && trimmed[0] == '0':
		trimmed = "254" + trimmed[1:]
	case len(trimmed) >= 3 && trimmed[:3] == "254":
		// already international
	default:
		return "", ErrInvalidPhone
	}

	if len(trimmed) != 12 {
		return "", ErrInvalidPhone
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return trimmed, nil
}
