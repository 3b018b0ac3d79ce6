// Package melhorenvio is a thin client for the Melhor Envio shipping API.
// Provider responses are treated as opaque JSON: success bodies are passed
// through untouched and error bodies are carried verbatim in APIError.
package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// SandboxBaseURL and ProductionBaseURL select the provider environment.
	SandboxBaseURL    = "https://sandbox.melhorenvio.com.br"
	ProductionBaseURL = "https://melhorenvio.com.br"

	quotePath    = "/api/v2/me/shipment/calculate"
	cartPath     = "/api/v2/me/cart"
	checkoutPath = "/api/v2/me/shipment/checkout"
	tokenPath    = "/oauth/token"

	// AuthorizePath is where the merchant's browser is sent to grant access.
	AuthorizePath = "/oauth/authorize"
)

// ErrUnreachable marks a transport-level failure (refused connection,
// timeout, DNS) as opposed to an HTTP error response from the provider.
var ErrUnreachable = errors.New("melhor envio unreachable")

// APIError is a provider response with status >= 400. The body is kept
// verbatim so callers see the provider's own error detail.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	body := string(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("melhor envio responded %d: %s", e.StatusCode, body)
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New builds a client for the given environment base URL. The per-call
// timeout covers the whole request; there is no retry policy.
func New(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Payload shapes expected by the provider.

type CEPRef struct {
	PostalCode string `json:"postal_code"`
}

type QuoteItem struct {
	ID             string  `json:"id"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Length         float64 `json:"length"`
	Weight         float64 `json:"weight"`
	InsuranceValue float64 `json:"insurance_value"`
	Quantity       int     `json:"quantity"`
}

type QuotePayload struct {
	From     CEPRef      `json:"from"`
	To       CEPRef      `json:"to"`
	Products []QuoteItem `json:"products"`
}

// Address is a sender or receiver. Document is empty for the sender.
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Document   string `json:"document,omitempty"`
	Address    string `json:"address"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	StateAbbr  string `json:"state_abbr"`
	PostalCode string `json:"postal_code"`
}

type CartItem struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitaryValue float64 `json:"unitary_value"`
	Weight       float64 `json:"weight"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Length       float64 `json:"length"`
}

type CartOptions struct {
	InsuranceValue float64 `json:"insurance_value"`
	Receipt        bool    `json:"receipt"`
	OwnHand        bool    `json:"own_hand"`
	Collect        bool    `json:"collect"`
}

type CartPayload struct {
	Service  int         `json:"service"`
	From     Address     `json:"from"`
	To       Address     `json:"to"`
	Products []CartItem  `json:"products"`
	Options  CartOptions `json:"options"`
}

type CheckoutPayload struct {
	Orders []string `json:"orders"`
}

// Quote asks for shipping prices.
func (c *Client) Quote(ctx context.Context, auth string, p QuotePayload) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, quotePath, auth, p)
}

// CartCreate adds a shipment to the provider cart.
func (c *Client) CartCreate(ctx context.Context, auth string, p CartPayload) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, cartPath, auth, p)
}

// CartList returns the pending, uncommitted shipments.
func (c *Client) CartList(ctx context.Context, auth string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, cartPath, auth, nil)
}

// Checkout pays for the given cart orders.
func (c *Client) Checkout(ctx context.Context, auth string, p CheckoutPayload) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, checkoutPath, auth, p)
}

func (c *Client) do(ctx context.Context, method, path, auth string, body any) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: data}
	}
	return json.RawMessage(data), nil
}

// TokenRequest carries the authorization-code exchange parameters. The
// redirect URI must match the one used on the authorize redirect
// bit-for-bit, per provider contract.
type TokenRequest struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Code         string
}

// TokenPayload is the provider's token-endpoint response.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode trades an authorization code for a token. A non-2xx response
// comes back as an APIError with the provider body untouched; a transport
// failure wraps ErrUnreachable.
func (c *Client) ExchangeCode(ctx context.Context, tr TokenRequest) (TokenPayload, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", tr.ClientID)
	form.Set("client_secret", tr.ClientSecret)
	form.Set("redirect_uri", tr.RedirectURI)
	form.Set("code", tr.Code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenPayload{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode >= 400 {
		return TokenPayload{}, &APIError{StatusCode: resp.StatusCode, Body: data}
	}

	var payload TokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return TokenPayload{}, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return TokenPayload{}, errors.New("token response missing access_token")
	}
	return payload, nil
}
