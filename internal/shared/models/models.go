package models

import (
	"encoding/json"
	"time"
)

// Product is a catalog item carrying the package dimensions the shipping
// calculator needs. Products are immutable once created.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	WeightKg  float64   `json:"weight_kg"`
	WidthCm   float64   `json:"width_cm"`
	HeightCm  float64   `json:"height_cm"`
	LengthCm  float64   `json:"length_cm"`
	SKU       string    `json:"sku,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// TokenRecord is the OAuth token issued by Melhor Envio. Exactly one record
// exists at a time; a new exchange replaces it entirely.
type TokenRecord struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type"`
	Scope        string     `json:"scope,omitempty"`
	ExpiresIn    int64      `json:"expires_in,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Sandbox      bool       `json:"sandbox"`
}

// TokenStatus summarizes the provider connection without ever exposing the
// token value itself.
type TokenStatus struct {
	Connected       bool       `json:"connected"`
	Sandbox         bool       `json:"sandbox,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	HasRefreshToken bool       `json:"has_refresh_token,omitempty"`
	TokenType       string     `json:"token_type,omitempty"`
	Scope           string     `json:"scope,omitempty"`
	HasAccessToken  bool       `json:"has_access_token,omitempty"`
	AccessTokenLen  int        `json:"access_token_len,omitempty"`
}

// CallbackResult is returned after a successful authorization-code exchange.
type CallbackResult struct {
	OK              bool   `json:"ok"`
	Message         string `json:"message"`
	RedirectURIUsed string `json:"redirect_uri_used"`
	Sandbox         bool   `json:"sandbox"`
	Scope           string `json:"scope_from_token,omitempty"`
	TokenType       string `json:"token_type_from_token,omitempty"`
}

// QuoteRequest asks for shipping prices for one catalog product.
type QuoteRequest struct {
	ToCEP          string   `json:"to_cep"`
	ProductID      string   `json:"product_id"`
	Quantity       int      `json:"quantity"`
	InsuranceValue *float64 `json:"insurance_value,omitempty"`
}

// CreateShipmentRequest adds a shipment for one catalog product to the
// provider cart. Receiver document is a CPF (11 digits) or CNPJ (14 digits).
type CreateShipmentRequest struct {
	ToCEP     string `json:"to_cep"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	ServiceID int    `json:"service_id"`

	ReceiverName     string `json:"receiver_name"`
	ReceiverPhone    string `json:"receiver_phone"`
	ReceiverDocument string `json:"receiver_document"`

	ReceiverEmail      string `json:"receiver_email,omitempty"`
	ReceiverAddress    string `json:"receiver_address"`
	ReceiverNumber     string `json:"receiver_number"`
	ReceiverComplement string `json:"receiver_complement,omitempty"`
	ReceiverDistrict   string `json:"receiver_district"`
	ReceiverCity       string `json:"receiver_city"`
	ReceiverState      string `json:"receiver_state"`

	InsuranceValue *float64 `json:"insurance_value,omitempty"`
}

// CheckoutRequest lists the provider cart order ids to pay for. An empty
// list means everything currently in the cart.
type CheckoutRequest struct {
	Orders []string `json:"orders"`
}

// RawResponse wraps an opaque provider payload. The third-party schema is
// not contractually pinned, so it is passed through untyped.
type RawResponse struct {
	Raw json.RawMessage `json:"raw"`
}

// StatusCheck is a trivial liveness record written by monitoring clients.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}
