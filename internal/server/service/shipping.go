package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/felippeximenes/modeloloja/internal/server/config"
	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
	"github.com/felippeximenes/modeloloja/internal/server/repository"
	"github.com/felippeximenes/modeloloja/internal/shared/models"
	"github.com/felippeximenes/modeloloja/internal/shared/postal"
)

// ShippingService shapes quote, cart and checkout payloads from catalog
// products and proxies them to the provider with the stored token.
type ShippingService struct {
	repo Repository
	cfg  config.MelhorEnvio
	gw   *melhorenvio.Client
}

// Quote calculates shipping prices for one product. The provider response
// is returned untouched.
func (s *ShippingService) Quote(ctx context.Context, req models.QuoteRequest) (json.RawMessage, error) {
	if err := requireProvider(s.cfg); err != nil {
		return nil, err
	}
	toCEP := postal.SanitizeCEP(req.ToCEP)
	if len(toCEP) != 8 {
		return nil, validationf("to_cep invalid (needs 8 digits)")
	}
	if req.Quantity < 1 {
		return nil, validationf("quantity must be >= 1")
	}
	prod, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	payload := buildQuotePayload(prod, postal.SanitizeCEP(s.cfg.FromCEP), toCEP, req.Quantity, req.InsuranceValue)

	auth, err := currentAuthHeader(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	return s.gw.Quote(ctx, auth, payload)
}

// CreateShipment validates the receiver, adds a shipment to the provider
// cart and appends an audit record with both payloads.
func (s *ShippingService) CreateShipment(ctx context.Context, req models.CreateShipmentRequest) (json.RawMessage, error) {
	if err := requireProvider(s.cfg); err != nil {
		return nil, err
	}
	if err := requireSender(s.cfg); err != nil {
		return nil, err
	}
	toCEP := postal.SanitizeCEP(req.ToCEP)
	if len(toCEP) != 8 {
		return nil, validationf("to_cep invalid (needs 8 digits)")
	}
	if req.Quantity < 1 {
		return nil, validationf("quantity must be >= 1")
	}
	document := postal.SanitizeDocument(req.ReceiverDocument)
	if postal.ClassifyDocument(document) == postal.DocumentInvalid {
		return nil, validationf("receiver_document invalid (use a CPF with 11 digits or a CNPJ with 14)")
	}
	prod, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	receiver := melhorenvio.Address{
		Name:       req.ReceiverName,
		Phone:      req.ReceiverPhone,
		Email:      req.ReceiverEmail,
		Document:   document,
		Address:    req.ReceiverAddress,
		Number:     req.ReceiverNumber,
		Complement: req.ReceiverComplement,
		District:   req.ReceiverDistrict,
		City:       req.ReceiverCity,
		StateAbbr:  req.ReceiverState,
		PostalCode: toCEP,
	}
	payload := buildCartPayload(prod, sender(s.cfg), receiver, req.ServiceID, req.Quantity, req.InsuranceValue)

	auth, err := currentAuthHeader(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	raw, err := s.gw.CartCreate(ctx, auth, payload)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveShipment(ctx, repository.AuditRecord{
		CreatedAt: time.Now().UTC(),
		Request:   payload,
		Response:  raw,
		Sandbox:   s.cfg.Sandbox,
	}); err != nil {
		return nil, err
	}
	return raw, nil
}

// CartList returns the provider cart untouched.
func (s *ShippingService) CartList(ctx context.Context) (json.RawMessage, error) {
	if err := requireProvider(s.cfg); err != nil {
		return nil, err
	}
	auth, err := currentAuthHeader(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	return s.gw.CartList(ctx, auth)
}

// Checkout pays for the given cart orders. With no ids supplied it checks
// out everything currently in the cart, in the order the listing returns.
func (s *ShippingService) Checkout(ctx context.Context, orders []string) (json.RawMessage, error) {
	if err := requireProvider(s.cfg); err != nil {
		return nil, err
	}
	auth, err := currentAuthHeader(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if v := strings.TrimSpace(o); v != "" {
			ids = append(ids, v)
		}
	}
	if len(ids) == 0 {
		listing, err := s.gw.CartList(ctx, auth)
		if err != nil {
			return nil, err
		}
		ids = cartOrderIDs(listing)
	}
	if len(ids) == 0 {
		return nil, validationf("cart is empty: no orders to checkout")
	}

	payload := melhorenvio.CheckoutPayload{Orders: ids}
	raw, err := s.gw.Checkout(ctx, auth, payload)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveCheckout(ctx, repository.AuditRecord{
		CreatedAt: time.Now().UTC(),
		Request:   payload,
		Response:  raw,
		Sandbox:   s.cfg.Sandbox,
	}); err != nil {
		return nil, err
	}
	return raw, nil
}

func buildQuotePayload(p models.Product, fromCEP, toCEP string, quantity int, insurance *float64) melhorenvio.QuotePayload {
	return melhorenvio.QuotePayload{
		From: melhorenvio.CEPRef{PostalCode: fromCEP},
		To:   melhorenvio.CEPRef{PostalCode: toCEP},
		Products: []melhorenvio.QuoteItem{{
			ID:             p.ID,
			Width:          p.WidthCm,
			Height:         p.HeightCm,
			Length:         p.LengthCm,
			Weight:         p.WeightKg,
			InsuranceValue: insuranceOrDefault(insurance, p.Price, quantity),
			Quantity:       quantity,
		}},
	}
}

func buildCartPayload(p models.Product, from, to melhorenvio.Address, serviceID, quantity int, insurance *float64) melhorenvio.CartPayload {
	return melhorenvio.CartPayload{
		Service: serviceID,
		From:    from,
		To:      to,
		Products: []melhorenvio.CartItem{{
			Name:         p.Name,
			Quantity:     quantity,
			UnitaryValue: p.Price,
			Weight:       p.WeightKg,
			Width:        p.WidthCm,
			Height:       p.HeightCm,
			Length:       p.LengthCm,
		}},
		Options: melhorenvio.CartOptions{
			InsuranceValue: insuranceOrDefault(insurance, p.Price, quantity),
			Receipt:        false,
			OwnHand:        false,
			Collect:        false,
		},
	}
}

// insuranceOrDefault defaults the declared value to price*quantity, exact
// at currency precision.
func insuranceOrDefault(v *float64, price float64, quantity int) float64 {
	if v != nil {
		return *v
	}
	out, _ := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		Float64()
	return out
}

// sender builds the fixed origin address from configuration.
func sender(cfg config.MelhorEnvio) melhorenvio.Address {
	return melhorenvio.Address{
		Name:       cfg.FromName,
		Phone:      cfg.FromPhone,
		Email:      cfg.FromEmail,
		Address:    cfg.FromAddress,
		Number:     cfg.FromNumber,
		Complement: cfg.FromComplement,
		District:   cfg.FromDistrict,
		City:       cfg.FromCity,
		StateAbbr:  cfg.FromState,
		PostalCode: postal.SanitizeCEP(cfg.FromCEP),
	}
}

// requireSender checks every sender field the cart API insists on. The
// error names the missing variable.
func requireSender(cfg config.MelhorEnvio) error {
	required := []struct {
		label, value string
	}{
		{"MELHOR_ENVIO_FROM_NAME", cfg.FromName},
		{"MELHOR_ENVIO_FROM_PHONE", cfg.FromPhone},
		{"MELHOR_ENVIO_FROM_ADDRESS", cfg.FromAddress},
		{"MELHOR_ENVIO_FROM_NUMBER", cfg.FromNumber},
		{"MELHOR_ENVIO_FROM_DISTRICT", cfg.FromDistrict},
		{"MELHOR_ENVIO_FROM_CITY", cfg.FromCity},
		{"MELHOR_ENVIO_FROM_STATE", cfg.FromState},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return configMissing(f.label)
		}
	}
	return nil
}

// cartOrderIDs extracts data[].id from a cart listing. Ids are expected to
// be strings but numeric ids are tolerated.
func cartOrderIDs(listing json.RawMessage) []string {
	var parsed struct {
		Data []struct {
			ID any `json:"id"`
		} `json:"data"`
	}
	dec := json.NewDecoder(bytes.NewReader(listing))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil
	}
	ids := make([]string, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		switch v := item.ID.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				ids = append(ids, s)
			}
		case json.Number:
			ids = append(ids, v.String())
		}
	}
	return ids
}
