package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/felippeximenes/modeloloja/internal/server/config"
	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
	"github.com/felippeximenes/modeloloja/internal/server/repository"
	"github.com/felippeximenes/modeloloja/internal/server/repository/memory"
	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

func seedToken(t *testing.T, repo Repository, accessToken string) {
	t.Helper()
	err := repo.SaveToken(context.Background(), models.TokenRecord{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		UpdatedAt:   time.Now().UTC(),
		Sandbox:     true,
	})
	if err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func seedProduct(t *testing.T, repo Repository) models.Product {
	t.Helper()
	p, err := repo.CreateProduct(context.Background(), models.Product{
		Name:     "Vaso Moldz",
		Price:    100,
		WeightKg: 1,
		WidthCm:  10,
		HeightCm: 10,
		LengthCm: 10,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func fullSenderCfg() config.MelhorEnvio {
	cfg := testProviderCfg()
	cfg.FromName = "Loja Moldz"
	cfg.FromPhone = "11999990000"
	cfg.FromAddress = "Rua das Flores"
	cfg.FromNumber = "100"
	cfg.FromDistrict = "Centro"
	cfg.FromCity = "São Paulo"
	cfg.FromState = "SP"
	return cfg
}

func TestInsuranceOrDefault(t *testing.T) {
	if got := insuranceOrDefault(nil, 100, 2); got != 200 {
		t.Errorf("default insurance = %v, want 200", got)
	}
	if got := insuranceOrDefault(nil, 19.99, 3); got != 59.97 {
		t.Errorf("default insurance = %v, want 59.97", got)
	}
	explicit := 50.0
	if got := insuranceOrDefault(&explicit, 100, 2); got != 50 {
		t.Errorf("explicit insurance = %v, want 50", got)
	}
}

func TestBuildQuotePayload(t *testing.T) {
	p := models.Product{ID: "p1", Price: 100, WeightKg: 1, WidthCm: 10, HeightCm: 11, LengthCm: 12}
	payload := buildQuotePayload(p, "01001000", "22041011", 2, nil)

	if payload.From.PostalCode != "01001000" || payload.To.PostalCode != "22041011" {
		t.Errorf("unexpected endpoints %+v", payload)
	}
	if len(payload.Products) != 1 {
		t.Fatalf("want one product entry, got %d", len(payload.Products))
	}
	item := payload.Products[0]
	if item.ID != "p1" || item.Quantity != 2 || item.InsuranceValue != 200 {
		t.Errorf("unexpected item %+v", item)
	}
	if item.Width != 10 || item.Height != 11 || item.Length != 12 || item.Weight != 1 {
		t.Errorf("dimensions not copied: %+v", item)
	}
}

func TestQuoteValidation(t *testing.T) {
	repo := memory.New()
	svc := &ShippingService{repo: repo, cfg: testProviderCfg()}

	var validationErr *ValidationError
	_, err := svc.Quote(context.Background(), models.QuoteRequest{ToCEP: "123", ProductID: "x", Quantity: 1})
	if !errors.As(err, &validationErr) {
		t.Errorf("bad cep: want ValidationError, got %v", err)
	}
	_, err = svc.Quote(context.Background(), models.QuoteRequest{ToCEP: "12345-678", ProductID: "x", Quantity: 0})
	if !errors.As(err, &validationErr) {
		t.Errorf("zero quantity: want ValidationError, got %v", err)
	}
}

func TestQuoteProductNotFound(t *testing.T) {
	svc := &ShippingService{repo: memory.New(), cfg: testProviderCfg()}
	_, err := svc.Quote(context.Background(), models.QuoteRequest{ToCEP: "12345-678", ProductID: "missing", Quantity: 1})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestQuoteNotConnected(t *testing.T) {
	repo := memory.New()
	p := seedProduct(t, repo)
	svc := &ShippingService{repo: repo, cfg: testProviderCfg()}
	_, err := svc.Quote(context.Background(), models.QuoteRequest{ToCEP: "12345-678", ProductID: p.ID, Quantity: 1})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
}

func TestQuotePassthrough(t *testing.T) {
	var gotPayload melhorenvio.QuotePayload
	var gotAuth, gotAgent string
	gw := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/me/shipment/calculate" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"PAC","price":"21.50"}]`))
	})

	repo := memory.New()
	p := seedProduct(t, repo)
	seedToken(t, repo, "tok-123")
	svc := &ShippingService{repo: repo, cfg: testProviderCfg(), gw: gw}

	raw, err := svc.Quote(context.Background(), models.QuoteRequest{ToCEP: "22041-011", ProductID: p.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !strings.Contains(string(raw), "PAC") {
		t.Errorf("response not passed through: %s", raw)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAgent == "" {
		t.Error("User-Agent not set")
	}
	if gotPayload.Products[0].InsuranceValue != 200 || gotPayload.Products[0].Quantity != 2 {
		t.Errorf("unexpected outbound payload %+v", gotPayload)
	}
	if gotPayload.To.PostalCode != "22041011" {
		t.Errorf("to cep not sanitized: %q", gotPayload.To.PostalCode)
	}
}

func TestQuoteUpstreamErrorPassthrough(t *testing.T) {
	gw := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"The given data was invalid."}`))
	})

	repo := memory.New()
	p := seedProduct(t, repo)
	seedToken(t, repo, "tok-123")
	svc := &ShippingService{repo: repo, cfg: testProviderCfg(), gw: gw}

	_, err := svc.Quote(context.Background(), models.QuoteRequest{ToCEP: "22041-011", ProductID: p.ID, Quantity: 2})
	var apiErr *melhorenvio.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.StatusCode != 422 || !strings.Contains(string(apiErr.Body), "data was invalid") {
		t.Errorf("unexpected APIError %d %s", apiErr.StatusCode, apiErr.Body)
	}
}

func TestCreateShipmentValidation(t *testing.T) {
	repo := memory.New()
	p := seedProduct(t, repo)
	svc := &ShippingService{repo: repo, cfg: fullSenderCfg()}

	base := models.CreateShipmentRequest{
		ToCEP:            "22041-011",
		ProductID:        p.ID,
		Quantity:         1,
		ServiceID:        1,
		ReceiverName:     "Maria",
		ReceiverPhone:    "21988887777",
		ReceiverDocument: "123.456.789-09",
		ReceiverAddress:  "Av. Atlântica",
		ReceiverNumber:   "500",
		ReceiverDistrict: "Copacabana",
		ReceiverCity:     "Rio de Janeiro",
		ReceiverState:    "RJ",
	}

	var validationErr *ValidationError
	bad := base
	bad.ReceiverDocument = "123456789012" // 12 digits: neither CPF nor CNPJ
	if _, err := svc.CreateShipment(context.Background(), bad); !errors.As(err, &validationErr) {
		t.Errorf("12-digit document: want ValidationError, got %v", err)
	}

	bad = base
	bad.Quantity = 0
	if _, err := svc.CreateShipment(context.Background(), bad); !errors.As(err, &validationErr) {
		t.Errorf("zero quantity: want ValidationError, got %v", err)
	}
}

func TestCreateShipmentRequiresSender(t *testing.T) {
	repo := memory.New()
	p := seedProduct(t, repo)
	cfg := fullSenderCfg()
	cfg.FromDistrict = ""
	svc := &ShippingService{repo: repo, cfg: cfg}

	_, err := svc.CreateShipment(context.Background(), models.CreateShipmentRequest{
		ToCEP: "22041-011", ProductID: p.ID, Quantity: 1, ServiceID: 1,
		ReceiverName: "Maria", ReceiverPhone: "21988887777", ReceiverDocument: "12345678909",
		ReceiverAddress: "Av. Atlântica", ReceiverNumber: "500",
		ReceiverDistrict: "Copacabana", ReceiverCity: "Rio de Janeiro", ReceiverState: "RJ",
	})
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("want ConfigError, got %v", err)
	}
	if !strings.Contains(configErr.Error(), "MELHOR_ENVIO_FROM_DISTRICT") {
		t.Errorf("error should name the missing field: %v", configErr)
	}
}

func TestCreateShipmentAuditTrail(t *testing.T) {
	var gotPayload melhorenvio.CartPayload
	gw := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v2/me/cart" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order-1","status":"pending"}`))
	})

	repo := memory.New()
	p := seedProduct(t, repo)
	seedToken(t, repo, "tok-123")
	svc := &ShippingService{repo: repo, cfg: fullSenderCfg(), gw: gw}

	raw, err := svc.CreateShipment(context.Background(), models.CreateShipmentRequest{
		ToCEP: "22041-011", ProductID: p.ID, Quantity: 2, ServiceID: 3,
		ReceiverName: "Maria", ReceiverPhone: "21988887777", ReceiverDocument: "123.456.789-09",
		ReceiverAddress: "Av. Atlântica", ReceiverNumber: "500",
		ReceiverDistrict: "Copacabana", ReceiverCity: "Rio de Janeiro", ReceiverState: "RJ",
	})
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}
	if !strings.Contains(string(raw), "order-1") {
		t.Errorf("response not passed through: %s", raw)
	}

	if gotPayload.Service != 3 {
		t.Errorf("service = %d", gotPayload.Service)
	}
	if gotPayload.To.Document != "12345678909" {
		t.Errorf("document not sanitized: %q", gotPayload.To.Document)
	}
	if gotPayload.From.Name != "Loja Moldz" || gotPayload.From.PostalCode != "01001000" {
		t.Errorf("unexpected sender %+v", gotPayload.From)
	}
	if gotPayload.Options.InsuranceValue != 200 || gotPayload.Options.Receipt || gotPayload.Options.OwnHand || gotPayload.Options.Collect {
		t.Errorf("unexpected options %+v", gotPayload.Options)
	}
	if gotPayload.Products[0].UnitaryValue != 100 || gotPayload.Products[0].Quantity != 2 {
		t.Errorf("unexpected cart item %+v", gotPayload.Products[0])
	}

	shipments := repo.Shipments()
	if len(shipments) != 1 {
		t.Fatalf("want one shipment audit record, got %d", len(shipments))
	}
	if !shipments[0].Sandbox || !strings.Contains(string(shipments[0].Response), "order-1") {
		t.Errorf("unexpected audit record %+v", shipments[0])
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	gw := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	repo := memory.New()
	seedToken(t, repo, "tok-123")
	svc := &ShippingService{repo: repo, cfg: testProviderCfg(), gw: gw}

	_, err := svc.Checkout(context.Background(), nil)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if !strings.Contains(validationErr.Error(), "cart is empty") {
		t.Errorf("unexpected message %q", validationErr.Error())
	}
}

func TestCheckoutDerivesOrdersFromCart(t *testing.T) {
	var gotCheckout melhorenvio.CheckoutPayload
	gw := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/me/cart":
			_, _ = w.Write([]byte(`{"data":[{"id":"ord-a"},{"id":"ord-b"},{"id":""}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/me/shipment/checkout":
			if err := json.NewDecoder(r.Body).Decode(&gotCheckout); err != nil {
				t.Errorf("decode checkout: %v", err)
			}
			_, _ = w.Write([]byte(`{"purchase":{"id":"purch-1"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	repo := memory.New()
	seedToken(t, repo, "tok-123")
	svc := &ShippingService{repo: repo, cfg: testProviderCfg(), gw: gw}

	raw, err := svc.Checkout(context.Background(), nil)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if !strings.Contains(string(raw), "purch-1") {
		t.Errorf("response not passed through: %s", raw)
	}
	if len(gotCheckout.Orders) != 2 || gotCheckout.Orders[0] != "ord-a" || gotCheckout.Orders[1] != "ord-b" {
		t.Errorf("orders = %v, want cart ids in listing order", gotCheckout.Orders)
	}

	checkouts := repo.Checkouts()
	if len(checkouts) != 1 {
		t.Fatalf("want one checkout audit record, got %d", len(checkouts))
	}
}

func TestCheckoutExplicitOrders(t *testing.T) {
	var gotCheckout melhorenvio.CheckoutPayload
	cartCalled := false
	gw := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/me/cart":
			cartCalled = true
			_, _ = w.Write([]byte(`{"data":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/me/shipment/checkout":
			_ = json.NewDecoder(r.Body).Decode(&gotCheckout)
			_, _ = w.Write([]byte(`{"purchase":{"id":"purch-2"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	repo := memory.New()
	seedToken(t, repo, "tok-123")
	svc := &ShippingService{repo: repo, cfg: testProviderCfg(), gw: gw}

	_, err := svc.Checkout(context.Background(), []string{" ord-x ", "", "ord-y"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if cartCalled {
		t.Error("cart listing should not be fetched when orders are supplied")
	}
	if len(gotCheckout.Orders) != 2 || gotCheckout.Orders[0] != "ord-x" || gotCheckout.Orders[1] != "ord-y" {
		t.Errorf("orders = %v", gotCheckout.Orders)
	}
}

func TestCartOrderIDs(t *testing.T) {
	ids := cartOrderIDs([]byte(`{"data":[{"id":"a"},{"id":42},{"id":null},{"id":" "}]}`))
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "42" {
		t.Errorf("cartOrderIDs = %v", ids)
	}
	if ids := cartOrderIDs([]byte(`not json`)); ids != nil {
		t.Errorf("cartOrderIDs on garbage = %v", ids)
	}
}
