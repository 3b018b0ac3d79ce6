package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/felippeximenes/modeloloja/internal/server/config"
	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
	"github.com/felippeximenes/modeloloja/internal/server/repository"
	"github.com/felippeximenes/modeloloja/internal/server/service"
)

type Router struct {
	services *service.Services
	cfg      config.Config
	logger   *log.Logger
}

func NewRouter(services *service.Services, cfg config.Config, logger *log.Logger) http.Handler {
	r := &Router{services: services, cfg: cfg, logger: logger}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	mux.Get("/health", r.handleHealth)
	mux.Get("/api", r.handleRoot)
	mux.Get("/api/", r.handleRoot)
	mux.Post("/api/status", r.handleCreateStatusCheck)
	mux.Get("/api/status", r.handleListStatusChecks)

	mux.Get("/api/melhorenvio/auth", r.handleAuth)
	mux.Get("/api/melhorenvio/callback", r.handleCallback)
	mux.Get("/api/melhorenvio/token", r.handleTokenStatus)

	mux.Post("/api/products", r.handleCreateProduct)
	mux.Get("/api/products", r.handleListProducts)

	mux.Post("/api/shipping/quote", r.handleQuote)
	mux.Post("/api/shipping/create", r.handleCreateShipment)
	mux.Get("/api/shipping/cart", r.handleCartList)
	mux.Post("/api/shipping/checkout", r.handleCheckout)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps the error taxonomy onto HTTP statuses. Provider errors
// keep their original status and body; everything else gets a
// human-readable message. Bodies are logged for operator diagnosis, the
// Authorization header never is.
func (r *Router) writeError(w http.ResponseWriter, err error) {
	var apiErr *melhorenvio.APIError
	var validationErr *service.ValidationError
	var configErr *service.ConfigError

	switch {
	case errors.As(err, &apiErr):
		r.logf("melhor envio error %d: %s", apiErr.StatusCode, truncate(apiErr.Body))
		writeJSON(w, apiErr.StatusCode, errorResponse{Error: "upstream_error", Details: string(apiErr.Body)})
	case errors.Is(err, melhorenvio.ErrUnreachable):
		r.logf("melhor envio unreachable: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
	case errors.Is(err, service.ErrInvalidState):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "product_id invalid"})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
	case errors.Is(err, service.ErrNotConnected):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.As(err, &configErr):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: configErr.Error()})
	default:
		r.logf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (r *Router) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

func truncate(body []byte) string {
	const max = 1024
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
