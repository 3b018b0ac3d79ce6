package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

func (r *Router) handleQuote(w http.ResponseWriter, req *http.Request) {
	var body models.QuoteRequest
	body.Quantity = 1
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	raw, err := r.services.Shipping.Quote(req.Context(), body)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RawResponse{Raw: raw})
}

func (r *Router) handleCreateShipment(w http.ResponseWriter, req *http.Request) {
	var body models.CreateShipmentRequest
	body.Quantity = 1
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	raw, err := r.services.Shipping.CreateShipment(req.Context(), body)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RawResponse{Raw: raw})
}

func (r *Router) handleCartList(w http.ResponseWriter, req *http.Request) {
	raw, err := r.services.Shipping.CartList(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RawResponse{Raw: raw})
}

func (r *Router) handleCheckout(w http.ResponseWriter, req *http.Request) {
	var body models.CheckoutRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	raw, err := r.services.Shipping.Checkout(req.Context(), body.Orders)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RawResponse{Raw: raw})
}
