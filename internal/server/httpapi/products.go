package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

func (r *Router) handleCreateProduct(w http.ResponseWriter, req *http.Request) {
	var body models.Product
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	product, err := r.services.Catalog.Create(req.Context(), body)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (r *Router) handleListProducts(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	products, err := r.services.Catalog.List(req.Context(), limit)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}
