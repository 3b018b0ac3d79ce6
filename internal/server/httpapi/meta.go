package httpapi

import (
	"encoding/json"
	"net/http"
)

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":              "Hello World",
		"db_configured":        r.cfg.MongoURL != "",
		"db_name":              r.cfg.DBName,
		"melhor_envio_sandbox": r.cfg.MelhorEnvio.Sandbox,
	})
}

type statusCheckRequest struct {
	ClientName string `json:"client_name"`
}

func (r *Router) handleCreateStatusCheck(w http.ResponseWriter, req *http.Request) {
	var body statusCheckRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	sc, err := r.services.Status.Create(req.Context(), body.ClientName)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (r *Router) handleListStatusChecks(w http.ResponseWriter, req *http.Request) {
	checks, err := r.services.Status.List(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checks)
}
