package httpapi

import "net/http"

func (r *Router) handleAuth(w http.ResponseWriter, req *http.Request) {
	redirectURL, err := r.services.OAuth.BeginAuthorization(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	http.Redirect(w, req, redirectURL, http.StatusFound)
}

func (r *Router) handleCallback(w http.ResponseWriter, req *http.Request) {
	code := req.URL.Query().Get("code")
	state := req.URL.Query().Get("state")
	result, err := r.services.OAuth.HandleCallback(req.Context(), code, state)
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleTokenStatus(w http.ResponseWriter, req *http.Request) {
	status, err := r.services.OAuth.Status(req.Context())
	if err != nil {
		r.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
