package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/shared"
)

// ListCredentials handles GET /api/admin/credentials. It returns the
// pool's live rotation view; keys are masked and never leave the server.
func (h *Handlers) ListCredentials(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"credentials": h.Pool.Statuses(),
	}, http.StatusOK)
}

// CreateCredentialRequest is the request body for adding a credential.
type CreateCredentialRequest struct {
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
	Priority int    `json:"priority"`
}

// CreateCredential handles POST /api/admin/credentials. The key is
// persisted encrypted; it joins the rotation on the next restart.
func (h *Handlers) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.APIKey == "" {
		shared.WriteJSONError(w, "name and api_key are required", http.StatusBadRequest)
		return
	}

	cred := &storage.Credential{
		Name:      req.Name,
		APIKey:    req.APIKey,
		Priority:  req.Priority,
		CreatedAt: time.Now(),
	}
	if err := h.Storage.CreateCredential(cred); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			shared.WriteJSONError(w, "credential name already exists", http.StatusConflict)
			return
		}
		shared.WriteJSONError(w, "failed to save credential", http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, cred.ToPreview(), http.StatusCreated)
}
