package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vaultx/internal/server/services"
)

func (h *Handler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	list, err := h.vault.List(r.Context(), currentUser(r), r.URL.Query().Get("type"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	var req services.NewSecret
	if !decodeJSON(w, r, &req) {
		return
	}

	sec, err := h.vault.Create(r.Context(), currentUser(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sec)
}

func (h *Handler) GetSecret(w http.ResponseWriter, r *http.Request) {
	sec, err := h.vault.Get(r.Context(), currentUser(r), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// UpdateSecret applies a partial update: absent keys are left alone.
func (h *Handler) UpdateSecret(w http.ResponseWriter, r *http.Request) {
	var req services.SecretPatch
	if !decodeJSON(w, r, &req) {
		return
	}

	sec, err := h.vault.Update(r.Context(), currentUser(r), r.PathValue("id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (h *Handler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	if err := h.vault.Delete(r.Context(), currentUser(r), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Secret deleted successfully"})
}

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.backup.Export(r.Context(), currentUser(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	list, err := h.activity.List(r.Context(), currentUser(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
