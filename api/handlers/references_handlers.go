package handlers

import (
	"net/http"

	"incident-tracker/config"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
)

type ReferencesHandler struct {
	cfg    *config.AppConfig
	store  store.ReferencesStore
	logger *utils.Logger
}

func NewReferencesHandler(cfg *config.AppConfig, rs store.ReferencesStore, logger *utils.Logger) *ReferencesHandler {
	return &ReferencesHandler{cfg: cfg, store: rs, logger: logger}
}

func (h *ReferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	reference, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Reference not found")
		return
	}
	h.logger.Infof("Retrieved reference: %s", id)
	writeData(w, http.StatusOK, reference)
}

func (h *ReferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var patch store.ReferencePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Title == nil && patch.Link == nil {
		writeErr(w, http.StatusBadRequest, "At least one field (title or link) is required to update")
		return
	}
	reference, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Reference not found")
		return
	}
	h.logger.Infof("Updated reference: %s", id)
	writeMessage(w, http.StatusOK, "Reference updated successfully", reference)
}

func (h *ReferencesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, h.cfg, h.logger, err, "Reference not found")
		return
	}
	h.logger.Infof("Deleted reference: %s", id)
	writeMessageOnly(w, http.StatusOK, "Reference deleted successfully")
}
