package handlers

import (
	"net/http"

	"incident-tracker/config"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
	"incident-tracker/core/validate"
)

type ArtifactsHandler struct {
	cfg    *config.AppConfig
	store  store.ArtifactsStore
	logger *utils.Logger
}

func NewArtifactsHandler(cfg *config.AppConfig, as store.ArtifactsStore, logger *utils.Logger) *ArtifactsHandler {
	return &ArtifactsHandler{cfg: cfg, store: as, logger: logger}
}

func (h *ArtifactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	artifact, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Artifact not found")
		return
	}
	h.logger.Infof("Retrieved artifact: %s", id)
	writeData(w, http.StatusOK, artifact)
}

func (h *ArtifactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var patch store.ArtifactPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Value != nil || patch.Type != nil || patch.Status != nil || patch.Kind != nil {
		if err := validate.ArtifactPatch(patch); err != nil {
			respondError(w, h.cfg, h.logger, err, "")
			return
		}
	}
	artifact, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Artifact not found")
		return
	}
	h.logger.Infof("Updated artifact: %s", id)
	writeMessage(w, http.StatusOK, "Artifact updated successfully", artifact)
}

func (h *ArtifactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, h.cfg, h.logger, err, "Artifact not found")
		return
	}
	h.logger.Infof("Deleted artifact: %s", id)
	writeMessageOnly(w, http.StatusOK, "Artifact deleted successfully")
}
