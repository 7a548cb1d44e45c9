package handlers

import (
	"errors"
	"net/http"

	"incident-tracker/config"
	"incident-tracker/core/files"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
	"incident-tracker/core/validate"
)

type IncidentsHandler struct {
	cfg    *config.AppConfig
	store  store.IncidentsStore
	files  *files.Service
	logger *utils.Logger
}

func NewIncidentsHandler(cfg *config.AppConfig, is store.IncidentsStore, fs *files.Service, logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{cfg: cfg, store: is, files: fs, logger: logger}
}

type artifactPayload struct {
	Value  string               `json:"value"`
	Type   store.ArtifactType   `json:"artifact_type"`
	Status store.ArtifactStatus `json:"status"`
	Kind   store.ArtifactKind   `json:"kind"`
	Notes  string               `json:"notes"`
}

type incidentPayload struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    store.Severity    `json:"severity"`
	TLP         store.TLP         `json:"tlp"`
	Status      store.Status      `json:"status"`
	AssignedTo  string            `json:"assigned_to"`
	Playbook    string            `json:"playbook"`
	Artifacts   []artifactPayload `json:"artifacts"`
}

func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Retrieved %d incidents", len(incidents))
	writeList(w, incidents, len(incidents))
}

func (h *IncidentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	incident, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Retrieved incident: %s", id)
	writeData(w, http.StatusOK, incident)
}

func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload incidentPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := validate.Incident(payload.Title, payload.Severity, payload.TLP, payload.Status); err != nil {
		respondError(w, h.cfg, h.logger, err, "")
		return
	}
	in := store.NewIncident{
		Title:       payload.Title,
		Description: payload.Description,
		Severity:    payload.Severity,
		TLP:         payload.TLP,
		Status:      payload.Status,
		AssignedTo:  payload.AssignedTo,
		Playbook:    payload.Playbook,
	}
	for _, a := range payload.Artifacts {
		if err := validate.Artifact(a.Value, a.Type, a.Status, a.Kind); err != nil {
			respondError(w, h.cfg, h.logger, err, "")
			return
		}
		in.Artifacts = append(in.Artifacts, store.NewArtifact{
			Value:  a.Value,
			Type:   a.Type,
			Status: a.Status,
			Kind:   a.Kind,
			Notes:  a.Notes,
		})
	}
	incident, err := h.store.Create(r.Context(), in)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Created incident: %s", incident.UID)
	writeMessage(w, http.StatusCreated, "Incident created successfully", incident)
}

func (h *IncidentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var patch store.IncidentPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Severity != nil || patch.TLP != nil || patch.Status != nil {
		if err := validate.IncidentPatch(patch); err != nil {
			respondError(w, h.cfg, h.logger, err, "")
			return
		}
	}
	incident, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Updated incident: %s", id)
	writeMessage(w, http.StatusOK, "Incident updated successfully", incident)
}

func (h *IncidentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	// Clean up attachment blobs before the metadata goes: after the cascade
	// there is nothing left pointing at them.
	if attached, err := h.store.ListFiles(r.Context(), id); err == nil {
		for _, f := range attached {
			if err := h.files.Remove(f.StoredName); err != nil {
				h.logger.Warnf("could not remove %s: %v", f.StoredName, err)
			}
		}
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Deleted incident: %s", id)
	writeMessageOnly(w, http.StatusOK, "Incident deleted successfully")
}

func (h *IncidentsHandler) AddArtifact(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var payload artifactPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := validate.Artifact(payload.Value, payload.Type, payload.Status, payload.Kind); err != nil {
		respondError(w, h.cfg, h.logger, err, "")
		return
	}
	artifact, err := h.store.AddArtifact(r.Context(), id, store.NewArtifact{
		Value:  payload.Value,
		Type:   payload.Type,
		Status: payload.Status,
		Kind:   payload.Kind,
		Notes:  payload.Notes,
	})
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Created artifact: %s for incident: %s", artifact.UID, id)
	writeMessage(w, http.StatusCreated, "Artifact created successfully", artifact)
}

func (h *IncidentsHandler) AddReference(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var payload struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Title == "" || payload.Link == "" {
		writeErr(w, http.StatusBadRequest, "Title and link are required")
		return
	}
	reference, err := h.store.AddReference(r.Context(), id, store.NewReference{Title: payload.Title, Link: payload.Link})
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Created reference: %s for incident: %s", reference.UID, id)
	writeMessage(w, http.StatusCreated, "Reference created successfully", reference)
}

func (h *IncidentsHandler) AddRelatedTicket(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var payload struct {
		RelatedTicketID string `json:"relatedTicketId"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.RelatedTicketID == "" {
		writeErr(w, http.StatusBadRequest, "Related ticket ID is required")
		return
	}
	err := h.store.AddRelatedTicket(r.Context(), id, payload.RelatedTicketID)
	if err != nil {
		if errors.Is(err, store.ErrRelatedTicketNotFound) {
			writeErr(w, http.StatusNotFound, "Related ticket not found")
			return
		}
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Added related ticket %s to incident: %s", payload.RelatedTicketID, id)
	writeMessageOnly(w, http.StatusOK, "Related ticket added successfully")
}

func (h *IncidentsHandler) RemoveRelatedTicket(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	ticketID := urlParam(r, "ticketId")
	if err := h.store.RemoveRelatedTicket(r.Context(), id, ticketID); err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	h.logger.Infof("Removed related ticket %s from incident: %s", ticketID, id)
	writeMessageOnly(w, http.StatusOK, "Related ticket removed successfully")
}
