package handlers

import (
	"net/http"

	"incident-tracker/config"
	"incident-tracker/core/files"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
	"incident-tracker/core/validate"
)

type PlaybooksHandler struct {
	cfg    *config.AppConfig
	store  store.PlaybooksStore
	files  *files.Service
	logger *utils.Logger
}

func NewPlaybooksHandler(cfg *config.AppConfig, ps store.PlaybooksStore, fs *files.Service, logger *utils.Logger) *PlaybooksHandler {
	return &PlaybooksHandler{cfg: cfg, store: ps, files: fs, logger: logger}
}

type stepPayload struct {
	StepNumber      int      `json:"step_number"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ActionItems     []string `json:"action_items"`
	ExpectedOutcome string   `json:"expected_outcome"`
	EstimatedTime   string   `json:"estimated_time"`
	Prerequisites   []string `json:"prerequisites"`
}

func (h *PlaybooksHandler) List(w http.ResponseWriter, r *http.Request) {
	playbooks, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	h.logger.Infof("Retrieved %d playbooks", len(playbooks))
	writeList(w, playbooks, len(playbooks))
}

func (h *PlaybooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	playbook, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	h.logger.Infof("Retrieved playbook: %s", id)
	writeData(w, http.StatusOK, playbook)
}

func (h *PlaybooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name              string        `json:"name"`
		Description       string        `json:"description"`
		IncidentTypes     []string      `json:"incident_types"`
		SeverityLevels    []string      `json:"severity_levels"`
		EstimatedDuration string        `json:"estimated_duration"`
		IsActive          *bool         `json:"is_active"`
		Steps             []stepPayload `json:"steps"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := validate.Playbook(payload.Name, payload.Description); err != nil {
		respondError(w, h.cfg, h.logger, err, "")
		return
	}
	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	in := store.NewPlaybook{
		Name:              payload.Name,
		Description:       payload.Description,
		IncidentTypes:     payload.IncidentTypes,
		SeverityLevels:    payload.SeverityLevels,
		EstimatedDuration: payload.EstimatedDuration,
		IsActive:          active,
	}
	for _, s := range payload.Steps {
		in.Steps = append(in.Steps, store.NewStep{
			StepNumber:      s.StepNumber,
			Title:           s.Title,
			Description:     s.Description,
			ActionItems:     s.ActionItems,
			ExpectedOutcome: s.ExpectedOutcome,
			EstimatedTime:   s.EstimatedTime,
			Prerequisites:   s.Prerequisites,
		})
	}
	playbook, err := h.store.Create(r.Context(), in)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	h.logger.Infof("Created playbook: %s", playbook.UID)
	writeMessage(w, http.StatusCreated, "Playbook created successfully", playbook)
}

func (h *PlaybooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var patch store.PlaybookPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Name != nil || patch.Description != nil {
		if err := validate.PlaybookPatch(patch); err != nil {
			respondError(w, h.cfg, h.logger, err, "")
			return
		}
	}
	playbook, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	h.logger.Infof("Updated playbook: %s", id)
	writeMessage(w, http.StatusOK, "Playbook updated successfully", playbook)
}

func (h *PlaybooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	// Drop the diagram blob along with the playbook.
	if pb, err := h.store.Get(r.Context(), id); err == nil && pb.FlowDiagramURL != "" {
		if err := h.files.RemoveDiagram(diagramStoredName(pb.FlowDiagramURL)); err != nil {
			h.logger.Warnf("could not remove diagram for playbook %s: %v", id, err)
		}
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	h.logger.Infof("Deleted playbook: %s", id)
	writeMessageOnly(w, http.StatusOK, "Playbook deleted successfully")
}
