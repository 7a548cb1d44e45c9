package handlers

import (
	"net/http"

	"incident-tracker/config"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
	"incident-tracker/core/validate"
)

type UsersHandler struct {
	cfg    *config.AppConfig
	store  store.UsersStore
	logger *utils.Logger
}

func NewUsersHandler(cfg *config.AppConfig, us store.UsersStore, logger *utils.Logger) *UsersHandler {
	return &UsersHandler{cfg: cfg, store: us, logger: logger}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "User not found")
		return
	}
	h.logger.Infof("Retrieved %d users", len(users))
	writeList(w, users, len(users))
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	user, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "User not found")
		return
	}
	h.logger.Infof("Retrieved user: %s", id)
	writeData(w, http.StatusOK, user)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name       string     `json:"name"`
		Email      string     `json:"email"`
		Role       store.Role `json:"role"`
		Department string     `json:"department"`
		IsActive   *bool      `json:"is_active"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := validate.User(payload.Name, payload.Email, payload.Role); err != nil {
		respondError(w, h.cfg, h.logger, err, "")
		return
	}
	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	user, err := h.store.Create(r.Context(), store.NewUser{
		Name:       payload.Name,
		Email:      payload.Email,
		Role:       payload.Role,
		Department: payload.Department,
		IsActive:   active,
	})
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "User not found")
		return
	}
	h.logger.Infof("Created user: %s", user.UID)
	writeMessage(w, http.StatusCreated, "User created successfully", user)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var patch store.UserPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Name != nil || patch.Email != nil || patch.Role != nil {
		if err := validate.UserPatch(patch); err != nil {
			respondError(w, h.cfg, h.logger, err, "")
			return
		}
	}
	user, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "User not found")
		return
	}
	h.logger.Infof("Updated user: %s", id)
	writeMessage(w, http.StatusOK, "User updated successfully", user)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, h.cfg, h.logger, err, "User not found")
		return
	}
	h.logger.Infof("Deleted user: %s", id)
	writeMessageOnly(w, http.StatusOK, "User deleted successfully")
}
