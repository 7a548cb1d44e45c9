package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"time"

	"incident-tracker/core/files"
)

const diagramURLPrefix = "/api/playbooks/diagrams/"

func diagramStoredName(url string) string {
	return path.Base(url)
}

// UploadDiagram attaches a flow diagram to a playbook. The slot holds one
// file: a new upload replaces and deletes the previous one.
func (h *PlaybooksHandler) UploadDiagram(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	previous := ""
	if pb, err := h.store.Get(r.Context(), id); err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	} else if pb.FlowDiagramURL != "" {
		previous = diagramStoredName(pb.FlowDiagramURL)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.files.MaxBytes())
	file, header, err := r.FormFile("diagram")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErr(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %d bytes", h.files.MaxBytes()))
			return
		}
		writeErr(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	if !files.AllowedDiagram(header.Filename, mimeType) {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("Invalid file type: %s. Only images and PDF diagrams are allowed.", mimeType))
		return
	}

	storedName := files.StoredName(header.Filename, time.Now().UTC())
	if _, err := h.files.SaveDiagram(storedName, file); err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}

	playbook, err := h.store.SetDiagram(r.Context(), id, diagramURLPrefix+storedName)
	if err != nil {
		if rmErr := h.files.RemoveDiagram(storedName); rmErr != nil {
			h.logger.Warnf("could not remove %s after failed upload: %v", storedName, rmErr)
		}
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	if previous != "" && previous != storedName {
		if err := h.files.RemoveDiagram(previous); err != nil {
			h.logger.Warnf("could not remove replaced diagram %s: %v", previous, err)
		}
	}

	h.logger.Infof("Uploaded diagram %s for playbook: %s", storedName, id)
	writeMessage(w, http.StatusOK, "Diagram uploaded successfully", playbook)
}

func (h *PlaybooksHandler) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	pb, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	if pb.FlowDiagramURL != "" {
		if err := h.files.RemoveDiagram(diagramStoredName(pb.FlowDiagramURL)); err != nil {
			h.logger.Warnf("could not remove diagram for playbook %s: %v", id, err)
		}
	}

	playbook, err := h.store.ClearDiagram(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	h.logger.Infof("Removed diagram from playbook: %s", id)
	writeMessage(w, http.StatusOK, "Diagram removed successfully", playbook)
}

func (h *PlaybooksHandler) ServeDiagram(w http.ResponseWriter, r *http.Request) {
	filename := urlParam(r, "filename")

	f, err := h.files.OpenDiagram(filename)
	if err != nil {
		if os.IsNotExist(err) {
			writeErr(w, http.StatusNotFound, "File not found on server")
			return
		}
		respondError(w, h.cfg, h.logger, err, "Playbook not found")
		return
	}
	defer f.Close()

	if mimeType := mime.TypeByExtension(path.Ext(filename)); mimeType != "" {
		w.Header().Set("Content-Type", mimeType)
	}
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warnf("diagram download %s interrupted: %v", filename, err)
	}
}
