package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"time"

	"incident-tracker/core/files"
	"incident-tracker/core/store"
)

// UploadFile accepts one multipart attachment under the "file" field. The
// blob is written to disk first and compensated away again if recording the
// metadata fails, so a failed request leaves nothing behind.
func (h *IncidentsHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, h.files.MaxBytes())
	file, header, err := r.FormFile("file")
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
	if !files.Allowed(header.Filename, mimeType) {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("Invalid file type: %s. Only images, documents, and archives are allowed.", mimeType))
		return
	}

	now := time.Now().UTC()
	storedName := files.StoredName(header.Filename, now)
	size, err := h.files.Save(storedName, file)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}

	meta := store.FileAttachment{
		Filename:   header.Filename,
		StoredName: storedName,
		Size:       size,
		MimeType:   mimeType,
		UploadedAt: now,
	}
	attached, err := h.store.AddFile(r.Context(), id, meta)
	if err != nil {
		if rmErr := h.files.Remove(storedName); rmErr != nil {
			h.logger.Warnf("could not remove %s after failed upload: %v", storedName, rmErr)
		}
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}

	h.logger.Infof("Uploaded file %s to incident: %s", storedName, id)
	writeMessage(w, http.StatusOK, "File uploaded successfully", map[string]any{
		"file":  meta,
		"files": attached,
	})
}

func (h *IncidentsHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	filename := urlParam(r, "filename")

	attached, err := h.store.ListFiles(r.Context(), id)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	var meta *store.FileAttachment
	for i := range attached {
		if attached[i].StoredName == filename {
			meta = &attached[i]
			break
		}
	}
	if meta == nil {
		writeErr(w, http.StatusNotFound, "File not found")
		return
	}

	f, err := h.files.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			writeErr(w, http.StatusNotFound, "File not found on server")
			return
		}
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", meta.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Filename))
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warnf("download of %s interrupted: %v", filename, err)
	}
}

func (h *IncidentsHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	filename := urlParam(r, "filename")

	attached, err := h.store.RemoveFile(r.Context(), id, filename)
	if err != nil {
		respondError(w, h.cfg, h.logger, err, "Incident not found")
		return
	}
	if err := h.files.Remove(filename); err != nil {
		h.logger.Warnf("could not remove %s: %v", filename, err)
	}

	h.logger.Infof("Removed file %s from incident: %s", filename, id)
	writeMessage(w, http.StatusOK, "File removed successfully", map[string]any{
		"files": attached,
	})
}
