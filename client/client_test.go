package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"incident-tracker/core/store"
)

// apiStub is a minimal in-process stand-in for the real server: it keeps
// incidents in a map and answers with the same envelope shapes.
type apiStub struct {
	mu        sync.Mutex
	seq       int
	incidents map[string]*store.Incident
	requests  []string
}

func newAPIStub() *apiStub {
	return &apiStub{incidents: map[string]*store.Incident{}}
}

func (s *apiStub) record(r *http.Request) {
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
}

func (s *apiStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/incidents", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.record(r)
		switch r.Method {
		case http.MethodGet:
			items := []store.Incident{}
			for _, inc := range s.incidents {
				items = append(items, *inc)
			}
			writeStubJSON(w, http.StatusOK, map[string]any{
				"success": true, "count": len(items), "data": items,
			})
		case http.MethodPost:
			var payload IncidentRequest
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				writeStubJSON(w, http.StatusBadRequest, map[string]any{
					"success": false, "error": "Validation error", "message": "Request body must be valid JSON",
				})
				return
			}
			if payload.Title == "" {
				writeStubJSON(w, http.StatusBadRequest, map[string]any{
					"success": false, "error": "Validation error", "message": "Title is required",
				})
				return
			}
			s.seq++
			inc := &store.Incident{
				UID:      fmt.Sprintf("inc-%d", s.seq),
				Title:    payload.Title,
				Severity: payload.Severity,
				TLP:      payload.TLP,
				Status:   payload.Status,
			}
			s.incidents[inc.UID] = inc
			writeStubJSON(w, http.StatusCreated, map[string]any{
				"success": true, "message": "Incident created successfully", "data": inc,
			})
		}
	})
	mux.HandleFunc("/api/incidents/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.record(r)
		id := strings.TrimPrefix(r.URL.Path, "/api/incidents/")
		inc, ok := s.incidents[id]
		if !ok {
			writeStubJSON(w, http.StatusNotFound, map[string]any{
				"success": false, "error": "Incident not found",
			})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeStubJSON(w, http.StatusOK, map[string]any{"success": true, "data": inc})
		case http.MethodPut:
			var patch store.IncidentPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err == nil && patch.Status != nil {
				inc.Status = *patch.Status
				if inc.Status.Closed() {
					now := time.Now().UTC()
					inc.ClosedAt = &now
				} else {
					inc.ClosedAt = nil
				}
			}
			writeStubJSON(w, http.StatusOK, map[string]any{
				"success": true, "message": "Incident updated successfully", "data": inc,
			})
		case http.MethodDelete:
			delete(s.incidents, id)
			writeStubJSON(w, http.StatusOK, map[string]any{
				"success": true, "message": "Incident deleted successfully",
			})
		}
	})
	return mux
}

func writeStubJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func TestClientIncidentCRUD(t *testing.T) {
	stub := newAPIStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	inc, err := c.CreateIncident(ctx, IncidentRequest{
		Title: "Phishing wave", Severity: store.SeverityMedium, TLP: store.TLPAmber, Status: store.StatusOpen,
	})
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if inc.UID == "" || inc.Title != "Phishing wave" {
		t.Fatalf("unexpected incident %+v", inc)
	}

	items, err := c.ListIncidents(ctx)
	if err != nil {
		t.Fatalf("ListIncidents: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 incident, got %d", len(items))
	}

	resolved := store.StatusResolved
	updated, err := c.UpdateIncident(ctx, inc.UID, store.IncidentPatch{Status: &resolved})
	if err != nil {
		t.Fatalf("UpdateIncident: %v", err)
	}
	if updated.ClosedAt == nil {
		t.Fatal("resolving should set closed_at")
	}

	if err := c.DeleteIncident(ctx, inc.UID); err != nil {
		t.Fatalf("DeleteIncident: %v", err)
	}
	if _, err := c.GetIncident(ctx, inc.UID); err == nil {
		t.Fatal("expected error for deleted incident")
	}
}

func TestClientSurfacesServerErrorVerbatim(t *testing.T) {
	stub := newAPIStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.GetIncident(ctx, "no-such")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Incident not found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}

	_, err = c.CreateIncident(ctx, IncidentRequest{Severity: store.SeverityHigh, TLP: store.TLPRed, Status: store.StatusOpen})
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "Title is required" {
		t.Fatalf("validation detail not surfaced: %q", apiErr.Message)
	}
}

func TestClientUploadAndDownload(t *testing.T) {
	var gotField, gotFilename, gotContent string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/incidents/inc-1/files", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeStubJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "No file uploaded"})
			return
		}
		defer file.Close()
		raw, _ := io.ReadAll(file)
		gotField, gotFilename, gotContent = "file", header.Filename, string(raw)
		meta := store.FileAttachment{Filename: header.Filename, StoredName: "report-123-abcd1234.pdf", Size: int64(len(raw)), MimeType: "application/pdf"}
		writeStubJSON(w, http.StatusOK, map[string]any{
			"success": true, "message": "File uploaded successfully",
			"data": map[string]any{"file": meta, "files": []store.FileAttachment{meta}},
		})
	})
	mux.HandleFunc("/api/incidents/inc-1/files/report-123-abcd1234.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF fake")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	meta, files, err := c.UploadFile(ctx, "inc-1", "report.pdf", "application/pdf", strings.NewReader("%PDF fake"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if gotField != "file" || gotFilename != "report.pdf" || gotContent != "%PDF fake" {
		t.Fatalf("multipart not as expected: %q %q %q", gotField, gotFilename, gotContent)
	}
	if meta.StoredName != "report-123-abcd1234.pdf" || len(files) != 1 {
		t.Fatalf("unexpected upload response %+v %v", meta, files)
	}

	body, filename, err := c.DownloadFile(ctx, "inc-1", meta.StoredName)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	defer body.Close()
	raw, _ := io.ReadAll(body)
	if string(raw) != "%PDF fake" {
		t.Fatalf("unexpected content %q", raw)
	}
	if filename != "report.pdf" {
		t.Fatalf("expected original filename, got %q", filename)
	}
}

func TestIncidentsStateRefetchesAfterMutation(t *testing.T) {
	stub := newAPIStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()
	state := NewIncidentsState(New(srv.URL))
	ctx := context.Background()

	if err := state.Create(ctx, IncidentRequest{
		Title: "Malware beacon", Severity: store.SeverityHigh, TLP: store.TLPRed, Status: store.StatusOpen,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if state.Loading() {
		t.Fatal("loading should be cleared after Create")
	}
	items := state.Items()
	if len(items) != 1 || items[0].Title != "Malware beacon" {
		t.Fatalf("state not refreshed: %+v", items)
	}

	// The container must have re-fetched the list, not patched locally.
	var sawListAfterCreate bool
	for i, line := range stub.requests {
		if line == "POST /api/incidents" && i+1 < len(stub.requests) && stub.requests[i+1] == "GET /api/incidents" {
			sawListAfterCreate = true
		}
	}
	if !sawListAfterCreate {
		t.Fatalf("expected list refetch after create, requests: %v", stub.requests)
	}

	if err := state.Delete(ctx, items[0].UID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(state.Items()) != 0 {
		t.Fatal("state should be empty after delete")
	}
}

func TestStateCapturesErrorVerbatim(t *testing.T) {
	stub := newAPIStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()
	state := NewIncidentsState(New(srv.URL))
	ctx := context.Background()

	if err := state.FetchOne(ctx, "no-such"); err == nil {
		t.Fatal("expected error")
	}
	if state.Err() != "Incident not found" {
		t.Fatalf("error not kept verbatim: %q", state.Err())
	}
	if state.Loading() {
		t.Fatal("loading should be cleared after a failure")
	}

	// The next successful action clears the stale error.
	if err := state.Fetch(ctx); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if state.Err() != "" {
		t.Fatalf("error should be cleared, got %q", state.Err())
	}
}
