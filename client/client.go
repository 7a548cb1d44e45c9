// Package client provides typed Go bindings for the incident tracker REST
// API plus small state containers for callers that keep lists in memory.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"incident-tracker/core/store"
)

// APIError carries the server's error string verbatim along with the HTTP
// status it arrived with.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient lets callers supply their own http.Client, e.g. one with
// custom transport settings or no timeout for streaming downloads.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (*envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(&env)}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}
	return &env, nil
}

// apiMessage picks the most specific server string: validation and
// unavailability responses carry the detail in message, plain 404s only in
// error.
func apiMessage(env *envelope) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Error != "" {
		return env.Error
	}
	return "request failed"
}

// Request payloads. Field names match the server's JSON surface.

type ArtifactRequest struct {
	Value  string               `json:"value"`
	Type   store.ArtifactType   `json:"artifact_type"`
	Status store.ArtifactStatus `json:"status"`
	Kind   store.ArtifactKind   `json:"kind"`
	Notes  string               `json:"notes,omitempty"`
}

type IncidentRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Severity    store.Severity    `json:"severity"`
	TLP         store.TLP         `json:"tlp"`
	Status      store.Status      `json:"status"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	Playbook    string            `json:"playbook,omitempty"`
	Artifacts   []ArtifactRequest `json:"artifacts,omitempty"`
}

type ReferenceRequest struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type UserRequest struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       store.Role `json:"role"`
	Department string     `json:"department,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
}

type StepRequest struct {
	StepNumber      int      `json:"step_number,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	ActionItems     []string `json:"action_items,omitempty"`
	ExpectedOutcome string   `json:"expected_outcome,omitempty"`
	EstimatedTime   string   `json:"estimated_time,omitempty"`
	Prerequisites   []string `json:"prerequisites,omitempty"`
}

type PlaybookRequest struct {
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	IncidentTypes     []string      `json:"incident_types,omitempty"`
	SeverityLevels    []string      `json:"severity_levels,omitempty"`
	EstimatedDuration string        `json:"estimated_duration,omitempty"`
	IsActive          *bool         `json:"is_active,omitempty"`
	Steps             []StepRequest `json:"steps,omitempty"`
}

// Health is the liveness payload from GET /health.
type Health struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

// Incidents

func (c *Client) ListIncidents(ctx context.Context) ([]store.Incident, error) {
	var out []store.Incident
	if _, err := c.do(ctx, http.MethodGet, "/api/incidents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetIncident(ctx context.Context, id string) (*store.Incident, error) {
	var out store.Incident
	if _, err := c.do(ctx, http.MethodGet, "/api/incidents/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateIncident(ctx context.Context, in IncidentRequest) (*store.Incident, error) {
	var out store.Incident
	if _, err := c.do(ctx, http.MethodPost, "/api/incidents", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateIncident(ctx context.Context, id string, patch store.IncidentPatch) (*store.Incident, error) {
	var out store.Incident
	if _, err := c.do(ctx, http.MethodPut, "/api/incidents/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteIncident(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/incidents/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) AddArtifact(ctx context.Context, incidentID string, in ArtifactRequest) (*store.Artifact, error) {
	var out store.Artifact
	if _, err := c.do(ctx, http.MethodPost, "/api/incidents/"+url.PathEscape(incidentID)+"/artifacts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddReference(ctx context.Context, incidentID string, in ReferenceRequest) (*store.Reference, error) {
	var out store.Reference
	if _, err := c.do(ctx, http.MethodPost, "/api/incidents/"+url.PathEscape(incidentID)+"/references", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddRelatedTicket(ctx context.Context, incidentID, relatedID string) error {
	body := map[string]string{"relatedTicketId": relatedID}
	_, err := c.do(ctx, http.MethodPost, "/api/incidents/"+url.PathEscape(incidentID)+"/related-tickets", body, nil)
	return err
}

func (c *Client) RemoveRelatedTicket(ctx context.Context, incidentID, relatedID string) error {
	path := "/api/incidents/" + url.PathEscape(incidentID) + "/related-tickets/" + url.PathEscape(relatedID)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// UploadFile attaches one file to an incident and returns its stored
// metadata together with the refreshed attachment list.
func (c *Client) UploadFile(ctx context.Context, incidentID, filename, mimeType string, content io.Reader) (*store.FileAttachment, []store.FileAttachment, error) {
	path := "/api/incidents/" + url.PathEscape(incidentID) + "/files"
	req, err := multipartRequest(ctx, c.baseURL+path, "file", filename, mimeType, content)
	if err != nil {
		return nil, nil, err
	}
	var out struct {
		File  store.FileAttachment   `json:"file"`
		Files []store.FileAttachment `json:"files"`
	}
	if _, err := c.send(req, &out); err != nil {
		return nil, nil, err
	}
	return &out.File, out.Files, nil
}

// DownloadFile streams an attachment. The caller must close the reader. The
// second return value is the original filename from Content-Disposition.
func (c *Client) DownloadFile(ctx context.Context, incidentID, storedName string) (io.ReadCloser, string, error) {
	path := "/api/incidents/" + url.PathEscape(incidentID) + "/files/" + url.PathEscape(storedName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			return nil, "", &APIError{StatusCode: resp.StatusCode, Message: apiMessage(&env)}
		}
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: "download failed"}
	}
	filename := storedName
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := params["filename"]; name != "" {
			filename = name
		}
	}
	return resp.Body, filename, nil
}

func (c *Client) DeleteFile(ctx context.Context, incidentID, storedName string) ([]store.FileAttachment, error) {
	path := "/api/incidents/" + url.PathEscape(incidentID) + "/files/" + url.PathEscape(storedName)
	var out struct {
		Files []store.FileAttachment `json:"files"`
	}
	if _, err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Users

func (c *Client) ListUsers(ctx context.Context) ([]store.User, error) {
	var out []store.User
	if _, err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*store.User, error) {
	var out store.User
	if _, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserRequest) (*store.User, error) {
	var out store.User
	if _, err := c.do(ctx, http.MethodPost, "/api/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch store.UserPatch) (*store.User, error) {
	var out store.User
	if _, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
	return err
}

// Playbooks

func (c *Client) ListPlaybooks(ctx context.Context) ([]store.Playbook, error) {
	var out []store.Playbook
	if _, err := c.do(ctx, http.MethodGet, "/api/playbooks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPlaybook(ctx context.Context, id string) (*store.Playbook, error) {
	var out store.Playbook
	if _, err := c.do(ctx, http.MethodGet, "/api/playbooks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePlaybook(ctx context.Context, in PlaybookRequest) (*store.Playbook, error) {
	var out store.Playbook
	if _, err := c.do(ctx, http.MethodPost, "/api/playbooks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePlaybook(ctx context.Context, id string, patch store.PlaybookPatch) (*store.Playbook, error) {
	var out store.Playbook
	if _, err := c.do(ctx, http.MethodPut, "/api/playbooks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePlaybook(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/playbooks/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) UploadDiagram(ctx context.Context, playbookID, filename, mimeType string, content io.Reader) (*store.Playbook, error) {
	path := "/api/playbooks/" + url.PathEscape(playbookID) + "/upload-diagram"
	req, err := multipartRequest(ctx, c.baseURL+path, "diagram", filename, mimeType, content)
	if err != nil {
		return nil, err
	}
	var out store.Playbook
	if _, err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDiagram(ctx context.Context, playbookID string) (*store.Playbook, error) {
	var out store.Playbook
	if _, err := c.do(ctx, http.MethodDelete, "/api/playbooks/"+url.PathEscape(playbookID)+"/diagram", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Standalone artifacts and references

func (c *Client) GetArtifact(ctx context.Context, id string) (*store.Artifact, error) {
	var out store.Artifact
	if _, err := c.do(ctx, http.MethodGet, "/api/artifacts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateArtifact(ctx context.Context, id string, patch store.ArtifactPatch) (*store.Artifact, error) {
	var out store.Artifact
	if _, err := c.do(ctx, http.MethodPut, "/api/artifacts/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteArtifact(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/artifacts/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) GetReference(ctx context.Context, id string) (*store.Reference, error) {
	var out store.Reference
	if _, err := c.do(ctx, http.MethodGet, "/api/references/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReference(ctx context.Context, id string, patch store.ReferencePatch) (*store.Reference, error) {
	var out store.Reference
	if _, err := c.do(ctx, http.MethodPut, "/api/references/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReference(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/references/"+url.PathEscape(id), nil, nil)
	return err
}

// Health does not use the envelope.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "health check failed"}
	}
	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &out, nil
}

func multipartRequest(ctx context.Context, fullURL, field, filename, mimeType string, content io.Reader) (*http.Request, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}
