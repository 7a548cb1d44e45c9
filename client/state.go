package client

import (
	"context"
	"io"
	"sync"

	"incident-tracker/core/store"
)

// State containers mirror the server: a list, an optional current entity, a
// loading flag and the last error string. Every mutation refetches the full
// list instead of patching locally, so the container never drifts from the
// server's view. Server error strings are kept verbatim.

type IncidentsState struct {
	mu      sync.Mutex
	client  *Client
	items   []store.Incident
	current *store.Incident
	loading bool
	lastErr string
}

func NewIncidentsState(c *Client) *IncidentsState {
	return &IncidentsState{client: c}
}

func (s *IncidentsState) Items() []store.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Incident(nil), s.items...)
}

func (s *IncidentsState) Current() *store.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *IncidentsState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *IncidentsState) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *IncidentsState) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *IncidentsState) finish(err error) error {
	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
	}
	s.loading = false
	s.mu.Unlock()
	return err
}

func (s *IncidentsState) Fetch(ctx context.Context) error {
	s.begin()
	items, err := s.client.ListIncidents(ctx)
	if err == nil {
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
	}
	return s.finish(err)
}

func (s *IncidentsState) FetchOne(ctx context.Context, id string) error {
	s.begin()
	incident, err := s.client.GetIncident(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.current = incident
		s.mu.Unlock()
	}
	return s.finish(err)
}

// refreshList re-reads the full list after a mutation and, when the mutation
// touched the current incident, re-reads that too.
func (s *IncidentsState) refreshList(ctx context.Context, touched string) error {
	items, err := s.client.ListIncidents(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	refreshCurrent := s.current != nil && touched != "" && s.current.UID == touched
	s.mu.Unlock()
	if refreshCurrent {
		incident, err := s.client.GetIncident(ctx, touched)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.current = incident
		s.mu.Unlock()
	}
	return nil
}

func (s *IncidentsState) Create(ctx context.Context, in IncidentRequest) error {
	s.begin()
	_, err := s.client.CreateIncident(ctx, in)
	if err == nil {
		err = s.refreshList(ctx, "")
	}
	return s.finish(err)
}

func (s *IncidentsState) Update(ctx context.Context, id string, patch store.IncidentPatch) error {
	s.begin()
	_, err := s.client.UpdateIncident(ctx, id, patch)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

func (s *IncidentsState) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.client.DeleteIncident(ctx, id)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = nil
		}
		s.mu.Unlock()
		err = s.refreshList(ctx, "")
	}
	return s.finish(err)
}

func (s *IncidentsState) AddArtifact(ctx context.Context, id string, in ArtifactRequest) error {
	s.begin()
	_, err := s.client.AddArtifact(ctx, id, in)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

func (s *IncidentsState) AddReference(ctx context.Context, id string, in ReferenceRequest) error {
	s.begin()
	_, err := s.client.AddReference(ctx, id, in)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

func (s *IncidentsState) AddRelatedTicket(ctx context.Context, id, relatedID string) error {
	s.begin()
	err := s.client.AddRelatedTicket(ctx, id, relatedID)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

func (s *IncidentsState) RemoveRelatedTicket(ctx context.Context, id, relatedID string) error {
	s.begin()
	err := s.client.RemoveRelatedTicket(ctx, id, relatedID)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

func (s *IncidentsState) UploadFile(ctx context.Context, id, filename, mimeType string, content io.Reader) error {
	s.begin()
	_, _, err := s.client.UploadFile(ctx, id, filename, mimeType, content)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

func (s *IncidentsState) DeleteFile(ctx context.Context, id, storedName string) error {
	s.begin()
	_, err := s.client.DeleteFile(ctx, id, storedName)
	if err == nil {
		err = s.refreshList(ctx, id)
	}
	return s.finish(err)
}

type UsersState struct {
	mu      sync.Mutex
	client  *Client
	items   []store.User
	current *store.User
	loading bool
	lastErr string
}

func NewUsersState(c *Client) *UsersState {
	return &UsersState{client: c}
}

func (s *UsersState) Items() []store.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.User(nil), s.items...)
}

func (s *UsersState) Current() *store.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *UsersState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *UsersState) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *UsersState) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *UsersState) finish(err error) error {
	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
	}
	s.loading = false
	s.mu.Unlock()
	return err
}

func (s *UsersState) Fetch(ctx context.Context) error {
	s.begin()
	items, err := s.client.ListUsers(ctx)
	if err == nil {
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
	}
	return s.finish(err)
}

func (s *UsersState) FetchOne(ctx context.Context, id string) error {
	s.begin()
	user, err := s.client.GetUser(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.current = user
		s.mu.Unlock()
	}
	return s.finish(err)
}

func (s *UsersState) refreshList(ctx context.Context) error {
	items, err := s.client.ListUsers(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *UsersState) Create(ctx context.Context, in UserRequest) error {
	s.begin()
	_, err := s.client.CreateUser(ctx, in)
	if err == nil {
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

func (s *UsersState) Update(ctx context.Context, id string, patch store.UserPatch) error {
	s.begin()
	user, err := s.client.UpdateUser(ctx, id, patch)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = user
		}
		s.mu.Unlock()
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

func (s *UsersState) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.client.DeleteUser(ctx, id)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = nil
		}
		s.mu.Unlock()
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

type PlaybooksState struct {
	mu      sync.Mutex
	client  *Client
	items   []store.Playbook
	current *store.Playbook
	loading bool
	lastErr string
}

func NewPlaybooksState(c *Client) *PlaybooksState {
	return &PlaybooksState{client: c}
}

func (s *PlaybooksState) Items() []store.Playbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Playbook(nil), s.items...)
}

func (s *PlaybooksState) Current() *store.Playbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *PlaybooksState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *PlaybooksState) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *PlaybooksState) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *PlaybooksState) finish(err error) error {
	s.mu.Lock()
	if err != nil {
		s.lastErr = err.Error()
	}
	s.loading = false
	s.mu.Unlock()
	return err
}

func (s *PlaybooksState) Fetch(ctx context.Context) error {
	s.begin()
	items, err := s.client.ListPlaybooks(ctx)
	if err == nil {
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
	}
	return s.finish(err)
}

func (s *PlaybooksState) FetchOne(ctx context.Context, id string) error {
	s.begin()
	playbook, err := s.client.GetPlaybook(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.current = playbook
		s.mu.Unlock()
	}
	return s.finish(err)
}

func (s *PlaybooksState) refreshList(ctx context.Context) error {
	items, err := s.client.ListPlaybooks(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *PlaybooksState) Create(ctx context.Context, in PlaybookRequest) error {
	s.begin()
	_, err := s.client.CreatePlaybook(ctx, in)
	if err == nil {
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

func (s *PlaybooksState) Update(ctx context.Context, id string, patch store.PlaybookPatch) error {
	s.begin()
	playbook, err := s.client.UpdatePlaybook(ctx, id, patch)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = playbook
		}
		s.mu.Unlock()
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

func (s *PlaybooksState) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.client.DeletePlaybook(ctx, id)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = nil
		}
		s.mu.Unlock()
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

func (s *PlaybooksState) UploadDiagram(ctx context.Context, id, filename, mimeType string, content io.Reader) error {
	s.begin()
	playbook, err := s.client.UploadDiagram(ctx, id, filename, mimeType, content)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = playbook
		}
		s.mu.Unlock()
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}

func (s *PlaybooksState) DeleteDiagram(ctx context.Context, id string) error {
	s.begin()
	playbook, err := s.client.DeleteDiagram(ctx, id)
	if err == nil {
		s.mu.Lock()
		if s.current != nil && s.current.UID == id {
			s.current = playbook
		}
		s.mu.Unlock()
		err = s.refreshList(ctx)
	}
	return s.finish(err)
}
