package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"incident-tracker/core/store"
)

// In-memory stand-ins for the graph-backed stores, enough to drive the
// HTTP surface without a database.

type fakeIncidentsStore struct {
	mu        sync.Mutex
	seq       int
	incidents map[string]*store.Incident
	err       error
}

func newFakeIncidentsStore() *fakeIncidentsStore {
	return &fakeIncidentsStore{incidents: map[string]*store.Incident{}}
}

func (f *fakeIncidentsStore) nextID() string {
	f.seq++
	return fmt.Sprintf("inc-%d", f.seq)
}

func (f *fakeIncidentsStore) List(ctx context.Context) ([]store.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []store.Incident{}
	for _, inc := range f.incidents {
		out = append(out, *inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeIncidentsStore) Get(ctx context.Context, id string) (*store.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	inc, ok := f.incidents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *inc
	return &cp, nil
}

func (f *fakeIncidentsStore) Create(ctx context.Context, in store.NewIncident) (*store.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now().UTC()
	inc := &store.Incident{
		UID:         f.nextID(),
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		TLP:         in.TLP,
		Status:      in.Status,
		Files:       []store.FileAttachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, na := range in.Artifacts {
		inc.Artifacts = append(inc.Artifacts, store.Artifact{
			UID:       fmt.Sprintf("%s-a%d", inc.UID, len(inc.Artifacts)+1),
			Value:     na.Value,
			Type:      na.Type,
			Status:    na.Status,
			Kind:      na.Kind,
			Notes:     na.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	f.incidents[inc.UID] = inc
	cp := *inc
	return &cp, nil
}

func (f *fakeIncidentsStore) Update(ctx context.Context, id string, patch store.IncidentPatch) (*store.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	inc, ok := f.incidents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := time.Now().UTC()
	inc.UpdatedAt = now
	if patch.Title != nil {
		inc.Title = *patch.Title
	}
	if patch.Description != nil {
		inc.Description = *patch.Description
	}
	if patch.Severity != nil {
		inc.Severity = *patch.Severity
	}
	if patch.TLP != nil {
		inc.TLP = *patch.TLP
	}
	if patch.Status != nil {
		inc.Status = *patch.Status
		if patch.Status.Closed() {
			inc.ClosedAt = &now
		} else {
			inc.ClosedAt = nil
		}
	}
	cp := *inc
	return &cp, nil
}

func (f *fakeIncidentsStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.incidents, id)
	return nil
}

func (f *fakeIncidentsStore) AddArtifact(ctx context.Context, incidentID string, in store.NewArtifact) (*store.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := time.Now().UTC()
	a := store.Artifact{
		UID:       fmt.Sprintf("%s-a%d", incidentID, len(inc.Artifacts)+1),
		Value:     in.Value,
		Type:      in.Type,
		Status:    in.Status,
		Kind:      in.Kind,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inc.Artifacts = append(inc.Artifacts, a)
	return &a, nil
}

func (f *fakeIncidentsStore) AddReference(ctx context.Context, incidentID string, in store.NewReference) (*store.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	ref := store.Reference{
		UID:       fmt.Sprintf("%s-r%d", incidentID, len(inc.References)+1),
		Title:     in.Title,
		Link:      in.Link,
		CreatedAt: time.Now().UTC(),
	}
	inc.References = append(inc.References, ref)
	return &ref, nil
}

func (f *fakeIncidentsStore) AddRelatedTicket(ctx context.Context, id, relatedID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return store.ErrNotFound
	}
	related, ok := f.incidents[relatedID]
	if !ok {
		return store.ErrRelatedTicketNotFound
	}
	inc.RelatedTickets = append(inc.RelatedTickets, *related)
	return nil
}

func (f *fakeIncidentsStore) RemoveRelatedTicket(ctx context.Context, id, relatedID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return store.ErrNotFound
	}
	kept := inc.RelatedTickets[:0]
	for _, t := range inc.RelatedTickets {
		if t.UID != relatedID {
			kept = append(kept, t)
		}
	}
	inc.RelatedTickets = kept
	return nil
}

func (f *fakeIncidentsStore) ListFiles(ctx context.Context, incidentID string) ([]store.FileAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]store.FileAttachment{}, inc.Files...), nil
}

func (f *fakeIncidentsStore) AddFile(ctx context.Context, incidentID string, file store.FileAttachment) ([]store.FileAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	inc.Files = append(inc.Files, file)
	return append([]store.FileAttachment{}, inc.Files...), nil
}

func (f *fakeIncidentsStore) RemoveFile(ctx context.Context, incidentID, storedName string) ([]store.FileAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	kept := inc.Files[:0]
	for _, file := range inc.Files {
		if file.StoredName != storedName {
			kept = append(kept, file)
		}
	}
	inc.Files = kept
	return append([]store.FileAttachment{}, inc.Files...), nil
}

type fakeUsersStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*store.User
}

func newFakeUsersStore() *fakeUsersStore {
	return &fakeUsersStore{users: map[string]*store.User{}}
}

func (f *fakeUsersStore) List(ctx context.Context) ([]store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeUsersStore) Get(ctx context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersStore) Create(ctx context.Context, in store.NewUser) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC()
	u := &store.User{
		UID:        fmt.Sprintf("user-%d", f.seq),
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
		IsActive:   in.IsActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.users[u.UID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsersStore) Update(ctx context.Context, id string, patch store.UserPatch) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Department != nil {
		u.Department = *patch.Department
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (f *fakeUsersStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakePlaybooksStore struct {
	mu        sync.Mutex
	seq       int
	playbooks map[string]*store.Playbook
}

func newFakePlaybooksStore() *fakePlaybooksStore {
	return &fakePlaybooksStore{playbooks: map[string]*store.Playbook{}}
}

func (f *fakePlaybooksStore) List(ctx context.Context) ([]store.Playbook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.Playbook{}
	for _, p := range f.playbooks {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakePlaybooksStore) Get(ctx context.Context, id string) (*store.Playbook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playbooks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlaybooksStore) Create(ctx context.Context, in store.NewPlaybook) (*store.Playbook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC()
	p := &store.Playbook{
		UID:               fmt.Sprintf("pb-%d", f.seq),
		Name:              in.Name,
		Description:       in.Description,
		IncidentTypes:     in.IncidentTypes,
		SeverityLevels:    in.SeverityLevels,
		EstimatedDuration: in.EstimatedDuration,
		IsActive:          in.IsActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for i, s := range in.Steps {
		num := s.StepNumber
		if num == 0 {
			num = i + 1
		}
		p.Steps = append(p.Steps, store.PlaybookStep{
			UID:             fmt.Sprintf("%s-s%d", p.UID, i+1),
			StepNumber:      num,
			Title:           s.Title,
			Description:     s.Description,
			ActionItems:     s.ActionItems,
			ExpectedOutcome: s.ExpectedOutcome,
			EstimatedTime:   s.EstimatedTime,
			Prerequisites:   s.Prerequisites,
		})
	}
	f.playbooks[p.UID] = p
	cp := *p
	return &cp, nil
}

func (f *fakePlaybooksStore) Update(ctx context.Context, id string, patch store.PlaybookPatch) (*store.Playbook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playbooks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.IncidentTypes != nil {
		p.IncidentTypes = *patch.IncidentTypes
	}
	if patch.SeverityLevels != nil {
		p.SeverityLevels = *patch.SeverityLevels
	}
	if patch.EstimatedDuration != nil {
		p.EstimatedDuration = *patch.EstimatedDuration
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakePlaybooksStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.playbooks, id)
	return nil
}

func (f *fakePlaybooksStore) SetDiagram(ctx context.Context, id, url string) (*store.Playbook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playbooks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.FlowDiagramURL = url
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakePlaybooksStore) ClearDiagram(ctx context.Context, id string) (*store.Playbook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playbooks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.FlowDiagramURL = ""
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

type fakeArtifactsStore struct {
	mu        sync.Mutex
	artifacts map[string]*store.Artifact
}

func newFakeArtifactsStore() *fakeArtifactsStore {
	return &fakeArtifactsStore{artifacts: map[string]*store.Artifact{}}
}

func (f *fakeArtifactsStore) Get(ctx context.Context, id string) (*store.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artifacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArtifactsStore) Update(ctx context.Context, id string, patch store.ArtifactPatch) (*store.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artifacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Value != nil {
		a.Value = *patch.Value
	}
	if patch.Type != nil {
		a.Type = *patch.Type
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Kind != nil {
		a.Kind = *patch.Kind
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

func (f *fakeArtifactsStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.artifacts, id)
	return nil
}

type fakeReferencesStore struct {
	mu   sync.Mutex
	refs map[string]*store.Reference
}

func newFakeReferencesStore() *fakeReferencesStore {
	return &fakeReferencesStore{refs: map[string]*store.Reference{}}
}

func (f *fakeReferencesStore) add(ref store.Reference) *store.Reference {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ref.UID == "" {
		ref.UID = fmt.Sprintf("ref-%d", len(f.refs)+1)
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	f.refs[ref.UID] = &ref
	cp := ref
	return &cp
}

func (f *fakeReferencesStore) Get(ctx context.Context, id string) (*store.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.refs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ref
	return &cp, nil
}

func (f *fakeReferencesStore) Update(ctx context.Context, id string, patch store.ReferencePatch) (*store.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.refs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Title != nil {
		ref.Title = *patch.Title
	}
	if patch.Link != nil {
		ref.Link = *patch.Link
	}
	cp := *ref
	return &cp, nil
}

func (f *fakeReferencesStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refs, id)
	return nil
}
