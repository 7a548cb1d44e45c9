package store

import "context"

type IncidentsStore interface {
	List(ctx context.Context) ([]Incident, error)
	Get(ctx context.Context, id string) (*Incident, error)
	Create(ctx context.Context, in NewIncident) (*Incident, error)
	Update(ctx context.Context, id string, patch IncidentPatch) (*Incident, error)
	Delete(ctx context.Context, id string) error

	AddArtifact(ctx context.Context, incidentID string, in NewArtifact) (*Artifact, error)
	AddReference(ctx context.Context, incidentID string, in NewReference) (*Reference, error)

	AddRelatedTicket(ctx context.Context, id, relatedID string) error
	RemoveRelatedTicket(ctx context.Context, id, relatedID string) error

	ListFiles(ctx context.Context, incidentID string) ([]FileAttachment, error)
	AddFile(ctx context.Context, incidentID string, f FileAttachment) ([]FileAttachment, error)
	RemoveFile(ctx context.Context, incidentID, storedName string) ([]FileAttachment, error)
}

type UsersStore interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, in NewUser) (*User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	Delete(ctx context.Context, id string) error
}

type PlaybooksStore interface {
	List(ctx context.Context) ([]Playbook, error)
	Get(ctx context.Context, id string) (*Playbook, error)
	Create(ctx context.Context, in NewPlaybook) (*Playbook, error)
	Update(ctx context.Context, id string, patch PlaybookPatch) (*Playbook, error)
	Delete(ctx context.Context, id string) error

	SetDiagram(ctx context.Context, id, url string) (*Playbook, error)
	ClearDiagram(ctx context.Context, id string) (*Playbook, error)
}

type ArtifactsStore interface {
	Get(ctx context.Context, id string) (*Artifact, error)
	Update(ctx context.Context, id string, patch ArtifactPatch) (*Artifact, error)
	Delete(ctx context.Context, id string) error
}

type ReferencesStore interface {
	Get(ctx context.Context, id string) (*Reference, error)
	Update(ctx context.Context, id string, patch ReferencePatch) (*Reference, error)
	Delete(ctx context.Context, id string) error
}
