package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an entity is absent or carries the wrong
// label for the requested type.
var ErrNotFound = errors.New("not found")

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

type TLP string

const (
	TLPRed   TLP = "Red"
	TLPAmber TLP = "Amber"
	TLPGreen TLP = "Green"
	TLPWhite TLP = "White"
)

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Closed reports whether the status stamps closed_at.
func (s Status) Closed() bool {
	return s == StatusResolved || s == StatusClosed
}

type Role string

const (
	RoleIncidentCommander Role = "incident_commander"
	RoleAnalyst           Role = "analyst"
	RoleTechnicalLead     Role = "technical_lead"
)

type ArtifactType string

const (
	ArtifactIP     ArtifactType = "ip"
	ArtifactDomain ArtifactType = "domain"
	ArtifactHash   ArtifactType = "hash"
	ArtifactURL    ArtifactType = "url"
	ArtifactEmail  ArtifactType = "email"
)

type ArtifactStatus string

const (
	ArtifactMalicious ArtifactStatus = "malicious"
	ArtifactClean     ArtifactStatus = "clean"
	ArtifactUnknown   ArtifactStatus = "unknown"
)

type ArtifactKind string

const (
	KindAsset ArtifactKind = "asset"
	KindIOC   ArtifactKind = "ioc"
)

type User struct {
	UID               string     `json:"uid"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	Department        string     `json:"department"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	AssignedIncidents []Incident `json:"assigned_incidents,omitempty"`
}

// FileAttachment is one uploaded file on an incident, kept as a structured
// record rather than an opaque string so reads never re-parse metadata.
type FileAttachment struct {
	Filename   string    `json:"filename"`
	StoredName string    `json:"storedName"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimetype"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Incident struct {
	UID            string           `json:"uid"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Severity       Severity         `json:"severity"`
	TLP            TLP              `json:"tlp"`
	Status         Status           `json:"status"`
	Files          []FileAttachment `json:"files"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	AssignedTo     *User            `json:"assigned_to,omitempty"`
	Artifacts      []Artifact       `json:"artifacts,omitempty"`
	References     []Reference      `json:"references,omitempty"`
	RelatedTickets []Incident       `json:"related_tickets,omitempty"`
	Playbook       *Playbook        `json:"playbook,omitempty"`
}

type Artifact struct {
	UID       string         `json:"uid"`
	Value     string         `json:"value"`
	Type      ArtifactType   `json:"artifact_type"`
	Status    ArtifactStatus `json:"status"`
	Kind      ArtifactKind   `json:"kind"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Incident  *Incident      `json:"incident,omitempty"`
}

type Reference struct {
	UID       string    `json:"uid"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
	Incident  *Incident `json:"incident,omitempty"`
}

type Playbook struct {
	UID               string         `json:"uid"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	IncidentTypes     []string       `json:"incident_types,omitempty"`
	SeverityLevels    []string       `json:"severity_levels,omitempty"`
	EstimatedDuration string         `json:"estimated_duration"`
	IsActive          bool           `json:"is_active"`
	FlowDiagramURL    string         `json:"flow_diagram_url,omitempty"`
	Steps             []PlaybookStep `json:"steps,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type PlaybookStep struct {
	UID             string   `json:"uid"`
	StepNumber      int      `json:"step_number"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ActionItems     []string `json:"action_items,omitempty"`
	ExpectedOutcome string   `json:"expected_outcome"`
	EstimatedTime   string   `json:"estimated_time"`
	Prerequisites   []string `json:"prerequisites,omitempty"`
}

// Creation payloads. Handlers validate these before the store sees them;
// timestamps and ids are stamped by the store.

type NewIncident struct {
	Title       string
	Description string
	Severity    Severity
	TLP         TLP
	Status      Status
	AssignedTo  string
	Playbook    string
	Artifacts   []NewArtifact
}

type NewArtifact struct {
	Value  string
	Type   ArtifactType
	Status ArtifactStatus
	Kind   ArtifactKind
	Notes  string
}

type NewReference struct {
	Title string
	Link  string
}

type NewUser struct {
	Name       string
	Email      string
	Role       Role
	Department string
	IsActive   bool
}

type NewPlaybook struct {
	Name              string
	Description       string
	IncidentTypes     []string
	SeverityLevels    []string
	EstimatedDuration string
	IsActive          bool
	Steps             []NewStep
}

type NewStep struct {
	StepNumber      int
	Title           string
	Description     string
	ActionItems     []string
	ExpectedOutcome string
	EstimatedTime   string
	Prerequisites   []string
}

// Patch payloads: nil means "leave the field alone". Updates apply only the
// supplied fields and always refresh updated_at.

type IncidentPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Severity    *Severity `json:"severity"`
	TLP         *TLP      `json:"tlp"`
	Status      *Status   `json:"status"`
	AssignedTo  *string   `json:"assigned_to"`
	Playbook    *string   `json:"playbook"`
}

type UserPatch struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *Role   `json:"role"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
}

type ArtifactPatch struct {
	Value  *string         `json:"value"`
	Type   *ArtifactType   `json:"artifact_type"`
	Status *ArtifactStatus `json:"status"`
	Kind   *ArtifactKind   `json:"kind"`
	Notes  *string         `json:"notes"`
}

type ReferencePatch struct {
	Title *string `json:"title"`
	Link  *string `json:"link"`
}

type PlaybookPatch struct {
	Name              *string   `json:"name"`
	Description       *string   `json:"description"`
	IncidentTypes     *[]string `json:"incident_types"`
	SeverityLevels    *[]string `json:"severity_levels"`
	EstimatedDuration *string   `json:"estimated_duration"`
	IsActive          *bool     `json:"is_active"`
}
