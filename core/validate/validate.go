// Package validate checks inbound payloads before they reach the stores.
// Each check collects every violation and reports them all at once, so a
// client fixes a bad request in one round trip.
package validate

import (
	"regexp"
	"strings"

	"incident-tracker/core/store"
)

// Error carries the joined violation list. Handlers map it to 400.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return strings.Join(e.Violations, ", ")
}

func collect(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validSeverity(s store.Severity) bool {
	switch s {
	case store.SeverityHigh, store.SeverityMedium, store.SeverityLow:
		return true
	}
	return false
}

func validTLP(t store.TLP) bool {
	switch t {
	case store.TLPRed, store.TLPAmber, store.TLPGreen, store.TLPWhite:
		return true
	}
	return false
}

func validStatus(s store.Status) bool {
	switch s {
	case store.StatusOpen, store.StatusInProgress, store.StatusResolved, store.StatusClosed:
		return true
	}
	return false
}

func validRole(r store.Role) bool {
	switch r {
	case store.RoleIncidentCommander, store.RoleAnalyst, store.RoleTechnicalLead:
		return true
	}
	return false
}

func Incident(title string, severity store.Severity, tlp store.TLP, status store.Status) error {
	var violations []string
	if strings.TrimSpace(title) == "" {
		violations = append(violations, "Title is required")
	}
	if !validSeverity(severity) {
		violations = append(violations, "Severity must be one of: High, Medium, Low")
	}
	if !validTLP(tlp) {
		violations = append(violations, "TLP must be one of: Red, Amber, Green, White")
	}
	if !validStatus(status) {
		violations = append(violations, "Status must be one of: Open, InProgress, Resolved, Closed")
	}
	return collect(violations)
}

// IncidentPatch checks only the enum fields the patch actually carries.
// Absent fields are the stored values' business, not the patch's.
func IncidentPatch(patch store.IncidentPatch) error {
	merged := struct {
		title    string
		severity store.Severity
		tlp      store.TLP
		status   store.Status
	}{
		title:    "temp",
		severity: store.SeverityMedium,
		tlp:      store.TLPAmber,
		status:   store.StatusOpen,
	}
	if patch.Title != nil {
		merged.title = *patch.Title
	}
	if patch.Severity != nil {
		merged.severity = *patch.Severity
	}
	if patch.TLP != nil {
		merged.tlp = *patch.TLP
	}
	if patch.Status != nil {
		merged.status = *patch.Status
	}
	return Incident(merged.title, merged.severity, merged.tlp, merged.status)
}

func User(name, email string, role store.Role) error {
	var violations []string
	if strings.TrimSpace(name) == "" {
		violations = append(violations, "Name is required")
	}
	if !emailPattern.MatchString(email) {
		violations = append(violations, "Valid email is required")
	}
	if !validRole(role) {
		violations = append(violations, "Role must be one of: incident_commander, analyst, technical_lead")
	}
	return collect(violations)
}

func UserPatch(patch store.UserPatch) error {
	name, email := "temp", "temp@temp.temp"
	role := store.RoleAnalyst
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.Role != nil {
		role = *patch.Role
	}
	return User(name, email, role)
}

func Playbook(name, description string) error {
	var violations []string
	if strings.TrimSpace(name) == "" {
		violations = append(violations, "Name is required")
	}
	if strings.TrimSpace(description) == "" {
		violations = append(violations, "Description is required")
	}
	return collect(violations)
}

func PlaybookPatch(patch store.PlaybookPatch) error {
	name, description := "temp", "temp"
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.Description != nil {
		description = *patch.Description
	}
	return Playbook(name, description)
}

func validArtifactType(t store.ArtifactType) bool {
	switch t {
	case store.ArtifactIP, store.ArtifactDomain, store.ArtifactHash, store.ArtifactURL, store.ArtifactEmail:
		return true
	}
	return false
}

func validArtifactStatus(s store.ArtifactStatus) bool {
	switch s {
	case store.ArtifactMalicious, store.ArtifactClean, store.ArtifactUnknown:
		return true
	}
	return false
}

func validArtifactKind(k store.ArtifactKind) bool {
	switch k {
	case store.KindAsset, store.KindIOC:
		return true
	}
	return false
}

func Artifact(value string, typ store.ArtifactType, status store.ArtifactStatus, kind store.ArtifactKind) error {
	var violations []string
	if strings.TrimSpace(value) == "" {
		violations = append(violations, "Value is required")
	}
	if !validArtifactType(typ) {
		violations = append(violations, "Artifact type must be one of: ip, domain, hash, url, email")
	}
	if !validArtifactStatus(status) {
		violations = append(violations, "Status must be one of: malicious, clean, unknown")
	}
	if !validArtifactKind(kind) {
		violations = append(violations, "Kind must be one of: asset, ioc")
	}
	return collect(violations)
}

func ArtifactPatch(patch store.ArtifactPatch) error {
	value := "temp"
	typ := store.ArtifactIP
	status := store.ArtifactUnknown
	kind := store.KindIOC
	if patch.Value != nil {
		value = *patch.Value
	}
	if patch.Type != nil {
		typ = *patch.Type
	}
	if patch.Status != nil {
		status = *patch.Status
	}
	if patch.Kind != nil {
		kind = *patch.Kind
	}
	return Artifact(value, typ, status, kind)
}

func Reference(title, link string) error {
	var violations []string
	if strings.TrimSpace(title) == "" {
		violations = append(violations, "Title is required")
	}
	if strings.TrimSpace(link) == "" {
		violations = append(violations, "Link is required")
	}
	return collect(violations)
}
