package validate

import (
	"errors"
	"strings"
	"testing"

	"incident-tracker/core/store"
)

func TestIncidentCollectsAllViolations(t *testing.T) {
	err := Incident("", "Critical", "Purple", "Done")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(verr.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(verr.Violations), verr.Violations)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Title is required") {
		t.Errorf("missing title violation in %q", msg)
	}
	if !strings.Contains(msg, "Severity must be one of: High, Medium, Low") {
		t.Errorf("missing severity violation in %q", msg)
	}
	if !strings.Contains(msg, ", ") {
		t.Errorf("violations should be comma-joined: %q", msg)
	}
}

func TestIncidentValid(t *testing.T) {
	if err := Incident("Ransomware on FS-01", store.SeverityHigh, store.TLPRed, store.StatusOpen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIncidentWhitespaceTitle(t *testing.T) {
	err := Incident("   ", store.SeverityLow, store.TLPGreen, store.StatusOpen)
	if err == nil || !strings.Contains(err.Error(), "Title is required") {
		t.Fatalf("whitespace-only title should be rejected, got %v", err)
	}
}

func TestIncidentPatchChecksOnlyPresentFields(t *testing.T) {
	// A patch with no enum fields passes even though nothing is supplied.
	title := "Updated title"
	if err := IncidentPatch(store.IncidentPatch{Title: &title}); err != nil {
		t.Fatalf("title-only patch should pass: %v", err)
	}

	bad := store.Severity("Catastrophic")
	err := IncidentPatch(store.IncidentPatch{Severity: &bad})
	if err == nil {
		t.Fatal("invalid severity in patch should be rejected")
	}
	if got := err.Error(); got != "Severity must be one of: High, Medium, Low" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUserEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"alice.johnson@company.com", true},
		{"a@b.co", true},
		{"not-an-email", false},
		{"spaces in@side.com", false},
		{"missing@tld", false},
		{"", false},
	}
	for _, tc := range cases {
		err := User("Alice", tc.email, store.RoleAnalyst)
		if tc.ok && err != nil {
			t.Errorf("email %q should pass: %v", tc.email, err)
		}
		if !tc.ok && (err == nil || !strings.Contains(err.Error(), "Valid email is required")) {
			t.Errorf("email %q should fail with email violation, got %v", tc.email, err)
		}
	}
}

func TestUserRole(t *testing.T) {
	err := User("Bob", "bob@company.com", "superadmin")
	if err == nil || err.Error() != "Role must be one of: incident_commander, analyst, technical_lead" {
		t.Fatalf("unexpected result %v", err)
	}
}

func TestPlaybook(t *testing.T) {
	err := Playbook("", " ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := err.Error(); got != "Name is required, Description is required" {
		t.Fatalf("unexpected message %q", got)
	}
	if err := Playbook("Ransomware Response", "Steps for ransomware"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestArtifact(t *testing.T) {
	err := Artifact("", "mac-address", "quarantined", "evidence")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %v", err)
	}

	if err := Artifact("192.168.1.105", store.ArtifactIP, store.ArtifactMalicious, store.KindIOC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReference(t *testing.T) {
	err := Reference("", "")
	if err == nil || err.Error() != "Title is required, Link is required" {
		t.Fatalf("unexpected result %v", err)
	}
	if err := Reference("SIEM Alert", "https://siem.example.com/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
