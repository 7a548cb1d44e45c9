package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"incident-tracker/config"
	"incident-tracker/core/utils"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	base := t.TempDir()
	svc, err := NewService(config.UploadsConfig{
		Dir:        filepath.Join(base, "uploads"),
		DiagramDir: filepath.Join(base, "uploads", "diagrams"),
		MaxBytes:   10 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		filename string
		mime     string
		want     bool
	}{
		{"report.pdf", "application/pdf", true},
		{"shot.PNG", "image/png", true},
		{"notes.txt", "text/plain", true},
		{"data.csv", "text/csv", true},
		{"dump.tar", "application/x-tar", true},
		{"payload.exe", "application/octet-stream", false},
		{"script.sh", "text/plain", false},
		// Extension ok but MIME not on the list.
		{"report.pdf", "application/octet-stream", false},
		// MIME ok but extension not on the list.
		{"report.bin", "application/pdf", false},
		{"noext", "text/plain", false},
	}
	for _, tc := range cases {
		if got := Allowed(tc.filename, tc.mime); got != tc.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tc.filename, tc.mime, got, tc.want)
		}
	}
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	name := StoredName("incident report.pdf", now)
	if !strings.HasPrefix(name, "incident report-1700000000000-") {
		t.Errorf("unexpected prefix in %q", name)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("extension should survive, got %q", name)
	}
	pattern := regexp.MustCompile(`^incident report-1700000000000-[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(name) {
		t.Errorf("stored name %q does not match expected shape", name)
	}
	if other := StoredName("incident report.pdf", now); other == name {
		t.Error("two uploads of the same file should get distinct stored names")
	}
}

func TestSaveOpenRemove(t *testing.T) {
	svc := newTestService(t)

	stored := StoredName("notes.txt", time.Now())
	n, err := svc.Save(stored, strings.NewReader("triage notes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != int64(len("triage notes")) {
		t.Errorf("Save reported %d bytes", n)
	}

	f, err := svc.Open(stored)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	content, err := io.ReadAll(f)
	f.Close()
	if err != nil || string(content) != "triage notes" {
		t.Fatalf("read back %q, err %v", content, err)
	}

	if err := svc.Remove(stored); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := svc.Open(stored); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist after remove, got %v", err)
	}

	// Removing again is fine.
	if err := svc.Remove(stored); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	svc := newTestService(t)
	for _, name := range []string{"", "../escape.txt", "a/b.txt", ".hidden"} {
		if _, err := svc.Open(name); err == nil {
			t.Errorf("Open(%q) should fail", name)
		}
	}
}

func TestSweep(t *testing.T) {
	svc := newTestService(t)
	log := utils.NewLoggerTo(io.Discard)

	mustSave := func(name, content string) {
		t.Helper()
		if _, err := svc.Save(name, strings.NewReader(content)); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}
	mustSave("kept.txt", "still referenced")
	mustSave("orphan.txt", "metadata gone")
	mustSave("fresh-orphan.txt", "upload in flight")

	// Age the first two past the minimum; the third stays fresh.
	old := time.Now().Add(-2 * time.Hour)
	for _, name := range []string{"kept.txt", "orphan.txt"} {
		if err := os.Chtimes(filepath.Join(svc.dir, name), old, old); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	refs := func(ctx context.Context) (map[string]struct{}, error) {
		return map[string]struct{}{"kept.txt": {}}, nil
	}
	sw, err := NewSweeper(svc, refs, config.SweeperConfig{Schedule: "0 3 * * *", MinAge: "1h"}, log)
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}

	removed, err := sw.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := svc.Open("kept.txt"); err != nil {
		t.Error("referenced file should survive the sweep")
	}
	if _, err := svc.Open("fresh-orphan.txt"); err != nil {
		t.Error("files younger than the minimum age should survive the sweep")
	}
	if _, err := svc.Open("orphan.txt"); !os.IsNotExist(err) {
		t.Error("aged orphan should be removed")
	}
}
