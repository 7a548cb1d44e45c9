// Package files owns uploaded content on disk: naming, type and size
// policy, and the sweeper that reaps blobs no incident points at anymore.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"incident-tracker/config"
)

// ErrInvalidType is returned when an upload fails the extension or MIME
// allow-list. Handlers map it to 400.
var ErrInvalidType = errors.New("invalid file type")

// ErrTooLarge is returned when an upload exceeds the configured cap.
var ErrTooLarge = errors.New("file too large")

var (
	allowedExtensions = regexp.MustCompile(`^\.(jpeg|jpg|png|gif|pdf|doc|docx|xls|xlsx|txt|csv|zip|tar|gz|log|json|xml)$`)
	allowedMimetypes  = regexp.MustCompile(`^(image/(jpeg|jpg|png|gif)|application/(pdf|msword|vnd\.openxmlformats.*|zip|x-tar|gzip|json|xml)|text/(plain|csv|xml))$`)

	diagramExtensions = regexp.MustCompile(`^\.(jpeg|jpg|png|gif|pdf)$`)
	diagramMimetypes  = regexp.MustCompile(`^(image/(jpeg|jpg|png|gif)|application/pdf)$`)
)

// Service stores uploads under two flat directories: incident attachments
// in Dir, playbook diagrams in DiagramDir.
type Service struct {
	dir        string
	diagramDir string
	maxBytes   int64
}

func NewService(cfg config.UploadsConfig) (*Service, error) {
	for _, dir := range []string{cfg.Dir, cfg.DiagramDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}
	return &Service{dir: cfg.Dir, diagramDir: cfg.DiagramDir, maxBytes: cfg.MaxBytes}, nil
}

func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Allowed reports whether an upload passes both the extension and MIME
// allow-lists. Both must match; a permitted MIME type under a forbidden
// extension is still rejected.
func Allowed(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedExtensions.MatchString(ext) && allowedMimetypes.MatchString(mimeType)
}

// AllowedDiagram is the tighter policy for playbook flow diagrams: images
// and PDFs only.
func AllowedDiagram(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return diagramExtensions.MatchString(ext) && diagramMimetypes.MatchString(mimeType)
}

// StoredName derives the on-disk name for an upload. The original stem and
// extension are kept for readability; the timestamp and random suffix keep
// concurrent uploads of the same name from colliding.
func StoredName(filename string, now time.Time) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), ext)
	suffix := uuid.Must(uuid.NewV4()).String()[:8]
	return fmt.Sprintf("%s-%d-%s%s", stem, now.UnixMilli(), suffix, ext)
}

// Save streams an attachment to disk and returns its stored name. The size
// cap is enforced by the caller limiting the reader; a short copy here is
// surfaced as is.
func (s *Service) Save(storedName string, r io.Reader) (int64, error) {
	return s.saveTo(s.dir, storedName, r)
}

func (s *Service) SaveDiagram(storedName string, r io.Reader) (int64, error) {
	return s.saveTo(s.diagramDir, storedName, r)
}

func (s *Service) saveTo(dir, storedName string, r io.Reader) (int64, error) {
	path, err := s.resolve(dir, storedName)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

// Open returns a reader over a stored attachment. The caller closes it.
func (s *Service) Open(storedName string) (*os.File, error) {
	path, err := s.resolve(s.dir, storedName)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *Service) OpenDiagram(storedName string) (*os.File, error) {
	path, err := s.resolve(s.diagramDir, storedName)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a stored attachment. A missing file is not an error: the
// metadata is authoritative and disk state just follows it.
func (s *Service) Remove(storedName string) error {
	return s.removeFrom(s.dir, storedName)
}

func (s *Service) RemoveDiagram(storedName string) error {
	return s.removeFrom(s.diagramDir, storedName)
}

func (s *Service) removeFrom(dir, storedName string) error {
	path, err := s.resolve(dir, storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve guards against path traversal: a stored name is a bare file name,
// never a path.
func (s *Service) resolve(dir, storedName string) (string, error) {
	if storedName == "" || storedName != filepath.Base(storedName) || strings.HasPrefix(storedName, ".") {
		return "", fmt.Errorf("invalid stored name %q", storedName)
	}
	return filepath.Join(dir, storedName), nil
}
