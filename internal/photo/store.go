package photo

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps processed graduate photos on disk under a media directory.
// Paths handed out are relative to that directory so records stay
// portable across deployments.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore creates the media directory if needed.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(dir, "photos"), 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, log: log}, nil
}

// Save processes an upload and writes the result to a fresh
// photos/<uuid>.jpg, returning the relative path. The raw upload is
// never stored; only processed bytes hit disk.
func (s *Store) Save(upload []byte) (string, error) {
	processed, err := Process(bytes.NewReader(upload))
	if err != nil {
		return "", err
	}
	rel := filepath.Join("photos", uuid.NewString()+".jpg")
	if err := os.WriteFile(filepath.Join(s.dir, rel), processed, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

// Remove deletes a previously stored photo. File-store failures are
// logged and swallowed; a missing file is not an error.
func (s *Store) Remove(rel string) {
	if rel == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, rel)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("photo delete failed", zap.String("path", rel), zap.Error(err))
	}
}

// Dir returns the media root, for static serving.
func (s *Store) Dir() string { return s.dir }
