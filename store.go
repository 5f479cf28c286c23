package authstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const artifactPerm = 0o600

// Store persists artifacts under a single directory. Each capture writes a
// timestamped file plus a latest-pointer file keyed by (environment,
// browser), so concurrent environments never overwrite each other.
type Store struct {
	Dir    string
	Logger *zap.Logger

	// Sealer, when set, encrypts artifacts at rest and transparently opens
	// sealed files on load.
	Sealer *Sealer
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, Logger: zap.NewNop()}
}

// DefaultDir is the state directory used when nothing is configured.
func DefaultDir() string { return "auth_states" }

func fileStem(env Environment, browser Browser) string {
	return fmt.Sprintf("auth_state_%s_%s", env, browser)
}

// LatestPath returns the latest-pointer path for an (environment, browser)
// pair. The file may or may not exist.
func (s *Store) LatestPath(env Environment, browser Browser) string {
	return filepath.Join(s.Dir, fileStem(env, browser)+"_latest.json")
}

func (s *Store) timestampedPath(a *Artifact) string {
	name := fmt.Sprintf("%s_%s.json", fileStem(a.Environment, a.Browser), a.CapturedAt.Format("20060102_150405"))
	return filepath.Join(s.Dir, name)
}

// Save writes the artifact to a timestamped file and refreshes the latest
// pointer for its (environment, browser) pair. It returns the timestamped
// path. Writes are atomic; the artifact is never modified afterwards.
func (s *Store) Save(a *Artifact) (string, error) {
	if a.StorageState.Empty() {
		return "", errors.New("authstate: refusing to save artifact with empty storage state")
	}
	if !a.ExpiresAt.After(a.CapturedAt) {
		return "", errors.New("authstate: artifact expires_at must be after captured_at")
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", err
	}

	data, err := encodeArtifact(a)
	if err != nil {
		return "", err
	}
	if s.Sealer != nil {
		data, err = s.Sealer.Seal(data)
		if err != nil {
			return "", err
		}
	}

	path := s.timestampedPath(a)
	if err := writeFileAtomic(path, data, artifactPerm); err != nil {
		return "", err
	}
	latest := s.LatestPath(a.Environment, a.Browser)
	if err := writeFileAtomic(latest, data, artifactPerm); err != nil {
		return "", err
	}

	s.logger().Info("artifact saved",
		zap.String("path", path),
		zap.String("latest", latest),
		zap.Time("expires_at", a.ExpiresAt))
	return path, nil
}

// Load reads and schema-checks the artifact at path. Sealed files are opened
// transparently when a Sealer is configured (or obtainable from the OS
// keyring). Expiry is NOT checked here; that is Restore's job, so callers
// can still inspect expired artifacts.
func (s *Store) Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingStateError{Path: path}
		}
		return nil, err
	}
	if IsSealed(data) {
		sealer := s.Sealer
		if sealer == nil {
			sealer = NewSealer()
		}
		data, err = sealer.Open(data)
		if err != nil {
			return nil, &CorruptStateError{Path: path, Reason: "cannot open sealed artifact", Err: err}
		}
	}
	return decodeArtifact(path, data)
}

// LoadLatest loads the latest artifact for an (environment, browser) pair.
// It returns the path alongside the artifact for diagnostics.
func (s *Store) LoadLatest(env Environment, browser Browser) (*Artifact, string, error) {
	path := s.LatestPath(env, browser)
	a, err := s.Load(path)
	return a, path, err
}

// List returns the paths of every artifact file in the store directory,
// latest pointers included, sorted by name. A missing directory is an empty
// store, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir, entry.Name()))
	}
	return paths, nil
}

// RemoveExpired deletes timestamped artifact files whose expiry has passed.
// Latest pointers are removed only when they are expired too. Unparseable
// files are left in place for the operator to look at.
func (s *Store) RemoveExpired(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.Dir, entry.Name())
		a, err := s.Load(path)
		if err != nil {
			continue
		}
		if a.ValidAt(now) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
			s.logger().Info("removed expired artifact",
				zap.String("path", path),
				zap.Time("expires_at", a.ExpiresAt))
		}
	}
	return removed, nil
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
