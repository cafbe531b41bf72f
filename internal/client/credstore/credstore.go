// Package credstore persists the access token and role between CLI runs.
package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/and161185/sales-intel/internal/model"
)

// Credential is what survives a restart. Both fields are set together or not at all.
type Credential struct {
	Token string     `json:"access_token"`
	Role  model.Role `json:"role"`
}

// Store reads and writes the credential. Load never fails: any read error
// (missing file, bad JSON, empty token) is reported as absent.
type Store interface {
	Save(Credential) error
	Load() (Credential, bool)
	Clear() error
}

// FileStore keeps the credential as JSON under dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir (created lazily on Save).
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// Path is the credential file location.
func (s *FileStore) Path() string { return filepath.Join(s.dir, "credentials.json") }

// Save writes both fields atomically via rename.
func (s *FileStore) Save(c Credential) error {
	if c.Token == "" {
		return errors.New("credstore: empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

// Load returns the stored credential. A missing role reads as vendas.
func (s *FileStore) Load() (Credential, bool) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		return Credential{}, false
	}
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil || c.Token == "" {
		return Credential{}, false
	}
	role, err := model.ParseRole(string(c.Role))
	if err != nil {
		return Credential{}, false
	}
	c.Role = role
	return c, true
}

// Clear removes the credential. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Memory is an in-process Store for tests and the interactive shell.
type Memory struct {
	mu  sync.Mutex
	c   Credential
	set bool
}

func (m *Memory) Save(c Credential) error {
	if c.Token == "" {
		return errors.New("credstore: empty token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c, m.set = c, true
	return nil
}

func (m *Memory) Load() (Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c, m.set
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c, m.set = Credential{}, false
	return nil
}
