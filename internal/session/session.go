// Package session persists the credential of the signed-in user.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Credential identifies the current authenticated session.
type Credential struct {
	Token string `toml:"token" json:"token"`
	Role  string `toml:"role" json:"role"`
}

// HasRole reports whether the credential's role mentions name, ignoring case.
// Roles such as "ROLE_COMPANY" match "company".
func (c Credential) HasRole(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.Role), strings.ToLower(name))
}

// Keeper stores at most one Credential.
type Keeper interface {
	Set(Credential) error
	Get() (Credential, bool)
	Clear()
}

var (
	_ Keeper = (*Store)(nil)
	_ Keeper = (*Memory)(nil)
)

const defaultSessionPath = "~/.config/stockroom/session.toml"

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// Store keeps the credential in a TOML file so it survives restarts.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a Store backed by path. An empty path uses DefaultPath.
// The file is not touched until the first call.
func Open(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session path: %w", err)
	}
	return &Store{path: resolved}, nil
}

// Path returns the resolved file location.
func (s *Store) Path() string {
	return s.path
}

// Set replaces any stored credential.
func (s *Store) Set(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	bytes, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Get returns the stored credential. A file that cannot be read is reported
// as absent but left in place; malformed content is removed.
func (s *Store) Get() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytes, err := os.ReadFile(s.path)
	if err != nil {
		return Credential{}, false
	}

	var c Credential
	if err := toml.Unmarshal(bytes, &c); err != nil || strings.TrimSpace(c.Token) == "" {
		s.removeLocked()
		return Credential{}, false
	}
	return c, true
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked()
}

func (s *Store) removeLocked() {
	_ = os.Remove(s.path)
}

// Memory is a Keeper that lives only as long as the process.
type Memory struct {
	mu   sync.RWMutex
	cred *Credential
}

// Set replaces any stored credential.
func (m *Memory) Set(c Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &c
	return nil
}

// Get returns the stored credential.
func (m *Memory) Get() (Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil || strings.TrimSpace(m.cred.Token) == "" {
		return Credential{}, false
	}
	return *m.cred, true
}

// Clear removes the stored credential.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
