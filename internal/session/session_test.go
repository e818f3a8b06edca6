package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SetGetClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if _, ok := s.Get(); ok {
		t.Fatalf("Get on empty store reported a credential")
	}

	if err := s.Set(Credential{Token: "abc", Role: "COMPANY"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, ok := s.Get()
	if !ok || got.Token != "abc" || got.Role != "COMPANY" {
		t.Fatalf("Get = %#v, %v; want token abc role COMPANY", got, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %o, want 600", perm)
	}

	s.Clear()
	if _, ok := s.Get(); ok {
		t.Fatalf("Get after Clear reported a credential")
	}
	s.Clear()
}

func TestStore_SetOverwrites(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.toml"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	_ = s.Set(Credential{Token: "first", Role: "ADMIN"})
	_ = s.Set(Credential{Token: "second", Role: "COMPANY"})

	got, ok := s.Get()
	if !ok || got.Token != "second" {
		t.Fatalf("Get = %#v, want token second", got)
	}
}

func TestStore_MalformedFileIsClearedAndAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.WriteFile(path, []byte("token = [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if _, ok := s.Get(); ok {
		t.Fatalf("Get on malformed file reported a credential")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("malformed session file should be removed, stat err = %v", err)
	}
}

func TestStore_UnreadableFileIsKept(t *testing.T) {
	// A directory at the session path makes ReadFile fail without the
	// content being malformed.
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if _, ok := s.Get(); ok {
		t.Fatalf("Get on unreadable path reported a credential")
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("unreadable session path should be left in place, stat err = %v", err)
	}
}

func TestStore_EmptyTokenIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.WriteFile(path, []byte("token = \"  \"\nrole = \"ADMIN\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, _ := Open(path)
	if _, ok := s.Get(); ok {
		t.Fatalf("Get with blank token reported a credential")
	}
}

func TestOpen_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Open("")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	want := filepath.Join(home, ".config", "stockroom", "session.toml")
	if s.Path() != want {
		t.Fatalf("Path = %q, want %q", s.Path(), want)
	}
}

func TestMemory(t *testing.T) {
	var m Memory
	if _, ok := m.Get(); ok {
		t.Fatalf("empty Memory reported a credential")
	}
	_ = m.Set(Credential{Token: "t", Role: "ADMIN"})
	if got, ok := m.Get(); !ok || got.Token != "t" {
		t.Fatalf("Get = %#v, %v", got, ok)
	}
	m.Clear()
	m.Clear()
	if _, ok := m.Get(); ok {
		t.Fatalf("Memory still holds a credential after Clear")
	}
}

func TestCredential_HasRole(t *testing.T) {
	c := Credential{Role: "ROLE_COMPANY"}
	if !c.HasRole("company") {
		t.Fatalf("HasRole(company) = false, want true")
	}
	if c.HasRole("admin") {
		t.Fatalf("HasRole(admin) = true, want false")
	}
	if c.HasRole("") {
		t.Fatalf("HasRole(\"\") = true, want false")
	}
}
