package app

import "sync"

// Location tracks which screen the UI is showing. The API client reads it to
// decide whether an authorization failure should end the session.
type Location struct {
	mu   sync.RWMutex
	path string
}

// NewLocation starts at path.
func NewLocation(path string) *Location {
	return &Location{path: path}
}

// Get returns the current location.
func (l *Location) Get() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// Set records a new location.
func (l *Location) Set(path string) {
	l.mu.Lock()
	l.path = path
	l.mu.Unlock()
}
