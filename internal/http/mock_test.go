package http

import (
	"github.com/fitstack/healthcalc/internal/session"
)

// mockRegistry implements SessionRegistry for testing.
type mockRegistry struct {
	createFunc func() (*session.Session, error)
	lookupFunc func(id string) (*session.Session, error)
	destroyed  []string
	lenFunc    func() int
}

// NewMockRegistry creates a new mock SessionRegistry.
func NewMockRegistry() *mockRegistry {
	return &mockRegistry{}
}

// Create implements SessionRegistry.
func (m *mockRegistry) Create() (*session.Session, error) {
	if m.createFunc != nil {
		return m.createFunc()
	}
	return nil, nil
}

// Lookup implements SessionRegistry.
func (m *mockRegistry) Lookup(id string) (*session.Session, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(id)
	}
	return nil, nil
}

// Destroy implements SessionRegistry.
func (m *mockRegistry) Destroy(id string) {
	m.destroyed = append(m.destroyed, id)
}

// Len implements SessionRegistry.
func (m *mockRegistry) Len() int {
	if m.lenFunc != nil {
		return m.lenFunc()
	}
	return 0
}

// OnCreate sets the behavior for Create.
func (m *mockRegistry) OnCreate(fn func() (*session.Session, error)) *mockRegistry {
	m.createFunc = fn
	return m
}

// OnLookup sets the behavior for Lookup.
func (m *mockRegistry) OnLookup(fn func(id string) (*session.Session, error)) *mockRegistry {
	m.lookupFunc = fn
	return m
}

// OnLen sets the behavior for Len.
func (m *mockRegistry) OnLen(fn func() int) *mockRegistry {
	m.lenFunc = fn
	return m
}
