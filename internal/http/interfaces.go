package http

import (
	"github.com/fitstack/healthcalc/internal/session"
)

// SessionRegistry defines the dispatcher's view of the session registry.
// This interface is used for dependency injection in tests.
type SessionRegistry interface {
	Create() (*session.Session, error)
	Lookup(id string) (*session.Session, error)
	Destroy(id string)
	Len() int
}
