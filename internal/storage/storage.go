// Package storage defines the Storage interface, the contract any database
// backend must satisfy to serve author registrations.
//
// Handlers depend only on this interface, so tests can hand them a fake and
// the SQLite backend can be swapped without touching the HTTP layer.
package storage

import (
	"context"
	"errors"

	"github.com/compuse/compuse-api/internal/types"
)

// ErrNotFound is returned when no registration matches the given ID.
var ErrNotFound = errors.New("registration not found")

// Storage is the database contract.
type Storage interface {
	// CreateRegistration stores reg and returns it with the generated ID,
	// status pending and timestamps filled in. The CPF is stored as digits
	// only.
	CreateRegistration(ctx context.Context, reg types.AuthorRegistration) (types.AuthorRegistration, error)

	// GetRegistrationByID returns ErrNotFound if the ID is unknown.
	GetRegistrationByID(ctx context.Context, id string) (types.AuthorRegistration, error)

	// ListRegistrations returns matching registrations, newest first.
	// Returns an empty slice (not nil) when nothing matches.
	ListRegistrations(ctx context.Context, filter types.RegistrationFilter) ([]types.AuthorRegistration, error)

	// UpdateRegistrationStatus sets the status and returns the updated
	// record, or ErrNotFound.
	UpdateRegistrationStatus(ctx context.Context, id string, status types.RegistrationStatus) (types.AuthorRegistration, error)

	// DeleteRegistration removes a registration permanently, or returns
	// ErrNotFound.
	DeleteRegistration(ctx context.Context, id string) error

	Close() error
}
