// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/tzaware/internal/model"
)

// EntryRepository persists entries and their composite timestamps.
type EntryRepository interface {
	// Create inserts a new entry and sets its CreatedAt.
	Create(ctx context.Context, e *model.Entry) error
	// Get loads an entry by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Entry, error)
	// List returns entries ordered by UTC instant ascending, empty instants first.
	// A non-positive limit returns all entries.
	List(ctx context.Context, limit int) ([]model.Entry, error)
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
	// Delete removes an entry by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
