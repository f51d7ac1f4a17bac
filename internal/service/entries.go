// Package service holds the entry use cases on top of a repository.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/tzaware/internal/errs"
	"github.com/and161185/tzaware/internal/model"
	"github.com/and161185/tzaware/internal/repository"
	"github.com/and161185/tzaware/tzaware"
)

// maxOffsetSeconds bounds ExpectedOffset (exclusive).
const maxOffsetSeconds = 24 * 60 * 60

// EntryService defines operations over timestamped entries.
type EntryService interface {
	// Record stores info with the instant at. The zero time stores an empty instant.
	Record(ctx context.Context, info string, at time.Time, expectedOffset *int32) (*model.Entry, error)
	// RecordText parses at with the configured policy and stores the result.
	RecordText(ctx context.Context, info, at string, expectedOffset *int32) (*model.Entry, error)
	// Get returns a single entry by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Entry, error)
	// List returns entries ordered by instant, empty instants first. Zero means no limit.
	List(ctx context.Context, limit int) ([]model.Entry, error)
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
	// Delete removes an entry.
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ EntryService = (*EntryServiceImpl)(nil)

type EntryServiceImpl struct {
	repo   repository.EntryRepository
	policy tzaware.Policy
	newID  func() (uuid.UUID, error)
}

// NewEntryService constructs EntryService. policy governs text input.
func NewEntryService(repo repository.EntryRepository, policy tzaware.Policy) *EntryServiceImpl {
	return &EntryServiceImpl{repo: repo, policy: policy, newID: uuid.NewV4}
}

// Record validates input and delegates to the repository.
// Validation rules:
// - info not blank and at most model.MaxInfoLen runes
// - at, if set, within model.MinYear..model.MaxYear in UTC
// - expectedOffset, if set, strictly within ±24h
func (s *EntryServiceImpl) Record(ctx context.Context, info string, at time.Time, expectedOffset *int32) (*model.Entry, error) {
	return s.create(ctx, info, tzaware.Decompose(at), expectedOffset)
}

// RecordText is Record for textual timestamps. Naive text follows the policy.
func (s *EntryServiceImpl) RecordText(ctx context.Context, info, at string, expectedOffset *int32) (*model.Entry, error) {
	in, err := s.policy.Parse(at)
	if err != nil {
		return nil, fmt.Errorf("validation: at: %w: %w", err, errs.ErrValidation)
	}
	return s.create(ctx, info, in, expectedOffset)
}

func (s *EntryServiceImpl) create(ctx context.Context, info string, at tzaware.Instant, expectedOffset *int32) (*model.Entry, error) {
	if err := validateInfo(info); err != nil {
		return nil, err
	}
	if !model.InYearRange(at) {
		return nil, fmt.Errorf("validation: at %s outside years %d..%d: %w", at, model.MinYear, model.MaxYear, errs.ErrValidation)
	}
	if expectedOffset != nil && (*expectedOffset <= -maxOffsetSeconds || *expectedOffset >= maxOffsetSeconds) {
		return nil, fmt.Errorf("validation: expected offset %d out of range: %w", *expectedOffset, errs.ErrValidation)
	}
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("new id: %w", err)
	}
	e := &model.Entry{ID: id, Info: info, ExpectedOffset: expectedOffset, At: at}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get fetches a single entry by id.
func (s *EntryServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("validation: empty id: %w", errs.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns entries sorted by instant; the order is reapplied so every backend agrees.
func (s *EntryServiceImpl) List(ctx context.Context, limit int) ([]model.Entry, error) {
	if limit < 0 {
		return nil, fmt.Errorf("validation: negative limit: %w", errs.ErrValidation)
	}
	es, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	model.SortEntries(es)
	return es, nil
}

// Count returns the total number of entries.
func (s *EntryServiceImpl) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Delete removes an entry by id.
func (s *EntryServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("validation: empty id: %w", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func validateInfo(info string) error {
	if strings.TrimSpace(info) == "" {
		return fmt.Errorf("validation: empty info: %w", errs.ErrValidation)
	}
	if n := utf8.RuneCountInString(info); n > model.MaxInfoLen {
		return fmt.Errorf("validation: info too long (%d > %d): %w", n, model.MaxInfoLen, errs.ErrValidation)
	}
	return nil
}
