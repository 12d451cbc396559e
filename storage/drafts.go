package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/nazar-zhcet26/Tenant-management/models"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStore persists drafts. Update runs fn against the current value and
// stores its result atomically with respect to other updates of the same draft;
// if fn returns an error nothing is written. Delete works the same way: the
// draft is removed only if check accepts it, and the removed value is returned.
type DraftStore interface {
	Create(ctx context.Context, d models.Draft) error
	Get(ctx context.Context, id string) (models.Draft, error)
	Update(ctx context.Context, id string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error)
	Delete(ctx context.Context, id string, check func(models.Draft) error) (models.Draft, error)
	// ForEach visits every live draft. Drafts written during the walk may be missed.
	ForEach(ctx context.Context, fn func(models.Draft) error) error
}

// MemoryDraftStore keeps drafts in process memory.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]models.Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]models.Draft)}
}

func (s *MemoryDraftStore) Create(_ context.Context, d models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = d.Clone()
	return nil
}

func (s *MemoryDraftStore) Get(_ context.Context, id string) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return models.Draft{}, ErrDraftNotFound
	}
	return d.Clone(), nil
}

func (s *MemoryDraftStore) Update(_ context.Context, id string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return models.Draft{}, ErrDraftNotFound
	}
	next, err := fn(d.Clone())
	if err != nil {
		return d.Clone(), err
	}
	s.drafts[id] = next.Clone()
	return next, nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, id string, check func(models.Draft) error) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return models.Draft{}, ErrDraftNotFound
	}
	if check != nil {
		if err := check(d.Clone()); err != nil {
			return models.Draft{}, err
		}
	}
	delete(s.drafts, id)
	return d, nil
}

func (s *MemoryDraftStore) ForEach(ctx context.Context, fn func(models.Draft) error) error {
	s.mu.Lock()
	snapshot := make([]models.Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		snapshot = append(snapshot, d.Clone())
	}
	s.mu.Unlock()

	for _, d := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}
