package services

import (
	"context"
	"errors"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/storage"
)

// DraftService owns draft lifecycle and ownership checks. The attachment,
// location and report services go through it for every draft mutation.
type DraftService struct {
	drafts storage.DraftStore
	blobs  storage.BlobStore
	now    func() time.Time
}

func NewDraftService(drafts storage.DraftStore, blobs storage.BlobStore) *DraftService {
	return &DraftService{drafts: drafts, blobs: blobs, now: time.Now}
}

func (s *DraftService) Create(ctx context.Context, ownerID string) (models.Draft, error) {
	d := models.NewDraft(uuid.NewString(), ownerID, s.now())
	if err := s.drafts.Create(ctx, d); err != nil {
		return models.Draft{}, err
	}
	return d, nil
}

func (s *DraftService) Get(ctx context.Context, id, ownerID string) (models.Draft, error) {
	d, err := s.drafts.Get(ctx, id)
	if errors.Is(err, storage.ErrDraftNotFound) {
		return models.Draft{}, ErrNotFound
	}
	if err != nil {
		return models.Draft{}, err
	}
	if d.OwnerID != ownerID {
		return models.Draft{}, ErrNotFound
	}
	return d.Settle(s.now()), nil
}

// Update applies a field update. Edits are refused while the draft is being submitted.
func (s *DraftService) Update(ctx context.Context, id, ownerID string, u models.DraftUpdate) (models.Draft, error) {
	return s.mutate(ctx, id, ownerID, func(d models.Draft) (models.Draft, error) {
		if d.Submitting {
			return d, ErrBusy
		}
		return d.Apply(u, s.now())
	})
}

// Discard deletes the draft and releases every staged attachment it holds.
// The ownership and busy checks run in the same store operation as the delete
// so an upload landing concurrently is either released here or refused.
func (s *DraftService) Discard(ctx context.Context, id, ownerID string) error {
	d, err := s.drafts.Delete(ctx, id, func(d models.Draft) error {
		if d.OwnerID != ownerID {
			return ErrNotFound
		}
		if d.Settle(s.now()).Submitting {
			return ErrBusy
		}
		return nil
	})
	if errors.Is(err, storage.ErrDraftNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.release(d.Attachments())
	return nil
}

// mutate runs fn on the stored draft after checking ownership. Stale busy
// flags are dropped before fn sees the draft.
func (s *DraftService) mutate(ctx context.Context, id, ownerID string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	d, err := s.drafts.Update(ctx, id, func(d models.Draft) (models.Draft, error) {
		if d.OwnerID != ownerID {
			return d, ErrNotFound
		}
		return fn(d.Settle(s.now()))
	})
	if errors.Is(err, storage.ErrDraftNotFound) {
		return models.Draft{}, ErrNotFound
	}
	return d, err
}

func (s *DraftService) release(attachments []models.Attachment) {
	for _, a := range attachments {
		if err := s.blobs.Delete(a.ID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			log.WithError(err).WithField("attachment", a.ID).Warn("Failed to release staged attachment")
		}
	}
}
