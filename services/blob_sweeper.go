package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/nazar-zhcet26/Tenant-management/metrics"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/storage"
)

// DefaultBlobGrace is how long a staged file may go unreferenced before it is
// swept. Files are written before they are attached to the draft.
const DefaultBlobGrace = time.Hour

// BlobSweeper removes staged files that belong to no live draft and no stored
// report, such as uploads of a draft whose Redis key expired.
type BlobSweeper struct {
	drafts  storage.DraftStore
	reports storage.ReportRepository
	blobs   storage.BlobStore
	grace   time.Duration
	now     func() time.Time
}

func NewBlobSweeper(drafts storage.DraftStore, reports storage.ReportRepository, blobs storage.BlobStore, grace time.Duration) *BlobSweeper {
	return &BlobSweeper{drafts: drafts, reports: reports, blobs: blobs, grace: grace, now: time.Now}
}

// Sweep deletes unreferenced files older than the grace period and returns
// how many it removed.
func (s *BlobSweeper) Sweep(ctx context.Context) (int, error) {
	stored, err := s.blobs.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list staged files: %w", err)
	}
	cutoff := s.now().Add(-s.grace)
	candidates := make([]string, 0, len(stored))
	for _, b := range stored {
		if b.ModTime.Before(cutoff) {
			candidates = append(candidates, b.ID)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	// Drafts are read before reports: a submission moves attachments from the
	// draft to a report by inserting the report first and resetting the draft after.
	referenced := make(map[string]struct{})
	err = s.drafts.ForEach(ctx, func(d models.Draft) error {
		for _, a := range d.Attachments() {
			referenced[a.ID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read drafts: %w", err)
	}
	inReports, err := s.reports.AttachmentIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read report attachments: %w", err)
	}
	for id := range inReports {
		referenced[id] = struct{}{}
	}

	removed := 0
	for _, id := range candidates {
		if _, ok := referenced[id]; ok {
			continue
		}
		if err := s.blobs.Delete(id); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			log.WithError(err).WithField("attachment", id).Warn("Failed to sweep staged file")
			continue
		}
		removed++
	}
	metrics.BlobsSweptTotal.Add(float64(removed))
	return removed, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *BlobSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("Starting staged file sweeper with interval: %v", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("Staged file sweeper stopped")
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				log.WithError(err).Error("Staged file sweep failed")
				continue
			}
			if removed > 0 {
				log.WithField("removed", removed).Info("Swept orphaned staged files")
			}
		}
	}
}
