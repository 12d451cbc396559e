package services

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/nazar-zhcet26/Tenant-management/events"
	"github.com/nazar-zhcet26/Tenant-management/metrics"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/storage"
)

type ReportService struct {
	drafts    *DraftService
	reports   storage.ReportRepository
	publisher events.Publisher
}

func NewReportService(drafts *DraftService, reports storage.ReportRepository, publisher events.Publisher) *ReportService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ReportService{drafts: drafts, reports: reports, publisher: publisher}
}

// Submit validates the draft, stores it as a pending report and resets the
// draft. A validation failure changes nothing; a storage failure keeps the
// draft so the tenant can retry.
func (s *ReportService) Submit(ctx context.Context, draftID, ownerID string) (models.Report, error) {
	draft, err := s.drafts.mutate(ctx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		if d.Submitting || d.Locating {
			return d, ErrBusy
		}
		if err := d.Validate(); err != nil {
			return d, err
		}
		return d.WithSubmitting(true, s.drafts.now()), nil
	})
	if err != nil {
		return models.Report{}, err
	}

	report := draft.ToReport(ownerID, s.drafts.now().UTC())
	insertErr := s.reports.Insert(ctx, report)

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if insertErr != nil {
		metrics.SubmissionFailuresTotal.Inc()
		log.WithError(insertErr).WithField("draft", draftID).Error("Failed to store report")
		if _, err := s.drafts.mutate(finishCtx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
			return d.WithSubmitting(false, s.drafts.now()), nil
		}); err != nil {
			log.WithError(err).WithField("draft", draftID).Error("Failed to clear submitting flag")
		}
		return models.Report{}, fmt.Errorf("%w: %v", ErrUnavailable, insertErr)
	}

	// Attachments now belong to the report, so the reset must not release them.
	if _, err := s.drafts.mutate(finishCtx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		return d.Reset(s.drafts.now()), nil
	}); err != nil {
		log.WithError(err).WithField("draft", draftID).Error("Failed to reset draft after submission")
	}

	metrics.ReportsSubmittedTotal.WithLabelValues(string(report.Category), string(report.Urgency)).Inc()
	if err := s.publisher.Publish(events.RoutingKeyReportSubmitted, report); err != nil {
		log.WithError(err).WithField("report", report.ID.Hex()).Warn("Failed to publish report event")
	}

	log.WithFields(log.Fields{
		"report":   report.ID.Hex(),
		"category": report.Category,
		"urgency":  report.Urgency,
	}).Info("Report submitted")
	return report, nil
}

// List returns all reports newest first, with attachment counts.
func (s *ReportService) List(ctx context.Context) ([]models.ReportListItem, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	items := make([]models.ReportListItem, 0, len(reports))
	for _, r := range reports {
		items = append(items, models.NewReportListItem(r))
	}
	return items, nil
}
