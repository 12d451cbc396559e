package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/nazar-zhcet26/Tenant-management/media"
	"github.com/nazar-zhcet26/Tenant-management/metrics"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/storage"
)

// PreviewPath is the route prefix staged files are served from.
const PreviewPath = "/api/previews/"

// Upload is one file of a batch. Open may be called once.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadSeekCloser, error)
}

type AttachmentService struct {
	drafts    *DraftService
	reports   storage.ReportRepository
	blobs     storage.BlobStore
	inspector media.Inspector
}

func NewAttachmentService(drafts *DraftService, reports storage.ReportRepository, blobs storage.BlobStore, inspector media.Inspector) *AttachmentService {
	return &AttachmentService{drafts: drafts, reports: reports, blobs: blobs, inspector: inspector}
}

// previewURL names the draft the file was staged on so the preview can be
// checked against the draft's owner.
func previewURL(draftID, attachmentID string) string {
	return PreviewPath + attachmentID + "?draft=" + url.QueryEscape(draftID)
}

// rejection carries the user facing reason and a short metric label.
type rejection struct {
	reason string
	label  string
}

func (r *rejection) Error() string { return r.reason }

// Add validates and stages a batch of files of one kind. Invalid files are
// skipped and reported; the rest are appended to the draft in batch order.
func (s *AttachmentService) Add(ctx context.Context, draftID, ownerID string, kind models.AttachmentKind, uploads []Upload) (models.Draft, []models.RejectedFile, error) {
	if !kind.Valid() {
		return models.Draft{}, nil, &models.ValidationError{Field: "kind", Message: "Invalid attachment kind"}
	}
	d, err := s.drafts.Get(ctx, draftID, ownerID)
	if err != nil {
		return models.Draft{}, nil, err
	}
	if d.Submitting {
		return models.Draft{}, nil, ErrBusy
	}

	accepted := make([]models.Attachment, 0, len(uploads))
	rejected := []models.RejectedFile{}

	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			s.drafts.release(accepted)
			return models.Draft{}, nil, err
		}

		a, err := s.stage(ctx, draftID, kind, u)
		var rej *rejection
		if errors.As(err, &rej) {
			metrics.AttachmentsRejectedTotal.WithLabelValues(string(kind), rej.label).Inc()
			rejected = append(rejected, models.RejectedFile{Name: u.Name, Reason: rej.reason})
			continue
		}
		if err != nil {
			log.WithError(err).WithField("file", u.Name).Error("Failed to stage attachment")
			metrics.AttachmentsRejectedTotal.WithLabelValues(string(kind), "storage").Inc()
			rejected = append(rejected, models.RejectedFile{Name: u.Name, Reason: "Failed to store file"})
			continue
		}
		metrics.AttachmentsAcceptedTotal.WithLabelValues(string(kind)).Inc()
		accepted = append(accepted, a)
	}

	if len(accepted) == 0 {
		return d, rejected, nil
	}

	updated, err := s.drafts.mutate(ctx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		if d.Submitting {
			return d, ErrBusy
		}
		return d.WithAttachments(kind, accepted, s.drafts.now()), nil
	})
	if err != nil {
		s.drafts.release(accepted)
		return models.Draft{}, nil, err
	}
	return updated, rejected, nil
}

func (s *AttachmentService) stage(ctx context.Context, draftID string, kind models.AttachmentKind, u Upload) (models.Attachment, error) {
	if u.Size > kind.MaxSize() {
		return models.Attachment{}, &rejection{
			reason: fmt.Sprintf("File exceeds the %dMB limit", kind.MaxSize()/(1024*1024)),
			label:  "size",
		}
	}

	f, err := u.Open()
	if err != nil {
		return models.Attachment{}, err
	}
	defer f.Close()

	contentType, err := s.inspector.ContentType(f)
	if err != nil || !media.MatchesKind(contentType, kind) {
		msg := "Not an image file"
		if kind == models.KindVideo {
			msg = "Not a video file"
		}
		return models.Attachment{}, &rejection{reason: msg, label: "type"}
	}

	a := models.Attachment{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        u.Name,
		Size:        u.Size,
		ContentType: contentType,
	}

	switch kind {
	case models.KindVideo:
		duration, err := s.inspector.VideoDuration(f)
		if err != nil {
			return models.Attachment{}, &rejection{reason: "Unable to read video duration", label: "metadata"}
		}
		if duration > models.MaxVideoDuration {
			return models.Attachment{}, &rejection{
				reason: fmt.Sprintf("Video exceeds the %d second limit", int(models.MaxVideoDuration.Seconds())),
				label:  "duration",
			}
		}
		a.Duration = duration.Seconds()
	case models.KindPhoto:
		if media.IsJPEG(contentType) {
			coords, err := s.inspector.PhotoCoordinates(f)
			if err == nil {
				a.Coordinates = coords
			}
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return models.Attachment{}, err
	}
	n, err := s.blobs.Put(ctx, a.ID, f)
	if err != nil {
		return models.Attachment{}, err
	}
	a.Size = n
	a.PreviewURL = previewURL(draftID, a.ID)
	return a, nil
}

// Remove drops an attachment from the draft and releases its staged file.
func (s *AttachmentService) Remove(ctx context.Context, draftID, ownerID, attachmentID string) (models.Draft, error) {
	var removed models.Attachment
	d, err := s.drafts.mutate(ctx, draftID, ownerID, func(d models.Draft) (models.Draft, error) {
		if d.Submitting {
			return d, ErrBusy
		}
		next, a, ok := d.WithoutAttachment(attachmentID, s.drafts.now())
		if !ok {
			return d, ErrNotFound
		}
		removed = a
		return next, nil
	})
	if err != nil {
		return models.Draft{}, err
	}
	s.drafts.release([]models.Attachment{removed})
	return d, nil
}

// OpenPreview returns a staged file to the tenant who owns the draft it sits on.
// Files of submitted reports are readable by every tenant, like the report list.
func (s *AttachmentService) OpenPreview(ctx context.Context, attachmentID, draftID, ownerID string) (io.ReadSeekCloser, error) {
	allowed, err := s.canPreview(ctx, attachmentID, draftID, ownerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotFound
	}

	f, err := s.blobs.Open(attachmentID)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *AttachmentService) canPreview(ctx context.Context, attachmentID, draftID, ownerID string) (bool, error) {
	if draftID != "" {
		d, err := s.drafts.Get(ctx, draftID, ownerID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return false, err
		}
		if err == nil {
			for _, a := range d.Attachments() {
				if a.ID == attachmentID {
					return true, nil
				}
			}
		}
	}
	inReport, err := s.reports.HasAttachment(ctx, attachmentID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return inReport, nil
}
