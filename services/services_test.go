package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/storage"
	"github.com/stretchr/testify/require"
)

const owner = "tenant-1"

// fakeInspector treats file bodies of the form "image:..." and "video:<seconds>".
type fakeInspector struct{}

func readAll(r io.ReadSeeker) string {
	data, _ := io.ReadAll(r)
	r.Seek(0, io.SeekStart)
	return string(data)
}

func (fakeInspector) ContentType(r io.ReadSeeker) (string, error) {
	body := readAll(r)
	switch {
	case strings.HasPrefix(body, "image:"):
		return "image/png", nil
	case strings.HasPrefix(body, "video:"):
		return "video/mp4", nil
	}
	return "text/plain; charset=utf-8", nil
}

func (fakeInspector) VideoDuration(r io.ReadSeeker) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(strings.TrimPrefix(readAll(r), "video:"), 64)
	if err != nil {
		return 0, errors.New("no metadata")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (fakeInspector) PhotoCoordinates(io.ReadSeeker) (*models.Coordinates, error) {
	return nil, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

func upload(name, body string, size int64) Upload {
	if size == 0 {
		size = int64(len(body))
	}
	return Upload{
		Name: name,
		Size: size,
		Open: func() (io.ReadSeekCloser, error) {
			return nopCloser{bytes.NewReader([]byte(body))}, nil
		},
	}
}

type failingReports struct{}

func (failingReports) Insert(context.Context, models.Report) error {
	return errors.New("database unreachable")
}

func (failingReports) List(context.Context) ([]models.Report, error) {
	return nil, errors.New("database unreachable")
}

func (failingReports) HasAttachment(context.Context, string) (bool, error) {
	return false, errors.New("database unreachable")
}

func (failingReports) AttachmentIDs(context.Context) (map[string]struct{}, error) {
	return nil, errors.New("database unreachable")
}

// flakyDraftStore fails the Nth call to Update and passes every other call through.
type flakyDraftStore struct {
	storage.DraftStore
	mu     sync.Mutex
	calls  int
	failOn int
}

func (s *flakyDraftStore) Update(ctx context.Context, id string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	s.mu.Lock()
	s.calls++
	fail := s.calls == s.failOn
	s.mu.Unlock()
	if fail {
		return models.Draft{}, errors.New("draft store unreachable")
	}
	return s.DraftStore.Update(ctx, id, fn)
}

// clock is a settable time source for the draft service.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []interface{}
}

func (p *recordingPublisher) Publish(_ string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store       storage.DraftStore
	drafts      *DraftService
	attachments *AttachmentService
	reports     *ReportService
	repo        storage.ReportRepository
	blobs       *storage.DiskBlobStore
	publisher   *recordingPublisher
}

func newFixture(t *testing.T, repo storage.ReportRepository) *fixture {
	t.Helper()
	return newFixtureWithStore(t, repo, storage.NewMemoryDraftStore())
}

func newFixtureWithStore(t *testing.T, repo storage.ReportRepository, store storage.DraftStore) *fixture {
	t.Helper()
	blobs, err := storage.NewDiskBlobStore(t.TempDir())
	require.NoError(t, err)
	if repo == nil {
		repo = storage.NewMemoryReportRepository()
	}
	drafts := NewDraftService(store, blobs)
	publisher := &recordingPublisher{}
	return &fixture{
		store:       store,
		drafts:      drafts,
		attachments: NewAttachmentService(drafts, repo, blobs, fakeInspector{}),
		reports:     NewReportService(drafts, repo, publisher),
		repo:        repo,
		blobs:       blobs,
		publisher:   publisher,
	}
}

func strPtr(s string) *string { return &s }

func (f *fixture) filledDraft(t *testing.T, title, description, category, urgency string) models.Draft {
	t.Helper()
	d, err := f.drafts.Create(context.Background(), owner)
	require.NoError(t, err)
	d, err = f.drafts.Update(context.Background(), d.ID, owner, models.DraftUpdate{
		Title:       strPtr(title),
		Description: strPtr(description),
		Category:    strPtr(category),
		Urgency:     strPtr(urgency),
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) blobExists(id string) bool {
	r, err := f.blobs.Open(id)
	if err != nil {
		return false
	}
	r.Close()
	return true
}
