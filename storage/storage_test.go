package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDraftStore_UpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()
	require.NoError(t, s.Create(ctx, models.NewDraft("d1", "tenant", time.Now())))

	_, err := s.Update(ctx, "d1", func(d models.Draft) (models.Draft, error) {
		d.Title = "half written"
		return d, errors.New("boom")
	})
	require.Error(t, err)

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, got.Title)

	updated, err := s.Update(ctx, "d1", func(d models.Draft) (models.Draft, error) {
		d.Title = "Leak"
		return d, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Leak", updated.Title)
}

func TestMemoryDraftStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = s.Update(ctx, "nope", func(d models.Draft) (models.Draft, error) { return d, nil })
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = s.Delete(ctx, "nope", nil)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMemoryDraftStore_DeleteRespectsCheck(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()
	d := models.NewDraft("d1", "tenant", time.Now())
	d.Photos = []models.Attachment{{ID: "p1"}}
	require.NoError(t, s.Create(ctx, d))

	refused := errors.New("refused")
	_, err := s.Delete(ctx, "d1", func(models.Draft) error { return refused })
	assert.ErrorIs(t, err, refused)
	_, err = s.Get(ctx, "d1")
	require.NoError(t, err, "a refused delete keeps the draft")

	removed, err := s.Delete(ctx, "d1", func(models.Draft) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "p1", removed.Photos[0].ID)
	_, err = s.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMemoryDraftStore_ForEach(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, models.NewDraft(id, "tenant", time.Now())))
	}

	seen := []string{}
	require.NoError(t, s.ForEach(ctx, func(d models.Draft) error {
		seen = append(seen, d.ID)
		return nil
	}))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestMemoryDraftStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()
	d := models.NewDraft("d1", "tenant", time.Now())
	d.Photos = []models.Attachment{{ID: "p1"}}
	require.NoError(t, s.Create(ctx, d))

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	got.Photos[0].ID = "changed"

	again, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "p1", again.Photos[0].ID)
}

func TestDiskBlobStore_Lifecycle(t *testing.T) {
	s, err := NewDiskBlobStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.NewString()
	n, err := s.Put(context.Background(), id, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	f, err := s.Open(id)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(id))
	_, err = s.Open(id)
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.ErrorIs(t, s.Delete(id), ErrBlobNotFound)
}

func TestDiskBlobStore_RejectsNonUUIDs(t *testing.T) {
	s, err := NewDiskBlobStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBlobNotFound)
	_, err = s.Open("../secret")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestDiskBlobStore_PutHonoursCancellation(t *testing.T) {
	s, err := NewDiskBlobStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id := uuid.NewString()
	_, err = s.Put(ctx, id, strings.NewReader("data"))
	require.Error(t, err)
	_, err = s.Open(id)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestDiskBlobStore_ListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskBlobStore(dir)
	require.NoError(t, err)

	id := uuid.NewString()
	_, err = s.Put(context.Background(), id, strings.NewReader("hello"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".upload-123"), []byte("partial"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, uuid.NewString()), 0o750))

	blobs, err := s.List()
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, id, blobs[0].ID)
	assert.WithinDuration(t, time.Now(), blobs[0].ModTime, time.Minute)
}

func TestMemoryReportRepository_Attachments(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReportRepository()
	require.NoError(t, repo.Insert(ctx, models.Report{
		Title:  "Leak",
		Photos: []models.Attachment{{ID: "p1"}},
		Videos: []models.Attachment{{ID: "v1"}},
	}))

	for _, id := range []string{"p1", "v1"} {
		ok, err := repo.HasAttachment(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok, id)
	}
	ok, err := repo.HasAttachment(ctx, "staged")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := repo.AttachmentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"p1": {}, "v1": {}}, ids)
}

func TestMemoryReportRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReportRepository()
	require.NoError(t, repo.Insert(ctx, models.Report{Title: "first"}))
	require.NoError(t, repo.Insert(ctx, models.Report{Title: "second"}))

	reports, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "second", reports[0].Title)
	assert.Equal(t, "first", reports[1].Title)
}

func TestMemoryTenantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTenantRepository()

	tenant := &models.Tenant{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, tenant))
	assert.False(t, tenant.ID.IsZero())

	err := repo.Create(ctx, &models.Tenant{Name: "Other", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	byEmail, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, tenant.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)

	_, err = repo.FindByID(ctx, "not-hex")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}
