package storage

import (
	"context"
	"sync"

	"github.com/nazar-zhcet26/Tenant-management/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryReportRepository keeps reports newest first in process memory.
type MemoryReportRepository struct {
	mu      sync.RWMutex
	reports []models.Report
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{}
}

func (r *MemoryReportRepository) Insert(_ context.Context, report models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append([]models.Report{report}, r.reports...)
	return nil
}

func (r *MemoryReportRepository) List(_ context.Context) ([]models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Report{}, r.reports...), nil
}

func (r *MemoryReportRepository) HasAttachment(_ context.Context, attachmentID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, report := range r.reports {
		for _, a := range report.Photos {
			if a.ID == attachmentID {
				return true, nil
			}
		}
		for _, a := range report.Videos {
			if a.ID == attachmentID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *MemoryReportRepository) AttachmentIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]struct{})
	for _, report := range r.reports {
		for _, a := range report.Photos {
			ids[a.ID] = struct{}{}
		}
		for _, a := range report.Videos {
			ids[a.ID] = struct{}{}
		}
	}
	return ids, nil
}

// MemoryTenantRepository keeps tenants in process memory.
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[primitive.ObjectID]models.Tenant
}

func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{tenants: make(map[primitive.ObjectID]models.Tenant)}
}

func (r *MemoryTenantRepository) Create(_ context.Context, t *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tenants {
		if existing.Email == t.Email {
			return ErrEmailTaken
		}
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.tenants[t.ID] = *t
	return nil
}

func (r *MemoryTenantRepository) FindByEmail(_ context.Context, email string) (*models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tenants {
		if t.Email == email {
			found := t
			return &found, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (r *MemoryTenantRepository) FindByID(_ context.Context, id string) (*models.Tenant, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrTenantNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[objectID]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return &t, nil
}
