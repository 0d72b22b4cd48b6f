package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
)

// Repository persists agency services.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a services repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("created_at DESC")
}

// ListActive returns the services shown on the public site.
func (r *Repository) ListActive(ctx context.Context) ([]models.Service, error) {
	var rows []models.Service
	err := r.db.WithContext(ctx).Scopes(ordered).Where("is_active = ?", true).Find(&rows).Error
	return rows, err
}

// List returns every service, active or not.
func (r *Repository) List(ctx context.Context) ([]models.Service, error) {
	var rows []models.Service
	err := r.db.WithContext(ctx).Scopes(ordered).Find(&rows).Error
	return rows, err
}

func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repository) Update(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Delete removes a service and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Service{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
