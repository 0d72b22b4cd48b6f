package packs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
)

// Repository persists pricing packs.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a packs repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) list(ctx context.Context, activeOnly bool) ([]models.Pack, error) {
	q := r.db.WithContext(ctx).Order("sort_order ASC").Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Pack
	err := q.Find(&rows).Error
	return rows, err
}

func (r *Repository) ListActive(ctx context.Context) ([]models.Pack, error) {
	return r.list(ctx, true)
}

func (r *Repository) List(ctx context.Context) ([]models.Pack, error) {
	return r.list(ctx, false)
}

func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Pack, error) {
	var p models.Pack
	if err := r.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pack, error) {
	var p models.Pack
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Pack) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) Update(ctx context.Context, p *models.Pack) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Pack{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
