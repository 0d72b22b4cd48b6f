package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
)

// Repository persists portfolio projects.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Featured projects come first, then sort order, newest first.
func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("featured DESC").Order("sort_order ASC").Order("created_at DESC")
}

func (r *Repository) ListActive(ctx context.Context) ([]models.Project, error) {
	var rows []models.Project
	err := r.db.WithContext(ctx).Scopes(ordered).Where("is_active = ?", true).Find(&rows).Error
	return rows, err
}

func (r *Repository) List(ctx context.Context) ([]models.Project, error) {
	var rows []models.Project
	err := r.db.WithContext(ctx).Scopes(ordered).Find(&rows).Error
	return rows, err
}

func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) Update(ctx context.Context, p *models.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
