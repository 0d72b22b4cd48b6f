package contacts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	"github.com/webyarden/webyarden-backend/pkg/pagination"
)

// Repository persists contact form submissions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *models.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var c models.Contact
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns one cursor page, newest first, plus the buffer row.
func (r *Repository) List(ctx context.Context, status *enums.ContactStatus, cursor *pagination.Cursor, limit int) ([]models.Contact, error) {
	q := r.db.WithContext(ctx).Model(&models.Contact{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.Contact
	err := q.Scopes(pagination.Scope(cursor, limit)).Find(&rows).Error
	return rows, err
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// DeleteCompletedBefore purges completed requests last touched before cutoff.
func (r *Repository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.ContactStatusCompleted, cutoff).
		Delete(&models.Contact{})
	return res.RowsAffected, res.Error
}
