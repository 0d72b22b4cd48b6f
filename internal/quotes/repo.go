package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	"github.com/webyarden/webyarden-backend/pkg/pagination"
)

// Repository persists quote requests.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a quotes repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, q *models.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var q models.Quote
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns one cursor page of quotes, newest first, plus the buffer row.
func (r *Repository) List(ctx context.Context, status *enums.QuoteStatus, cursor *pagination.Cursor, limit int) ([]models.Quote, error) {
	q := r.db.WithContext(ctx).Model(&models.Quote{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.Quote
	err := q.Scopes(pagination.Scope(cursor, limit)).Find(&rows).Error
	return rows, err
}

// UpdateFields applies a partial column update and reports whether the row exists.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Quote{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected > 0, res.Error
}
