package discounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
)

// ErrExhausted is returned by Consume when the guarded increment matched no row.
var ErrExhausted = errors.New("discount usage cap reached")

// Repository persists discount codes.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a discounts repo bound to the provided GORM DB.
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

// FindByCode loads the discount matching code. Codes are stored uppercase.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var d models.Discount
	if err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByCodeForUpdate loads the discount and row-locks it on engines that support it.
// Must run inside a transaction.
func (r *Repository) FindByCodeForUpdate(ctx context.Context, code string) (*models.Discount, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var d models.Discount
	if err := q.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByID loads a discount by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var d models.Discount
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// Consume increments usage_count by one unless the cap is already reached.
// The WHERE guard keeps the cap even when row locks are unavailable.
func (r *Repository) Consume(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ? AND (max_usage IS NULL OR usage_count < max_usage)", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrExhausted
	}
	return nil
}

// Create inserts d.
func (r *Repository) Create(ctx context.Context, d *models.Discount) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// Update overwrites every column of d.
func (r *Repository) Update(ctx context.Context, d *models.Discount) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// Delete removes the discount and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// ListActive returns codes usable at now: active, in window and not exhausted.
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where("max_usage IS NULL OR usage_count < max_usage").
		Order("valid_until ASC").
		Order("code ASC").
		Find(&rows).Error
	return rows, err
}

// List returns every discount, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// CountWindowEdges counts active codes whose validity window opened or closed
// in (since, now].
func (r *Repository) CountWindowEdges(ctx context.Context, since, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("is_active = ?", true).
		Where("((valid_from > ? AND valid_from <= ?) OR (valid_until >= ? AND valid_until < ?))", since, now, since, now).
		Count(&count).Error
	return count, err
}
