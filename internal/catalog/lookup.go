// Package catalog answers cross-resource questions about services and packs.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
)

// Lookup reads service and pack ids without loading whole rows.
type Lookup struct {
	db *gorm.DB
}

// NewLookup constructs a catalog lookup bound to the provided GORM DB.
func NewLookup(db *gorm.DB) *Lookup {
	return &Lookup{db: db}
}

// ServicesExist returns the ids that match no service row, in input order.
func (l *Lookup) ServicesExist(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return l.missing(ctx, &models.Service{}, ids)
}

// PacksExist returns the ids that match no pack row, in input order.
func (l *Lookup) PacksExist(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return l.missing(ctx, &models.Pack{}, ids)
}

// PackPrice returns the price of an active pack. Unknown or inactive packs
// yield gorm.ErrRecordNotFound.
func (l *Lookup) PackPrice(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var pack models.Pack
	err := l.db.WithContext(ctx).
		Select("id", "price").
		Where("id = ? AND is_active = ?", id, true).
		First(&pack).Error
	if err != nil {
		return decimal.Zero, err
	}
	return pack.Price, nil
}

func (l *Lookup) missing(ctx context.Context, model any, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	if err := l.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var out []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
