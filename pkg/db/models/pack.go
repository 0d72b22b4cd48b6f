package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

// Pack is a fixed-price bundle of services.
type Pack struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name        string              `gorm:"column:name;not null"`
	Slug        string              `gorm:"column:slug;not null;uniqueIndex"`
	Description string              `gorm:"column:description;not null"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Features    dbtypes.StringArray `gorm:"column:features;not null"`
	Highlighted bool                `gorm:"column:highlighted;not null"`
	Badge       *string             `gorm:"column:badge"`
	IsYearly    bool                `gorm:"column:is_yearly;not null"`
	SortOrder   int                 `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool                `gorm:"column:is_active;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Pack) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
