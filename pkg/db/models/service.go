package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

// Service is an agency offering shown on the public site.
type Service struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Title               string              `gorm:"column:title;not null"`
	Slug                string              `gorm:"column:slug;not null;uniqueIndex"`
	Description         string              `gorm:"column:description;not null"`
	LongDescription     *string             `gorm:"column:long_description"`
	LongDescriptionHTML *string             `gorm:"column:long_description_html"`
	Icon                string              `gorm:"column:icon;not null"`
	PriceMin            *decimal.Decimal    `gorm:"column:price_min;type:numeric(12,2)"`
	PriceMax            *decimal.Decimal    `gorm:"column:price_max;type:numeric(12,2)"`
	Features            dbtypes.StringArray `gorm:"column:features;not null"`
	Image               *string             `gorm:"column:image"`
	IsActive            bool                `gorm:"column:is_active;not null"`
	SortOrder           int                 `gorm:"column:sort_order;not null;default:0"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
