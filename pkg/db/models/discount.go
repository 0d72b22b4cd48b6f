package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// Discount is a promo code. Code is stored uppercase.
type Discount struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Code                 string             `gorm:"column:code;not null;uniqueIndex"`
	Description          *string            `gorm:"column:description"`
	Type                 enums.DiscountType `gorm:"column:type;type:text;not null"`
	Value                decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	MinAmount            decimal.Decimal    `gorm:"column:min_amount;type:numeric(12,2);not null;default:0"`
	MaxUsage             *int               `gorm:"column:max_usage"`
	UsageCount           int                `gorm:"column:usage_count;not null;default:0"`
	ValidFrom            time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil           time.Time          `gorm:"column:valid_until;not null"`
	ApplicableServiceIDs dbtypes.UUIDArray  `gorm:"column:applicable_service_ids;not null"`
	ApplicablePackIDs    dbtypes.UUIDArray  `gorm:"column:applicable_pack_ids;not null"`
	IsActive             bool               `gorm:"column:is_active;not null"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Discount) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
