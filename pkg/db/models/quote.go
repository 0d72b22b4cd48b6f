package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// Quote is a priced estimate requested by a prospect.
type Quote struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ClientName      string              `gorm:"column:client_name;not null"`
	ClientEmail     string              `gorm:"column:client_email;not null"`
	ClientPhone     *string             `gorm:"column:client_phone"`
	ProjectType     enums.ProjectType   `gorm:"column:project_type;type:text;not null"`
	PageCount       int                 `gorm:"column:page_count;not null"`
	Options         dbtypes.StringArray `gorm:"column:options;not null"`
	Items           dbtypes.JSON        `gorm:"column:items;not null"`
	TotalPrice      decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null"`
	DiscountCode    *string             `gorm:"column:discount_code"`
	DiscountedTotal *decimal.Decimal    `gorm:"column:discounted_total;type:numeric(12,2)"`
	Status          enums.QuoteStatus   `gorm:"column:status;type:text;not null;default:draft"`
	Notes           *string             `gorm:"column:notes"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}
