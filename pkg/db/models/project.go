package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

// Project is a portfolio entry.
type Project struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Title        string              `gorm:"column:title;not null"`
	Slug         string              `gorm:"column:slug;not null;uniqueIndex"`
	Client       *string             `gorm:"column:client"`
	Description  string              `gorm:"column:description;not null"`
	Category     string              `gorm:"column:category;not null"`
	Technologies dbtypes.StringArray `gorm:"column:technologies;not null"`
	ImageURL     *string             `gorm:"column:image_url"`
	Link         *string             `gorm:"column:link"`
	Featured     bool                `gorm:"column:featured;not null"`
	SortOrder    int                 `gorm:"column:sort_order;not null;default:0"`
	IsActive     bool                `gorm:"column:is_active;not null"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
