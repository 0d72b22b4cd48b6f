package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// Contact is a submission of the public contact form.
type Contact struct {
	ID        uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Name      string               `gorm:"column:name;not null"`
	Email     string               `gorm:"column:email;not null"`
	Phone     *string              `gorm:"column:phone"`
	Company   *string              `gorm:"column:company"`
	Subject   string               `gorm:"column:subject;not null"`
	Service   *string              `gorm:"column:service"`
	Budget    *enums.ContactBudget `gorm:"column:budget;type:text"`
	Timeline  *string              `gorm:"column:timeline"`
	Message   string               `gorm:"column:message;not null"`
	Status    enums.ContactStatus  `gorm:"column:status;type:text;not null;default:new"`
	Notes     *string              `gorm:"column:notes"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Contact) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
