package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

// DefaultIcon is used when a service is saved without an icon.
const DefaultIcon = "🚀"

// ServiceDTO is the public representation of an agency service.
type ServiceDTO struct {
	ID                  uuid.UUID        `json:"id"`
	Title               string           `json:"title"`
	Slug                string           `json:"slug"`
	Description         string           `json:"description"`
	LongDescription     *string          `json:"long_description,omitempty"`
	LongDescriptionHTML *string          `json:"long_description_html,omitempty"`
	Icon                string           `json:"icon"`
	PriceMin            *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax            *decimal.Decimal `json:"price_max,omitempty"`
	Features            []string         `json:"features"`
	Image               *string          `json:"image,omitempty"`
	IsActive            bool             `json:"is_active"`
	SortOrder           int              `json:"sort_order"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// UpsertServiceRequest is the admin create and replace payload.
type UpsertServiceRequest struct {
	Title           string           `json:"title" validate:"required,min=2,max=100"`
	Slug            *string          `json:"slug,omitempty" validate:"omitempty,max=120"`
	Description     string           `json:"description" validate:"required,max=500"`
	LongDescription *string          `json:"long_description,omitempty" validate:"omitempty,max=10000"`
	Icon            *string          `json:"icon,omitempty" validate:"omitempty,max=16"`
	PriceMin        *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax        *decimal.Decimal `json:"price_max,omitempty"`
	Features        []string         `json:"features,omitempty" validate:"omitempty,max=30,dive,required,max=200"`
	Image           *string          `json:"image,omitempty" validate:"omitempty,url"`
	IsActive        *bool            `json:"is_active,omitempty"`
	SortOrder       *int             `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

func (r UpsertServiceRequest) applyTo(s *models.Service) {
	s.Title = strings.TrimSpace(r.Title)
	s.Description = strings.TrimSpace(r.Description)
	s.LongDescription = trimmedOrNil(r.LongDescription)
	s.Icon = DefaultIcon
	if icon := trimmedOrNil(r.Icon); icon != nil {
		s.Icon = *icon
	}
	s.PriceMin = r.PriceMin
	s.PriceMax = r.PriceMax
	s.Features = make(dbtypes.StringArray, 0, len(r.Features))
	for _, f := range r.Features {
		if f = strings.TrimSpace(f); f != "" {
			s.Features = append(s.Features, f)
		}
	}
	s.Image = trimmedOrNil(r.Image)
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	} else if s.ID == uuid.Nil {
		s.IsActive = true
	}
	if r.SortOrder != nil {
		s.SortOrder = *r.SortOrder
	}
}

func FromModel(s *models.Service) ServiceDTO {
	return ServiceDTO{
		ID:                  s.ID,
		Title:               s.Title,
		Slug:                s.Slug,
		Description:         s.Description,
		LongDescription:     s.LongDescription,
		LongDescriptionHTML: s.LongDescriptionHTML,
		Icon:                s.Icon,
		PriceMin:            s.PriceMin,
		PriceMax:            s.PriceMax,
		Features:            append([]string{}, s.Features...),
		Image:               s.Image,
		IsActive:            s.IsActive,
		SortOrder:           s.SortOrder,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
