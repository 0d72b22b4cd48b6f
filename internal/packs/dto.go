package packs

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

type PackDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features"`
	Highlighted bool            `json:"highlighted"`
	Badge       *string         `json:"badge,omitempty"`
	IsYearly    bool            `json:"is_yearly"`
	SortOrder   int             `json:"sort_order"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UpsertPackRequest is the admin create and replace payload.
type UpsertPackRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Slug        *string         `json:"slug,omitempty" validate:"omitempty,max=120"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features" validate:"required,min=1,max=30,dive,required,max=200"`
	Highlighted bool            `json:"highlighted"`
	Badge       *string         `json:"badge,omitempty" validate:"omitempty,max=30"`
	IsYearly    bool            `json:"is_yearly"`
	SortOrder   *int            `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

func (r UpsertPackRequest) applyTo(p *models.Pack) {
	p.Name = strings.TrimSpace(r.Name)
	p.Description = strings.TrimSpace(r.Description)
	p.Price = r.Price.Round(2)
	p.Features = make(dbtypes.StringArray, 0, len(r.Features))
	for _, f := range r.Features {
		if f = strings.TrimSpace(f); f != "" {
			p.Features = append(p.Features, f)
		}
	}
	p.Highlighted = r.Highlighted
	p.Badge = nil
	if r.Badge != nil {
		if b := strings.TrimSpace(*r.Badge); b != "" {
			p.Badge = &b
		}
	}
	p.IsYearly = r.IsYearly
	if r.SortOrder != nil {
		p.SortOrder = *r.SortOrder
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	} else if p.ID == uuid.Nil {
		p.IsActive = true
	}
}

func FromModel(p *models.Pack) PackDTO {
	return PackDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Features:    append([]string{}, p.Features...),
		Highlighted: p.Highlighted,
		Badge:       p.Badge,
		IsYearly:    p.IsYearly,
		SortOrder:   p.SortOrder,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
