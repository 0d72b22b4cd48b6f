package projects

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

type ProjectDTO struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Client       *string   `json:"client,omitempty"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Technologies []string  `json:"technologies"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Link         *string   `json:"link,omitempty"`
	Featured     bool      `json:"featured"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpsertProjectRequest is the admin create and replace payload.
type UpsertProjectRequest struct {
	Title        string   `json:"title" validate:"required,min=2,max=150"`
	Slug         *string  `json:"slug,omitempty" validate:"omitempty,max=160"`
	Client       *string  `json:"client,omitempty" validate:"omitempty,max=100"`
	Description  string   `json:"description" validate:"required,max=2000"`
	Category     string   `json:"category" validate:"required,max=50"`
	Technologies []string `json:"technologies,omitempty" validate:"omitempty,max=30,dive,required,max=50"`
	ImageURL     *string  `json:"image_url,omitempty" validate:"omitempty,uri"`
	Link         *string  `json:"link,omitempty" validate:"omitempty,url"`
	Featured     bool     `json:"featured"`
	SortOrder    *int     `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r UpsertProjectRequest) applyTo(p *models.Project) {
	p.Title = strings.TrimSpace(r.Title)
	p.Client = optional(r.Client)
	p.Description = strings.TrimSpace(r.Description)
	p.Category = strings.ToLower(strings.TrimSpace(r.Category))
	p.Technologies = make(dbtypes.StringArray, 0, len(r.Technologies))
	for _, tech := range r.Technologies {
		if tech = strings.TrimSpace(tech); tech != "" {
			p.Technologies = append(p.Technologies, tech)
		}
	}
	p.ImageURL = optional(r.ImageURL)
	p.Link = optional(r.Link)
	p.Featured = r.Featured
	if r.SortOrder != nil {
		p.SortOrder = *r.SortOrder
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	} else if p.ID == uuid.Nil {
		p.IsActive = true
	}
}

func FromModel(p *models.Project) ProjectDTO {
	return ProjectDTO{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Client:       p.Client,
		Description:  p.Description,
		Category:     p.Category,
		Technologies: append([]string{}, p.Technologies...),
		ImageURL:     p.ImageURL,
		Link:         p.Link,
		Featured:     p.Featured,
		SortOrder:    p.SortOrder,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	if t := strings.TrimSpace(*v); t != "" {
		return &t
	}
	return nil
}
