package contacts

import (
	"time"

	"github.com/google/uuid"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// SubmitRequest is the public contact form payload.
type SubmitRequest struct {
	Name     string               `json:"name" validate:"required,min=2,max=100"`
	Email    string               `json:"email" validate:"required,email,max=254"`
	Phone    *string              `json:"phone,omitempty" validate:"omitempty,phone"`
	Company  *string              `json:"company,omitempty" validate:"omitempty,max=100"`
	Subject  string               `json:"subject" validate:"required,max=200"`
	Service  *string              `json:"service,omitempty" validate:"omitempty,max=100"`
	Budget   *enums.ContactBudget `json:"budget,omitempty" validate:"omitempty,oneof=small medium large custom"`
	Timeline *string              `json:"timeline,omitempty" validate:"omitempty,max=100"`
	Message  string               `json:"message" validate:"required,min=10,max=2000"`
}

// UpdateRequest is the admin patch payload.
type UpdateRequest struct {
	Status *enums.ContactStatus `json:"status,omitempty" validate:"omitempty,oneof=new contacted completed"`
	Notes  *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListParams struct {
	Status *enums.ContactStatus
	Limit  int
	Cursor string
}

type ContactDTO struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Phone     *string              `json:"phone,omitempty"`
	Company   *string              `json:"company,omitempty"`
	Subject   string               `json:"subject"`
	Service   *string              `json:"service,omitempty"`
	Budget    *enums.ContactBudget `json:"budget,omitempty"`
	Timeline  *string              `json:"timeline,omitempty"`
	Message   string               `json:"message"`
	Status    enums.ContactStatus  `json:"status"`
	Notes     *string              `json:"notes,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func FromModel(c *models.Contact) ContactDTO {
	return ContactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Subject:   c.Subject,
		Service:   c.Service,
		Budget:    c.Budget,
		Timeline:  c.Timeline,
		Message:   c.Message,
		Status:    c.Status,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
