package quotes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// CreateQuoteRequest is a public quote request. Prices are always recomputed.
type CreateQuoteRequest struct {
	ClientName   string              `json:"client_name" validate:"required,min=2,max=100"`
	ClientEmail  string              `json:"client_email" validate:"required,email"`
	ClientPhone  *string             `json:"client_phone,omitempty" validate:"omitempty,phone"`
	ProjectType  enums.ProjectType   `json:"project_type" validate:"required,oneof=vitrine ecommerce landing custom"`
	PageCount    int                 `json:"page_count" validate:"required,min=1,max=100"`
	Options      []enums.QuoteOption `json:"options,omitempty" validate:"omitempty,max=20,dive,max=50"`
	DiscountCode *string             `json:"discount_code,omitempty" validate:"omitempty,max=50"`
	Notes        *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// EstimateRequest returns the pricing part of the request.
func (r CreateQuoteRequest) EstimateRequest() EstimateRequest {
	return EstimateRequest{ProjectType: r.ProjectType, PageCount: r.PageCount, Options: r.Options}
}

func (r CreateQuoteRequest) discountCode() string {
	if r.DiscountCode == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*r.DiscountCode))
}

// UpdateQuoteRequest is the admin patch payload.
type UpdateQuoteRequest struct {
	Status *enums.QuoteStatus `json:"status,omitempty" validate:"omitempty,oneof=draft sent accepted rejected"`
	Notes  *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListQuotesParams filters the admin listing.
type ListQuotesParams struct {
	Status *enums.QuoteStatus
	Limit  int
	Cursor string
}

// QuoteDTO is the stored quote returned to clients.
type QuoteDTO struct {
	ID              uuid.UUID         `json:"id"`
	ClientName      string            `json:"client_name"`
	ClientEmail     string            `json:"client_email"`
	ClientPhone     *string           `json:"client_phone,omitempty"`
	ProjectType     enums.ProjectType `json:"project_type"`
	PageCount       int               `json:"page_count"`
	Options         []string          `json:"options"`
	Items           []LineItem        `json:"items"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	Currency        string            `json:"currency"`
	DiscountCode    *string           `json:"discount_code,omitempty"`
	DiscountedTotal *decimal.Decimal  `json:"discounted_total,omitempty"`
	Status          enums.QuoteStatus `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func FromModel(q *models.Quote) (*QuoteDTO, error) {
	items := []LineItem{}
	if len(q.Items) > 0 {
		if err := json.Unmarshal(q.Items, &items); err != nil {
			return nil, err
		}
	}
	return &QuoteDTO{
		ID:              q.ID,
		ClientName:      q.ClientName,
		ClientEmail:     q.ClientEmail,
		ClientPhone:     q.ClientPhone,
		ProjectType:     q.ProjectType,
		PageCount:       q.PageCount,
		Options:         append([]string{}, q.Options...),
		Items:           items,
		TotalPrice:      q.TotalPrice,
		Currency:        q.Currency.Symbol(),
		DiscountCode:    q.DiscountCode,
		DiscountedTotal: q.DiscountedTotal,
		Status:          q.Status,
		Notes:           q.Notes,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}, nil
}
