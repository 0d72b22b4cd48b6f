package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
	"github.com/webyarden/webyarden-backend/pkg/enums"
)

// DiscountDTO is the admin view of a discount.
type DiscountDTO struct {
	ID                   uuid.UUID          `json:"id"`
	Code                 string             `json:"code"`
	Description          *string            `json:"description,omitempty"`
	Type                 enums.DiscountType `json:"type"`
	Value                decimal.Decimal    `json:"value"`
	MinAmount            decimal.Decimal    `json:"min_amount"`
	MaxUsage             *int               `json:"max_usage,omitempty"`
	UsageCount           int                `json:"usage_count"`
	ValidFrom            time.Time          `json:"valid_from"`
	ValidUntil           time.Time          `json:"valid_until"`
	ApplicableServiceIDs []uuid.UUID        `json:"applicable_service_ids"`
	ApplicablePackIDs    []uuid.UUID        `json:"applicable_pack_ids"`
	IsActive             bool               `json:"is_active"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// ActiveDiscountDTO is the public projection of a usable code.
type ActiveDiscountDTO struct {
	Code        string             `json:"code"`
	Description *string            `json:"description,omitempty"`
	Type        enums.DiscountType `json:"type"`
	Value       decimal.Decimal    `json:"value"`
	MinAmount   decimal.Decimal    `json:"min_amount"`
	ValidUntil  time.Time          `json:"valid_until"`
}

// UpsertDiscountRequest is the admin payload for create and full update.
type UpsertDiscountRequest struct {
	Code                 string             `json:"code" validate:"required,min=3,max=50"`
	Description          *string            `json:"description,omitempty" validate:"omitempty,max=500"`
	Type                 enums.DiscountType `json:"type" validate:"required,oneof=percentage fixed"`
	Value                decimal.Decimal    `json:"value"`
	MinAmount            decimal.Decimal    `json:"min_amount"`
	MaxUsage             *int               `json:"max_usage,omitempty" validate:"omitempty,min=1"`
	UsageCount           *int               `json:"usage_count,omitempty" validate:"omitempty,min=0"`
	ValidFrom            time.Time          `json:"valid_from"`
	ValidUntil           time.Time          `json:"valid_until"`
	ApplicableServiceIDs []uuid.UUID        `json:"applicable_service_ids,omitempty"`
	ApplicablePackIDs    []uuid.UUID        `json:"applicable_pack_ids,omitempty"`
	IsActive             *bool              `json:"is_active,omitempty"`
}

// ValidateInput is a code checked against a trusted amount.
// Amount wins over PackID; PackID resolves to the pack's catalog price.
type ValidateInput struct {
	Code      string
	Amount    *decimal.Decimal
	ServiceID *uuid.UUID
	PackID    *uuid.UUID
}

// ApplyResult reports the usage of a code after a successful apply.
type ApplyResult struct {
	Code       string `json:"code"`
	UsageCount int    `json:"usage_count"`
	MaxUsage   *int   `json:"max_usage,omitempty"`
}

// FromModel maps a stored discount to its admin representation.
func FromModel(d *models.Discount) DiscountDTO {
	return DiscountDTO{
		ID:                   d.ID,
		Code:                 d.Code,
		Description:          d.Description,
		Type:                 d.Type,
		Value:                d.Value,
		MinAmount:            d.MinAmount,
		MaxUsage:             d.MaxUsage,
		UsageCount:           d.UsageCount,
		ValidFrom:            d.ValidFrom,
		ValidUntil:           d.ValidUntil,
		ApplicableServiceIDs: append([]uuid.UUID{}, d.ApplicableServiceIDs...),
		ApplicablePackIDs:    append([]uuid.UUID{}, d.ApplicablePackIDs...),
		IsActive:             d.IsActive,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func toActive(d *models.Discount) ActiveDiscountDTO {
	return ActiveDiscountDTO{
		Code:        d.Code,
		Description: d.Description,
		Type:        d.Type,
		Value:       d.Value,
		MinAmount:   d.MinAmount,
		ValidUntil:  d.ValidUntil,
	}
}

// applyTo copies the request onto d. Usage count is kept unless provided.
func (r UpsertDiscountRequest) applyTo(d *models.Discount) {
	d.Code = normalizeCode(r.Code)
	d.Description = r.Description
	d.Type = r.Type
	d.Value = r.Value
	d.MinAmount = r.MinAmount
	d.MaxUsage = r.MaxUsage
	if r.UsageCount != nil {
		d.UsageCount = *r.UsageCount
	}
	d.ValidFrom = r.ValidFrom.UTC()
	d.ValidUntil = r.ValidUntil.UTC()
	d.ApplicableServiceIDs = dbtypes.UUIDArray(dedupe(r.ApplicableServiceIDs))
	d.ApplicablePackIDs = dbtypes.UUIDArray(dedupe(r.ApplicablePackIDs))
	if r.IsActive != nil {
		d.IsActive = *r.IsActive
	} else if d.ID == uuid.Nil {
		d.IsActive = true
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
