package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Evaluation is the priced outcome of a successful validation.
type Evaluation struct {
	Code             string             `json:"code"`
	DiscountType     enums.DiscountType `json:"discount_type"`
	DiscountValue    decimal.Decimal    `json:"discount_value"`
	OriginalAmount   decimal.Decimal    `json:"original_amount"`
	DiscountedAmount decimal.Decimal    `json:"discounted_amount"`
	SavedAmount      decimal.Decimal    `json:"saved_amount"`
}

// Redemption is an evaluation whose usage was consumed inside a caller's transaction.
type Redemption struct {
	Evaluation
	UsageCount int
	MaxUsage   *int
}

// Target is what a code is evaluated against.
type Target struct {
	Amount    decimal.Decimal
	ServiceID *uuid.UUID
	PackID    *uuid.UUID
}

// IsValid reports whether d is active, within its window and not exhausted at now.
// Both window bounds are inclusive.
func IsValid(d *models.Discount, now time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}
	if now.Before(d.ValidFrom) || now.After(d.ValidUntil) {
		return false
	}
	return !IsExhausted(d)
}

// IsExhausted reports whether the usage cap has been reached.
func IsExhausted(d *models.Discount) bool {
	return d.MaxUsage != nil && d.UsageCount >= *d.MaxUsage
}

// Evaluate runs the rejection pipeline for d against target and prices the
// discount. The first failing check wins; a nil d is DISCOUNT_NOT_FOUND.
func Evaluate(d *models.Discount, target Target, now time.Time) (*Evaluation, error) {
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDiscountNotFound, "discount code not found")
	}
	if !IsValid(d, now) {
		return nil, pkgerrors.New(pkgerrors.CodeDiscountExpiredOrExhausted, "discount code expired or exhausted")
	}
	if target.Amount.LessThan(d.MinAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeDiscountBelowMinimum, "amount below discount minimum").
			WithDetails(map[string]any{"min_amount": d.MinAmount.String()})
	}
	if len(d.ApplicableServiceIDs) > 0 && target.ServiceID != nil && !d.ApplicableServiceIDs.Contains(*target.ServiceID) {
		return nil, pkgerrors.New(pkgerrors.CodeDiscountServiceNotEligible, "discount not valid for this service")
	}
	if len(d.ApplicablePackIDs) > 0 && target.PackID != nil && !d.ApplicablePackIDs.Contains(*target.PackID) {
		return nil, pkgerrors.New(pkgerrors.CodeDiscountPackNotEligible, "discount not valid for this pack")
	}

	discounted := Apply(d.Type, d.Value, target.Amount)
	return &Evaluation{
		Code:             d.Code,
		DiscountType:     d.Type,
		DiscountValue:    d.Value,
		OriginalAmount:   target.Amount,
		DiscountedAmount: discounted,
		SavedAmount:      target.Amount.Sub(discounted),
	}, nil
}

// Apply returns amount reduced by a discount of the given kind and value.
// Fixed discounts never go below zero.
func Apply(kind enums.DiscountType, value, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case enums.DiscountTypePercentage:
		return amount.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred))).Round(2)
	case enums.DiscountTypeFixed:
		out := amount.Sub(value)
		if out.IsNegative() {
			return decimal.Zero
		}
		return out
	}
	return amount
}

// CheckInvariants validates the stored shape of a discount.
func CheckInvariants(d *models.Discount) error {
	details := types.FieldErrors{}
	if d.Code == "" {
		details["code"] = "is required"
	}
	switch d.Type {
	case enums.DiscountTypePercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			details["value"] = "must be between 0 and 100 for percentage discounts"
		}
	case enums.DiscountTypeFixed:
		if d.Value.IsNegative() {
			details["value"] = "must be greater than or equal to 0"
		}
	default:
		details["type"] = "must be one of [percentage fixed]"
	}
	if d.MinAmount.IsNegative() {
		details["min_amount"] = "must be greater than or equal to 0"
	}
	if d.MaxUsage != nil && *d.MaxUsage < 1 {
		details["max_usage"] = "must be at least 1"
	}
	if d.UsageCount < 0 {
		details["usage_count"] = "must be greater than or equal to 0"
	} else if d.MaxUsage != nil && d.UsageCount > *d.MaxUsage {
		details["usage_count"] = "must not exceed max_usage"
	}
	if d.ValidUntil.Before(d.ValidFrom) {
		details["valid_until"] = "must not be before valid_from"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount").WithDetails(details)
	}
	return nil
}
