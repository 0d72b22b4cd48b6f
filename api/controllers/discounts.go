package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/api/responses"
	"github.com/webyarden/webyarden-backend/api/validators"
	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/internal/quotes"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
)

// discountValidateRequest prices the target from quote, then pack_id, then amount.
type discountValidateRequest struct {
	Code      string                  `json:"code" validate:"required,max=50"`
	Quote     *quotes.EstimateRequest `json:"quote,omitempty"`
	PackID    *uuid.UUID              `json:"pack_id,omitempty"`
	ServiceID *uuid.UUID              `json:"service_id,omitempty"`
	Amount    *decimal.Decimal        `json:"amount,omitempty"`
}

type discountValidateResponse struct {
	*discounts.Evaluation
	Quote *quotes.Estimate `json:"quote,omitempty"`
}

type discountApplyRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

// DiscountsActive lists the codes currently usable.
func DiscountsActive(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DiscountValidate checks a code against a server-priced amount without consuming it.
func DiscountValidate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body discountValidateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := discounts.ValidateInput{
			Code:      body.Code,
			ServiceID: body.ServiceID,
			PackID:    body.PackID,
		}
		var est *quotes.Estimate
		switch {
		case body.Quote != nil:
			priced, err := quotes.Price(*body.Quote)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			est = priced
			input.Amount = &priced.TotalPrice
		case body.PackID != nil:
			// resolved from the catalog price
		default:
			input.Amount = body.Amount
		}

		eval, err := svc.Validate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discountValidateResponse{Evaluation: eval, Quote: est})
	}
}

// DiscountApply consumes one usage of a code.
func DiscountApply(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body discountApplyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Apply(r.Context(), body.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminDiscountsList returns every discount, including inactive and expired codes.
func AdminDiscountsList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminDiscountCreate stores a new code after invariant and catalog checks.
func AdminDiscountCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body discounts.UpsertDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminDiscountUpdate replaces a code's settings; usage_count is kept unless sent.
func AdminDiscountUpdate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body discounts.UpsertDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminDiscountDelete removes a code permanently.
func AdminDiscountDelete(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
