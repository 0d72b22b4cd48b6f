package controllers

import (
	"net/http"
	"strings"

	"github.com/webyarden/webyarden-backend/api/responses"
	"github.com/webyarden/webyarden-backend/api/validators"
	"github.com/webyarden/webyarden-backend/internal/contacts"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/pagination"
)

// ContactSubmit stores a contact form message.
func ContactSubmit(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return createHandler(svc.Submit, logg)
}

func AdminContactsList(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := contacts.ListParams{Limit: limit, Cursor: r.URL.Query().Get("cursor")}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseContactStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminContactUpdate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return updateHandler(svc.Update, logg)
}

func AdminContactDelete(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteHandler(svc.Delete, logg)
}
