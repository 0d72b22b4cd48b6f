package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/webyarden/webyarden-backend/api/responses"
	"github.com/webyarden/webyarden-backend/api/validators"
	"github.com/webyarden/webyarden-backend/internal/packs"
	"github.com/webyarden/webyarden-backend/internal/projects"
	"github.com/webyarden/webyarden-backend/internal/services"
	"github.com/webyarden/webyarden-backend/pkg/logger"
)

func listHandler[T any](list func(context.Context) ([]T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func slugHandler[T any](get func(context.Context, string) (*T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := get(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func createHandler[R, T any](create func(context.Context, R) (*T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body R
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func updateHandler[R, T any](update func(context.Context, uuid.UUID, R) (*T, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body R
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func deleteHandler(del func(context.Context, uuid.UUID) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := del(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ServicesList(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc.ListActive, logg)
}

func ServiceBySlug(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return slugHandler(svc.GetBySlug, logg)
}

func AdminServicesList(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc.List, logg)
}

func AdminServiceCreate(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return createHandler(svc.Create, logg)
}

func AdminServiceUpdate(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return updateHandler(svc.Update, logg)
}

func AdminServiceDelete(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteHandler(svc.Delete, logg)
}

func PacksList(svc packs.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc.ListActive, logg)
}

func PackBySlug(svc packs.Service, logg *logger.Logger) http.HandlerFunc {
	return slugHandler(svc.GetBySlug, logg)
}

func AdminPacksList(svc packs.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc.List, logg)
}

func AdminPackCreate(svc packs.Service, logg *logger.Logger) http.HandlerFunc {
	return createHandler(svc.Create, logg)
}

func AdminPackUpdate(svc packs.Service, logg *logger.Logger) http.HandlerFunc {
	return updateHandler(svc.Update, logg)
}

func AdminPackDelete(svc packs.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteHandler(svc.Delete, logg)
}

// ProjectsList serves the portfolio, optionally narrowed by ?category= and ?featured=true.
func ProjectsList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := projects.Filter{Category: r.URL.Query().Get("category")}
		if featured != nil {
			filter.FeaturedOnly = *featured
		}
		list, err := svc.ListActive(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProjectBySlug(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return slugHandler(svc.GetBySlug, logg)
}

func AdminProjectsList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc.List, logg)
}

func AdminProjectCreate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return createHandler(svc.Create, logg)
}

func AdminProjectUpdate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return updateHandler(svc.Update, logg)
}

func AdminProjectDelete(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return deleteHandler(svc.Delete, logg)
}
