package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/slug"
)

// Service exposes the agency services catalog.
type Service interface {
	ListActive(ctx context.Context) ([]ServiceDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ServiceDTO, error)
	List(ctx context.Context) ([]ServiceDTO, error)
	Create(ctx context.Context, req UpsertServiceRequest) (*ServiceDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertServiceRequest) (*ServiceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type markdownRenderer interface {
	Markdown(src string) (string, error)
}

// ServiceParams bundles the dependencies required to build the services service.
type ServiceParams struct {
	DB       *db.Client
	Markdown markdownRenderer
	Cache    *cache.Cache
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	markdown markdownRenderer
	cache    *cache.Cache
	logg     *logger.Logger
}

// NewService constructs the services catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Markdown == nil {
		return nil, fmt.Errorf("markdown renderer required")
	}
	return &service{
		repo:     NewRepository(params.DB.DB()),
		markdown: params.Markdown,
		cache:    params.Cache,
		logg:     params.Logger,
	}, nil
}

func (s *service) ListActive(ctx context.Context) ([]ServiceDTO, error) {
	return cache.Remember(ctx, s.cache, cache.KeyServicesActive, func(ctx context.Context) ([]ServiceDTO, error) {
		rows, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
		}
		return toDTOs(rows), nil
	})
}

func (s *service) GetBySlug(ctx context.Context, value string) (*ServiceDTO, error) {
	row, err := s.repo.FindActiveBySlug(ctx, slug.Make(value))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]ServiceDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
	}
	return toDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, req UpsertServiceRequest) (*ServiceDTO, error) {
	row := &models.Service{}
	if err := s.prepare(req, row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, writeError(err, "create service")
	}
	s.cache.Invalidate(ctx, cache.KeyServicesActive)
	s.logWrite(ctx, "service.created", row)
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpsertServiceRequest) (*ServiceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
	}
	if err := s.prepare(req, row); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, writeError(err, "update service")
	}
	s.cache.Invalidate(ctx, cache.KeyServicesActive)
	s.logWrite(ctx, "service.updated", row)
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete service")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	s.cache.Invalidate(ctx, cache.KeyServicesActive)
	return nil
}

// prepare copies req onto row, derives the slug and renders the long description.
func (s *service) prepare(req UpsertServiceRequest, row *models.Service) error {
	req.applyTo(row)

	preferred := ""
	if req.Slug != nil {
		preferred = *req.Slug
	}
	row.Slug = slug.Or(preferred, row.Title)
	if row.Slug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"slug": "could not be derived from title",
		})
	}

	if row.PriceMin != nil && row.PriceMin.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"price_min": "must be greater than or equal to 0",
		})
	}
	if row.PriceMin != nil && row.PriceMax != nil && row.PriceMax.LessThan(*row.PriceMin) {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"price_max": "must be greater than or equal to price_min",
		})
	}

	row.LongDescriptionHTML = nil
	if row.LongDescription != nil {
		html, err := s.markdown.Markdown(*row.LongDescription)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid long description")
		}
		if html != "" {
			row.LongDescriptionHTML = &html
		}
	}
	return nil
}

func (s *service) logWrite(ctx context.Context, event string, row *models.Service) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"service_id": row.ID.String(),
		"slug":       row.Slug,
	})
	s.logg.Info(logCtx, event)
}

func writeError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func toDTOs(rows []models.Service) []ServiceDTO {
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
