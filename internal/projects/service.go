package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/slug"
)

// Filter narrows the public portfolio listing.
type Filter struct {
	Category     string
	FeaturedOnly bool
}

// Service exposes the portfolio.
type Service interface {
	ListActive(ctx context.Context, filter Filter) ([]ProjectDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProjectDTO, error)
	List(ctx context.Context) ([]ProjectDTO, error)
	Create(ctx context.Context, req UpsertProjectRequest) (*ProjectDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertProjectRequest) (*ProjectDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceParams struct {
	DB     *db.Client
	Cache  *cache.Cache
	Logger *logger.Logger
}

type service struct {
	repo  *Repository
	cache *cache.Cache
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: NewRepository(params.DB.DB()), cache: params.Cache, logg: params.Logger}, nil
}

// ListActive serves the cached portfolio and filters it in memory.
func (s *service) ListActive(ctx context.Context, filter Filter) ([]ProjectDTO, error) {
	all, err := cache.Remember(ctx, s.cache, cache.KeyProjectsActive, func(ctx context.Context) ([]ProjectDTO, error) {
		rows, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list projects")
		}
		return toDTOs(rows), nil
	})
	if err != nil {
		return nil, err
	}

	category := strings.ToLower(strings.TrimSpace(filter.Category))
	if category == "" && !filter.FeaturedOnly {
		return all, nil
	}
	out := make([]ProjectDTO, 0, len(all))
	for _, p := range all {
		if category != "" && p.Category != category {
			continue
		}
		if filter.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *service) GetBySlug(ctx context.Context, value string) (*ProjectDTO, error) {
	row, err := s.repo.FindActiveBySlug(ctx, slug.Make(value))
	if err != nil {
		return nil, lookupError(err)
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]ProjectDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list projects")
	}
	return toDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, req UpsertProjectRequest) (*ProjectDTO, error) {
	row := &models.Project{}
	if err := prepare(req, row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, writeError(err, "create project")
	}
	s.written(ctx, "project.created", row)
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpsertProjectRequest) (*ProjectDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	if err := prepare(req, row); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, writeError(err, "update project")
	}
	s.written(ctx, "project.updated", row)
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete project")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	s.cache.Invalidate(ctx, cache.KeyProjectsActive)
	return nil
}

func (s *service) written(ctx context.Context, event string, row *models.Project) {
	s.cache.Invalidate(ctx, cache.KeyProjectsActive)
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"project_id": row.ID.String(), "slug": row.Slug}), event)
}

func prepare(req UpsertProjectRequest, row *models.Project) error {
	req.applyTo(row)
	preferred := ""
	if req.Slug != nil {
		preferred = *req.Slug
	}
	if row.Slug = slug.Or(preferred, row.Title); row.Slug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"slug": "could not be derived from title",
		})
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load project")
}

func writeError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func toDTOs(rows []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
