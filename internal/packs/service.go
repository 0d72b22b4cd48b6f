package packs

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

// Service exposes the pricing packs catalog.
type Service interface {
	ListActive(ctx context.Context) ([]PackDTO, error)
	GetBySlug(ctx context.Context, slug string) (*PackDTO, error)
	List(ctx context.Context) ([]PackDTO, error)
	Create(ctx context.Context, req UpsertPackRequest) (*PackDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertPackRequest) (*PackDTO, error)
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
	return &service{
		repo:  NewRepository(params.DB.DB()),
		cache: params.Cache,
		logg:  params.Logger,
	}, nil
}

func (s *service) ListActive(ctx context.Context) ([]PackDTO, error) {
	return cache.Remember(ctx, s.cache, cache.KeyPacksActive, func(ctx context.Context) ([]PackDTO, error) {
		rows, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list packs")
		}
		return toDTOs(rows), nil
	})
}

func (s *service) GetBySlug(ctx context.Context, value string) (*PackDTO, error) {
	row, err := s.repo.FindActiveBySlug(ctx, slug.Make(value))
	if err != nil {
		return nil, lookupError(err)
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]PackDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list packs")
	}
	return toDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, req UpsertPackRequest) (*PackDTO, error) {
	row := &models.Pack{}
	if err := prepare(req, row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, writeError(err, "create pack")
	}
	s.written(ctx, "pack.created", row)
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpsertPackRequest) (*PackDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	if err := prepare(req, row); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, writeError(err, "update pack")
	}
	s.written(ctx, "pack.updated", row)
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pack")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pack not found")
	}
	s.cache.Invalidate(ctx, cache.KeyPacksActive)
	return nil
}

func (s *service) written(ctx context.Context, event string, row *models.Pack) {
	s.cache.Invalidate(ctx, cache.KeyPacksActive)
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"pack_id": row.ID.String(),
		"slug":    row.Slug,
		"price":   row.Price.String(),
	})
	s.logg.Info(logCtx, event)
}

func prepare(req UpsertPackRequest, row *models.Pack) error {
	req.applyTo(row)
	preferred := ""
	if req.Slug != nil {
		preferred = *req.Slug
	}
	row.Slug = slug.Or(preferred, row.Name)

	details := map[string]string{}
	if row.Slug == "" {
		details["slug"] = "could not be derived from name"
	}
	if row.Price.IsNegative() {
		details["price"] = "must be greater than or equal to 0"
	}
	if len(row.Features) == 0 {
		details["features"] = "must contain at least one feature"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pack not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pack")
}

func writeError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func toDTOs(rows []models.Pack) []PackDTO {
	out := make([]PackDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
