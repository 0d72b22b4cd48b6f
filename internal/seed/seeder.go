package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/internal/packs"
	"github.com/webyarden/webyarden-backend/internal/projects"
	"github.com/webyarden/webyarden-backend/internal/services"
	"github.com/webyarden/webyarden-backend/internal/users"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/security"
)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// Params wires the domain services the catalog is written through.
type Params struct {
	Services  services.Service
	Packs     packs.Service
	Projects  projects.Service
	Discounts discounts.Service
	Users     userStore
	Password  config.PasswordConfig
	Logger    *logger.Logger
	Now       func() time.Time
}

// Summary counts what a run created and updated.
type Summary struct {
	Created int
	Updated int
}

// Seeder upserts a Catalog: catalog rows by slug, discounts by code, the admin by email.
type Seeder struct {
	p Params
}

func NewSeeder(p Params) (*Seeder, error) {
	if p.Services == nil || p.Packs == nil || p.Projects == nil || p.Discounts == nil {
		return nil, fmt.Errorf("catalog services required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Seeder{p: p}, nil
}

// Apply writes cat and returns the combined counts.
func (s *Seeder) Apply(ctx context.Context, cat *Catalog) (Summary, error) {
	var sum Summary
	if err := s.admin(ctx, cat.Admin, &sum); err != nil {
		return sum, fmt.Errorf("admin: %w", err)
	}
	serviceIDs, err := s.services(ctx, cat.Services, &sum)
	if err != nil {
		return sum, fmt.Errorf("services: %w", err)
	}
	packIDs, err := s.packs(ctx, cat.Packs, &sum)
	if err != nil {
		return sum, fmt.Errorf("packs: %w", err)
	}
	if err := s.projects(ctx, cat.Projects, &sum); err != nil {
		return sum, fmt.Errorf("projects: %w", err)
	}
	if err := s.discounts(ctx, cat.Discounts, serviceIDs, packIDs, &sum); err != nil {
		return sum, fmt.Errorf("discounts: %w", err)
	}
	if s.p.Logger != nil {
		s.p.Logger.Info(s.p.Logger.WithFields(ctx, map[string]any{
			"created": sum.Created,
			"updated": sum.Updated,
		}), "seed.applied")
	}
	return sum, nil
}

func (s *Seeder) admin(ctx context.Context, a *AdminSeed, sum *Summary) error {
	if a == nil || strings.TrimSpace(a.Email) == "" {
		return nil
	}
	if s.p.Users == nil {
		return fmt.Errorf("user store required")
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if _, err := s.p.Users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if a.Password == "" {
		return fmt.Errorf("admin password required")
	}
	if err := security.CheckPasswordPolicy(a.Password); err != nil {
		return err
	}
	hash, err := security.HashPassword(a.Password, s.p.Password)
	if err != nil {
		return err
	}
	if _, err := s.p.Users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         a.Name,
		Role:         enums.UserRoleAdmin,
	}); err != nil {
		return err
	}
	sum.Created++
	return nil
}

func (s *Seeder) services(ctx context.Context, rows []ServiceSeed, sum *Summary) (map[string]uuid.UUID, error) {
	existing, err := s.p.Services.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		ids[e.Slug] = e.ID
	}
	for _, row := range rows {
		active := !row.Inactive
		order := row.SortOrder
		slug := row.Slug
		req := services.UpsertServiceRequest{
			Title:           row.Title,
			Slug:            &slug,
			Description:     row.Description,
			LongDescription: optionalString(row.LongDescription),
			Icon:            optionalString(row.Icon),
			PriceMin:        optionalMoney(row.PriceMin),
			PriceMax:        optionalMoney(row.PriceMax),
			Features:        row.Features,
			IsActive:        &active,
			SortOrder:       &order,
		}
		var saved *services.ServiceDTO
		if id, ok := ids[row.Slug]; ok {
			saved, err = s.p.Services.Update(ctx, id, req)
			sum.Updated++
		} else {
			saved, err = s.p.Services.Create(ctx, req)
			sum.Created++
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", row.Slug, err)
		}
		ids[saved.Slug] = saved.ID
	}
	return ids, nil
}

func (s *Seeder) packs(ctx context.Context, rows []PackSeed, sum *Summary) (map[string]uuid.UUID, error) {
	existing, err := s.p.Packs.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		ids[e.Slug] = e.ID
	}
	for _, row := range rows {
		active := !row.Inactive
		order := row.SortOrder
		slug := row.Slug
		req := packs.UpsertPackRequest{
			Name:        row.Name,
			Slug:        &slug,
			Description: row.Description,
			Price:       money(row.Price),
			Features:    row.Features,
			Highlighted: row.Highlighted,
			Badge:       optionalString(row.Badge),
			IsYearly:    row.IsYearly,
			SortOrder:   &order,
			IsActive:    &active,
		}
		var saved *packs.PackDTO
		if id, ok := ids[row.Slug]; ok {
			saved, err = s.p.Packs.Update(ctx, id, req)
			sum.Updated++
		} else {
			saved, err = s.p.Packs.Create(ctx, req)
			sum.Created++
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", row.Slug, err)
		}
		ids[saved.Slug] = saved.ID
	}
	return ids, nil
}

func (s *Seeder) projects(ctx context.Context, rows []ProjectSeed, sum *Summary) error {
	existing, err := s.p.Projects.List(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		ids[e.Slug] = e.ID
	}
	for _, row := range rows {
		active := !row.Inactive
		order := row.SortOrder
		slug := row.Slug
		req := projects.UpsertProjectRequest{
			Title:        row.Title,
			Slug:         &slug,
			Client:       optionalString(row.Client),
			Description:  row.Description,
			Category:     row.Category,
			Technologies: row.Technologies,
			ImageURL:     optionalString(row.ImageURL),
			Link:         optionalString(row.Link),
			Featured:     row.Featured,
			SortOrder:    &order,
			IsActive:     &active,
		}
		if id, ok := ids[row.Slug]; ok {
			_, err = s.p.Projects.Update(ctx, id, req)
			sum.Updated++
		} else {
			_, err = s.p.Projects.Create(ctx, req)
			sum.Created++
		}
		if err != nil {
			return fmt.Errorf("%s: %w", row.Slug, err)
		}
	}
	return nil
}

func (s *Seeder) discounts(ctx context.Context, rows []DiscountSeed, serviceIDs, packIDs map[string]uuid.UUID, sum *Summary) error {
	existing, err := s.p.Discounts.List(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		ids[e.Code] = e.ID
	}
	now := s.p.Now().UTC()
	for _, row := range rows {
		svcIDs, err := resolve(serviceIDs, row.Services)
		if err != nil {
			return fmt.Errorf("%s: %w", row.Code, err)
		}
		pkIDs, err := resolve(packIDs, row.Packs)
		if err != nil {
			return fmt.Errorf("%s: %w", row.Code, err)
		}
		active := !row.Inactive
		req := discounts.UpsertDiscountRequest{
			Code:                 row.Code,
			Description:          optionalString(row.Description),
			Type:                 row.Type,
			Value:                money(row.Value),
			MinAmount:            money(row.MinAmount),
			MaxUsage:             row.MaxUsage,
			ValidFrom:            now,
			ValidUntil:           now.Add(time.Duration(row.ValidDays) * 24 * time.Hour),
			ApplicableServiceIDs: svcIDs,
			ApplicablePackIDs:    pkIDs,
			IsActive:             &active,
		}
		if id, ok := ids[strings.ToUpper(strings.TrimSpace(row.Code))]; ok {
			_, err = s.p.Discounts.Update(ctx, id, req)
			sum.Updated++
		} else {
			_, err = s.p.Discounts.Create(ctx, req)
			sum.Created++
		}
		if err != nil {
			return fmt.Errorf("%s: %w", row.Code, err)
		}
	}
	return nil
}

func resolve(ids map[string]uuid.UUID, slugs []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(slugs))
	for _, slug := range slugs {
		id, ok := ids[slug]
		if !ok {
			return nil, fmt.Errorf("unknown catalog slug %q", slug)
		}
		out = append(out, id)
	}
	return out, nil
}
