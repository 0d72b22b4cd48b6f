package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/cache/cachetest"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/richtext"
)

func newTestService(t *testing.T) (Service, *gorm.DB, *cachetest.Store) {
	t.Helper()
	dsn := "file:services_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.Service{}))

	store := cachetest.NewStore()
	c, err := cache.New(store, time.Minute, nil)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{DB: db.NewFromGorm(conn), Markdown: richtext.New(), Cache: c})
	require.NoError(t, err)
	return svc, conn, store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestCreateDerivesSlugAndDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, err := svc.Create(context.Background(), UpsertServiceRequest{
		Title:           "Création de Sites",
		Description:     "Sites vitrines sur mesure",
		LongDescription: strPtr("## Offre\n\n- **SEO** inclus"),
		Features:        []string{" Responsive ", "", "SEO"},
	})
	require.NoError(t, err)

	assert.Equal(t, "creation-de-sites", got.Slug)
	assert.Equal(t, DefaultIcon, got.Icon)
	assert.True(t, got.IsActive)
	assert.Equal(t, []string{"Responsive", "SEO"}, got.Features)
	require.NotNil(t, got.LongDescriptionHTML)
	assert.Contains(t, *got.LongDescriptionHTML, "<strong>SEO</strong>")
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, UpsertServiceRequest{Title: "SEO", Description: "d"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UpsertServiceRequest{Title: "Autre", Slug: strPtr("SEO"), Description: "d"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateRejectsInvertedPriceRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	lo, hi := decimal.NewFromInt(500), decimal.NewFromInt(100)

	_, err := svc.Create(context.Background(), UpsertServiceRequest{Title: "SEO", Description: "d", PriceMin: &lo, PriceMax: &hi})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), UpsertServiceRequest{Title: "!!!", Description: "d"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestListActiveOrderAndCache(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, UpsertServiceRequest{Title: "Second", Description: "d", SortOrder: intPtr(2)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UpsertServiceRequest{Title: "First", Description: "d", SortOrder: intPtr(1)})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, UpsertServiceRequest{Title: "Hidden", Description: "d", IsActive: boolPtr(false)})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "first", active[0].Slug)
	assert.Equal(t, "second", active[1].Slug)
	assert.True(t, store.Has(cache.KeyServicesActive))

	_, err = svc.Update(ctx, hidden.ID, UpsertServiceRequest{Title: "Hidden", Description: "d", IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.False(t, store.Has(cache.KeyServicesActive))

	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetBySlugOnlyActive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, UpsertServiceRequest{Title: "SEO", Description: "d"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UpsertServiceRequest{Title: "Draft", Description: "d", IsActive: boolPtr(false)})
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, "seo")
	require.NoError(t, err)
	assert.Equal(t, "SEO", got.Title)

	_, err = svc.GetBySlug(ctx, "draft")
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateKeepsActiveFlagAndDelete(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, UpsertServiceRequest{Title: "SEO", Description: "d", IsActive: boolPtr(false)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpsertServiceRequest{Title: "SEO Local", Description: "new"})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "seo-local", updated.Slug)
	assert.Nil(t, updated.LongDescriptionHTML)

	_, err = svc.Update(ctx, uuid.New(), UpsertServiceRequest{Title: "x y", Description: "d"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.False(t, store.Has(cache.KeyServicesActive))
	requireCode(t, svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound)
}
