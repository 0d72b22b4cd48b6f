package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db/models"
	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Service{}, &models.Pack{}))
	return db
}

func TestServicesAndPacksExist(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	svc := models.Service{Title: "SEO", Slug: "seo", Description: "d", Icon: "🚀", Features: dbtypes.StringArray{}, IsActive: true}
	require.NoError(t, db.Create(&svc).Error)
	pack := models.Pack{Name: "Starter", Slug: "starter", Description: "d", Price: decimal.NewFromInt(1500), Features: dbtypes.StringArray{"x"}, IsActive: true}
	require.NoError(t, db.Create(&pack).Error)

	lookup := NewLookup(db)
	unknown := uuid.New()

	missing, err := lookup.ServicesExist(ctx, []uuid.UUID{svc.ID, unknown, unknown})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{unknown}, missing)

	missing, err = lookup.PacksExist(ctx, []uuid.UUID{pack.ID})
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = lookup.PacksExist(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestPackPrice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	active := models.Pack{Name: "Pro", Slug: "pro", Description: "d", Price: decimal.RequireFromString("2990.50"), Features: dbtypes.StringArray{"x"}, IsActive: true}
	inactive := models.Pack{Name: "Old", Slug: "old", Description: "d", Price: decimal.NewFromInt(10), Features: dbtypes.StringArray{"x"}}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&inactive).Error)

	lookup := NewLookup(db)
	price, err := lookup.PackPrice(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("2990.50")), price.String())

	_, err = lookup.PackPrice(ctx, inactive.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
