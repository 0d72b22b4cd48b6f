package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/internal/catalog"
	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/internal/packs"
	"github.com/webyarden/webyarden-backend/internal/projects"
	"github.com/webyarden/webyarden-backend/internal/services"
	"github.com/webyarden/webyarden-backend/internal/users"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	"github.com/webyarden/webyarden-backend/pkg/richtext"
	"github.com/webyarden/webyarden-backend/pkg/security"
)

const fullCatalog = sampleCatalog + `
projects:
  - title: Cabinet medical
    slug: cabinet-medical
    description: Prise de rendez-vous
    category: Sante
    technologies: [React]
    featured: true
`

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	dsn := "file:seed_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Service{}, &models.Pack{}, &models.Project{}, &models.Discount{}))

	client := db.NewFromGorm(conn)
	serviceSvc, err := services.NewService(services.ServiceParams{DB: client, Markdown: richtext.New()})
	require.NoError(t, err)
	packSvc, err := packs.NewService(packs.ServiceParams{DB: client})
	require.NoError(t, err)
	projectSvc, err := projects.NewService(projects.ServiceParams{DB: client})
	require.NoError(t, err)
	discountSvc, err := discounts.NewService(discounts.ServiceParams{DB: client, Catalog: catalog.NewLookup(conn)})
	require.NoError(t, err)

	s, err := NewSeeder(Params{
		Services:  serviceSvc,
		Packs:     packSvc,
		Projects:  projectSvc,
		Discounts: discountSvc,
		Users:     users.NewRepository(conn),
		Password:  config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16},
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return s, conn
}

func TestApplyCreatesCatalog(t *testing.T) {
	s, conn := newTestSeeder(t)
	cat, err := Load(strings.NewReader(fullCatalog))
	require.NoError(t, err)

	sum, err := s.Apply(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 5}, sum)

	var admin models.User
	require.NoError(t, conn.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, enums.UserRoleAdmin, admin.Role)
	ok, err := security.VerifyPassword("Str0ngPassword", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	var pack models.Pack
	require.NoError(t, conn.Where("slug = ?", "pro").First(&pack).Error)
	assert.Equal(t, "2490.00", pack.Price.StringFixed(2))

	var d models.Discount
	require.NoError(t, conn.Where("code = ?", "LAUNCH").First(&d).Error)
	assert.True(t, d.ValidUntil.Equal(fixedNow.Add(90*24*time.Hour)))
	require.Len(t, d.ApplicablePackIDs, 1)
	assert.Equal(t, pack.ID, d.ApplicablePackIDs[0])
}

func TestApplyIsRepeatable(t *testing.T) {
	s, conn := newTestSeeder(t)
	cat, err := Load(strings.NewReader(fullCatalog))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Apply(ctx, cat)
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.Discount{}).Where("code = ?", "LAUNCH").Update("usage_count", 7).Error)

	cat.Packs[0].Price = 2590
	sum, err := s.Apply(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, Summary{Updated: 4}, sum)

	var count int64
	require.NoError(t, conn.Model(&models.Pack{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var pack models.Pack
	require.NoError(t, conn.Where("slug = ?", "pro").First(&pack).Error)
	assert.Equal(t, "2590.00", pack.Price.StringFixed(2))

	var d models.Discount
	require.NoError(t, conn.Where("code = ?", "LAUNCH").First(&d).Error)
	assert.Equal(t, 7, d.UsageCount)
}

func TestApplyRejectsUnknownSlug(t *testing.T) {
	s, _ := newTestSeeder(t)
	cat := &Catalog{Discounts: []DiscountSeed{{
		Code:      "GHOST",
		Type:      enums.DiscountTypeFixed,
		Value:     100,
		ValidDays: 10,
		Packs:     []string{"missing"},
	}}}

	_, err := s.Apply(context.Background(), cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestApplySeedsShippedCatalog(t *testing.T) {
	s, conn := newTestSeeder(t)
	cat, err := LoadFile("../../seed/catalog.yaml")
	require.NoError(t, err)
	require.NotNil(t, cat.Admin)
	cat.Admin.Password = "Str0ngPassword"

	sum, err := s.Apply(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, 1+len(cat.Services)+len(cat.Packs)+len(cat.Projects)+len(cat.Discounts), sum.Created)
	assert.Zero(t, sum.Updated)

	var packCount int64
	require.NoError(t, conn.Model(&models.Pack{}).Count(&packCount).Error)
	assert.EqualValues(t, len(cat.Packs), packCount)
}
