package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgAuth "github.com/webyarden/webyarden-backend/pkg/auth"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/security"
)

func newRegisterService(t *testing.T, bootstrap bool) (RegisterService, *gorm.DB) {
	t.Helper()
	dsn := "file:register_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             db.NewFromGorm(conn),
		SessionManager: newFakeSessions(),
		JWTConfig:      testJWTConfig,
		PasswordConfig: testPasswordConfig,
		AuthConfig:     config.AuthConfig{BootstrapAdmin: bootstrap},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc, conn
}

func TestRegisterBootstrapsFirstAdmin(t *testing.T) {
	svc, conn := newRegisterService(t, true)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{Name: "Yarden", Email: "Yarden@Example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.User.Role != enums.UserRoleAdmin {
		t.Fatalf("expected first account to be admin, got %s", first.User.Role)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, first.AccessToken)
	if err != nil || claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin claim, got %+v err=%v", claims, err)
	}

	second, err := svc.Register(ctx, RegisterRequest{Name: "Noa", Email: "noa@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.User.Role != enums.UserRoleUser {
		t.Fatalf("expected second account to be user, got %s", second.User.Role)
	}

	var stored models.User
	if err := conn.First(&stored, "email = ?", "yarden@example.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	ok, err := security.VerifyPassword("Secret123", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestRegisterWithoutBootstrapCreatesUser(t *testing.T) {
	svc, _ := newRegisterService(t, false)

	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "Yarden", Email: "y@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != enums.UserRoleUser {
		t.Fatalf("expected user role, got %s", resp.User.Role)
	}
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newRegisterService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Yarden", Email: "y@example.com", Password: "weakpass"})
	assertCode(t, err, pkgerrors.CodeValidation)

	if _, err := svc.Register(ctx, RegisterRequest{Name: "Yarden", Email: "y@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = svc.Register(ctx, RegisterRequest{Name: "Other", Email: "Y@EXAMPLE.COM", Password: "Secret123"})
	assertCode(t, err, pkgerrors.CodeConflict)
}
