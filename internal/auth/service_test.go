package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/webyarden/webyarden-backend/pkg/auth"
	"github.com/webyarden/webyarden-backend/pkg/auth/session"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "webyarden",
	ExpirationMinutes: 30,
}

type fakeUserRepo struct {
	users     map[uuid.UUID]*models.User
	lastLogin map[uuid.UUID]time.Time
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{}, lastLogin: map[uuid.UUID]time.Time{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogin[id] = at
	return nil
}

type sessionEntry struct {
	userID uuid.UUID
	token  string
}

type fakeSessions struct {
	sessions map[string]sessionEntry
	revoked  []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]sessionEntry{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string, userID uuid.UUID) (string, error) {
	token := "refresh-" + accessID
	f.sessions[accessID] = sessionEntry{userID: userID, token: token}
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (string, string, error) {
	entry, ok := f.sessions[oldAccessID]
	if !ok || entry.userID != userID || entry.token != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := session.NewAccessID()
	token, _ := f.Generate(ctx, newID, userID)
	return newID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.sessions, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func testUser(t *testing.T, role enums.UserRole, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        "yarden@example.com",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Yarden",
		Role:         role,
		IsActive:     true,
	}
}

func buildTestService(t *testing.T, users ...*models.User) (Service, *fakeUserRepo, *fakeSessions) {
	t.Helper()
	repo := newFakeUserRepo(users...)
	sessions := newFakeSessions()
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, JWTConfig: testJWTConfig})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestServiceLoginIssuesRoleClaim(t *testing.T) {
	user := testUser(t, enums.UserRoleAdmin, "Secret123")
	svc, repo, sessions := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " YARDEN@example.com ", Password: "Secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin || claims.UserID != user.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatalf("expected refresh session for jti %s", claims.ID)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
	if _, ok := repo.lastLogin[user.ID]; !ok {
		t.Fatal("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatal("expected user with last login in response")
	}
}

func TestServiceLoginRejections(t *testing.T) {
	active := testUser(t, enums.UserRoleUser, "Secret123")
	inactive := testUser(t, enums.UserRoleUser, "Secret123")
	inactive.Email = "off@example.com"
	inactive.IsActive = false
	svc, _, _ := buildTestService(t, active, inactive)

	cases := []LoginRequest{
		{Email: "yarden@example.com", Password: "wrong"},
		{Email: "missing@example.com", Password: "Secret123"},
		{Email: "off@example.com", Password: "Secret123"},
		{Email: "  ", Password: "Secret123"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := testUser(t, enums.UserRoleUser, "Secret123")
	svc, _, sessions := buildTestService(t, user)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "Secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	oldClaims, _ := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)

	refreshed, err := svc.Refresh(ctx, login.AccessToken, RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	newClaims, err := pkgAuth.ParseAccessToken(testJWTConfig, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if newClaims.ID == oldClaims.ID {
		t.Fatal("expected a new session id")
	}
	if _, ok := sessions.sessions[oldClaims.ID]; ok {
		t.Fatal("expected old session to be dropped")
	}

	_, err = svc.Refresh(ctx, login.AccessToken, RefreshRequest{RefreshToken: login.RefreshToken})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Refresh(ctx, "not-a-jwt", RefreshRequest{RefreshToken: "x"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestServiceRefreshRejectsDisabledAccount(t *testing.T) {
	user := testUser(t, enums.UserRoleUser, "Secret123")
	svc, repo, sessions := buildTestService(t, user)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "Secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	repo.users[user.ID].IsActive = false

	_, err = svc.Refresh(ctx, login.AccessToken, RefreshRequest{RefreshToken: login.RefreshToken})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
	if len(sessions.sessions) != 0 {
		t.Fatalf("expected no live sessions, got %d", len(sessions.sessions))
	}
}

func TestServiceLogoutAndMe(t *testing.T) {
	user := testUser(t, enums.UserRoleUser, "Secret123")
	svc, _, sessions := buildTestService(t, user)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "Secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || len(sessions.sessions) != 0 {
		t.Fatalf("expected session revoked, got %+v", sessions)
	}
	assertCode(t, svc.Logout(ctx, "garbage"), pkgerrors.CodeUnauthorized)

	me, err := svc.Me(ctx, user.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != user.Email {
		t.Fatalf("unexpected user %+v", me)
	}
	_, err = svc.Me(ctx, uuid.New())
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: newFakeSessions()}); err == nil {
		t.Fatal("expected error without user repo")
	}
	if _, err := NewService(ServiceParams{UserRepo: newFakeUserRepo()}); err == nil {
		t.Fatal("expected error without session manager")
	}
}
