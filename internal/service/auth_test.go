package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopfront/internal/events"
	"github.com/Skotchmaster/shopfront/internal/hash"
	"github.com/Skotchmaster/shopfront/internal/models"
	"github.com/Skotchmaster/shopfront/internal/repo"
	"github.com/Skotchmaster/shopfront/internal/testutil"
	"github.com/Skotchmaster/shopfront/internal/tokens"
)

var testSecret = []byte("test-secret")

func newAuthService(t *testing.T) (*AuthService, *repo.GormRepo, *publisherMock) {
	t.Helper()
	r := repo.New(testutil.InitTestDB(t))
	pub := acceptAllEvents()
	return &AuthService{Repo: r, Events: pub, JWTSecret: testSecret, TokenTTL: time.Hour}, r, pub
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := hash.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestAuthService_AdminLogin(t *testing.T) {
	svc, _, pub := newAuthService(t)
	ctx := context.Background()

	admin, created, err := svc.ProvisionAdmin(ctx, "Root", "root@shop.test", "s3cret")
	require.NoError(t, err)
	require.True(t, created)

	res, err := svc.AdminLogin(ctx, " root@shop.test ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, res.Admin.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := tokens.AccessClaimsFromToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, "root@shop.test", claims.Email)

	pub.AssertCalled(t, "PublishEvent", mock.Anything, events.TopicUsers, "1", eventOfType("admin_logged_in"))
}

func TestAuthService_AdminLogin_Rejects(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	_, _, err := svc.ProvisionAdmin(ctx, "Root", "root@shop.test", "s3cret")
	require.NoError(t, err)

	_, err = svc.AdminLogin(ctx, "root@shop.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AdminLogin(ctx, "nobody@shop.test", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AdminLogin(ctx, "", "s3cret")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AdminLogin(ctx, "root@shop.test", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_AdminLogin_ExactEmail(t *testing.T) {
	svc, r, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, r.DB.Create(&models.Admin{Name: "Ops", Email: "Ops@Shop.Test", Password: mustHash(t, "s3cret"), Role: models.RoleAdmin}).Error)

	res, err := svc.AdminLogin(ctx, "Ops@Shop.Test", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Ops@Shop.Test", res.Admin.Email)

	_, err = svc.AdminLogin(ctx, "ops@shop.test", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LegacyPlaintext(t *testing.T) {
	svc, r, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, r.DB.Create(&models.Admin{Name: "Old", Email: "old@shop.test", Password: "plain", Role: models.RoleAdmin}).Error)

	_, err := svc.AdminLogin(ctx, "old@shop.test", "plain")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	svc.LegacyPlaintext = true
	res, err := svc.AdminLogin(ctx, "old@shop.test", "plain")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.AdminLogin(ctx, "old@shop.test", "Plain")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ProvisionAdmin_UpdatesPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	first, created, err := svc.ProvisionAdmin(ctx, "Root", "root@shop.test", "one")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.ProvisionAdmin(ctx, "Root Two", "root@shop.test", "two")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.AdminLogin(ctx, "root@shop.test", "one")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.AdminLogin(ctx, "root@shop.test", "two")
	require.NoError(t, err)

	_, _, err = svc.ProvisionAdmin(ctx, "", "x@y.z", "p")
	assert.ErrorIs(t, err, ErrValidation)
}
