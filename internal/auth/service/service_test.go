package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/johnwalle/pharma-stock-api/internal/actorcontext"
	"github.com/johnwalle/pharma-stock-api/internal/auth/domain"
	"github.com/johnwalle/pharma-stock-api/internal/auth/repository"
	"github.com/johnwalle/pharma-stock-api/internal/auth/token"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fc,
		Repo:   repository.Provide(),
		Issuer: token.NewIssuer("test-secret", 12*time.Hour),
	})
	return svc, fc
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		FullName: "Dana Osei",
		Email:    "Dana@Pharmacy.example",
		Password: "correct horse",
		Role:     domain.RolePharmacist,
	})
	assert.NoError(t, err)
	assert.Equal(t, "dana@pharmacy.example", created.Email)

	resp, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "dana@pharmacy.example",
		Password: "correct horse",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, created.ID, resp.User.ID)
	assert.Equal(t, domain.RolePharmacist, resp.User.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "dana@pharmacy.example",
		Password: "correct horse",
		Role:     domain.RoleAdmin,
	})
	assert.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "dana@pharmacy.example", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@pharmacy.example", Password: "correct horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "not-an-email", Password: "longenough", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.example", Password: "short", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.example", Password: "longenough", Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	req := domain.CreateUserRequest{Email: "dana@pharmacy.example", Password: "correct horse", Role: domain.RoleAdmin}
	_, err := svc.CreateUser(ctx, req)
	assert.NoError(t, err)

	_, err = svc.CreateUser(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestListUsers(t *testing.T) {
	svc, fc := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "dana@pharmacy.example",
		Password: "correct horse",
		Role:     domain.RoleAdmin,
	})
	assert.NoError(t, err)

	fc.Advance(time.Minute)
	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "kofi@pharmacy.example",
		Password: "correct horse",
		Role:     domain.RolePharmacist,
	})
	assert.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	// Newest first.
	assert.Equal(t, "kofi@pharmacy.example", users[0].Email)
	assert.Equal(t, "dana@pharmacy.example", users[1].Email)
}

func TestMe(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		FullName: "Dana Osei",
		Email:    "dana@pharmacy.example",
		Password: "correct horse",
		Role:     domain.RoleAdmin,
	})
	assert.NoError(t, err)

	id, err := snowflake.ParseString(created.ID)
	assert.NoError(t, err)

	actorCtx := actorcontext.WithActor(ctx, actorcontext.Actor{ID: id, Name: created.FullName})
	me, err := svc.Me(actorCtx)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, me.ID)

	_, err = svc.Me(ctx)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, fc := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		FullName: "Dana Osei",
		Email:    "dana@pharmacy.example",
		Password: "correct horse",
		Role:     domain.RoleAdmin,
	})
	assert.NoError(t, err)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "dana@pharmacy.example", Password: "correct horse"})
	assert.NoError(t, err)
	assert.Equal(t, fc.Now().Add(12*time.Hour), resp.ExpiresAt)

	issuer := token.NewIssuer("test-secret", 12*time.Hour)
	claims, err := issuer.Parse(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, "Dana Osei", claims.Name)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = token.NewIssuer("other-secret", 12*time.Hour).Parse(resp.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
