package service

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/security"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func lowCostSecurity(t *testing.T, cost int) {
	t.Helper()
	security.Init(config.SecurityConfig{JWTSecret: "user-service-test", JWTTTLHours: 1, BcryptCost: cost})
	t.Cleanup(func() { security.Init(config.SecurityConfig{BcryptCost: bcrypt.DefaultCost}) })
}

func strPtr(s string) *string { return &s }

func TestSignUpCreatesFreeMembership(t *testing.T) {
	env := newTestEnv(t)
	lowCostSecurity(t, bcrypt.MinCost)
	ctx := context.Background()
	svc := NewUserService(env.users, env.profiles)

	tok, err := svc.SignUp(ctx, &dto.SignUpDTO{Email: " Ada@Example.com ", Password: "secret1", Username: "ada"})
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.Equal(t, "ada@example.com", tok.User.Email)
	assert.Equal(t, []string{consts.RoleUser}, tok.User.Roles)

	m, err := env.memberships.GetCurrent(ctx, tok.User.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, consts.TierFree, m.Tier)

	_, err = svc.SignUp(ctx, &dto.SignUpDTO{Email: "ada@example.com", Password: "secret1", Username: "ada2"})
	assert.ErrorIs(t, err, ErrUserExist)
	_, err = svc.SignUp(ctx, &dto.SignUpDTO{Email: "other@example.com", Password: "secret1", Username: "ada"})
	assert.ErrorIs(t, err, ErrUserUsernameExist)
}

func TestSignInAndSignOut(t *testing.T) {
	env := newTestEnv(t)
	lowCostSecurity(t, bcrypt.MinCost)
	ctx := context.Background()
	svc := NewUserService(env.users, env.profiles)

	_, err := svc.SignUp(ctx, &dto.SignUpDTO{Email: "bo@example.com", Password: "secret1", Username: "bo"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, &dto.SignInDTO{Email: "bo@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)
	_, err = svc.SignIn(ctx, &dto.SignInDTO{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	tok, err := svc.SignIn(ctx, &dto.SignInDTO{Email: "BO@example.com", Password: "secret1"})
	require.NoError(t, err)

	revoked, err := svc.IsTokenRevoked(ctx, tok.Token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.SignOut(ctx, tok.Token))
	revoked, err = svc.IsTokenRevoked(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, svc.SignOut(ctx, "garbage"), ErrAuthRequired)
}

func TestSignInRehashesOnCostChange(t *testing.T) {
	env := newTestEnv(t)
	lowCostSecurity(t, bcrypt.MinCost)
	ctx := context.Background()
	svc := NewUserService(env.users, env.profiles)

	tok, err := svc.SignUp(ctx, &dto.SignUpDTO{Email: "cy@example.com", Password: "secret1", Username: "cy"})
	require.NoError(t, err)

	security.Init(config.SecurityConfig{BcryptCost: bcrypt.MinCost + 1})
	_, err = svc.SignIn(ctx, &dto.SignInDTO{Email: "cy@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := env.users.GetUserById(ctx, tok.User.ID)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(u.Password))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
	assert.False(t, security.NeedsRehash(u.Password))
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	lowCostSecurity(t, bcrypt.MinCost)
	ctx := context.Background()
	svc := NewUserService(env.users, env.profiles)

	a, err := svc.SignUp(ctx, &dto.SignUpDTO{Email: "a@example.com", Password: "secret1", Username: "aa"})
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, &dto.SignUpDTO{Email: "b@example.com", Password: "secret1", Username: "bb"})
	require.NoError(t, err)
	uid := a.User.ID

	_, err = svc.UpdateUser(ctx, uid, &dto.UpdateUserDTO{Email: strPtr("b@example.com")})
	assert.ErrorIs(t, err, ErrUserExist)

	_, err = svc.UpdateUser(ctx, uid, &dto.UpdateUserDTO{Password: strPtr("newpass1")})
	assert.ErrorIs(t, err, ErrCurrentPassword)
	_, err = svc.UpdateUser(ctx, uid, &dto.UpdateUserDTO{Password: strPtr("newpass1"), CurrentPassword: strPtr("wrong")})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	out, err := svc.UpdateUser(ctx, uid, &dto.UpdateUserDTO{
		Email:           strPtr("A2@example.com"),
		Password:        strPtr("newpass1"),
		CurrentPassword: strPtr("secret1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "a2@example.com", out.Email)

	_, err = svc.SignIn(ctx, &dto.SignInDTO{Email: "a2@example.com", Password: "newpass1"})
	assert.NoError(t, err)

	_, err = svc.GetUser(ctx, 0)
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = svc.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
