package authService_test

import (
	"context"
	"testing"
	"time"

	"commercial-file-service/internal/model/user"
	"commercial-file-service/internal/repository/BlackListRepo"
	"commercial-file-service/internal/repository/refreshToken"
	"commercial-file-service/internal/service/authService"
	"commercial-file-service/pkg/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-jwt-secret"

type fakeUsers struct {
	byID   map[uint32]*user.User
	nextID uint32
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint32]*user.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) (uint32, error) {
	f.nextID++
	u.ID = f.nextID
	u.Active = true
	f.byID[u.ID] = u
	return u.ID, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint32) (*user.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) ([]*user.User, error) {
	var out []*user.User
	for _, u := range f.byID {
		if u.Username == username {
			out = append(out, u)
		}
	}
	return out, nil
}

type setup struct {
	svc       *authService.AuthService
	users     *fakeUsers
	blacklist *BlackListRepo.BlackListRepo
}

func setupService(t *testing.T) setup {
	t.Helper()
	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })

	users := newFakeUsers()
	bl := BlackListRepo.NewBlackListRepo(cli)
	return setup{
		svc:       authService.New(users, secret, refreshToken.New(cli), bl),
		users:     users,
		blacklist: bl,
	}
}

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestGenerateJWT_And_ParseToken(t *testing.T) {
	s := setupService(t)

	tokenStr, err := s.svc.GenerateJWT(&user.User{ID: 42, Role: user.RoleAdmin})
	require.NoError(t, err)

	uid, role, err := s.svc.ParseToken(context.Background(), tokenStr)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), uid)
	assert.Equal(t, user.RoleAdmin, role)
}

func TestParseToken_InvalidAndExpired(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, _, err := s.svc.ParseToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	past := time.Now().Add(-time.Hour)
	expired := signed(t, &jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(past),
		IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
	})
	uid, _, err := s.svc.ParseToken(ctx, expired)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Zero(t, uid)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, _, err = s.svc.ParseToken(ctx, foreign)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestParseToken_Blacklisted(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Minute)
	ts := signed(t, &jwt.RegisteredClaims{
		Subject:   "5",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	require.NoError(t, s.blacklist.AddToken(ctx, ts, expiresAt))

	uid, _, err := s.svc.ParseToken(ctx, ts)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Zero(t, uid)
}

func TestRegister(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	id, err := s.svc.Register(ctx, authService.RegisterRequest{
		Username: "tendai", Email: "tendai@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	stored := s.users.byID[id]
	require.NotNil(t, stored)
	assert.Equal(t, user.RoleUser, stored.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))

	_, err = s.svc.Register(ctx, authService.RegisterRequest{Username: "other", Email: "tendai@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.svc.Register(ctx, authService.RegisterRequest{Username: "tendai", Email: "new@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.svc.Register(ctx, authService.RegisterRequest{Username: "u", Email: "broken", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.svc.Register(ctx, authService.RegisterRequest{Username: "u2", Email: "u2@example.com", Password: "x", Role: "ROOT"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLogin_RefreshRotates(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.svc.Register(ctx, authService.RegisterRequest{
		Username: "admin", Email: "admin@example.com", Password: "pw", Role: user.RoleAdmin,
	})
	require.NoError(t, err)

	_, _, _, err = s.svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	access, refresh, uid, err := s.svc.Login(ctx, "admin", "pw")
	require.NoError(t, err)
	_, role, err := s.svc.ParseToken(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, role)

	_, newRefresh, err := s.svc.RefreshToken(ctx, uid, refresh)
	require.NoError(t, err)
	assert.NotEqual(t, refresh, newRefresh)

	_, _, err = s.svc.RefreshToken(ctx, uid, refresh)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRefreshToken_Expired(t *testing.T) {
	s := setupService(t)

	_, _, err := s.svc.RefreshToken(context.Background(), 123, "some-random")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	ts := signed(t, &jwt.RegisteredClaims{
		Subject:   "9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	require.NoError(t, s.svc.Logout(ctx, 9, ts))

	blacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, ts)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	_, _, err = s.svc.ParseToken(ctx, ts)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
