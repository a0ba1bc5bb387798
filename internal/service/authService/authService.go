package authService

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	refreshTokenExpireTime = 7 * 24 * time.Hour
	jwtTokenExpireTime     = 3 * time.Hour
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) (uint32, error)
	GetByID(ctx context.Context, id uint32) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) ([]*user.User, error)
}

type RefreshTokenStore interface {
	SaveToken(ctx context.Context, userID uint32, token string, ttl time.Duration) error
	DeleteToken(ctx context.Context, userID uint32) error
	ValidateToken(ctx context.Context, userID uint32, token string) (bool, error)
}

type Blacklist interface {
	AddToken(ctx context.Context, token string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

// Claims is the access token payload. Subject carries the user id.
type Claims struct {
	Role user.Role `json:"role"`
	jwt.RegisteredClaims
}

type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      user.Role
}

type AuthService struct {
	userRepo      UserRepository
	jwtSecretKey  string
	refreshRepo   RefreshTokenStore
	blacklistRepo Blacklist
	now           func() time.Time
}

func New(userRepo UserRepository, jwtSecret string, tokenRepo RefreshTokenStore, blacklistRepo Blacklist) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecretKey:  jwtSecret,
		refreshRepo:   tokenRepo,
		blacklistRepo: blacklistRepo,
		now:           time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (uint32, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return 0, apperr.Validation("username, email and password are required")
	}
	if !emailRegex.MatchString(req.Email) {
		return 0, apperr.Validation("invalid email format")
	}

	role := req.Role
	if role == "" {
		role = user.RoleUser
	}
	if _, err := user.ParseRole(string(role)); err != nil {
		return 0, apperr.Validation("%v", err)
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return 0, apperr.Conflict("email already exists")
	}

	sameName, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return 0, fmt.Errorf("failed to check username: %w", err)
	}
	if len(sameName) > 0 {
		return 0, apperr.Conflict("username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.Create(ctx, &user.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, uint32, error) {
	users, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to find user: %w", err)
	}

	var matchedUser *user.User
	for _, u := range users {
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err == nil {
			matchedUser = u
			break
		}
	}
	if matchedUser == nil {
		return "", "", 0, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	accessToken, err := s.generateJWT(matchedUser)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, matchedUser.ID)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, matchedUser.ID, nil
}

func (s *AuthService) generateJWT(u *user.User) (string, error) {
	now := s.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtTokenExpireTime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecretKey))
}

func (s *AuthService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// ParseToken rejects blacklisted tokens before checking the signature.
func (s *AuthService) ParseToken(ctx context.Context, token string) (uint32, user.Role, error) {
	blacklisted, err := s.blacklistRepo.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return 0, "", fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return 0, "", fmt.Errorf("%w: token revoked", apperr.ErrUnauthorized)
	}

	claims, err := s.parse(token)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("%w: bad subject", apperr.ErrUnauthorized)
	}
	return uint32(uid), claims.Role, nil
}

func (s *AuthService) generateRefreshToken(ctx context.Context, userID uint32) (string, error) {
	refreshToken := uuid.NewString()
	if err := s.refreshRepo.SaveToken(ctx, userID, refreshToken, refreshTokenExpireTime); err != nil {
		return "", err
	}
	return refreshToken, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint32, accessToken string) error {
	claims, err := s.parse(accessToken)
	if err != nil {
		return fmt.Errorf("%w: invalid token: %v", apperr.ErrUnauthorized, err)
	}

	if err := s.refreshRepo.DeleteToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if err := s.blacklistRepo.AddToken(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// RefreshToken rotates the refresh token; the old one stops working.
func (s *AuthService) RefreshToken(ctx context.Context, userID uint32, oldRefreshToken string) (string, string, error) {
	valid, err := s.refreshRepo.ValidateToken(ctx, userID, oldRefreshToken)
	if err != nil {
		return "", "", fmt.Errorf("failed to validate refresh token: %w", err)
	}
	if !valid {
		return "", "", fmt.Errorf("%w: expired refresh token", apperr.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if u == nil {
		return "", "", fmt.Errorf("%w: user %d not found", apperr.ErrUnauthorized, userID)
	}

	newAccessToken, err := s.generateJWT(u)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err := s.generateRefreshToken(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return newAccessToken, newRefreshToken, nil
}
