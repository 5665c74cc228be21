package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lendbook/lendbook/internal/config"
)

// ErrInvalidCredentials covers both unknown users and wrong passwords so the
// response never reveals which one it was.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service issues and verifies operator tokens.
type Service struct {
	cfg  config.Config
	repo Repository
}

// NewService constructs an auth service.
func NewService(cfg config.Config, repo Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// TokenPair is the login response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// EnsureAdmin seeds the configured admin account with a bcrypt hash. Existing
// accounts keep their stored hash.
func (s *Service) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminUser == "" || s.cfg.AdminPassword == "" {
		return nil
	}
	if _, err := s.repo.FindByUsername(ctx, s.cfg.AdminUser); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.repo.Create(ctx, s.cfg.AdminUser, string(hash))
	return err
}

// Login validates credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, accessExp, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(user User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":      user.ID,
		"username": user.Username,
		"ver":      user.TokenVersion,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and returns a new access token if the
// token version still matches.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, errors.New("invalid refresh token")
	}
	sub, _ := claims["sub"].(float64)
	verFloat, _ := claims["ver"].(float64)
	ver := int(verFloat)

	user, err := s.repo.FindByID(ctx, int64(sub))
	if err != nil {
		return "", 0, errors.New("user not found")
	}
	if user.TokenVersion != ver {
		return "", 0, errors.New("token version invalidated")
	}

	accessClaims := map[string]any{
		"sub":      user.ID,
		"username": user.Username,
		"ver":      ver,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
	}
	signed, err := SignHS256(accessClaims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments the token version so older tokens become invalid.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}

// Verify checks an access token and returns its user id when the token
// version still matches the stored one.
func (s *Service) Verify(ctx context.Context, accessToken string) (int64, error) {
	claims, err := ParseAndVerifyHS256(accessToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return 0, err
	}
	sub, _ := claims["sub"].(float64)
	verFloat, _ := claims["ver"].(float64)

	user, err := s.repo.FindByID(ctx, int64(sub))
	if err != nil {
		return 0, errors.New("user not found")
	}
	if user.TokenVersion != int(verFloat) {
		return 0, errors.New("token version invalidated")
	}
	return user.ID, nil
}
