package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chemtalent/jobchain/internal/utils"
)

// AdminRole is the role claim carried by operator tokens.
const AdminRole = "admin"

// AdminClaims is the token payload issued to the upload operator.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
}

type AuthConfig struct {
	Username     string
	PasswordHash string // bcrypt
	Secret       string
	TTL          time.Duration
	Issuer       string
}

type authService struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthService(cfg AuthConfig) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "jobchain"
	}
	return &authService{cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	const op = "AuthService.Login"

	if username == "" || password == "" {
		return "", time.Time{}, utils.E(utils.CodeInvalidArgument, op, "username and password are required", nil)
	}
	if s.cfg.Secret == "" || s.cfg.PasswordHash == "" {
		return "", time.Time{}, utils.E(utils.CodeUnavailable, op, "admin login is not configured", nil)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	// bcrypt runs even for an unknown username
	passErr := utils.CheckPassword(s.cfg.PasswordHash, password)
	if !userOK || passErr != nil {
		return "", time.Time{}, utils.E(utils.CodeUnauthorized, op, "invalid username or password", passErr)
	}

	now := s.now().UTC()
	exp := now.Add(s.cfg.TTL)
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: AdminRole,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return tok, exp, nil
}
