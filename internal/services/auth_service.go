package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/veloparc/velo-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates the staff account configured in the environment
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the staff credentials and returns a signed JWT
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email != s.cfg.AdminEmail {
		return nil, errors.New("identifiants invalides")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return nil, errors.New("identifiants invalides")
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	token, err := s.generateJWT(email, expiresAt)
	if err != nil {
		return nil, errors.New("erreur lors de la génération du token")
	}

	return &LoginResult{
		Token:     token,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) generateJWT(email string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"role":  "staff",
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
