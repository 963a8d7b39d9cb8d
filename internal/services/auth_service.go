package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// TokenLifetime bounds an admin session. There is no server-side revocation;
// clearing the cookie is the only way to end a session early.
const TokenLifetime = 7 * 24 * time.Hour

// AdminClaims is the decoded session token.
type AdminClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// IsAdmin reports whether the session may use admin routes.
func (c *AdminClaims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. An empty secret is accepted so
// the public site keeps working; every token operation then fails with
// ErrJWTSecretMissing.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: TokenLifetime,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginUser checks the credentials and returns the user with a signed token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrJWTSecretMissing
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenDurat).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies the signature and expiry of a token and decodes it.
func (s *AuthService) ValidateToken(tokenString string) (*AdminClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrJWTSecretMissing
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticate accepts any valid session token.
func (s *AuthService) Authenticate(tokenString string) (*AdminClaims, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}
	return s.ValidateToken(tokenString)
}

// RequireAdmin is the admin gate: no token is ErrUnauthorized, a missing
// secret is ErrJWTSecretMissing, a bad token carries the verification error,
// and a non-admin role is ErrForbidden. It has no side effects.
func (s *AuthService) RequireAdmin(tokenString string) (*AdminClaims, error) {
	claims, err := s.Authenticate(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, ErrForbidden
	}
	return claims, nil
}

// EnsureAdmin creates an admin account, or promotes and re-keys an existing
// one. The returned flag tells whether a new user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, bool, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, invalid("email", "A valid admin email is required.")
	}
	if len(password) < 6 {
		return nil, false, invalid("password", "Admin password must be at least 6 characters.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.Role = models.RoleAdmin
		user.Password = string(hashedPassword)
		if name != "" {
			user.Name = &name
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to promote admin %s: %w", email, err)
		}
		log.Printf("Admin account %s updated", email)
		return user, false, nil
	case errors.Is(err, repositories.ErrRecordNotFound):
		user = &models.User{Email: email, Password: string(hashedPassword), Role: models.RoleAdmin}
		if name != "" {
			user.Name = &name
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to create admin %s: %w", email, err)
		}
		log.Printf("Admin account %s created", email)
		return user, true, nil
	default:
		return nil, false, fmt.Errorf("failed to look up admin %s: %w", email, err)
	}
}
