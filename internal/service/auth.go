package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Returned when too many failed logins were made for one email and address
type TooManyAttemptsError struct {
	RetryAt time.Time
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many login attempts, retry after %s", e.RetryAt.Format(time.RFC3339))
}

type AuthService struct {
	users     UserStore
	limiter   ratelimit.Limiter
	logger    *zap.Logger
	jwtSecret []byte // Stored in env (JWT_SECRET)
	jwtExpiry time.Duration
}

func NewAuthService(users UserStore, limiter ratelimit.Limiter, logger *zap.Logger, secret string, expiryHours int) *AuthService {
	return &AuthService{
		users:     users,
		limiter:   limiter,
		logger:    logger,
		jwtSecret: []byte(secret),
		jwtExpiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	attemptKey := email + "|" + clientIP

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, attemptKey)
		if err != nil {
			// Fail open while redis is unavailable
			s.logger.Warn("Login limiter unavailable", zap.Error(err))
		} else if !allowed {
			retryAt, _ := s.limiter.ResetAt(ctx, attemptKey)
			return "", &TooManyAttemptsError{RetryAt: retryAt}
		}
	}

	// Find user by email
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	// verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if user.IsDisabled() {
		return "", ErrAccountDisabled
	}

	if s.limiter != nil {
		if err := s.limiter.Clear(ctx, attemptKey); err != nil {
			s.logger.Warn("Failed to clear login attempts", zap.Error(err))
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": strconv.FormatUint(uint64(user.ID), 10),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))

	return tokenString, nil
}

// Validates a JWT token and return the claims
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verifying signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// Retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}
