package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const TokenType = "bearer"

// Claims is the JWT payload. Subject carries the username.
type Claims struct {
	UserID uuid.UUID   `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	users    interfaces.UserRepository
	logger   logger.Logger
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
}

func NewService(users interfaces.UserRepository, logger logger.Logger, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		logger:   logger,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates a regular user. Admins cannot be created this way.
func (s *Service) Register(ctx context.Context, cmd interfaces.RegisterCommand) (*domain.User, error) {
	role := domain.Role(cmd.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "role",
			Message: "only 'user' role is allowed for registration",
		})
	}

	return s.createUser(ctx, cmd.Username, cmd.Password, role, cmd.PhoneNumber)
}

// EnsureAdmin creates the bootstrap admin account unless the username is taken.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, phone string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	user, err := s.createUser(ctx, username, password, domain.RoleAdmin, phone)
	if err != nil {
		return err
	}

	s.logger.Info("admin_bootstrapped", "Admin user created", logger.RequestID(ctx),
		map[string]interface{}{"user_id": user.ID.String(), "username": user.Username})
	return nil
}

func (s *Service) createUser(ctx context.Context, username, password string, role domain.Role, phone string) (*domain.User, error) {
	if len(password) < 6 || len(password) > 72 {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "password",
			Message: "password must be 6-72 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(username, string(hash), role, phone)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, user.Username); err == nil {
		return nil, fmt.Errorf("username already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if user.PhoneNumber != nil {
		if _, err := s.users.FindByPhoneNumber(ctx, *user.PhoneNumber); err == nil {
			return nil, fmt.Errorf("phone number already registered: %w", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user_registered", "User registered", logger.RequestID(ctx), map[string]interface{}{
		"user_id": user.ID.String(),
		"role":    user.Role,
	})
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*interfaces.Token, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &interfaces.Token{AccessToken: token, TokenType: TokenType}, nil
}

func (s *Service) issue(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate decodes the token and reloads its user. Every failure is
// reported as domain.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("auth_user_lookup_failed", "Failed to load token subject", logger.RequestID(ctx), nil, err)
		}
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, page interfaces.Page) ([]*domain.User, error) {
	return s.users.ListAll(ctx, page)
}
