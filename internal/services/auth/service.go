package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrUsernameExists     = errors.New("username already exists")
)

// Issue times are compared against assignment changes, so they keep
// millisecond precision instead of the default whole seconds
func init() {
	jwt.TimePrecision = time.Millisecond
}

// Role is the caller role carried in a token
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleCoach      Role = "coach"
	RolePlayer     Role = "player"
	RoleJudge      Role = "judge"
)

// Claims is the signed payload of an access token
type Claims struct {
	jwt.RegisteredClaims
	Role          Role   `json:"role"`
	CompetitionID string `json:"competition_id,omitempty"`
}

// Token is an issued access token
type Token struct {
	Value     string
	Claims    *Claims
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 7 * 24 * time.Hour,
	}
}

// Service issues and validates access tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	secret   []byte
	tokenTTL time.Duration
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "auth")),
		secret:   []byte(cfg.Secret),
		tokenTTL: cfg.TokenTTL,
	}
}

// TokenTTL returns how long issued tokens remain valid
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CreateAccount registers an operator account
func (s *Service) CreateAccount(ctx context.Context, username, password, displayName string, role model.AccountRole) (*model.Account, error) {
	_, err := s.storage.GetAccountByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown account role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:           model.AccountID(uuid.NewString()),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login authenticates an operator account. competitionID is optional and, when
// given, is embedded in the token as the caller's competition context.
func (s *Service) Login(ctx context.Context, username, password string, competitionID model.CompetitionID) (*Token, error) {
	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.Issue(string(account.ID), Role(account.Role), competitionID)
}

// JudgeLogin authenticates an active judge within one competition
func (s *Service) JudgeLogin(ctx context.Context, competitionID model.CompetitionID, username, password string) (*Token, error) {
	judge, err := s.storage.GetJudgeByUsername(ctx, competitionID, username)
	if err != nil {
		if errors.Is(err, model.ErrJudgeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(judge.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !judge.IsActive {
		return nil, model.ErrJudgeInactive
	}

	return s.Issue(string(judge.ID), RoleJudge, judge.CompetitionID)
}

// Issue signs a token for the subject
func (s *Service) Issue(subject string, role Role, competitionID model.CompetitionID) (*Token, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:          role,
		CompetitionID: string(competitionID),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("token issued",
		slog.String("subject", subject),
		slog.String("role", string(role)),
		slog.String("competition_id", string(competitionID)),
	)

	return &Token{Value: signed, Claims: claims, ExpiresAt: expiresAt}, nil
}

// Validate parses and verifies a token string
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
