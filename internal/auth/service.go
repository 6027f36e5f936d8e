package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/signflowhq/signflow-backend/internal/users"
	pkgauth "github.com/signflowhq/signflow-backend/pkg/auth"
	"github.com/signflowhq/signflow-backend/pkg/config"
	dbpkg "github.com/signflowhq/signflow-backend/pkg/db"
	"github.com/signflowhq/signflow-backend/pkg/db/models"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
	"github.com/signflowhq/signflow-backend/pkg/logger"
	"github.com/signflowhq/signflow-backend/pkg/security"
)

// Service issues credentials and resolves account identity.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
}

// RegisterParams captures a new account request.
type RegisterParams struct {
	Email    string
	Password string
	FullName string
}

// LoginParams captures a credential check request.
type LoginParams struct {
	Email    string
	Password string
}

// AuthResult carries the signed token plus the resolved account.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type service struct {
	repo        users.Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService wires auth dependencies.
func NewService(repo users.Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		logg:        logg,
	}, nil
}

func (s *service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if len(params.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(params.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(params.FullName),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issue(ctx, user)
}

func (s *service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	if user == nil || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(params.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "failed to record last login")
	}

	return s.issue(ctx, user)
}

func (s *service) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		JTI:     uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &AuthResult{Token: token, User: user}, nil
}
