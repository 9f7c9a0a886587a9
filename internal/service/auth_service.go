package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var emailValidator = validator.New()

// AuthService coordinates registration, login and token resolution.
type AuthService struct {
	tx          Transactor
	users       repository.UserRepository
	audit       repository.AuditRepository
	roles       *authz.Roles
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	minPassword int
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Tx             Transactor
	UserRepo       repository.UserRepository
	AuditRepo      repository.AuditRepository
	Roles          *authz.Roles
	TokenManager   *auth.TokenManager
	BcryptCost     int
	MinPasswordLen int
	Logger         *zap.Logger
}

// RegisterInput is a self-registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tx:          deps.Tx,
		users:       deps.UserRepo,
		audit:       deps.AuditRepo,
		roles:       deps.Roles,
		tokenMgr:    deps.TokenManager,
		bcryptCost:  deps.BcryptCost,
		minPassword: deps.MinPasswordLen,
		logger:      logger,
	}
}

// Register creates an account with the default role and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, domain.TokenPair, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	fields := map[string]any{}
	if name == "" {
		fields["name"] = "is required"
	}
	if err := emailValidator.Var(email, "required,email"); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if msg := passwordProblem(input.Password, s.minPassword); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		return nil, domain.TokenPair{}, apperrors.NewValidationError("invalid registration", fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       s.roles.DefaultRoleID(),
		Active:       true,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return recordAudit(ctx, s.audit, &user.ID, nil, fmt.Sprintf("registered user #%d", user.ID))
	})
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	pair, err := s.tokenMgr.IssuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	if err := recordAudit(ctx, s.audit, &user.ID, nil, "logged in"); err != nil {
		return nil, domain.TokenPair{}, err
	}
	pair, err := s.tokenMgr.IssuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Authenticate checks credentials without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash unusable", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return nil, apperrors.NewInvalidCredentials()
	}
	if !user.Active {
		return nil, apperrors.NewAccountInactive()
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	user, err := s.userFromToken(ctx, refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.tokenMgr.IssuePair(user.ID)
}

// ResolveIdentity validates an access token and loads the caller.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (domain.Identity, error) {
	user, err := s.userFromToken(ctx, accessToken, domain.TokenTypeAccess)
	if err != nil {
		return domain.Identity{}, err
	}
	return s.roles.IdentityFor(user), nil
}

// Me returns the account behind an identity.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, notFound(err, "user", identity.UserID)
	}
	return user, nil
}

// IsAdmin reports whether the user holds the admin role.
func (s *AuthService) IsAdmin(user *domain.User) bool {
	return s.roles.IsAdmin(user.RoleID)
}

func (s *AuthService) userFromToken(ctx context.Context, token string, typ domain.TokenType) (*domain.User, error) {
	claims, err := s.tokenMgr.Parse(token, typ)
	if err != nil {
		s.logger.Debug("token rejected", zap.String("type", string(typ)), zap.Error(err))
		return nil, apperrors.NewInvalidCredentials()
	}
	userID, _ := claims.UserID()
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewAccountInactive()
	}
	return user, nil
}

func passwordProblem(password string, minLength int) string {
	if utf8.RuneCountInString(password) < minLength {
		return fmt.Sprintf("must be at least %d characters", minLength)
	}
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes)
	}
	return ""
}
