package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

// AccountService registers and authenticates users.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.PasswordHasher
	logger      logging.Logger

	jwtSecret                []byte
	apiTokenValidityDuration time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:                       db,
		repomanager:              m,
		hasher:                   cryptox.NewPasswordHasher(cfg.PasswordPepper),
		logger:                   logger,
		jwtSecret:                []byte(cfg.SecretKey),
		apiTokenValidityDuration: cfg.APITokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new account. The email is trimmed and lower-cased
// before use.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewValidationError("Email and password are required")
	}

	user := &models.User{
		Email:    email,
		Password: s.hasher.Hash(password),
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks the password of the account identified by email.
// Unknown emails and wrong passwords both yield ErrorInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInvalidCredentials
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	return user, nil
}

// LoadSessionAccount resolves the account bound to a session. It returns
// nil without error when the account no longer exists.
func (s *AccountService) LoadSessionAccount(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// IssueAPIToken authenticates the credentials and returns a bearer token.
func (s *AccountService) IssueAPIToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.apiTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

// APITokenTTL is the lifetime of tokens returned by IssueAPIToken.
func (s *AccountService) APITokenTTL() time.Duration {
	return s.apiTokenValidityDuration
}

// AccountFromToken verifies a bearer token and loads its account. Invalid,
// expired or orphaned tokens yield ErrorUnauthorized.
func (s *AccountService) AccountFromToken(ctx context.Context, token string) (*models.User, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}

	user, err := s.LoadSessionAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}
