package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/internal/event"
	"github.com/anderovsky/ITStep-zrucnosti/internal/repository"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// maxUsernameLength bounds usernames to keep pages and logs sane.
const maxUsernameLength = 64

// AccountService implements the business logic for account operations.
type AccountService struct {
	accountRepo repository.AccountRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo repository.AccountRepository, producer *event.Producer, logger *slog.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		producer:    producer,
		logger:      logger,
	}
}

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Username string
	Password string
}

// Register creates a new account with a bcrypt-hashed password. A duplicate
// username surfaces as an already-exists error from the repository's unique
// constraint; there is no separate existence check, so concurrent
// registrations of the same username cannot race.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if len(input.Username) > maxUsernameLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishAccountRegistered(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.registered event",
			slog.Int64("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.Int64("account_id", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// Login authenticates an account by username and password. Unknown usernames
// and wrong passwords return the same error so the response does not reveal
// which accounts exist.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*domain.Account, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	account, err := s.accountRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	s.logger.InfoContext(ctx, "account logged in",
		slog.Int64("account_id", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}
