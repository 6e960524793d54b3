package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/daybook/daybook/internal/auth"
	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/store"
)

const (
	minUsernameLength = 1
	maxUsernameLength = 150
	minPasswordLength = 8
)

// Letters, digits and @.+-_ as allowed by the original sign-up form.
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// AccountService registers accounts and manages their sessions.
type AccountService struct {
	accounts   store.AccountStore
	prefs      store.PreferenceStore
	sessions   SessionStore
	sessionTTL time.Duration
	metrics    metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts store.AccountStore, prefs store.PreferenceStore, sessions SessionStore, sessionTTL time.Duration, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		accounts:   accounts,
		prefs:      prefs,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterInput defines input for registering an account.
type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// Register creates an account and logs it in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.Account, *model.Session, error) {
	if input.Password != input.PasswordConfirm {
		return nil, nil, ErrPasswordMismatch
	}

	account, err := s.CreateAccount(ctx, input.Username, input.Password)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncAccountRegistered()

	session, err := s.issueSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, session, nil
}

// CreateAccount validates and stores a new account together with its
// default theme preference.
func (s *AccountService) CreateAccount(ctx context.Context, username, password string) (*model.Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.insertAccount(ctx, username, hash, s.now().UTC())
}

// ImportAccount returns the account named username, creating it with an
// unusable password when it does not exist. The bool reports creation.
func (s *AccountService) ImportAccount(ctx context.Context, username string, createdAt time.Time) (*model.Account, bool, error) {
	existing, err := s.accounts.GetAccountByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	if createdAt.IsZero() {
		createdAt = s.now()
	}
	account, err := s.insertAccount(ctx, username, model.UnusablePassword, createdAt.UTC())
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (s *AccountService) insertAccount(ctx context.Context, username, hash string, createdAt time.Time) (*model.Account, error) {
	account := &model.Account{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    createdAt,
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// Every account owns exactly one preference from the moment it exists.
	if _, err := s.prefs.GetOrCreatePreference(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	return account, nil
}

// Login verifies credentials and issues a session.
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
	account, err := s.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.VerifyDummy(password)
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !account.HasUsablePassword() {
		auth.VerifyDummy(password)
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		s.logger.Error("password_hash_unreadable", "account_id", account.ID, "error", err)
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return account, session, nil
}

// Logout ends the session identified by token.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

// ResolveSession maps a session token to the authenticated principal.
func (s *AccountService) ResolveSession(ctx context.Context, token string) (*model.Principal, error) {
	if !auth.ValidTokenFormat(token) {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !s.now().Before(session.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, ErrUnauthenticated
	}

	return &model.Principal{AccountID: session.AccountID}, nil
}

// SetPassword gives the account named username a new password. Imported
// accounts use it to become able to log in.
func (s *AccountService) SetPassword(ctx context.Context, username, password string) (*model.Account, error) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	account, err := s.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.SetPasswordHash(ctx, account.ID, hash); err != nil {
		return nil, fmt.Errorf("failed to store password: %w", err)
	}

	s.logger.Info("password_set", "account_id", account.ID)
	account.PasswordHash = hash
	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return account, nil
}

// SessionTTL returns how long issued sessions live.
func (s *AccountService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AccountService) issueSession(ctx context.Context, accountID string) (*model.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		Token:     token,
		AccountID: accountID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateUsername checks the length and character set of a username.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength || !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
