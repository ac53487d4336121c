package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/pkg/token"
	"github.com/fastygo/tasktracker/repository"
)

// PasswordHasher is the one-way hashing primitive used for credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	CompareMissing(password string) bool
}

// TokenIssuer mints and verifies the access/refresh pair.
type TokenIssuer interface {
	IssuePair(userID string) (token.Pair, error)
	IssueAccessToken(userID string) (string, error)
	Verify(tokenString string, kind token.Kind) (*token.Claims, error)
}

// Result is returned by Register and Login.
type Result struct {
	token.Pair
	User domain.PublicUser `json:"user"`
}

type UseCase struct {
	users   repository.UserRepository
	tokens  TokenIssuer
	hasher  PasswordHasher
	limiter repository.LoginLimiter
	logger  *zap.Logger
}

// New wires the auth flow. limiter may be nil to disable attempt limiting.
func New(users repository.UserRepository, tokens TokenIssuer, hasher PasswordHasher, limiter repository.LoginLimiter, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		limiter: limiter,
		logger:  logger,
	}
}

// Register creates an account and signs the caller in.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*Result, error) {
	creds, err := domain.ParseCredentials(email, password, true)
	if err != nil {
		return nil, err
	}

	if _, err := uc.users.GetByEmail(ctx, creds.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(creds.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{Email: creds.Email, PasswordHash: hash}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("user registered", zap.String("user_id", user.ID))
	return uc.signIn(user)
}

// Login verifies credentials. An unknown email and a wrong password fail
// with the same error.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Result, error) {
	creds, err := domain.ParseCredentials(email, password, false)
	if err != nil {
		return nil, err
	}
	log := logger.WithRequestID(ctx, uc.logger)

	if uc.limiter != nil {
		allowed, err := uc.limiter.Allow(ctx, creds.Email)
		if err != nil {
			log.Warn("login limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := uc.users.GetByEmail(ctx, creds.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		uc.hasher.CompareMissing(creds.Password)
		uc.recordFailure(ctx, log, creds.Email)
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if !uc.hasher.Compare(user.PasswordHash, creds.Password) {
		uc.recordFailure(ctx, log, creds.Email)
		return nil, domain.ErrInvalidCredentials
	}

	if uc.limiter != nil {
		if err := uc.limiter.Success(ctx, creds.Email); err != nil {
			log.Warn("failed to reset login failures", zap.Error(err))
		}
	}
	return uc.signIn(user)
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is neither rotated nor revoked.
func (uc *UseCase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.ErrInvalidRefreshToken
	}
	claims, err := uc.tokens.Verify(refreshToken, token.Refresh)
	if err != nil {
		return "", domain.ErrInvalidRefreshToken
	}

	user, err := uc.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidRefreshToken
		}
		return "", err
	}

	access, err := uc.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "issue access token", err)
	}
	return access, nil
}

// Logout keeps no server-side state: issued tokens stay valid until they
// expire and the client is expected to discard them.
func (uc *UseCase) Logout(ctx context.Context) error {
	logger.WithRequestID(ctx, uc.logger).Debug("logout requested")
	return nil
}

func (uc *UseCase) signIn(user *domain.User) (*Result, error) {
	pair, err := uc.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "issue tokens", err)
	}
	return &Result{Pair: pair, User: user.Public()}, nil
}

func (uc *UseCase) recordFailure(ctx context.Context, log *zap.Logger, email string) {
	if uc.limiter == nil {
		return
	}
	if err := uc.limiter.Failure(ctx, email); err != nil {
		log.Warn("failed to record login failure", zap.Error(err))
	}
}
