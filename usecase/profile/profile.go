package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
)

// UseCase exposes the caller's own account.
type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns the public view of userID. A token whose user has since
// been removed is treated as invalid rather than as a missing resource.
func (uc *UseCase) GetProfile(ctx context.Context, userID string) (domain.PublicUser, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			logger.WithRequestID(ctx, uc.logger).Warn("token for unknown user", zap.String("user_id", userID))
			return domain.PublicUser{}, domain.ErrInvalidToken
		}
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}
