package sessionrepository

import (
	"context"

	"github.com/Amund211/cheevo/internal/domain"
)

type SessionRepository interface {
	// RegisterUser records a login, creating the user on first sight
	RegisterUser(ctx context.Context, username string) (domain.User, error)
	StartSession(ctx context.Context, username string, gameID uint32) (domain.GameSession, error)
	// RecordUnlock is idempotent, the first unlock time is kept
	RecordUnlock(ctx context.Context, unlock domain.Unlock) error
	GetUnlocks(ctx context.Context, username string, gameID uint32, hardcore bool) ([]uint32, error)
}
