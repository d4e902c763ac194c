package repository

import (
	"context"

	"juin_store/internal/domain/models"
)

// TokenRepository owns the durable single-row-per-identification refresh
// token record. Upsert is the only write path used by new issuance and must
// be atomic; a lost concurrent rotation is a correctness bug, not a race to
// tolerate.
type TokenRepository interface {
	FindByIdentification(ctx context.Context, identification string) (models.Token, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (models.Token, error)
	Upsert(ctx context.Context, identification, refreshToken string) (models.Token, error)
	UpdateRefreshToken(ctx context.Context, identification, refreshToken string) error
}

type AccountRepository interface {
	ByIdentification(ctx context.Context, identification string) (models.Account, error)
}
