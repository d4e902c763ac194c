package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"juin_store/internal/domain/models"
	"juin_store/internal/lib/logger/sl"
	"juin_store/internal/repository"

	"github.com/patrickmn/go-cache"
)

// AccountService is the read-only account collaborator of the token
// subsystem. Lookups go through a short-TTL in-memory cache; only successful
// resolutions are cached, so a just-created account is visible immediately.
type AccountService struct {
	log   *slog.Logger
	repo  repository.AccountRepository
	cache *cache.Cache
}

func NewAccountService(log *slog.Logger, repo repository.AccountRepository, cacheTTL time.Duration) *AccountService {
	return &AccountService{
		log:   log,
		repo:  repo,
		cache: cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *AccountService) ByIdentification(ctx context.Context, identification string) (models.Account, error) {
	const op = "account_service.ByIdentification"

	if cached, ok := s.cache.Get(identification); ok {
		return cached.(models.Account), nil
	}

	account, err := s.repo.ByIdentification(ctx, identification)
	if err != nil {
		s.log.Debug("account lookup miss", slog.String("op", op), sl.Err(err))

		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.SetDefault(identification, account)

	return account, nil
}
