package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"juin_store/internal/domain/models"
	"juin_store/internal/lib/jwt"
	"juin_store/internal/lib/logger/sl"
	"juin_store/internal/repository"
	"juin_store/internal/storage"
)

// ErrInvalidRefreshToken covers every protocol failure of the reissue path:
// malformed or expired tokens, tokens whose identification resolves to no
// account, and tokens superseded by a later rotation. Callers must not be
// able to tell these apart.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type AccountLookup interface {
	ByIdentification(ctx context.Context, identification string) (models.Account, error)
}

type TokenService struct {
	log      *slog.Logger
	codec    *jwt.Codec
	repo     repository.TokenRepository
	accounts AccountLookup
}

func NewTokenService(log *slog.Logger, codec *jwt.Codec, repo repository.TokenRepository, accounts AccountLookup) *TokenService {
	return &TokenService{
		log:      log,
		codec:    codec,
		repo:     repo,
		accounts: accounts,
	}
}

// IssueAccessToken mints a short-lived access token. Nothing is persisted.
func (s *TokenService) IssueAccessToken(identification, role string) (string, error) {
	return s.codec.CreateAccessToken(identification, role)
}

// IssueRefreshToken mints a long-lived refresh token without storing it;
// persistence is the explicit UpsertRefreshToken step.
func (s *TokenService) IssueRefreshToken(identification, role string) (string, error) {
	return s.codec.CreateRefreshToken(identification, role)
}

// UpsertRefreshToken mints a fresh refresh token and atomically replaces the
// stored one for identification. The returned value is what the store holds
// after the write, so a caller racing another rotation sees the committed
// value, never a stale mint.
func (s *TokenService) UpsertRefreshToken(ctx context.Context, identification, role string) (string, error) {
	const op = "token_service.UpsertRefreshToken"

	log := s.log.With(
		slog.String("op", op),
		slog.String("identification", identification),
	)

	refreshToken, err := s.IssueRefreshToken(identification, role)
	if err != nil {
		log.Error("failed to mint refresh token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.repo.Upsert(ctx, identification, refreshToken)
	if err != nil {
		log.Error("failed to upsert refresh token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("refresh token rotated")

	return stored.RefreshToken, nil
}

// ReissueAccessToken exchanges a live refresh token for a new access token.
//
// Codec validity alone is not enough: a rotated-out refresh token stays
// cryptographically valid until its expiry, so the presented value must also
// equal the one on file for the claimed identification. The refresh token is
// not rotated here; it stays live until the next UpsertRefreshToken.
func (s *TokenService) ReissueAccessToken(ctx context.Context, refreshToken string) (string, error) {
	const op = "token_service.ReissueAccessToken"

	log := s.log.With(slog.String("op", op))

	claims, err := s.codec.Validate(refreshToken)
	if err != nil {
		log.Info("presented token failed validation")

		return "", fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	account, err := s.accounts.ByIdentification(ctx, claims.Identification)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			log.Info("token claims unknown account")

			return "", fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
		}
		log.Error("account lookup failed", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.repo.FindByIdentification(ctx, account.Identification)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Info("no stored token for account")

			return "", fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
		}
		log.Error("failed to load stored token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if stored.RefreshToken != refreshToken {
		log.Info("presented token superseded by a later rotation")

		return "", fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	accessToken, err := s.IssueAccessToken(account.Identification, account.Role)
	if err != nil {
		log.Error("failed to mint access token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, nil
}

// ModifyRefreshToken overwrites the stored value for an identification whose
// record is already known to exist, sparing the caller a redundant lookup.
func (s *TokenService) ModifyRefreshToken(ctx context.Context, identification, refreshToken string) error {
	const op = "token_service.ModifyRefreshToken"

	if err := s.repo.UpdateRefreshToken(ctx, identification, refreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GenerateTokenPair issues an access token plus a persisted refresh token for
// account, as one call for the sign-in flow. The refresh value returned is
// the stored one.
func (s *TokenService) GenerateTokenPair(ctx context.Context, account models.Account) (models.TokenPair, error) {
	const op = "token_service.GenerateTokenPair"

	accessToken, err := s.IssueAccessToken(account.Identification, account.Role)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.UpsertRefreshToken(ctx, account.Identification, account.Role)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
