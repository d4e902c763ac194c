package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"juin_store/internal/domain/models"
	"juin_store/internal/storage"
	redisapp "juin_store/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRepo keeps the live refresh token per identification in Redis,
// for deployments that hold sessions outside the relational store. The
// identification key is the source of truth and is written atomically with
// GETSET; the reverse index may lag a concurrent rotation, which is harmless
// because reissue always compares against the identification key.
type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) FindByIdentification(ctx context.Context, identification string) (models.Token, error) {
	const op = "repository.redis_token_repository.FindByIdentification"

	val, err := r.Client.Get(ctx, identificationKey(identification)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Token{}, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Token{Identification: identification, RefreshToken: val}, nil
}

func (r *RedisTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (models.Token, error) {
	const op = "repository.redis_token_repository.FindByRefreshToken"

	identification, err := r.Client.Get(ctx, reverseKey(refreshToken)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Token{}, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Token{Identification: identification, RefreshToken: refreshToken}, nil
}

func (r *RedisTokenRepo) Upsert(ctx context.Context, identification, refreshToken string) (models.Token, error) {
	const op = "repository.redis_token_repository.Upsert"

	old, err := r.Client.GetSet(ctx, identificationKey(identification), refreshToken).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	pipe := r.Client.TxPipeline()
	if old != "" && old != refreshToken {
		pipe.Del(ctx, reverseKey(old))
	}
	pipe.Set(ctx, reverseKey(refreshToken), identification, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Token{
		Identification: identification,
		RefreshToken:   refreshToken,
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

func (r *RedisTokenRepo) UpdateRefreshToken(ctx context.Context, identification, refreshToken string) error {
	const op = "repository.redis_token_repository.UpdateRefreshToken"

	_, err := r.Client.Get(ctx, identificationKey(identification)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.Upsert(ctx, identification, refreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func identificationKey(identification string) string {
	return "token:ident:" + identification
}

func reverseKey(refreshToken string) string {
	return "token:value:" + refreshToken
}
