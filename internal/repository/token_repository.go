package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"juin_store/internal/domain/models"
	"juin_store/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const tokenTable = "tokens"

type PostgresTokenRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostgresTokenRepo(db *pgxpool.Pool) *PostgresTokenRepo {
	return &PostgresTokenRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresTokenRepo) FindByIdentification(ctx context.Context, identification string) (models.Token, error) {
	const op = "repository.token_repository.FindByIdentification"

	query, args, err := r.sb.
		Select("identification", "refresh_token", "updated_at").
		From(tokenTable).
		Where(sq.Eq{"identification": identification}).
		ToSql()
	if err != nil {
		return models.Token{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var token models.Token
	err = r.db.QueryRow(ctx, query, args...).Scan(&token.Identification, &token.RefreshToken, &token.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Token{}, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (r *PostgresTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (models.Token, error) {
	const op = "repository.token_repository.FindByRefreshToken"

	query, args, err := r.sb.
		Select("identification", "refresh_token", "updated_at").
		From(tokenTable).
		Where(sq.Eq{"refresh_token": refreshToken}).
		ToSql()
	if err != nil {
		return models.Token{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var token models.Token
	err = r.db.QueryRow(ctx, query, args...).Scan(&token.Identification, &token.RefreshToken, &token.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Token{}, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Upsert inserts or replaces the refresh token row for identification in a
// single statement. The row-level lock taken by ON CONFLICT DO UPDATE
// serializes concurrent rotations for the same identification, and the
// RETURNING clause hands back exactly what was committed.
func (r *PostgresTokenRepo) Upsert(ctx context.Context, identification, refreshToken string) (models.Token, error) {
	const op = "repository.token_repository.Upsert"

	query, args, err := r.sb.
		Insert(tokenTable).
		Columns("identification", "refresh_token", "updated_at").
		Values(identification, refreshToken, time.Now().UTC()).
		Suffix("ON CONFLICT (identification) DO UPDATE SET refresh_token = EXCLUDED.refresh_token, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING identification, refresh_token, updated_at").
		ToSql()
	if err != nil {
		return models.Token{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var token models.Token
	err = r.db.QueryRow(ctx, query, args...).Scan(&token.Identification, &token.RefreshToken, &token.UpdatedAt)
	if err != nil {
		return models.Token{}, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (r *PostgresTokenRepo) UpdateRefreshToken(ctx context.Context, identification, refreshToken string) error {
	const op = "repository.token_repository.UpdateRefreshToken"

	query, args, err := r.sb.
		Update(tokenTable).
		Set("refresh_token", refreshToken).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"identification": identification}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}

	return nil
}
