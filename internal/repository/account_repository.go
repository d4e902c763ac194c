package repository

import (
	"context"
	"errors"
	"fmt"

	"juin_store/internal/domain/models"
	"juin_store/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const accountTable = "accounts"

type AccountRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AccountRepo) ByIdentification(ctx context.Context, identification string) (models.Account, error) {
	const op = "repository.account_repository.ByIdentification"

	query, args, err := r.sb.
		Select("id", "identification", "email", "role").
		From(accountTable).
		Where(sq.Eq{"identification": identification}).
		ToSql()
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var account models.Account
	err = r.db.QueryRow(ctx, query, args...).Scan(&account.ID, &account.Identification, &account.Email, &account.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
		}
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}
