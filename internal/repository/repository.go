package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	Token   TokenRepository
	Account AccountRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		Token:   NewPostgresTokenRepo(db),
		Account: NewAccountRepository(db),
	}
}
