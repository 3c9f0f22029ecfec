package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound se devuelve cuando no existe el registro buscado.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail se devuelve cuando el email ya pertenece a otra cuenta.
	ErrDuplicateEmail = errors.New("email already registered")
)

// dbtx es el subconjunto de pgxpool.Pool que usan los repositorios; pgxmock lo implementa.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
