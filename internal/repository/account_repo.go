package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"notes-auth/internal/domain"
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	SetVerified(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error)
}

// PgAccountRepository implementa AccountRepository usando pgx.
// La unicidad del email la garantiza la constraint accounts_email_key.
type PgAccountRepository struct {
	pool dbtx
}

var _ AccountRepository = (*PgAccountRepository)(nil)

func NewPgAccountRepository(pool dbtx) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id, email, full_name, password_hash, verified, is_admin, created_at`

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO accounts (id, email, full_name, password_hash, verified, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.Verified,
		account.IsAdmin,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").With("email", account.Email).Wrap(ErrDuplicateEmail)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").With("email", account.Email).Wrap(err)
	}
	return nil
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, oops.Code("ACCOUNT_NOT_FOUND").With("email", email).Wrap(ErrNotFound)
		}
		return domain.Account{}, oops.Code("ACCOUNT_QUERY_FAILED").With("email", email).Wrap(err)
	}
	return account, nil
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, oops.Code("ACCOUNT_NOT_FOUND").With("account_id", id).Wrap(ErrNotFound)
		}
		return domain.Account{}, oops.Code("ACCOUNT_QUERY_FAILED").With("account_id", id).Wrap(err)
	}
	return account, nil
}

// SetVerified marca la cuenta como verificada. Es idempotente.
func (r *PgAccountRepository) SetVerified(ctx context.Context, email string) error {
	const query = `UPDATE accounts SET verified = TRUE WHERE email = $1`
	tag, err := r.pool.Exec(ctx, query, email)
	if err != nil {
		return oops.Code("ACCOUNT_VERIFY_FAILED").With("email", email).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").With("email", email).Wrap(ErrNotFound)
	}
	return nil
}

// UpdateProfile aplica solo los campos presentes en el patch; verified no se toca.
func (r *PgAccountRepository) UpdateProfile(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error) {
	query := `
		UPDATE accounts
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    password_hash = COALESCE($4, password_hash)
		WHERE id = $1
		RETURNING ` + accountColumns
	account, err := scanAccount(r.pool.QueryRow(ctx, query, id, patch.FullName, patch.Email, patch.PasswordHash))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.Account{}, oops.Code("ACCOUNT_NOT_FOUND").With("account_id", id).Wrap(ErrNotFound)
		case isUniqueViolation(err):
			return domain.Account{}, oops.Code("ACCOUNT_DUPLICATE_EMAIL").With("account_id", id).Wrap(ErrDuplicateEmail)
		default:
			return domain.Account{}, oops.Code("ACCOUNT_UPDATE_FAILED").With("account_id", id).Wrap(err)
		}
	}
	return account, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.FullName,
		&a.PasswordHash,
		&a.Verified,
		&a.IsAdmin,
		&a.CreatedAt,
	)
	return a, err
}
