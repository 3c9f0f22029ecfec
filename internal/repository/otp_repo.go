package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"notes-auth/internal/domain"
)

// OtpRepository guarda a lo sumo un OTP pendiente por email.
type OtpRepository interface {
	// Put reemplaza atomicamente cualquier registro previo del mismo email.
	Put(ctx context.Context, record domain.OtpRecord) error
	Get(ctx context.Context, email string) (domain.OtpRecord, error)
	// Delete no falla si el registro no existe.
	Delete(ctx context.Context, email string) error
}

// PgOtpRepository implementa OtpRepository sobre la tabla otp_verifications.
type PgOtpRepository struct {
	pool dbtx
}

var _ OtpRepository = (*PgOtpRepository)(nil)

func NewPgOtpRepository(pool dbtx) *PgOtpRepository {
	return &PgOtpRepository{pool: pool}
}

func (r *PgOtpRepository) Put(ctx context.Context, record domain.OtpRecord) error {
	const query = `
		INSERT INTO otp_verifications (email, otp_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET otp_hash = EXCLUDED.otp_hash,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`
	_, err := r.pool.Exec(ctx, query, record.Email, record.OtpHash, record.CreatedAt, record.ExpiresAt)
	if err != nil {
		return oops.Code("OTP_PUT_FAILED").With("email", record.Email).Wrap(err)
	}
	return nil
}

func (r *PgOtpRepository) Get(ctx context.Context, email string) (domain.OtpRecord, error) {
	const query = `
		SELECT email, otp_hash, created_at, expires_at
		FROM otp_verifications
		WHERE email = $1
	`
	var rec domain.OtpRecord
	err := r.pool.QueryRow(ctx, query, email).Scan(&rec.Email, &rec.OtpHash, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OtpRecord{}, oops.Code("OTP_NOT_FOUND").With("email", email).Wrap(ErrNotFound)
		}
		return domain.OtpRecord{}, oops.Code("OTP_QUERY_FAILED").With("email", email).Wrap(err)
	}
	return rec, nil
}

func (r *PgOtpRepository) Delete(ctx context.Context, email string) error {
	const query = `DELETE FROM otp_verifications WHERE email = $1`
	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return oops.Code("OTP_DELETE_FAILED").With("email", email).Wrap(err)
	}
	return nil
}
