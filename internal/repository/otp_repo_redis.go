package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"notes-auth/internal/domain"
)

const (
	redisOtpKeyPrefix = "otp:code:"
	// defaultOtpRetention mantiene la clave viva tras ExpiresAt para que la
	// verificacion pueda distinguir un codigo vencido de uno inexistente.
	defaultOtpRetention = 24 * time.Hour
)

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisOtpRepository guarda cada OtpRecord como un documento JSON por email.
// Un unico SET reemplaza el registro anterior, asi que Put es atomico.
type RedisOtpRepository struct {
	client    redisKVClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

var _ OtpRepository = (*RedisOtpRepository)(nil)

func NewRedisOtpRepository(client *redis.Client, retention time.Duration) *RedisOtpRepository {
	return newRedisOtpRepository(client, retention)
}

func newRedisOtpRepository(client redisKVClient, retention time.Duration) *RedisOtpRepository {
	if retention <= 0 {
		retention = defaultOtpRetention
	}
	return &RedisOtpRepository{
		client:    client,
		prefix:    redisOtpKeyPrefix,
		retention: retention,
		now:       time.Now,
	}
}

func (r *RedisOtpRepository) Put(ctx context.Context, record domain.OtpRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return oops.Code("OTP_ENCODE_FAILED").With("email", record.Email).Wrap(err)
	}
	ttl := record.ExpiresAt.Sub(r.now()) + r.retention
	if ttl <= 0 {
		ttl = r.retention
	}
	if err := r.client.Set(ctx, r.prefix+record.Email, payload, ttl).Err(); err != nil {
		return oops.Code("OTP_PUT_FAILED").With("email", record.Email).Wrap(err)
	}
	return nil
}

func (r *RedisOtpRepository) Get(ctx context.Context, email string) (domain.OtpRecord, error) {
	raw, err := r.client.Get(ctx, r.prefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OtpRecord{}, oops.Code("OTP_NOT_FOUND").With("email", email).Wrap(ErrNotFound)
		}
		return domain.OtpRecord{}, oops.Code("OTP_QUERY_FAILED").With("email", email).Wrap(err)
	}
	var rec domain.OtpRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.OtpRecord{}, oops.Code("OTP_DECODE_FAILED").With("email", email).Wrap(err)
	}
	return rec, nil
}

func (r *RedisOtpRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.prefix+email).Err(); err != nil {
		return oops.Code("OTP_DELETE_FAILED").With("email", email).Wrap(err)
	}
	return nil
}
