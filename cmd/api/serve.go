package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notes-auth/internal/config"
	"notes-auth/internal/db"
	"notes-auth/internal/email"
	apihttp "notes-auth/internal/http"
	"notes-auth/internal/metrics"
	"notes-auth/internal/repository"
	"notes-auth/internal/service"
)

const (
	shutdownTimeout   = 10 * time.Second
	redisOtpRetention = 24 * time.Hour
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return oops.Code("LOGGER_INIT_FAILED").Wrap(err)
	}
	defer logger.Sync()

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error("db connect", zap.Error(err))
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("auto migrate", zap.Error(err))
			return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
		logger.Info("migrations applied")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			if cfg.OtpStore == config.OtpStoreRedis {
				return oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.RedisAddr).Wrap(err)
			}
			logger.Warn("redis ping failed, falling back to local limiter", zap.Error(err))
			redisClient = nil
		}
	}

	m := metrics.New()
	router := buildRouter(cfg, logger, pool, redisClient, m)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildRouter arma repositorios, mailer, limiter y AuthService sobre las conexiones abiertas.
// redisClient puede ser nil.
func buildRouter(cfg *config.Config, logger *zap.Logger, pool *pgxpool.Pool, redisClient *redis.Client, m *metrics.Metrics) http.Handler {
	accounts := repository.NewPgAccountRepository(pool)

	var otps repository.OtpRepository = repository.NewPgOtpRepository(pool)
	if cfg.OtpStore == config.OtpStoreRedis && redisClient != nil {
		otps = repository.NewRedisOtpRepository(redisClient, redisOtpRetention)
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL())
	authSvc := service.NewAuthService(
		logger,
		accounts,
		otps,
		service.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		newMailer(cfg, logger),
		service.AuthOptions{
			OtpTTL:        cfg.OtpTTL(),
			MailTimeout:   cfg.MailTimeout,
			LogOtpCodes:   cfg.OtpDebugLog,
			ResendLimiter: newResendLimiter(cfg, redisClient),
			Metrics:       m,
		},
	)

	authHandler := apihttp.NewAuthHandler(logger, authSvc)
	return apihttp.NewRouter(logger, authHandler, tokens, m.Handler())
}

func newMailer(cfg *config.Config, logger *zap.Logger) email.Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("smtp not configured, otp emails disabled")
		return email.NewDisabledSender("email sender not configured")
	}
	sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
	if err != nil {
		logger.Warn("smtp sender init failed", zap.Error(err))
		return email.NewDisabledSender(err.Error())
	}
	return sender
}

// newResendLimiter devuelve nil cuando OTP_RESEND_MAX es 0.
func newResendLimiter(cfg *config.Config, redisClient *redis.Client) service.OTPRateLimiter {
	if cfg.OtpResendMax <= 0 {
		return nil
	}
	if redisClient != nil {
		return service.NewRedisOTPRateLimiter(redisClient, cfg.OtpResendWindow, cfg.OtpResendMax)
	}
	return service.NewOTPRateLimiter(cfg.OtpResendWindow, cfg.OtpResendMax)
}
