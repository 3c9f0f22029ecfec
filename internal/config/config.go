package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Backends soportados para el almacenamiento de OTPs.
const (
	OtpStorePostgres = "postgres"
	OtpStoreRedis    = "redis"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8000"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	JWTSecret     string `env:"JWT_SECRET,required,notEmpty"`
	JWTTTLMinutes int    `env:"JWT_TTL_MINUTES" envDefault:"36000"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"10"`

	OtpTTLMinutes   int           `env:"OTP_TTL_MINUTES" envDefault:"60"`
	OtpStore        string        `env:"OTP_STORE" envDefault:"postgres"`
	OtpDebugLog     bool          `env:"OTP_DEBUG_LOG" envDefault:"false"`
	OtpResendMax    int           `env:"OTP_RESEND_MAX" envDefault:"0"`
	OtpResendWindow time.Duration `env:"OTP_RESEND_WINDOW" envDefault:"2m"`

	MailTimeout  time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string        `env:"SMTP_USER"`
	SMTPPass     string        `env:"SMTP_PASS"`
	SMTPFrom     string        `env:"SMTP_FROM"`
	SMTPFromName string        `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool          `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.OtpStore = strings.ToLower(strings.TrimSpace(c.OtpStore))
	switch c.OtpStore {
	case OtpStorePostgres:
	case OtpStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("OTP_STORE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported OTP_STORE %q", c.OtpStore)
	}
	if c.JWTTTLMinutes <= 0 {
		return fmt.Errorf("JWT_TTL_MINUTES must be positive")
	}
	if c.OtpTTLMinutes <= 0 {
		return fmt.Errorf("OTP_TTL_MINUTES must be positive")
	}
	if c.MailTimeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive")
	}
	return nil
}

// JWTTTL devuelve la vigencia de los tokens de sesion.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// OtpTTL devuelve la vigencia de los codigos OTP.
func (c *Config) OtpTTL() time.Duration {
	return time.Duration(c.OtpTTLMinutes) * time.Minute
}
