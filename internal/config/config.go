package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ErrMissingSecret is fatal: the process must not come up without a signing
// secret, and there is no safe fallback to generate one.
var ErrMissingSecret = errors.New("WECARE_JWT_SECRET is not set")

type AppConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration
	Issuer     string
	Audience   string
}

type CookieConfig struct {
	Domain   string
	SameSite string
}

type Config struct {
	AppConfig    *AppConfig
	DbConfig     *DbConfig
	JWTConfig    *JWTConfig
	CookieConfig *CookieConfig
}

func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		// fine when the environment is injected some other way
		logger.Info("no .env file loaded", zap.Error(err))
	}

	/** jwt config */
	secret := os.Getenv("WECARE_JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}
	sessionTTL, err := durationEnv("SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	jwtConfig := &JWTConfig{
		Secret:     secret,
		SessionTTL: sessionTTL,
		Issuer:     envDefault("JWT_ISSUER", "wecare"),
		Audience:   envDefault("JWT_AUDIENCE", "wecare-app"),
	}

	/** db config */
	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	dbConfig := &DbConfig{
		DSN:             os.Getenv("POSTGRES_DSN"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** app config */
	readTimeout, err := durationEnv("APP_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("APP_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationEnv("APP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	appConfig := &AppConfig{
		Port:         envDefault("APP_PORT", "8080"),
		Environment:  envDefault("APP_ENV", "development"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	/** cookie config */
	cookieConfig := &CookieConfig{
		Domain:   os.Getenv("COOKIE_DOMAIN"),
		SameSite: envDefault("COOKIE_SAMESITE", "lax"),
	}

	return &Config{
		AppConfig:    appConfig,
		DbConfig:     dbConfig,
		JWTConfig:    jwtConfig,
		CookieConfig: cookieConfig,
	}, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
