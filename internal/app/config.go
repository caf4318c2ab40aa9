package app

import (
	"time"

	"github.com/yungbote/lingobridge-backend/internal/clients/redis"
	"github.com/yungbote/lingobridge-backend/internal/data/db"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/exam"
	"github.com/yungbote/lingobridge-backend/internal/observability"
	"github.com/yungbote/lingobridge-backend/internal/platform/envutil"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	JWTSecretKey     string
	AccessTokenTTL   time.Duration
	AuthCookieName   string
	AuthCookieSecure bool
	AuthCookieDomain string

	TotalModules      int
	CertificatePolicy types.CertificatePolicy
	CertificateFont   string
	ReportCacheTTL    time.Duration
	ReportActiveDays  int
	SeedCatalog       bool

	Redis        redis.Config
	RedisChannel string

	CORSOrigins     []string
	ShutdownTimeout time.Duration

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "lingobridge"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "lingobridge.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:  envutil.Seconds("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:    envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),
		AuthCookieName:    envutil.String("AUTH_COOKIE_NAME", "lb_access_token"),
		AuthCookieSecure:  envutil.Bool("AUTH_COOKIE_SECURE", false),
		AuthCookieDomain:  envutil.String("AUTH_COOKIE_DOMAIN", ""),
		TotalModules:      envutil.Int("TOTAL_MODULES", services.DefaultTotalModules),
		CertificatePolicy: exam.ParseCertificatePolicy(envutil.String("CERTIFICATE_POLICY", string(exam.PolicyPerAttempt))),
		CertificateFont:   envutil.String("CERTIFICATE_FONT_PATH", ""),
		ReportCacheTTL:    envutil.Seconds("REPORT_CACHE_TTL", 60*time.Second),
		ReportActiveDays:  envutil.Int("REPORT_ACTIVE_DAYS", 7),
		SeedCatalog:       envutil.Bool("SEED_CATALOG", true),
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			PoolSize: envutil.Int("REDIS_POOL_SIZE", 10),
		},
		RedisChannel:    envutil.String("REDIS_CHANNEL", "lingobridge:sse"),
		CORSOrigins:     envutil.List("CORS_ORIGINS", nil),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT", 15*time.Second),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "lingobridge-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg
}
