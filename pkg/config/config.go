package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Popup        PopupConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	cfg.Popup.normalize()
	return &cfg, nil
}

type AppConfig struct {
	Env           string `envconfig:"TRUSTFLOW_APP_ENV" required:"true"`
	Port          string `envconfig:"TRUSTFLOW_APP_PORT" required:"true"`
	LogLevel      string `envconfig:"TRUSTFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"TRUSTFLOW_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string `envconfig:"TRUSTFLOW_PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRUSTFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRUSTFLOW_DB_DSN"`
	Driver string `envconfig:"TRUSTFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRUSTFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"TRUSTFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRUSTFLOW_DB_USER"`
	LegacyPassword string `envconfig:"TRUSTFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRUSTFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRUSTFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRUSTFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRUSTFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRUSTFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRUSTFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"TRUSTFLOW_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRUSTFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRUSTFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"TRUSTFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRUSTFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRUSTFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRUSTFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRUSTFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRUSTFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRUSTFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies access tokens minted by the external identity provider.
type JWTConfig struct {
	Secret   string `envconfig:"TRUSTFLOW_JWT_SECRET" required:"true"`
	Audience string `envconfig:"TRUSTFLOW_JWT_AUDIENCE" default:"authenticated"`
	Issuer   string `envconfig:"TRUSTFLOW_JWT_ISSUER"`
}

type CORSConfig struct {
	DashboardOrigins []string `envconfig:"TRUSTFLOW_CORS_DASHBOARD_ORIGINS" default:"http://localhost:5173"`
}

type PopupConfig struct {
	PollInterval   time.Duration `envconfig:"TRUSTFLOW_POPUP_POLL_INTERVAL" default:"30s"`
	FetchTimeout   time.Duration `envconfig:"TRUSTFLOW_POPUP_FETCH_TIMEOUT" default:"10s"`
	PublicCacheTTL time.Duration `envconfig:"TRUSTFLOW_PUBLIC_DATA_CACHE_TTL" default:"30s"`
	AvatarBaseURL  string        `envconfig:"TRUSTFLOW_AVATAR_BASE_URL"`
}

// MinPollInterval is the floor applied to configured poll intervals.
const MinPollInterval = time.Second

func (p *PopupConfig) normalize() {
	if p.PollInterval < MinPollInterval {
		p.PollInterval = MinPollInterval
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = 10 * time.Second
	}
}

type RateLimitConfig struct {
	SubmitWindow     time.Duration `envconfig:"TRUSTFLOW_RATE_LIMIT_SUBMIT_WINDOW" default:"10m"`
	SubmitIPLimit    int           `envconfig:"TRUSTFLOW_RATE_LIMIT_SUBMIT_IP_LIMIT" default:"10"`
	SubmitEmailLimit int           `envconfig:"TRUSTFLOW_RATE_LIMIT_SUBMIT_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRUSTFLOW_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval                    time.Duration `envconfig:"TRUSTFLOW_CRON_INTERVAL" default:"15m"`
	DeletedTestimonialRetention time.Duration `envconfig:"TRUSTFLOW_CRON_DELETED_TESTIMONIAL_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
