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
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Drafts       DraftsConfig
	Grants       GrantsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DATASPACE_APP_ENV" required:"true"`
	Port         string `envconfig:"DATASPACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DATASPACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DATASPACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DATASPACE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DATASPACE_DB_DSN"`
	Driver string `envconfig:"DATASPACE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DATASPACE_DB_HOST"`
	Port     int    `envconfig:"DATASPACE_DB_PORT" default:"5432"`
	User     string `envconfig:"DATASPACE_DB_USER"`
	Password string `envconfig:"DATASPACE_DB_PASSWORD"`
	Name     string `envconfig:"DATASPACE_DB_NAME"`
	SSLMode  string `envconfig:"DATASPACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DATASPACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DATASPACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DATASPACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DATASPACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DATASPACE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DATASPACE_REDIS_ADDR"`
	Password     string        `envconfig:"DATASPACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DATASPACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DATASPACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DATASPACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DATASPACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DATASPACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DATASPACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the verification side of tokens minted by the
// upstream identity provider. This service never issues tokens.
type JWTConfig struct {
	Secret string `envconfig:"DATASPACE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"DATASPACE_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DATASPACE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DATASPACE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DATASPACE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"DATASPACE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DATASPACE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationsTopic        string `envconfig:"DATASPACE_PUBSUB_NOTIFICATIONS_TOPIC" default:"ds-request-events"`
	NotificationsSubscription string `envconfig:"DATASPACE_PUBSUB_NOTIFICATIONS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset               string `envconfig:"DATASPACE_BIGQUERY_DATASET" default:"dataspace"`
	GovernanceEventsTable string `envconfig:"DATASPACE_BIGQUERY_GOVERNANCE_TABLE" default:"governance_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DATASPACE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DATASPACE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DATASPACE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type DraftsConfig struct {
	TTL time.Duration `envconfig:"DATASPACE_DRAFT_TTL" default:"168h"`
}

type GrantsConfig struct {
	DefaultDurationDays int `envconfig:"DATASPACE_GRANT_DEFAULT_DURATION_DAYS" default:"90"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
