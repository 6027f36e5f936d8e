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
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Signatures   SignatureConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"SIGNFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"SIGNFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SIGNFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIGNFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SIGNFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SIGNFLOW_DB_DSN"`
	Driver string `envconfig:"SIGNFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SIGNFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"SIGNFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SIGNFLOW_DB_USER"`
	LegacyPassword string `envconfig:"SIGNFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"SIGNFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"SIGNFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIGNFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIGNFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIGNFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIGNFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SIGNFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SIGNFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"SIGNFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIGNFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIGNFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIGNFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIGNFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIGNFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIGNFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SIGNFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SIGNFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SIGNFLOW_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SIGNFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SIGNFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SIGNFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SIGNFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SIGNFLOW_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SIGNFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SIGNFLOW_AUTO_MIGRATE" default:"false"`
}

// SignatureConfig bounds reusable signature image uploads.
type SignatureConfig struct {
	MaxImageBytes int `envconfig:"SIGNFLOW_SIGNATURE_MAX_IMAGE_BYTES" default:"1048576"`
}

type PubSubConfig struct {
	ProjectID            string `envconfig:"SIGNFLOW_GCP_PROJECT_ID"`
	WorkflowTopic        string `envconfig:"SIGNFLOW_PUBSUB_WORKFLOW_TOPIC" default:"sf-workflow-events"`
	WorkflowSubscription string `envconfig:"SIGNFLOW_PUBSUB_WORKFLOW_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SIGNFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SIGNFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SIGNFLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
