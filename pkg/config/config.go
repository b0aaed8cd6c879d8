package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "YAZBOX"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "YAZBOX_DB_DSN"
	EnvDBHost = "YAZBOX_DB_HOST"
	EnvDBUser = "YAZBOX_DB_USER"
	EnvDBName = "YAZBOX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Cart         CartConfig
}

// Load parses the process environment into a Config. Missing required values
// are a fatal configuration error surfaced before anything serves.
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
	Env          string `envconfig:"YAZBOX_APP_ENV" required:"true"`
	Port         string `envconfig:"YAZBOX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"YAZBOX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"YAZBOX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"YAZBOX_DB_DSN"`
	Driver string `envconfig:"YAZBOX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"YAZBOX_DB_HOST"`
	LegacyPort     int    `envconfig:"YAZBOX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"YAZBOX_DB_USER"`
	LegacyPassword string `envconfig:"YAZBOX_DB_PASSWORD"`
	LegacyName     string `envconfig:"YAZBOX_DB_NAME"`
	LegacySSLMode  string `envconfig:"YAZBOX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"YAZBOX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"YAZBOX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"YAZBOX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"YAZBOX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"YAZBOX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"YAZBOX_REDIS_ADDR"`
	Password     string        `envconfig:"YAZBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"YAZBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"YAZBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"YAZBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"YAZBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"YAZBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"YAZBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"YAZBOX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"YAZBOX_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"YAZBOX_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"YAZBOX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"YAZBOX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"YAZBOX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"YAZBOX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"YAZBOX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"YAZBOX_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"YAZBOX_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"YAZBOX_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"YAZBOX_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"YAZBOX_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"YAZBOX_GCS_BUCKET_NAME" required:"true"`
}

type PubSubConfig struct {
	SignupTopic         string `envconfig:"YAZBOX_PUBSUB_SIGNUP_TOPIC" required:"true"`
	SignupSubscription  string `envconfig:"YAZBOX_PUBSUB_SIGNUP_SUBSCRIPTION" required:"true"`
	MessageTopic        string `envconfig:"YAZBOX_PUBSUB_MESSAGE_TOPIC" required:"true"`
	MessageSubscription string `envconfig:"YAZBOX_PUBSUB_MESSAGE_SUBSCRIPTION" required:"true"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"YAZBOX_CART_TTL" default:"720h"`
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
