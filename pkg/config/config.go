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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	SMTP         SMTPConfig
	Orders       OrdersConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"MEDLAB_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDLAB_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"MEDLAB_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"MEDLAB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDLAB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDLAB_DB_DSN"`
	Driver string `envconfig:"MEDLAB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MEDLAB_DB_HOST"`
	Port     int    `envconfig:"MEDLAB_DB_PORT" default:"5432"`
	User     string `envconfig:"MEDLAB_DB_USER"`
	Password string `envconfig:"MEDLAB_DB_PASSWORD"`
	Name     string `envconfig:"MEDLAB_DB_NAME"`
	SSLMode  string `envconfig:"MEDLAB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDLAB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDLAB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDLAB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDLAB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDLAB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDLAB_REDIS_ADDR"`
	Password     string        `envconfig:"MEDLAB_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDLAB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDLAB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDLAB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDLAB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDLAB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDLAB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret               string `envconfig:"MEDLAB_JWT_SECRET" required:"true"`
	Issuer               string `envconfig:"MEDLAB_JWT_ISSUER" required:"true"`
	ExpirationMinutes    int    `envconfig:"MEDLAB_JWT_EXPIRATION_MINUTES" default:"1440"`
	MagicLinkTTLMinutes  int    `envconfig:"MEDLAB_MAGIC_LINK_TTL_MINUTES" default:"1440"`
}

// MagicLinkTTL returns the sign-in link lifetime configured in minutes.
func (j JWTConfig) MagicLinkTTL() time.Duration {
	if j.MagicLinkTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.MagicLinkTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDLAB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDLAB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDLAB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDLAB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDLAB_ARGON_KEY_LEN" default:"32"`
}

type SMTPConfig struct {
	Host        string        `envconfig:"MEDLAB_SMTP_HOST"`
	Port        int           `envconfig:"MEDLAB_SMTP_PORT" default:"587"`
	User        string        `envconfig:"MEDLAB_SMTP_USER"`
	Password    string        `envconfig:"MEDLAB_SMTP_PASS"`
	FromName    string        `envconfig:"MEDLAB_EMAIL_FROM_NAME" default:"IVD Group"`
	FromAddress string        `envconfig:"MEDLAB_EMAIL_FROM"`
	SendTimeout time.Duration `envconfig:"MEDLAB_EMAIL_SEND_TIMEOUT" default:"30s"`
}

// Enabled reports whether outbound email is configured at all.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.FromAddress != ""
}

type OrdersConfig struct {
	OperationsEmail string `envconfig:"MEDLAB_ORDERS_OPS_EMAIL" default:"sales@ivdgroup.example"`
}

type CatalogConfig struct {
	PageSize           int `envconfig:"MEDLAB_CATALOG_PAGE_SIZE" default:"24"`
	AutocompleteLimit  int `envconfig:"MEDLAB_CATALOG_AUTOCOMPLETE_LIMIT" default:"10"`
	AutocompleteMinLen int `envconfig:"MEDLAB_CATALOG_AUTOCOMPLETE_MIN_LEN" default:"2"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDLAB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDLAB_AUTO_MIGRATE" default:"false"`
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
