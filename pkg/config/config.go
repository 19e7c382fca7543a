package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	SMTP          SMTPConfig
	Notify        NotifyConfig
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
	Env          string `envconfig:"MEALBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"MEALBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEALBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEALBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEALBRIDGE_DB_DSN"`
	Driver string `envconfig:"MEALBRIDGE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MEALBRIDGE_DB_HOST"`
	Port     int    `envconfig:"MEALBRIDGE_DB_PORT" default:"5432"`
	User     string `envconfig:"MEALBRIDGE_DB_USER"`
	Password string `envconfig:"MEALBRIDGE_DB_PASSWORD"`
	Name     string `envconfig:"MEALBRIDGE_DB_NAME"`
	SSLMode  string `envconfig:"MEALBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEALBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEALBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEALBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEALBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEALBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEALBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"MEALBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEALBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEALBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEALBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEALBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEALBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEALBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEALBRIDGE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEALBRIDGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEALBRIDGE_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MEALBRIDGE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEALBRIDGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEALBRIDGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEALBRIDGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEALBRIDGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEALBRIDGE_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEALBRIDGE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEALBRIDGE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MEALBRIDGE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MEALBRIDGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MEALBRIDGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"MEALBRIDGE_GCS_BUCKET_NAME"`
	UploadURLExpiry time.Duration `envconfig:"MEALBRIDGE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"MEALBRIDGE_MAX_UPLOAD_MB" default:"20"`
}

type PubSubConfig struct {
	DonationsTopic        string `envconfig:"MEALBRIDGE_PUBSUB_DONATIONS_TOPIC" default:"mb-donation-events"`
	DonationsSubscription string `envconfig:"MEALBRIDGE_PUBSUB_DONATIONS_SUBSCRIPTION"`
}

type SMTPConfig struct {
	Host       string `envconfig:"MEALBRIDGE_SMTP_HOST"`
	Port       int    `envconfig:"MEALBRIDGE_SMTP_PORT" default:"587"`
	Email      string `envconfig:"MEALBRIDGE_SMTP_EMAIL"`
	Password   string `envconfig:"MEALBRIDGE_SMTP_PASSWORD"`
	SenderName string `envconfig:"MEALBRIDGE_SMTP_SENDER_NAME" default:"MealBridge"`
}

type NotifyConfig struct {
	FanoutRecipients int `envconfig:"MEALBRIDGE_NOTIFY_FANOUT_RECIPIENTS" default:"3"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
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
