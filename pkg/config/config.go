package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Rewards  RewardsConfig
	Event    EventConfig
	PubSub   PubSubConfig
	GCP      GCPConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"SOUVENIR_APP_ENV" required:"true"`
	Port         string `envconfig:"SOUVENIR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOUVENIR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUVENIR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOUVENIR_DB_DSN"`
	Driver string `envconfig:"SOUVENIR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOUVENIR_DB_HOST"`
	LegacyPort     int    `envconfig:"SOUVENIR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOUVENIR_DB_USER"`
	LegacyPassword string `envconfig:"SOUVENIR_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOUVENIR_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOUVENIR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOUVENIR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUVENIR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUVENIR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUVENIR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOUVENIR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOUVENIR_REDIS_ADDR"`
	Password     string        `envconfig:"SOUVENIR_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUVENIR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUVENIR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUVENIR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUVENIR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUVENIR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUVENIR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SOUVENIR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SOUVENIR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SOUVENIR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SOUVENIR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SOUVENIR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SOUVENIR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SOUVENIR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SOUVENIR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SOUVENIR_ARGON_KEY_LEN" default:"32"`
}

type RewardsConfig struct {
	SignupBonusPoints  int           `envconfig:"SOUVENIR_REWARDS_SIGNUP_BONUS_POINTS" default:"1000"`
	SignupBonusCoupons int           `envconfig:"SOUVENIR_REWARDS_SIGNUP_BONUS_COUPONS" default:"1"`
	EarnRateBps        int           `envconfig:"SOUVENIR_REWARDS_EARN_RATE_BPS" default:"600"`
	PurchaseTokenTTL   time.Duration `envconfig:"SOUVENIR_REWARDS_PURCHASE_TOKEN_TTL" default:"24h"`
	CreditMarkerTTL    time.Duration `envconfig:"SOUVENIR_REWARDS_CREDIT_MARKER_TTL" default:"720h"`
	CouponValidity     time.Duration `envconfig:"SOUVENIR_REWARDS_COUPON_VALIDITY" default:"2160h"`
}

type EventConfig struct {
	// WinRate is the prize-draw win probability in [0,1].
	WinRate float64 `envconfig:"SOUVENIR_EVENT_WIN_RATE" default:"0.5"`
}

type PubSubConfig struct {
	CartTopic   string `envconfig:"SOUVENIR_PUBSUB_CART_TOPIC" default:"souvenir-cart-events"`
	OrdersTopic string `envconfig:"SOUVENIR_PUBSUB_ORDERS_TOPIC" default:"souvenir-order-events"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SOUVENIR_GCP_PROJECT_ID"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"SOUVENIR_AUTO_MIGRATE" default:"false"`
	PublishEvents bool `envconfig:"SOUVENIR_PUBLISH_EVENTS" default:"false"`
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
