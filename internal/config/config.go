package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	EnvProduction = "production"

	AdvisorLocal  = "local"
	AdvisorRemote = "remote"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type (
	Container struct {
		App      *App
		HTTP     *HTTP
		Mongo    *Mongo
		Token    *Token
		Advisor  *Advisor
		Redis    *Redis
		MQTT     *MQTT
		Notifier *Notifier
	}

	App struct {
		Env      string
		LogLevel string
	}

	HTTP struct {
		Port               string
		AdvisoryRateLimit  int
		AdvisoryRateWindow time.Duration
	}

	Mongo struct {
		URI      string
		Database string
	}

	Token struct {
		Secret string
		Expiry time.Duration
	}

	Advisor struct {
		Mode     string
		URL      string
		APIKey   string
		Timeout  time.Duration
		CacheTTL time.Duration
	}

	Redis struct {
		Address  string
		Password string
	}

	MQTT struct {
		Broker   string
		ClientID string
		Username string
		Password string
	}

	Notifier struct {
		Interval time.Duration
	}
)

// New loads .env outside production and reads the environment. Unset
// variables take their defaults; malformed ones are an error.
func New() (*Container, error) {
	env := getEnv("APP_ENV", "development")
	if env != EnvProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := getDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	integer := func(key string, def int) int {
		n, err := getInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	c := &Container{
		App: &App{
			Env:      env,
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		HTTP: &HTTP{
			Port:               getEnv("PORT", "8080"),
			AdvisoryRateLimit:  integer("ADVISORY_RATE_LIMIT", 10),
			AdvisoryRateWindow: duration("ADVISORY_RATE_WINDOW", time.Minute),
		},
		Mongo: &Mongo{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "ridelog"),
		},
		Token: &Token{
			Secret: os.Getenv("JWT_SECRET"),
			Expiry: duration("JWT_EXPIRY", 24*time.Hour),
		},
		Advisor: &Advisor{
			Mode:     getEnv("ADVISOR_MODE", AdvisorLocal),
			URL:      os.Getenv("ADVISOR_URL"),
			APIKey:   os.Getenv("ADVISOR_API_KEY"),
			Timeout:  duration("ADVISOR_TIMEOUT", 30*time.Second),
			CacheTTL: duration("ADVISORY_CACHE_TTL", 6*time.Hour),
		},
		Redis: &Redis{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		MQTT: &MQTT{
			Broker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID: getEnv("MQTT_CLIENT_ID", "ridelog-notifier"),
			Username: os.Getenv("MQTT_USERNAME"),
			Password: os.Getenv("MQTT_PASSWORD"),
		},
		Notifier: &Notifier{
			Interval: duration("NOTIFY_INTERVAL", time.Hour),
		},
	}

	errs = append(errs, c.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return c, nil
}

func (c *Container) validate() []error {
	var errs []error
	switch c.Advisor.Mode {
	case AdvisorLocal:
	case AdvisorRemote:
		if c.Advisor.URL == "" {
			errs = append(errs, errors.New("ADVISOR_URL is required in remote mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("ADVISOR_MODE must be %q or %q, got %q", AdvisorLocal, AdvisorRemote, c.Advisor.Mode))
	}
	if c.App.Env == EnvProduction && c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.HTTP.AdvisoryRateLimit < 1 {
		errs = append(errs, errors.New("ADVISORY_RATE_LIMIT must be at least 1"))
	}
	if _, err := log.ParseLevel(c.App.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errs
}

// ConfigureLogging sets the logrus level, and JSON output in production.
func (a *App) ConfigureLogging() {
	if a.Env == EnvProduction {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(a.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// CacheEnabled reports whether advisories should be cached in redis.
func (r *Redis) CacheEnabled() bool {
	return r.Address != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
