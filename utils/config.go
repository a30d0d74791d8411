package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings read from the environment (and .env)
type Config struct {
	Env      string
	Port     string
	LogLevel string

	MongoURI      string
	MongoDatabase string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	MailProvider     string
	PostmarkAPIToken string
	SendgridAPIKey   string
	EmailSender      string

	AdminEmail    string
	AdminPassword string
}

const (
	MailProviderNone     = "none"
	MailProviderPostmark = "postmark"
	MailProviderSendgrid = "sendgrid"
)

// LoadConfig reads the configuration from environment variables. godotenv is
// expected to have populated the environment already.
func LoadConfig() Config {
	return Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "ecommerce"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		MailProvider:     strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderNone)),
		PostmarkAPIToken: os.Getenv("POSTMARK_API_TOKEN"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailSender:      os.Getenv("EMAIL_SENDER"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// IsDevelopment reports whether the app runs locally
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET must be set outside development"))
	}
	switch c.MailProvider {
	case MailProviderNone:
	case MailProviderPostmark:
		if c.PostmarkAPIToken == "" {
			errs = append(errs, errors.New("POSTMARK_API_TOKEN is required for the postmark provider"))
		}
	case MailProviderSendgrid:
		if c.SendgridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
