package config

import (
	"fmt"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/kipsang/customer-orders-api/pkg/logger"
	"github.com/pkg/errors"
)

// Config holds every environment-driven setting the process reads. No other
// code should reach for os.Getenv directly.
type Config struct {
	AppEnv     string `env:"APP_ENV,default=dev"`
	Port       string `env:"PORT,default=8080"`
	SecretKey  string `env:"APP_SECRET_KEY,default=dev-secret-key"`
	AuthPolicy string `env:"AUTH_POLICY,default=redirect"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST,default=localhost"`
	DBPort      string `env:"DB_PORT,default=5432"`
	DBUser      string `env:"DB_USER,default=orders"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME,default=orders"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	OIDCProviderURL    string `env:"OIDC_PROVIDER_URL,default=https://accounts.google.com"`
	OAuthRedirectURL   string `env:"OAUTH_REDIRECT_URL"`
	JWTSecret          string `env:"JWT_SECRET,default=dev-secret-key"`

	ATUsername string `env:"AFRICAS_TALKING_USERNAME"`
	ATAPIKey   string `env:"AFRICAS_TALKING_API_KEY"`
	ATSenderID string `env:"AFRICAS_TALKING_SENDER_ID"`
}

// Load reads .env when present, then maps the environment onto a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return nil, errors.Wrap(err, "failed to map env variables to config")
	}
	return c, nil
}

// DSN returns the application database connection string. DATABASE_URL wins
// when set (hosted deployments provide it whole).
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// AdminDSN points at the server's maintenance database, used only to create
// the application database on first boot.
func (c *Config) AdminDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=postgres port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBPort)
}
