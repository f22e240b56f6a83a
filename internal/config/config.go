// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Mail drivers.
const (
	MailConsole = "console"
	MailGmail   = "gmail"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Broker   BrokerConfig   `envconfig:"MQ"`
	Mail     MailConfig     `envconfig:"MAIL"`
	Media    MediaConfig    `envconfig:"MEDIA"`
	Tracing  TracingConfig  `envconfig:"OTEL"`
	App      AppConfig      `envconfig:"APP"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `split_words:"true" default:"15s"`
	IdleTimeout     time.Duration `split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	// AuthRateLimit is the number of login/register calls allowed per
	// client IP per minute.
	AuthRateLimit int `envconfig:"RATE_LIMIT_AUTH" default:"10"`
}

// DatabaseConfig selects and configures the store.
type DatabaseConfig struct {
	Driver     string `default:"postgres"`
	Host       string `default:"localhost"`
	Port       int    `default:"5432"`
	User       string `default:"jobboard"`
	Password   string `default:"jobboard"`
	Name       string `default:"jobboard"`
	SSLMode    string `envconfig:"SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"jobboard.db"`
	MongoURI   string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB    string `envconfig:"MONGO_DATABASE" default:"jobboard"`
	MaxRetries int    `split_words:"true" default:"10"`
	Debug      bool   `default:"false"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected
// by golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL     time.Duration `envconfig:"JWT_TTL" default:"168h"`
	RoleCacheTTL time.Duration `envconfig:"ROLE_CACHE_TTL" default:"1m"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`
}

// BrokerConfig holds RabbitMQ settings. An empty URL delivers
// notifications in-process instead.
type BrokerConfig struct {
	URL       string   `envconfig:"RABBIT_URL"`
	Exchange  string   `default:"jobboard.events"`
	Queue     string   `default:"notification.q"`
	Bindings  []string `default:"application.*,job.*"`
	Prefetch  int      `default:"16"`
	DLX       string   `default:"notification.dlx"`
	DLQ       string   `default:"notification.q.dlq"`
	QueueSize int      `split_words:"true" default:"256"`
}

// MailConfig selects the mailer.
type MailConfig struct {
	Driver      string        `default:"console"`
	From        string        `default:"SkillBridge <no-reply@skillbridge.local>"`
	SendTimeout time.Duration `split_words:"true" default:"10s"`

	GmailClientID     string `envconfig:"GMAIL_CLIENT_ID"`
	GmailClientSecret string `envconfig:"GMAIL_CLIENT_SECRET"`
	GmailRefreshToken string `envconfig:"GMAIL_REFRESH_TOKEN"`
}

// MediaConfig holds the hosted media store settings.
type MediaConfig struct {
	CloudinaryURL  string `envconfig:"CLOUDINARY_URL"`
	MaxUploadBytes int64  `split_words:"true" default:"10485760"`
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool   `default:"false"`
	Endpoint    string `envconfig:"EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName string `split_words:"true" default:"jobboard-api"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env        string `default:"development"`
	Migrations bool   `envconfig:"MIGRATIONS" default:"false"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unknown driver %q", c.Database.Driver))
	}
	switch c.Mail.Driver {
	case MailConsole:
	case MailGmail:
		if c.Mail.GmailClientID == "" || c.Mail.GmailClientSecret == "" || c.Mail.GmailRefreshToken == "" {
			errs = append(errs, errors.New("MAIL_DRIVER=gmail needs GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_DRIVER: unknown driver %q", c.Mail.Driver))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Broker.QueueSize <= 0 {
		errs = append(errs, errors.New("MQ_QUEUE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// Dev reports whether the app runs in development mode.
func (c *Config) Dev() bool {
	return c.App.Env == "development"
}
