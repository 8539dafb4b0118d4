package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	Mail      MailConfig      `mapstructure:"mail"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// APIConfig holds REST API server configuration.
type APIConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	PoolMin        int32         `mapstructure:"pool_min"`
	PoolMax        int32         `mapstructure:"pool_max"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds Redis connection configuration. An empty Addr disables
// Redis-backed rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// AuthConfig holds token signing and throttling configuration.
type AuthConfig struct {
	SigningKey           string        `mapstructure:"signing_key"`
	TokenExpiry          time.Duration `mapstructure:"token_expiry"`
	Issuer               string        `mapstructure:"issuer"`
	Audience             string        `mapstructure:"audience"`
	LoginAttemptsLimit   int           `mapstructure:"login_attempts_limit"`
	LoginLockoutDuration time.Duration `mapstructure:"login_lockout_duration"`
	PublishLimit         int           `mapstructure:"publish_limit"`
	PublishWindow        time.Duration `mapstructure:"publish_window"`
}

// AssetsConfig selects and configures the image store.
type AssetsConfig struct {
	Type          string `mapstructure:"type"`
	Folder        string `mapstructure:"folder"`
	LocalPath     string `mapstructure:"local_path"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3Endpoint    string `mapstructure:"s3_endpoint"`
	S3Prefix      string `mapstructure:"s3_prefix"`
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Provider        string        `mapstructure:"provider"`
	From            string        `mapstructure:"from"`
	FromName        string        `mapstructure:"from_name"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	SMTPHost        string        `mapstructure:"smtp_host"`
	SMTPPort        int           `mapstructure:"smtp_port"`
	SMTPUsername    string        `mapstructure:"smtp_username"`
	SMTPPassword    string        `mapstructure:"smtp_password"`
	SMTPSecurity    string        `mapstructure:"smtp_security"`
	APIKey          string        `mapstructure:"api_key"`
	Endpoint        string        `mapstructure:"endpoint"`
	OutputDir       string        `mapstructure:"output_dir"`
}

// BroadcastConfig bounds the per-publish delivery fan-out.
type BroadcastConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
}

// BootstrapConfig holds the initial admin account seeded on startup.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory.
// Environment variables with prefix NEWSLETTER_ override file values.
// For example, NEWSLETTER_DATABASE_URL overrides database.url.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("NEWSLETTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.deriveAssetURL()

	return &cfg, nil
}

// deriveAssetURL points locally stored images at the API's own /uploads
// route when no public base URL is configured. Newsletter emails embed the
// URL, so it must be absolute.
func (c *Config) deriveAssetURL() {
	if c.Assets.Type != "local" || c.Assets.PublicBaseURL != "" {
		return
	}
	host := c.API.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	c.Assets.PublicBaseURL = "http://" + net.JoinHostPort(host, strconv.Itoa(c.API.Port)) + "/uploads"
}

// setDefaults registers fallback values. Registering every key also lets
// AutomaticEnv resolve overrides for keys absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 30*time.Second)
	v.SetDefault("api.write_timeout", 5*time.Minute)
	v.SetDefault("api.max_upload_size", 10<<20)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.pool_min", 2)
	v.SetDefault("database.pool_max", 10)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_expiry", time.Hour)
	v.SetDefault("auth.issuer", "newsletter")
	v.SetDefault("auth.audience", "newsletter-api")
	v.SetDefault("auth.login_attempts_limit", 5)
	v.SetDefault("auth.login_lockout_duration", 15*time.Minute)
	v.SetDefault("auth.publish_limit", 20)
	v.SetDefault("auth.publish_window", time.Hour)

	v.SetDefault("assets.type", "local")
	v.SetDefault("assets.folder", "newsletters")
	v.SetDefault("assets.local_path", "./uploads")
	v.SetDefault("assets.public_base_url", "")
	v.SetDefault("assets.s3_bucket", "")
	v.SetDefault("assets.s3_region", "")
	v.SetDefault("assets.s3_endpoint", "")
	v.SetDefault("assets.s3_prefix", "")

	v.SetDefault("mail.provider", "stdout")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.from_name", "")
	v.SetDefault("mail.timeout", 30*time.Second)
	v.SetDefault("mail.region", "")
	v.SetDefault("mail.access_key_id", "")
	v.SetDefault("mail.secret_access_key", "")
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.smtp_username", "")
	v.SetDefault("mail.smtp_password", "")
	v.SetDefault("mail.smtp_security", "")
	v.SetDefault("mail.api_key", "")
	v.SetDefault("mail.endpoint", "")
	v.SetDefault("mail.output_dir", "./mail_output")

	v.SetDefault("broadcast.concurrency", 16)
	v.SetDefault("broadcast.delivery_timeout", 30*time.Second)

	v.SetDefault("bootstrap.admin_username", "admin")
	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_password", "")
}
