package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	EncryptionKey                    string `mapstructure:"ENCRYPTION_KEY"` // Base64 encoded, 32 bytes
	ClientURL                        string `mapstructure:"CLIENT_URL"`     // comma-separated origins, "*" for any
	Timezone                         string `mapstructure:"TIMEZONE"`       // IANA zone used to bucket emotion records by date

	GroqAPIKey      string `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL     string `mapstructure:"GROQ_BASE_URL"`
	GroqModel       string `mapstructure:"GROQ_MODEL"`
	ChatHistorySize int    `mapstructure:"CHAT_HISTORY_SIZE"`
	ChatRateLimit   int    `mapstructure:"CHAT_RATE_LIMIT"` // messages per minute per user

	GooglePlacesAPIKey  string        `mapstructure:"GOOGLE_PLACES_API_KEY"`
	GooglePlacesBaseURL string        `mapstructure:"GOOGLE_PLACES_BASE_URL"`
	PlacesCacheTTL      time.Duration `mapstructure:"PLACES_CACHE_TTL"`

	CloudinaryURL    string `mapstructure:"CLOUDINARY_URL"`
	CloudinaryFolder string `mapstructure:"CLOUDINARY_FOLDER"`

	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	NotificationsQueue string `mapstructure:"NOTIFICATIONS_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
}

var envKeys = []string{
	"PORT", "GIN_MODE", "FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "ENCRYPTION_KEY", "CLIENT_URL", "TIMEZONE",
	"GROQ_API_KEY", "GROQ_BASE_URL", "GROQ_MODEL", "CHAT_HISTORY_SIZE", "CHAT_RATE_LIMIT",
	"GOOGLE_PLACES_API_KEY", "GOOGLE_PLACES_BASE_URL", "PLACES_CACHE_TTL",
	"CLOUDINARY_URL", "CLOUDINARY_FOLDER",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"RABBITMQ_URL", "NOTIFICATIONS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "MAIL_SENDER",
}

var appConfig *Config

// LoadConfig loads the API server configuration from environment variables using Viper.
// When CONFIG_FILE points to a YAML (or any viper-supported) file its keys are
// read first and environment variables override them.
func LoadConfig() (*Config, error) {
	return loadValidated((*Config).Validate)
}

// LoadNotifierConfig loads the configuration of the notification worker.
func LoadNotifierConfig() (*Config, error) {
	return loadValidated((*Config).ValidateNotifier)
}

func loadValidated(validate func(*Config) error) (*Config, error) {
	v := viper.New()
	if err := load(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, errors.New("invalid TIMEZONE: " + err.Error())
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

func load(v *viper.Viper) error {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CLIENT_URL", "*")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("GROQ_MODEL", "llama-3.1-8b-instant")
	v.SetDefault("CHAT_HISTORY_SIZE", 20)
	v.SetDefault("CHAT_RATE_LIMIT", 20)
	v.SetDefault("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("PLACES_CACHE_TTL", "10m")
	v.SetDefault("CLOUDINARY_FOLDER", "tranki/avatars")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NOTIFICATIONS_QUEUE", "tranki.social")
	v.SetDefault("SMTP_PORT", "587")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	_ = v.BindEnv("CONFIG_FILE")
	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.New("failed to read config file: " + err.Error())
		}
	}
	return nil
}

// Validate checks the fields the API server cannot start without.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if c.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is required")
	}
	if c.GroqAPIKey == "" {
		return errors.New("GROQ_API_KEY is required")
	}
	if c.GooglePlacesAPIKey == "" {
		return errors.New("GOOGLE_PLACES_API_KEY is required")
	}
	if c.CloudinaryURL == "" {
		return errors.New("CLOUDINARY_URL is required")
	}
	if c.ChatHistorySize <= 0 {
		return errors.New("CHAT_HISTORY_SIZE must be positive")
	}
	return nil
}

// ValidateNotifier checks the fields the notification worker needs.
func (c *Config) ValidateNotifier() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}
	if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPassword == "" || c.MailSender == "" {
		return errors.New("SMTP_HOST, SMTP_USER, SMTP_PASSWORD and MAIL_SENDER are required")
	}
	return nil
}

// Location returns the configured time zone, UTC when unset.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits ClientURL into origins.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
