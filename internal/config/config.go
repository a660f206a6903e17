package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabasesConfig    `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Escalation   EscalationConfig   `mapstructure:"escalation"`
	Audit        AuditConfig        `mapstructure:"audit"`
	Notification NotificationConfig `mapstructure:"notification"`
	Security     SecurityConfig     `mapstructure:"security"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Main        DatabaseConfig `mapstructure:"main"`
	AutoMigrate bool           `mapstructure:"auto_migrate"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EscalationConfig holds the escalation trigger and approval policy
type EscalationConfig struct {
	RiskThreshold             float64 `mapstructure:"risk_threshold"`
	RiskMood                  string  `mapstructure:"risk_mood"`
	RequireConsentForApproval bool    `mapstructure:"require_consent_for_approval"`
	QueueLimit                int     `mapstructure:"queue_limit"`
}

// AuditConfig holds audit log configuration
type AuditConfig struct {
	PseudonymKey string `mapstructure:"pseudonym_key"`
}

// NotificationConfig selects and configures the notification channel
type NotificationConfig struct {
	Provider  string         `mapstructure:"provider"`
	Helplines []Helpline     `mapstructure:"helplines"`
	Webhook   WebhookConfig  `mapstructure:"webhook"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
}

// Helpline is a crisis line listed in every notification
type Helpline struct {
	Name    string `mapstructure:"name"`
	Contact string `mapstructure:"contact"`
}

// WebhookConfig holds the outbound SMS gateway webhook configuration
type WebhookConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Path          string        `mapstructure:"path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
}

// TelegramConfig holds the Telegram Bot API channel configuration
type TelegramConfig struct {
	BotToken    string        `mapstructure:"bot_token"`
	ChatID      int64         `mapstructure:"chat_id"`
	APIEndpoint string        `mapstructure:"api_endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Notification providers
const (
	ProviderMock     = "mock"
	ProviderWebhook  = "webhook"
	ProviderTelegram = "telegram"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	BasicAuth BasicAuthConfig `mapstructure:"basic_auth"`
}

// BasicAuthConfig holds moderator basic authentication configuration
type BasicAuthConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Users   []BasicAuthUser `mapstructure:"users"`
}

// BasicAuthUser represents a basic auth user
type BasicAuthUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables.
// Environment variables use the CARECOMPANION_ prefix with dots replaced by
// underscores, e.g. CARECOMPANION_DATABASE_MAIN_PASSWORD.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("CARECOMPANION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Notification.Helplines) == 0 {
		config.Notification.Helplines = DefaultHelplines()
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)

	v.SetDefault("database.main.type", "mysql")
	v.SetDefault("database.main.hostname", "localhost")
	v.SetDefault("database.main.port", 3306)
	v.SetDefault("database.main.user", "carecompanion")
	v.SetDefault("database.main.password", "")
	v.SetDefault("database.main.database", "carecompanion")
	v.SetDefault("database.main.max_open_conns", 25)
	v.SetDefault("database.main.max_idle_conns", 5)
	v.SetDefault("database.main.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("escalation.risk_threshold", 0.6)
	v.SetDefault("escalation.risk_mood", "risk")
	v.SetDefault("escalation.require_consent_for_approval", false)
	v.SetDefault("escalation.queue_limit", 100)

	v.SetDefault("audit.pseudonym_key", "")

	v.SetDefault("notification.provider", ProviderMock)
	v.SetDefault("notification.webhook.base_url", "")
	v.SetDefault("notification.webhook.path", "/notifications/sms")
	v.SetDefault("notification.webhook.timeout", 10*time.Second)
	v.SetDefault("notification.webhook.retry_attempts", 2)
	v.SetDefault("notification.telegram.bot_token", "")
	v.SetDefault("notification.telegram.chat_id", 0)
	v.SetDefault("notification.telegram.api_endpoint", "")
	v.SetDefault("notification.telegram.timeout", 10*time.Second)

	v.SetDefault("security.basic_auth.enabled", false)
	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization", "X-User-ID", "X-Correlation-ID"})
	v.SetDefault("cors.max_age", 86400)
}

// DefaultHelplines returns the crisis lines included when none are configured
func DefaultHelplines() []Helpline {
	return []Helpline{
		{Name: "National Suicide Prevention Lifeline", Contact: "988"},
		{Name: "Crisis Text Line", Contact: "Text HOME to 741741"},
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Main.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Main.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Escalation.RiskThreshold < 0 || config.Escalation.RiskThreshold >= 1 {
		return fmt.Errorf("escalation risk threshold must be in [0, 1): %v", config.Escalation.RiskThreshold)
	}

	if config.Escalation.RiskMood == "" {
		return fmt.Errorf("escalation risk mood is required")
	}

	if config.Escalation.QueueLimit <= 0 {
		return fmt.Errorf("escalation queue limit must be positive: %d", config.Escalation.QueueLimit)
	}

	if config.Audit.PseudonymKey == "" {
		return fmt.Errorf("audit pseudonym key is required")
	}

	switch config.Notification.Provider {
	case ProviderMock:
	case ProviderWebhook:
		if config.Notification.Webhook.BaseURL == "" {
			return fmt.Errorf("notification webhook base URL is required when provider is webhook")
		}
	case ProviderTelegram:
		if config.Notification.Telegram.BotToken == "" || config.Notification.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram bot token and chat id are required when provider is telegram")
		}
	default:
		return fmt.Errorf("unknown notification provider: %q", config.Notification.Provider)
	}

	if config.Security.BasicAuth.Enabled && len(config.Security.BasicAuth.Users) == 0 {
		return fmt.Errorf("at least one moderator account is required when basic auth is enabled")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string.
// clientFoundRows makes UPDATE report matched rows rather than changed rows.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true&clientFoundRows=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// GetURL returns the full webhook URL
func (w *WebhookConfig) GetURL() string {
	return strings.TrimRight(w.BaseURL, "/") + w.Path
}

// IsBasicAuthEnabled returns whether basic auth is enabled
func (s *SecurityConfig) IsBasicAuthEnabled() bool {
	return s.BasicAuth.Enabled
}

// Accounts returns the moderator credentials in the form gin.BasicAuth expects
func (s *SecurityConfig) Accounts() map[string]string {
	accounts := make(map[string]string, len(s.BasicAuth.Users))
	for _, user := range s.BasicAuth.Users {
		accounts[user.Username] = user.Password
	}
	return accounts
}

// ValidateUser validates basic auth credentials
func (s *SecurityConfig) ValidateUser(username, password string) bool {
	for _, user := range s.BasicAuth.Users {
		if user.Username == username && user.Password == password {
			return true
		}
	}
	return false
}
