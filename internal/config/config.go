package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	ServiceName string        `mapstructure:"service_name"`
	Server      ServerConfig  `mapstructure:"server"`
	SMTP        SMTPConfig    `mapstructure:"smtp"`
	Kafka       KafkaConfig   `mapstructure:"kafka"`
	History     HistoryConfig `mapstructure:"history"`
	Monitor     MonitorConfig `mapstructure:"monitor"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SMTPConfig holds outbound mail transport configuration
type SMTPConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	FromEmail          string        `mapstructure:"from_email"`
	FromName           string        `mapstructure:"from_name"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	SubmitTimeout      time.Duration `mapstructure:"submit_timeout"`
}

// KafkaConfig holds message broker configuration. An empty broker
// address disables the queue integration entirely.
type KafkaConfig struct {
	Broker      string        `mapstructure:"broker"`
	Topic       string        `mapstructure:"topic"`
	GroupID     string        `mapstructure:"group_id"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// HistoryConfig holds history store configuration
type HistoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// MonitorConfig holds the periodic upkeep job configuration
type MonitorConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// The sender address falls back to the SMTP user when unset
	if config.SMTP.FromEmail == "" {
		config.SMTP.FromEmail = config.SMTP.User
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("service_name", "email-dispatch-go")

	viper.SetDefault("server.port", "8003")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from_name", "Colabora App")
	viper.SetDefault("smtp.insecure_skip_verify", false)
	viper.SetDefault("smtp.submit_timeout", "30s")

	viper.SetDefault("kafka.broker", "localhost:9092")
	viper.SetDefault("kafka.topic", "emails")
	viper.SetDefault("kafka.group_id", "email-service-group")
	viper.SetDefault("kafka.dial_timeout", "15s")

	viper.SetDefault("history.max_entries", 1000)

	viper.SetDefault("monitor.interval_minutes", 5)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	viper.BindEnv("service_name", "SERVICE_NAME")

	// Server
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// SMTP
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.user", "SMTP_USER")
	viper.BindEnv("smtp.password", "SMTP_PASS")
	viper.BindEnv("smtp.from_email", "SMTP_FROM_EMAIL")
	viper.BindEnv("smtp.from_name", "SMTP_FROM_NAME")
	viper.BindEnv("smtp.insecure_skip_verify", "SMTP_INSECURE_SKIP_VERIFY")
	viper.BindEnv("smtp.submit_timeout", "SMTP_SUBMIT_TIMEOUT")

	// Kafka
	viper.BindEnv("kafka.broker", "KAFKA_BROKER")
	viper.BindEnv("kafka.topic", "KAFKA_EMAIL_TOPIC")
	viper.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	viper.BindEnv("kafka.dial_timeout", "KAFKA_DIAL_TIMEOUT")

	// History
	viper.BindEnv("history.max_entries", "HISTORY_MAX_ENTRIES")

	// Monitor
	viper.BindEnv("monitor.interval_minutes", "MONITOR_INTERVAL_MINUTES")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
		return fmt.Errorf("smtp host and port are required")
	}

	if c.SMTP.FromEmail == "" {
		return fmt.Errorf("smtp from_email (or user) is required")
	}

	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history max_entries must not be negative")
	}

	if c.Monitor.IntervalMinutes <= 0 {
		return fmt.Errorf("monitor interval must be greater than 0")
	}

	return nil
}
