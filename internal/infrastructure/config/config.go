package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "coursepay/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	Paystack  sharedConfig.PaystackConfig  `mapstructure:"paystack"`
	Enrolment sharedConfig.EnrolmentConfig `mapstructure:"enrolment"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("COURSEPAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "coursepay_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "noreply@coursepay.local")
	viper.SetDefault("email.from_name", "CoursePay")

	// Paystack defaults (keys empty by default, must be configured)
	viper.SetDefault("paystack.live_mode", false)
	viper.SetDefault("paystack.live_secret_key", "")
	viper.SetDefault("paystack.live_public_key", "")
	viper.SetDefault("paystack.test_secret_key", "")
	viper.SetDefault("paystack.test_public_key", "")
	viper.SetDefault("paystack.base_url", "https://api.paystack.co")
	viper.SetDefault("paystack.tracker_url", "https://plugin-tracker.paystackintegrations.com/log/charge_success")
	viper.SetDefault("paystack.timeout_seconds", 15)

	// Enrolment defaults
	viper.SetDefault("enrolment.mail_students", true)
	viper.SetDefault("enrolment.mail_teachers", false)
	viper.SetDefault("enrolment.mail_admins", false)
	viper.SetDefault("enrolment.success_url", "http://localhost:8080/courses")
	viper.SetDefault("enrolment.failure_url", "http://localhost:8080/payment-failed")
	viper.SetDefault("enrolment.reference_length", 25)
}
