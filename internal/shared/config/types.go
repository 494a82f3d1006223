package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type EmailConfig struct {
	SMTPHost     string   `mapstructure:"smtp_host"`
	SMTPPort     int      `mapstructure:"smtp_port"`
	SMTPUser     string   `mapstructure:"smtp_user"`
	SMTPPassword string   `mapstructure:"smtp_password"`
	FromAddress  string   `mapstructure:"from_address"`
	FromName     string   `mapstructure:"from_name"`
	AdminAddrs   []string `mapstructure:"admin_addrs"`
}

// PaystackConfig carries both key pairs; the live-mode flag selects which
// pair is active. Keys are resolved once at construction time and injected
// into the gateway client, never read from ambient state.
type PaystackConfig struct {
	LiveMode       bool   `mapstructure:"live_mode"`
	LiveSecretKey  string `mapstructure:"live_secret_key"`
	LivePublicKey  string `mapstructure:"live_public_key"`
	TestSecretKey  string `mapstructure:"test_secret_key"`
	TestPublicKey  string `mapstructure:"test_public_key"`
	BaseURL        string `mapstructure:"base_url"`
	TrackerURL     string `mapstructure:"tracker_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SecretKey returns the secret key for the configured mode.
func (p *PaystackConfig) SecretKey() string {
	if p.LiveMode {
		return p.LiveSecretKey
	}
	return p.TestSecretKey
}

// PublicKey returns the public key for the configured mode.
func (p *PaystackConfig) PublicKey() string {
	if p.LiveMode {
		return p.LivePublicKey
	}
	return p.TestPublicKey
}

type EnrolmentConfig struct {
	MailStudents    bool   `mapstructure:"mail_students"`
	MailTeachers    bool   `mapstructure:"mail_teachers"`
	MailAdmins      bool   `mapstructure:"mail_admins"`
	SuccessURL      string `mapstructure:"success_url"`
	FailureURL      string `mapstructure:"failure_url"`
	ReferenceLength int    `mapstructure:"reference_length"`
}
