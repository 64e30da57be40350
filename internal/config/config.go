// Package config reads the server configuration from the environment.
//
// Every setting has a development default so the site runs with no
// environment at all: mail goes to the preview outbox, the admin account
// uses admin/admin123 and the database lives under the XDG data home.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	AppName = "portfolio"

	DefaultPort      = 3000
	DefaultPublicDir = "public"
	DefaultSMTPPort  = 587

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"

	// DefaultRetention keeps visitor rows for twelve months.
	DefaultRetention = 365 * 24 * time.Hour

	DefaultSweepInterval   = 24 * time.Hour
	DefaultMailTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// SMTP holds outgoing mail server settings.
type SMTP struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Secure bool
}

// Configured reports whether host and credentials are all present.
func (s SMTP) Configured() bool {
	return s.Host != "" && s.User != "" && s.Pass != ""
}

// Admin holds the dashboard credentials.
type Admin struct {
	Username string
	Password string
}

// Config is the full server configuration.
type Config struct {
	// Env is APP_ENV; "production" hides internal errors from clients.
	Env string

	Port      int
	PublicURL string
	PublicDir string
	DBPath    string

	// SequenceConfig is an optional YAML file overriding the reveal timings.
	SequenceConfig string

	SMTP      SMTP
	ContactTo string
	Admin     Admin

	// IPSalt is mixed into visitor IP hashes; empty means a random salt per run.
	IPSalt string

	Retention       time.Duration
	SweepInterval   time.Duration
	MailTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Sender is the envelope address relayed mail is sent from.
func (c *Config) Sender() string {
	return c.SMTP.User
}

// Recipient is the inbox notifications go to.
func (c *Config) Recipient() string {
	if c.ContactTo != "" {
		return c.ContactTo
	}
	return c.SMTP.User
}

// DefaultDBPath returns the database location under the XDG data home.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "portfolio.db")
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return FromLookup(os.Getenv)
}

// FromLookup reads the configuration through getenv.
func FromLookup(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Env:            get("APP_ENV", get("NODE_ENV", "development")),
		PublicURL:      get("PUBLIC_URL", ""),
		PublicDir:      get("PUBLIC_DIR", DefaultPublicDir),
		DBPath:         get("DB_PATH", DefaultDBPath()),
		SequenceConfig: get("SEQUENCE_CONFIG", ""),
		SMTP: SMTP{
			Host: get("SMTP_HOST", ""),
			User: get("SMTP_USER", ""),
			Pass: getenv("SMTP_PASS"),
		},
		ContactTo: get("CONTACT_TO", ""),
		Admin: Admin{
			Username: get("ADMIN_USERNAME", DefaultAdminUsername),
			Password: get("ADMIN_PASSWORD", DefaultAdminPassword),
		},
		IPSalt: getenv("IP_HASH_SALT"),
	}

	var err error
	if cfg.Port, err = intValue(get("PORT", ""), DefaultPort); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	if cfg.SMTP.Port, err = intValue(get("SMTP_PORT", ""), DefaultSMTPPort); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}
	cfg.SMTP.Secure = get("SMTP_SECURE", "") == "true"

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"VISITOR_RETENTION", &cfg.Retention, DefaultRetention},
		{"RETENTION_SWEEP_INTERVAL", &cfg.SweepInterval, DefaultSweepInterval},
		{"MAIL_TIMEOUT", &cfg.MailTimeout, DefaultMailTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout, DefaultShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = durationValue(get(d.key, ""), d.def); err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return ErrInvalidSMTPPort
	}
	if c.Retention <= 0 {
		return ErrInvalidRetention
	}
	if c.SweepInterval <= 0 || c.MailTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PublicDir == "" {
		return ErrNoPublicDir
	}
	if c.Production() && c.Admin.Password == DefaultAdminPassword {
		return ErrDefaultAdminPassword
	}
	return nil
}

func intValue(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// durationValue parses Go durations and also accepts a day suffix ("365d").
func durationValue(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
