package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidPort is returned when PORT is not a TCP port number.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")

	// ErrInvalidSMTPPort is returned when SMTP_PORT is not a TCP port number.
	ErrInvalidSMTPPort = errors.New("invalid smtp port: must be between 1 and 65535")

	// ErrInvalidRetention is returned when the visitor retention is not positive.
	ErrInvalidRetention = errors.New("invalid visitor retention: must be positive")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrDefaultAdminPassword is returned in production when the admin
	// password was left at its development default.
	ErrDefaultAdminPassword = errors.New("ADMIN_PASSWORD must be set in production")

	// ErrNoPublicDir is returned when PUBLIC_DIR is empty.
	ErrNoPublicDir = errors.New("public directory not set")
)
