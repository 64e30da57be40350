// Package mail turns contact form submissions into messages and delivers
// them through an SMTP server or the local preview outbox.
package mail

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is returned when a submission lacks a required field.
	ErrMissingField = errors.New("all fields are required")
	// ErrNotConfigured is returned when a transport lacks its settings.
	ErrNotConfigured = errors.New("transport not configured")
	// ErrVerify wraps transport verification failures.
	ErrVerify = errors.New("transport verification failed")
)

// Contact is one submission of the contact form.
type Contact struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email" binding:"required"`
	Subject string `json:"subject" form:"subject" binding:"required"`
	Message string `json:"message" form:"message" binding:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
}

// Validate reports the first empty field.
func (c Contact) Validate() error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"subject", c.Subject},
		{"message", c.Message},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s is empty", ErrMissingField, f.name)
		}
	}
	return nil
}
