package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/form"
)

func client(cmd *cobra.Command) *form.Client {
	base, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return form.NewClient(base, timeout)
}

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Call /api/health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := client(cmd).Health(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "health ok (server time %s)\n", ts)
			return err
		},
	}
}

// printAlerter writes each alert as its own line.
type printAlerter struct{ w io.Writer }

func (p printAlerter) Alert(msg string) { _, _ = fmt.Fprintln(p.w, msg) }

// NewSendCmd creates the send command.
func NewSendCmd() *cobra.Command {
	var name, email, subject, message string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a message through the contact form",
		Long: `Submit one message to /api/contact the way the page's form does and
print the outcome. The defaults send a recognisable test message; on a server
without SMTP the reply includes a preview link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			out := cmd.OutOrStdout()
			fields := []form.Field{
				form.NewInput("name", name),
				form.NewInput("email", email),
				form.NewInput("subject", subject),
				form.NewInput("message", message),
			}
			f := form.NewContactForm(fields, form.NewSubmitButton("Send"), client(cmd), printAlerter{w: out}, logger)

			start := time.Now()
			res, err := f.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "message id: %s (%s)\n", res.ID, time.Since(start).Round(time.Millisecond))
			if preview := res.PreviewURL; preview != "" {
				if strings.HasPrefix(preview, "/") {
					base, _ := cmd.Flags().GetString("url")
					preview = strings.TrimRight(base, "/") + preview
				}
				fmt.Fprintf(out, "preview: %s\n", preview)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "Test User", "sender name")
	f.StringVar(&email, "email", "test@example.com", "sender email")
	f.StringVar(&subject, "subject", "Backend Test", "message subject")
	f.StringVar(&message, "message", "This is a test message from contactctl.", "message body")
	return cmd
}
