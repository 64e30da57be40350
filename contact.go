package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/mail"
	"github.com/Zachkp/portfolio/internal/store"
)

// healthTimeFormat is ISO 8601 in UTC with milliseconds.
const healthTimeFormat = "2006-01-02T15:04:05.000Z"

// contactResponse is the JSON body of POST /api/contact.
type contactResponse struct {
	OK         bool   `json:"ok"`
	ID         string `json:"id,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"time": s.now().UTC().Format(healthTimeFormat),
	})
}

// handleSequence serves the reveal timings for the browser script.
func (s *server) handleSequence(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"frameIntervalMs": s.sequence.FrameInterval.Milliseconds(),
		"sections":        s.sequence.Manifest(),
	})
}

// handleContact accepts JSON or form-encoded submissions.
func (s *server) handleContact(c *gin.Context) {
	var req mail.Contact
	if err := c.ShouldBind(&req); err != nil {
		s.rejectContact(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.MailTimeout)
	defer cancel()

	receipt, err := s.relay.Deliver(ctx, req)
	if errors.Is(err, mail.ErrMissingField) {
		s.rejectContact(c, err)
		return
	}
	if err != nil {
		s.logger.Error("contact error", zap.Error(err))
		s.logAttempt(c, store.StatusFailed, "", err)

		msg := SendFailedText
		if !s.cfg.Production() {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, contactResponse{Error: msg})
		return
	}

	s.logAttempt(c, store.StatusSent, receipt.MessageID, nil)
	c.JSON(http.StatusOK, contactResponse{
		OK:         true,
		ID:         receipt.MessageID,
		PreviewURL: receipt.PreviewURL,
	})
}

func (s *server) rejectContact(c *gin.Context, err error) {
	s.logger.Debug("contact rejected", zap.Error(err))
	s.logAttempt(c, store.StatusRejected, "", err)
	c.JSON(http.StatusBadRequest, contactResponse{Error: MissingFieldsText})
}

func (s *server) logAttempt(c *gin.Context, status, messageID string, cause error) {
	attempt := store.ContactAttempt{
		MessageID: messageID,
		HashedIP:  s.auth.hashIP(c.ClientIP()),
		Transport: s.relay.Transport().Name(),
		Status:    status,
		CreatedAt: s.now(),
	}
	if cause != nil {
		attempt.Error = cause.Error()
	}
	if err := s.store.LogContact(c.Request.Context(), attempt); err != nil {
		s.logger.Warn("failed to write contact log", zap.Error(err))
	}
}

var previewPage = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body>
<dl>
  <dt>From</dt><dd>{{.From}}</dd>
  <dt>To</dt><dd>{{.To}}</dd>
  {{if .ReplyTo}}<dt>Reply-To</dt><dd>{{.ReplyTo}}</dd>{{end}}
  <dt>Subject</dt><dd>{{.Subject}}</dd>
  <dt>Message-ID</dt><dd>{{.MessageID}}</dd>
  <dt>Date</dt><dd>{{.Date}}</dd>
</dl>
<hr>
{{.Body}}
<hr>
<pre>{{.Text}}</pre>
</body>
</html>
`))

// handlePreview renders a message captured by the preview outbox.
func (s *server) handlePreview(c *gin.Context) {
	msg, err := s.store.OutboxByToken(c.Request.Context(), c.Param("token"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": PreviewNotFoundText})
		return
	}
	if err != nil {
		s.logger.Error("failed to load preview", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": PreviewFailedText})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err = previewPage.Execute(c.Writer, map[string]any{
		"From":      msg.From,
		"To":        msg.To,
		"ReplyTo":   msg.ReplyTo,
		"Subject":   msg.Subject,
		"MessageID": msg.MessageID,
		"Date":      msg.CreatedAt.Format(time.RFC1123Z),
		// composed by mail.Compose with every field escaped
		"Body": template.HTML(msg.HTML), //nolint:gosec
		"Text": msg.Text,
	})
	if err != nil {
		s.logger.Warn("failed to render preview", zap.Error(err))
	}
}

func (s *server) handlePrivacy(c *gin.Context) {
	c.String(http.StatusOK, PrivacyNotice)
}
