package main

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/form"
	"github.com/Zachkp/portfolio/internal/mail"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, env map[string]string) *server {
	t.Helper()

	vars := map[string]string{
		"DB_PATH":      filepath.Join(t.TempDir(), "portfolio.db"),
		"IP_HASH_SALT": "test-salt",
	}
	maps.Copy(vars, env)
	cfg, err := config.FromLookup(func(key string) string { return vars[key] })
	require.NoError(t, err)

	st, err := store.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return newServer(cfg, st, reveal.DefaultConfig(), zaptest.NewLogger(t))
}

type failingTransport struct{ err error }

func (f failingTransport) Name() string { return "failing" }
func (f failingTransport) Verify(context.Context) error { return f.err }
func (f failingTransport) Send(context.Context, *mail.Message) (mail.Receipt, error) {
	return mail.Receipt{}, errors.New("unreachable")
}

func serveRequest(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	s.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 7_000_000, time.UTC) }

	rec := serveRequest(t, s.router(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "2026-02-03T04:05:06.007Z", body["time"])
}

func TestContactMissingField(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	r := s.router()

	tests := []struct {
		name string
		body string
	}{
		{"no subject", `{"name":"Ada","email":"ada@example.com","message":"hi"}`},
		{"empty name", `{"name":"","email":"ada@example.com","subject":"s","message":"hi"}`},
		{"blank message", `{"name":"Ada","email":"ada@example.com","subject":"s","message":"   "}`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		rec := serveRequest(t, r, jsonRequest(http.MethodPost, "/api/contact", tt.body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
		assert.JSONEq(t, `{"ok":false,"error":"All fields are required."}`, rec.Body.String(), tt.name)
	}

	ctx := context.Background()
	stats, err := s.store.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(len(tests)), stats.ContactRejected)
	assert.Zero(t, stats.OutboxMessages)
}

func TestContactPreviewFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	r := s.router()

	form := url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"subject": {"Hello"},
		"message": {`<script>alert(1)</script>`},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serveRequest(t, r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["id"])
	previewURL, _ := body["previewUrl"].(string)
	require.True(t, strings.HasPrefix(previewURL, "/preview/"), previewURL)

	rec = serveRequest(t, r, httptest.NewRequest(http.MethodGet, previewURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	page := rec.Body.String()
	assert.Contains(t, page, "New message from Ada: Hello")
	assert.NotContains(t, page, "<script>alert(1)</script>")

	attempts, err := s.store.ContactLog(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, store.StatusSent, attempts[0].Status)
	assert.Equal(t, "preview", attempts[0].Transport)
	assert.Equal(t, body["id"], attempts[0].MessageID)
	assert.Equal(t, s.auth.hashIP("203.0.113.7"), attempts[0].HashedIP)
}

func TestContactJSONSuccess(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	rec := serveRequest(t, s.router(), jsonRequest(http.MethodPost, "/api/contact",
		`{"name":"Test User","email":"test@example.com","subject":"Backend Test","message":"This is a test."}`))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Contains(t, body, "previewUrl")
}

type alerts []string

func (a *alerts) Alert(msg string) { *a = append(*a, msg) }

func TestContactFormAgainstServer(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.router())
	defer srv.Close()

	name := form.NewInput("name", "Test User")
	email := form.NewInput("email", "test@example.com")
	subject := form.NewInput("subject", "Backend Test")
	message := form.NewInput("message", "This is a test message.")
	btn := form.NewSubmitButton("Send")
	var shown alerts
	f := form.NewContactForm([]form.Field{name, email, subject, message}, btn,
		form.NewClient(srv.URL, 5*time.Second), &shown, s.logger)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.True(t, strings.HasPrefix(res.PreviewURL, "/preview/"), res.PreviewURL)
	assert.Equal(t, alerts{form.SuccessText}, shown)
	for _, in := range []*form.Input{name, email, subject, message} {
		assert.Empty(t, in.Value(), in.Name())
	}
	assert.Equal(t, "Send", btn.Label())
	assert.False(t, btn.Disabled())

	// Missing subject is refused before any delivery.
	name.SetValue("Ada")
	email.SetValue("ada@example.com")
	message.SetValue("hello")
	_, err = f.Submit(context.Background())
	require.ErrorIs(t, err, form.ErrRejected)
	assert.Equal(t, form.FailureText+"("+MissingFieldsText+")", shown[1])
	assert.Equal(t, "Ada", name.Value())
	assert.Equal(t, "Send", btn.Label())
	assert.False(t, btn.Disabled())

	stats, err := s.store.Stats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ContactSent)
	assert.Equal(t, int64(1), stats.ContactRejected)
	assert.Equal(t, int64(1), stats.OutboxMessages)
}

func TestContactFailure(t *testing.T) {
	t.Parallel()

	valid := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"hello"}`

	t.Run("development shows cause", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, nil)
		s.relay = mail.NewRelay(failingTransport{err: errors.New("dial tcp: connection refused")}, "", "", s.logger)

		rec := serveRequest(t, s.router(), jsonRequest(http.MethodPost, "/api/contact", valid))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeJSON(t, rec)
		assert.Equal(t, false, body["ok"])
		assert.Contains(t, body["error"], "connection refused")

		attempts, err := s.store.ContactLog(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, store.StatusFailed, attempts[0].Status)
		assert.Equal(t, "failing", attempts[0].Transport)
	})

	t.Run("production hides cause", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, map[string]string{"APP_ENV": "production", "ADMIN_PASSWORD": "pw-for-tests"})
		s.relay = mail.NewRelay(failingTransport{err: errors.New("dial tcp: connection refused")}, "", "", s.logger)

		rec := serveRequest(t, s.router(), jsonRequest(http.MethodPost, "/api/contact", valid))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"ok":false,"error":"Failed to send. Please try again later."}`, rec.Body.String())
	})
}

func TestPreviewNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	rec := serveRequest(t, s.router(), httptest.NewRequest(http.MethodGet, "/preview/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSequenceManifest(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	rec := serveRequest(t, s.router(), httptest.NewRequest(http.MethodGet, "/api/sequence", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		FrameIntervalMs int64                    `json:"frameIntervalMs"`
		Sections        []reveal.SectionManifest `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(16), body.FrameIntervalMs)
	require.Len(t, body.Sections, 4)
	assert.Equal(t, "hero", body.Sections[0].ID)
	assert.InDelta(t, 0.35, body.Sections[0].Threshold, 1e-9)
	assert.Equal(t, int64(800), body.Sections[3].DelaysMs["card"])
}

func TestIndexAndVisitorTracking(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	r := s.router()

	rec := serveRequest(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="hero"`)
	assert.Contains(t, rec.Body.String(), `<script src="/script.js" defer></script>`)

	rec = serveRequest(t, r, httptest.NewRequest(http.MethodGet, "/script.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	script := rec.Body.String()
	assert.Contains(t, script, "fetch('/api/sequence')")
	assert.Contains(t, script, "form.reset()")

	dnt := httptest.NewRequest(http.MethodGet, "/", nil)
	dnt.Header.Set("DNT", "1")
	serveRequest(t, r, dnt)
	serveRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec = serveRequest(t, r, httptest.NewRequest(http.MethodGet, "/missing.css", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	visits, err := s.store.RecentVisits(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "/", visits[0].Path)
	assert.Equal(t, s.auth.hashIP("203.0.113.7"), visits[0].HashedIP)
	assert.NotContains(t, visits[0].HashedIP, "203.0.113.7")
}

func TestUnknownMethodNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	rec := serveRequest(t, s.router(), httptest.NewRequest(http.MethodPost, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Not found."}`, rec.Body.String())
}

func TestPrivacyNotice(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	rec := serveRequest(t, s.router(), httptest.NewRequest(http.MethodGet, "/privacy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "salted hash")
}

func TestMessageHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", messageHost(&config.Config{PublicURL: "https://example.com/site"}))
	assert.Equal(t, "smtp.example.com", messageHost(&config.Config{SMTP: config.SMTP{Host: "smtp.example.com"}}))
	assert.Equal(t, "localhost", messageHost(&config.Config{}))
}

func TestNewTransport(t *testing.T) {
	t.Parallel()

	st, err := store.Open(filepath.Join(t.TempDir(), "p.db"))
	require.NoError(t, err)
	defer st.Close()

	smtpCfg := &config.Config{SMTP: config.SMTP{Host: "h", User: "u", Pass: "p", Port: 2525}}
	assert.Equal(t, "smtp", newTransport(smtpCfg, st).Name())
	assert.Equal(t, "preview", newTransport(&config.Config{SMTP: config.SMTP{Host: "h"}}, st).Name())
}

func TestRetentionLoopStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	now := time.Now()
	require.NoError(t, s.store.RecordVisit(context.Background(), store.Visit{HashedIP: "old", Timestamp: now.AddDate(-2, 0, 0)}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.retentionLoop(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		visits, err := s.store.RecentVisits(context.Background(), 10)
		return err == nil && len(visits) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retention loop did not stop")
	}
}
