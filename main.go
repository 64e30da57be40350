package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/mail"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	sequence, err := loadSequence(cfg.SequenceConfig)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := newServer(cfg, st, sequence, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.serve(ctx)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if !cfg.Production() {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return zc.Build()
}

// loadSequence reads the reveal timings, falling back to the defaults when
// no file is configured.
func loadSequence(path string) (reveal.Config, error) {
	if path == "" {
		return reveal.DefaultConfig(), nil
	}
	cfg, err := reveal.LoadConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("sequence config %s: %w", path, err)
	}
	return cfg, nil
}

// server holds everything the HTTP handlers share.
type server struct {
	cfg      *config.Config
	store    *store.Store
	relay    *mail.Relay
	sequence reveal.Config
	auth     *adminAuth
	logger   *zap.Logger
	now      func() time.Time
}

func newServer(cfg *config.Config, st *store.Store, sequence reveal.Config, logger *zap.Logger) *server {
	s := &server{
		cfg:      cfg,
		store:    st,
		sequence: sequence,
		auth:     newAdminAuth(cfg.Admin, cfg.IPSalt),
		logger:   logger,
		now:      time.Now,
	}

	transport := newTransport(cfg, st)
	s.relay = mail.NewRelay(transport, cfg.Sender(), cfg.Recipient(), logger.Named("mail"),
		mail.WithMessageHost(messageHost(cfg)))

	logger.Info("contact transport ready",
		zap.String("transport", transport.Name()),
		zap.String("db", st.Path()))
	if !cfg.Production() {
		logger.Debug("admin token (dev only)", zap.String("token", s.auth.token))
	}
	if cfg.Admin.Password == config.DefaultAdminPassword {
		logger.Warn("using default admin password, set ADMIN_PASSWORD")
	}
	return s
}

// newTransport picks SMTP when it is fully configured, otherwise the
// preview outbox.
func newTransport(cfg *config.Config, st *store.Store) mail.Transport {
	if cfg.SMTP.Configured() {
		return &mail.SMTPTransport{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Pass,
			Secure:   cfg.SMTP.Secure,
			Timeout:  cfg.MailTimeout,
		}
	}
	return &mail.PreviewTransport{Outbox: st, BaseURL: cfg.PublicURL}
}

func messageHost(cfg *config.Config) string {
	if cfg.PublicURL != "" {
		if u, err := url.Parse(cfg.PublicURL); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if cfg.SMTP.Host != "" {
		return cfg.SMTP.Host
	}
	return "localhost"
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.visitorTracking())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/sequence", s.handleSequence)
	r.POST("/api/contact", s.handleContact)
	r.GET(mail.PreviewPath+":token", s.handlePreview)
	r.GET("/privacy", s.handlePrivacy)

	s.setupAdminRoutes(r)

	// Everything else comes from the public directory; "/" is index.html.
	files := http.FileServer(gin.Dir(s.cfg.PublicDir, false))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": NotFoundText})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
	return r
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", s.auth.hashIP(c.ClientIP())),
		)
	}
}

// serve runs the HTTP server and the retention sweep until ctx is done.
func (s *server) serve(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("portfolio server is running",
			zap.String("addr", httpSrv.Addr),
			zap.String("public", s.cfg.PublicDir))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.retentionLoop(gctx)
		return nil
	})
	return g.Wait()
}

// retentionLoop purges old visitor rows now and then once per interval.
func (s *server) retentionLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		s.cleanupOldVisitorData(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
