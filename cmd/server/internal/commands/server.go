package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/authn"
	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"connectrpc.com/otelconnect"
	"filippo.io/csrf"
	"github.com/rs/cors"
	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/auth"
	httpmiddleware "github.com/wolfeidau/membership/internal/http"
	"github.com/wolfeidau/membership/internal/logger"
	"github.com/wolfeidau/membership/internal/notify"
	"github.com/wolfeidau/membership/internal/server"
	"github.com/wolfeidau/membership/internal/service"
	"github.com/wolfeidau/membership/internal/telemetry"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

type ServerCmd struct {
	// Server configuration
	Listen     string `help:"HTTP server listen address" default:"0.0.0.0:8443" env:"MEMBERSHIP_LISTEN"`
	Cert       string `help:"path to TLS cert file, serves h2c when empty" default:"" env:"MEMBERSHIP_TLS_CERT"`
	Key        string `help:"path to TLS key file" default:"" env:"MEMBERSHIP_TLS_KEY"`
	TrustProxy bool   `help:"take the client IP from X-Forwarded-For and X-Real-IP" default:"false" env:"MEMBERSHIP_TRUST_PROXY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"MEMBERSHIP_CORS_ORIGINS"`

	// Authentication
	JWTPublicKey string `help:"path to the PEM encoded ECDSA public key used to verify tokens" type:"path" env:"MEMBERSHIP_JWT_PUBLIC_KEY"`

	// Development and operational modes
	NoAuth           bool    `help:"trust the X-User-ID header instead of verifying tokens (development only)" default:"false" env:"MEMBERSHIP_NO_AUTH"`
	Tracing          bool    `help:"enable tracing and metrics export" default:"false" env:"MEMBERSHIP_TRACING"`
	TraceSampleRatio float64 `help:"fraction of root traces to sample" default:"1.0" env:"MEMBERSHIP_TRACE_SAMPLE_RATIO"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"MEMBERSHIP_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	Sweep  SweepFlags  `embed:"" prefix:"sweep-"`
	Notify NotifyFlags `embed:"" prefix:"notify-"`
}

// SweepFlags configures the invitation expiry sweep
type SweepFlags struct {
	Disabled  bool          `help:"disable the expiry sweep" default:"false" env:"MEMBERSHIP_SWEEP_DISABLED"`
	Interval  time.Duration `help:"interval between expiry sweeps" default:"1h" env:"MEMBERSHIP_SWEEP_INTERVAL"`
	Retention time.Duration `help:"how long an invitation stays pending before it expires" default:"168h" env:"MEMBERSHIP_SWEEP_RETENTION"`
}

// NotifyFlags configures invitation notification delivery
type NotifyFlags struct {
	WebhookURL string        `help:"webhook receiving invitation notifications, logged when empty" env:"MEMBERSHIP_NOTIFY_WEBHOOK_URL"`
	Timeout    time.Duration `help:"timeout per webhook attempt" default:"10s" env:"MEMBERSHIP_NOTIFY_TIMEOUT"`
	MaxRetries uint          `help:"webhook retries after the first attempt" default:"3" env:"MEMBERSHIP_NOTIFY_MAX_RETRIES"`
	QueueSize  int           `help:"notifications buffered before new ones are dropped" default:"256"`
	Workers    int           `help:"concurrent notification deliveries" default:"2"`
}

func (c *ServerCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	var interceptors []connect.Interceptor
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "membership-server",
			Version:     globals.Version,
			SampleRatio: c.TraceSampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
		otelInterceptor, err := otelconnect.NewInterceptor()
		if err != nil {
			return fmt.Errorf("failed to create OTEL interceptor: %w", err)
		}
		interceptors = append(interceptors, otelInterceptor)
	}

	stores, release, err := openStores(ctx, c.StoreType, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer release()

	sender, err := c.Notify.sender()
	if err != nil {
		return err
	}
	defer sender.Close()

	authFunc, err := c.authFunc()
	if err != nil {
		return err
	}

	gate := auth.NewGate(stores.Users)
	opts := []service.Option{
		service.WithSender(sender),
		service.WithRetention(c.Sweep.Retention),
	}
	invitations := service.NewInvitationService(stores, gate, opts...)

	if !c.Sweep.Disabled {
		sweeper := service.NewExpirySweeper(ctx, invitations, c.Sweep.Interval)
		defer sweeper.Stop()
		log.Info().Dur("interval", c.Sweep.Interval).Dur("retention", c.Sweep.Retention).Msg("Invitation expiry sweep started")
	}

	api := server.NewServer(server.Services{
		Users:         service.NewUserService(stores, gate, opts...),
		Organizations: service.NewOrganizationService(stores, gate, opts...),
		Invitations:   invitations,
		Audit:         service.NewAuditService(stores, gate),
	}).Handler(log, interceptors...)

	// Browsers on the CORS allow list pass the cross-origin check, other
	// cross-site POSTs are refused.
	protection := csrf.New()
	for _, origin := range c.CORSOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return fmt.Errorf("invalid CORS origin %q: %w", origin, err)
		}
	}

	handler := httpmiddleware.Chain(api,
		withCORS(c.CORSOrigins),
		protection.Handler,
		httpmiddleware.ClientIPMiddleware(c.TrustProxy),
		authn.NewMiddleware(authFunc).Wrap,
	)

	if c.Cert == "" && c.Key == "" {
		srv := configureHTTPServer(c.Listen, h2c.NewHandler(handler, &http2.Server{}))
		log.Warn().Str("addr", c.Listen).Bool("auth", !c.NoAuth).Msg("Starting cleartext HTTP/2 server, terminate TLS upstream")
		return serve(ctx, srv, srv.ListenAndServe)
	}

	// Validate TLS certificates
	if c.Cert == "" || c.Key == "" {
		return errors.New("TLS certificate and key must be provided together (--cert and --key)")
	}
	if _, err := os.Stat(c.Cert); err != nil {
		return fmt.Errorf("TLS certificate not found at %s: %w", c.Cert, err)
	}
	if _, err := os.Stat(c.Key); err != nil {
		return fmt.Errorf("TLS key not found at %s: %w", c.Key, err)
	}

	srv := configureHTTPServer(c.Listen, handler)
	log.Info().Str("addr", c.Listen).Bool("auth", !c.NoAuth).Msg("Starting HTTPS server")
	return serve(ctx, srv, func() error { return srv.ListenAndServeTLS(c.Cert, c.Key) })
}

func (c *ServerCmd) authFunc() (authn.AuthFunc, error) {
	if c.NoAuth {
		zlog.Warn().Msg("Authentication is disabled (--no-auth). This should only be used in development!")
		return auth.NewHeaderAuthFunc(), nil
	}

	if c.JWTPublicKey == "" {
		return nil, errors.New("JWT public key is required (--jwt-public-key) unless --no-auth is set")
	}
	publicKeyPEM, err := os.ReadFile(c.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT public key: %w", err)
	}

	authFunc, err := auth.NewJWTAuthFunc(string(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to load JWT public key: %w", err)
	}
	return authFunc, nil
}

func (n *NotifyFlags) sender() (*notify.Async, error) {
	var next notify.Sender = notify.LogSender{}

	if n.WebhookURL != "" {
		webhook, err := notify.NewWebhookSender(notify.WebhookConfig{
			URL:        n.WebhookURL,
			Timeout:    n.Timeout,
			MaxRetries: n.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook sender: %w", err)
		}
		next = webhook
		zlog.Info().Str("url", n.WebhookURL).Msg("Delivering invitation notifications by webhook")
	}

	return notify.NewAsync(next, notify.AsyncConfig{
		QueueSize:       n.QueueSize,
		Workers:         n.Workers,
		DeliveryTimeout: n.Timeout * time.Duration(n.MaxRetries+1),
	}), nil
}

// withCORS adds CORS support to a Connect HTTP handler.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: append(connectcors.AllowedHeaders(), "Authorization", auth.ActorHeader),
		ExposedHeaders: connectcors.ExposedHeaders(),
	})
	return middleware.Handler
}
