// Package bootstrap wires the lead intake service from configuration. Both
// the HTTP server and the Lambda entrypoint build their handler here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalux/roofers-landing/internal/api/router"
	"github.com/katalux/roofers-landing/internal/archive"
	appconfig "github.com/katalux/roofers-landing/internal/config"
	httpmiddleware "github.com/katalux/roofers-landing/internal/http/middleware"
	"github.com/katalux/roofers-landing/internal/intake"
	"github.com/katalux/roofers-landing/internal/leadform"
	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/internal/notify"
	"github.com/katalux/roofers-landing/internal/observability/metrics"
	"github.com/katalux/roofers-landing/internal/relay"
	"github.com/katalux/roofers-landing/pkg/logging"
)

// AWSConfigLoader resolves SDK configuration for S3 and SES.
type AWSConfigLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// App is the wired service.
type App struct {
	Handler  http.Handler
	Metrics  *metrics.LeadMetrics
	Registry *prometheus.Registry

	pipeline *intake.Pipeline
	closers  []func()
}

const followUpDrainTimeout = 30 * time.Second

// Flush waits for lead follow-ups already handed to the background workers.
func (a *App) Flush(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	return a.pipeline.Flush(ctx)
}

// Close drains pending lead follow-ups, then releases pools and clients
// opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Build assembles the router and everything behind it. loadAWS may be nil
// when neither the archive bucket nor SES is configured.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, loadAWS AWSConfigLoader) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{Registry: prometheus.NewRegistry()}
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.NewLeadMetrics(app.Registry)

	relayClient, err := relay.New(relay.Config{
		Endpoint: cfg.FormRelayURL,
		Timeout:  cfg.RelayTimeout,
		Logger:   logger.Component("relay"),
		Metrics:  app.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: FORM_RELAY_URL: %w", err)
	}

	repo, pool, err := BuildLeadRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		app.closers = append(app.closers, pool.Close)
	}

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		if loadAWS == nil {
			app.Close()
			return nil, errors.New("bootstrap: aws config loader is required")
		}
		loaded, err := loadAWS(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	pipelineCfg := intake.Config{
		Relay:      relayClient,
		Repository: repo,
		Metrics:    app.Metrics,
		Logger:     logger,

		FollowUpWorkers: cfg.FollowUpWorkers,
		FollowUpBacklog: cfg.FollowUpBacklog,
	}
	if store := buildArchive(cfg, awsCfg, logger); store != nil {
		pipelineCfg.Archive = store
	}
	sender, provider, reason := BuildEmailSender(cfg, awsCfg, logger)
	if reason != "" {
		logger.Warn("operator email falling back to stub", "reason", reason)
	}
	notifier := notify.NewService(sender, cfg.LeadNotifyEmails, logger)
	if notifier.Enabled() {
		pipelineCfg.Notifier = notifier
		logger.Info("lead notifications enabled", "provider", provider, "recipients", len(cfg.LeadNotifyEmails))
	}
	pipeline, err := intake.New(pipelineCfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.pipeline = pipeline
	// registered after the pool so it runs first
	app.closers = append(app.closers, func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), followUpDrainTimeout)
		defer cancel()
		if err := pipeline.Close(drainCtx); err != nil {
			logger.Error("lead follow-ups did not drain", "error", err)
		}
	})

	page, err := leadform.NewPage(pipeline, leadform.Options{
		FallbackEmail:  cfg.FallbackEmail,
		NoticeDuration: cfg.NoticeDuration,
		Logger:         logger,
		Metrics:        app.Metrics,
	}, leadform.DefaultDefinitions()...)
	if err != nil {
		app.Close()
		return nil, err
	}

	var limiter httpmiddleware.Limiter
	if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
		app.closers = append(app.closers, func() { _ = client.Close() })
		limiter = httpmiddleware.NewRedisRateLimiter(client, cfg.RateLimitBurst, rateWindow(cfg.RateLimitRPS, cfg.RateLimitBurst))
		logger.Info("rate limiting via redis", "addr", cfg.RedisAddr)
	} else if cfg.RateLimitRPS > 0 {
		limiterCtx, cancel := context.WithCancel(context.Background())
		app.closers = append(app.closers, cancel)
		limiter = httpmiddleware.NewRateLimiter(limiterCtx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	app.Handler = router.New(&router.Config{
		Logger:             logger,
		FormsHandler:       leadform.NewHandler(page, logger),
		LeadsHandler:       leads.NewHandler(repo, logger),
		RateLimiter:        limiter,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		AdminAudience:      cfg.AdminJWTAudience,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		MetricsHandler:     promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return app, nil
}

func needsAWS(cfg *appconfig.Config) bool {
	return strings.TrimSpace(cfg.LeadArchiveBucket) != "" || cfg.EmailProvider == providerSES
}

func buildArchive(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) *archive.Store {
	bucket := strings.TrimSpace(cfg.LeadArchiveBucket)
	if bucket == "" || awsCfg == nil {
		return nil
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		// LocalStack serves buckets by path
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	logger.Info("lead archive enabled", "bucket", bucket)
	return archive.NewStore(client, bucket, logger)
}

// rateWindow is the fixed window in which burst requests are allowed at
// the configured sustained rate.
func rateWindow(rps float64, burst int) time.Duration {
	if rps <= 0 || burst < 1 {
		return time.Second
	}
	return time.Duration(float64(burst) / rps * float64(time.Second))
}
