package bootstrap

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/lead-funnel/internal/api/router"
	"github.com/wolfman30/lead-funnel/internal/capi"
	appconfig "github.com/wolfman30/lead-funnel/internal/config"
	"github.com/wolfman30/lead-funnel/internal/leads"
	"github.com/wolfman30/lead-funnel/internal/notify"
	"github.com/wolfman30/lead-funnel/internal/observability/metrics"
	"github.com/wolfman30/lead-funnel/internal/pixelconfig"
	"github.com/wolfman30/lead-funnel/pkg/logging"
)

// BuildCAPIClient returns a Conversions API client, or nil when credentials
// are missing so the forwarder answers with a configuration error.
func BuildCAPIClient(cfg *appconfig.Config) *capi.Client {
	if !cfg.ForwarderReady() {
		return nil
	}
	return capi.NewClient(cfg.FBPixelID, cfg.FBAccessToken,
		capi.WithBaseURL(cfg.FBGraphAPIBase),
		capi.WithVersion(cfg.FBGraphAPIVersion),
	)
}

// BuildNotifier returns the lead webhook, or nil when WEBHOOK_URL is unset.
func BuildNotifier(cfg *appconfig.Config) leads.Notifier {
	hook := notify.NewWebhook(cfg.WebhookURL, nil)
	if !hook.Enabled() {
		return nil
	}
	return hook
}

// BuildHandler wires the full HTTP surface shared by the server and Lambda
// entrypoints. reg may be nil to use the default Prometheus registry.
func BuildHandler(cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) http.Handler {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	leadMetrics := metrics.NewLeadMetrics(registerer)

	if !cfg.ForwarderReady() {
		logger.Warn("FB_PIXEL_ID or FB_ACCESS_TOKEN missing; lead forwarding will fail")
	}

	notifier := BuildNotifier(cfg)
	if hook, ok := notifier.(*notify.Webhook); ok {
		logger.Info("lead webhook enabled", "host", hook.Host())
	}

	var sender leads.EventSender
	if client := BuildCAPIClient(cfg); client != nil {
		sender = client
	}

	routerCfg := &router.Config{
		Logger:             logger,
		LeadForwarder:      leads.NewForwarder(cfg, sender, notifier, leadMetrics, logger),
		PixelConfig:        pixelconfig.NewHandler(cfg.FBPixelID),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return router.New(routerCfg)
}
