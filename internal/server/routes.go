package server

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/config"
	"github.com/garrettladley/ebaynotify/internal/server/handler"
	servermw "github.com/garrettladley/ebaynotify/internal/server/middleware"
	"github.com/garrettladley/ebaynotify/internal/service/webhook"
	"github.com/garrettladley/ebaynotify/internal/storage"
	"github.com/garrettladley/ebaynotify/internal/xhttp/middleware"
)

type Deps struct {
	Logger  *slog.Logger
	Webhook webhook.Service
	Config  config.EBay
	Limiter storage.RateLimiter
	// TrustedProxies is the number of proxies whose X-Forwarded-For entries
	// identify the client for rate limiting.
	TrustedProxies int
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// NewHandler assembles the routes and the shared middleware chain.
func NewHandler(deps Deps) http.Handler {
	webhookHandler := handler.NewWebhook(deps.Webhook, deps.Config)

	webhookMux := http.NewServeMux()
	webhookMux.HandleFunc("POST /webhook", webhookHandler.HandleNotification)
	webhookMux.HandleFunc("GET /webhook", webhookHandler.HandleChallenge)
	var webhookRoutes http.Handler = webhookMux
	if deps.Limiter != nil {
		webhookRoutes = middleware.Chain(webhookMux, servermw.RateLimit(deps.Limiter, servermw.WithTrustedProxies(deps.TrustedProxies)))
	}

	mux := http.NewServeMux()
	mux.Handle("/webhook", webhookRoutes)
	mux.HandleFunc("GET /health", handler.HandleHealth)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Logging,
		middleware.SecurityHeaders,
	)
}
