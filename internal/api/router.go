// Package api exposes the chat, chart, research, notepad and onboarding
// handlers over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"benefits-assistant/internal/common/logger"
	"benefits-assistant/internal/common/observability"
	benefitschat "benefits-assistant/internal/workers/ai-conversation/benefits-chat"
	generatechart "benefits-assistant/internal/workers/ai-conversation/generate-chart"
	notepadassist "benefits-assistant/internal/workers/ai-conversation/notepad-assist"
	summarizesearch "benefits-assistant/internal/workers/ai-conversation/summarize-search"
	saveonboarding "benefits-assistant/internal/workers/infrastructure/save-onboarding"
	"benefits-assistant/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ChatService interface {
	Execute(ctx context.Context, input *benefitschat.Input) (*benefitschat.Output, error)
}

type ChartService interface {
	Execute(ctx context.Context, input *generatechart.Input) (*generatechart.Output, error)
}

type ResearchService interface {
	Execute(ctx context.Context, input *summarizesearch.Input) (*summarizesearch.Output, error)
}

type NotepadService interface {
	Execute(ctx context.Context, input *notepadassist.Input) (*notepadassist.Output, error)
}

type OnboardingService interface {
	Execute(ctx context.Context, input *saveonboarding.Input) (*saveonboarding.Output, error)
	Status(ctx context.Context, userID string) (*saveonboarding.StatusOutput, error)
}

// ReadinessCheck is one dependency checked by /ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Config struct {
	Logger         logger.Logger
	Chat           ChatService
	Charts         ChartService
	Research       ResearchService
	Notepad        NotepadService
	Onboarding     OnboardingService
	Registry       *registry.ActivityRegistry
	Observability  *observability.Observability
	MetricsHandler http.Handler
	Readiness      []ReadinessCheck
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func New(cfg *Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	h := &handlers{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestContext(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(api chi.Router) {
		if cfg.RequestTimeout > 0 {
			api.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		api.Post("/chat", h.chat)
		if cfg.Charts != nil {
			api.Post("/charts/{kind}", h.chart)
		}
		if cfg.Research != nil {
			api.Post("/summarizesearch", h.summarizeSearch)
		}
		if cfg.Notepad != nil {
			api.Post("/notepad/ai", h.notepad)
		}
		if cfg.Onboarding != nil {
			api.Get("/onboarding-status", h.onboardingStatus)
			api.Post("/save-onboarding-data", h.saveOnboarding)
		}
	})

	return r
}
