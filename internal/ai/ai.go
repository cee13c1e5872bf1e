package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sapulidi/sapulidi/pkg/lifecycle"
)

type provider interface {
	invoke(ctx context.Context, prompt, image string, opts Options) (any, error)
	close() error
}

type opener func(ctx context.Context, cfg *Config) (provider, error)

var openers = map[string]opener{
	ProviderGemini: openGemini,
	ProviderOpenAI: openOpenAI,
}

type system struct {
	cfg      *Config
	logger   *slog.Logger
	open     opener
	active   atomic.Pointer[providerRef]
	invoker  Capability
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

type providerRef struct {
	provider
}

// New creates the AI system for the configured provider. The provider
// client is not created until Start's startup hook runs; until then
// Invoke fails with ErrUnavailable. Collectors are registered on reg.
func New(cfg *Config, logger *slog.Logger, reg prometheus.Registerer) (System, error) {
	open, ok := openers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	s := &system{
		cfg:    cfg,
		logger: logger.With("system", "ai", "provider", cfg.Provider),
		open:   open,
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sapulidi_ai_calls_total",
				Help: "AI provider calls by provider and result.",
			},
			[]string{"provider", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sapulidi_ai_call_duration_seconds",
				Help:    "AI provider call latency.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
	}
	reg.MustRegister(s.calls, s.duration)

	s.invoker = WithRetry(CapabilityFunc(s.invokeOnce), cfg.Policy(), s.logger)
	return s, nil
}

func (s *system) Provider() string {
	return s.cfg.Provider
}

func (s *system) Ready() bool {
	return s.active.Load() != nil
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	if s.cfg.APIKey == "" {
		s.logger.Warn("ai api key not configured, classification and chat unavailable")
		return nil
	}

	s.logger.Info("starting ai system", "classify_model", s.cfg.ClassifyModel, "chat_model", s.cfg.ChatModel)
	lc.Track("ai", s)

	lc.OnStartup(func() {
		p, err := s.open(lc.Context(), s.cfg)
		if err != nil {
			s.logger.Error("ai client initialization failed", "error", err)
			return
		}
		s.active.Store(&providerRef{p})
		s.logger.Info("ai client ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		ref := s.active.Swap(nil)
		if ref == nil {
			return
		}
		if err := ref.close(); err != nil {
			s.logger.Error("ai client close failed", "error", err)
			return
		}
		s.logger.Info("ai client closed")
	})

	return nil
}

func (s *system) Invoke(ctx context.Context, prompt, image string, opts Options) (any, error) {
	return s.invoker.Invoke(ctx, prompt, image, opts)
}

func (s *system) invokeOnce(ctx context.Context, prompt, image string, opts Options) (any, error) {
	ref := s.active.Load()
	if ref == nil {
		s.calls.WithLabelValues(s.cfg.Provider, "unavailable").Inc()
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TimeoutDuration())
	defer cancel()

	start := time.Now()
	raw, err := ref.invoke(ctx, prompt, image, opts)
	s.duration.WithLabelValues(s.cfg.Provider).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		s.calls.WithLabelValues(s.cfg.Provider, "ok").Inc()
	case errors.Is(err, ErrTransport):
		s.calls.WithLabelValues(s.cfg.Provider, "transport_error").Inc()
	default:
		s.calls.WithLabelValues(s.cfg.Provider, "error").Inc()
	}
	return raw, err
}
