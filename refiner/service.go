package refiner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
	"github.com/MamunCrafts/ai-simplified-by-mamun/utils"
)

const (
	DefaultTimeout = 15 * time.Second

	refineRequestsMetric    = "refine_requests_total"
	refineDurationMetric    = "refine_duration_seconds"
	refineValidationMetric  = "refine_validation_failures_total"
	refineRateLimitedMetric = "refine_rate_limited_total"
)

// Generator sends a fully rendered instruction to a text-generation provider.
type Generator interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Limiter admits or rejects calls per caller identity.
type Limiter interface {
	Allow(identity string) error
}

// Recorder receives refinement metrics.
type Recorder interface {
	RecordCounter(metricName string, labels map[string]string, value float64)
	RecordTimer(metricName string, labels map[string]string, duration time.Duration)
}

type Service struct {
	generator Generator
	limiter   Limiter
	recorder  Recorder
	logger    *slog.Logger
	timeout   time.Duration
}

type Option func(*Service)

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLimiter(limiter Limiter) Option {
	return func(s *Service) { s.limiter = limiter }
}

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService builds a Service. A nil generator means every call takes the local path.
func NewService(generator Generator, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		recorder:  noopRecorder{},
		logger:    slog.Default(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether the external provider has a credential.
func (s *Service) Configured() bool {
	return s.generator != nil && s.generator.Configured()
}

// Admit runs the rate limit check for identity. It is a no-op without a limiter.
func (s *Service) Admit(identity string) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Allow(identity); err != nil {
		s.recorder.RecordCounter(refineRateLimitedMetric, nil, 1)
		s.logger.Warn("refine call rejected by rate limiter", "identity", identity)
		return err
	}
	return nil
}

// Refine validates payload and produces a refined prompt. Only validation
// failures are returned; provider failures and timeouts fall back to the local pipeline.
func (s *Service) Refine(ctx context.Context, payload models.RefinePromptPayload) (*models.RefinePromptResponse, error) {
	start := time.Now()

	request, err := Validate(payload)
	if err != nil {
		s.recorder.RecordCounter(refineValidationMetric, nil, 1)
		s.logger.Info("refine payload rejected", "error", err)
		return nil, err
	}

	prepared := Prepare(request.Raw)

	refined, err := s.awaitExternal(ctx, request, prepared)
	if err == nil {
		s.record(request.Preset, "external", "none", start)
		return &models.RefinePromptResponse{Refined: refined}, nil
	}

	reason := FailureReason(err)
	s.logger.Warn("external refinement failed, using local fallback",
		"preset", request.Preset, "reason", reason, "error", err)
	s.record(request.Preset, "fallback", reason, start)

	return &models.RefinePromptResponse{Refined: LocalRefine(prepared, request.Preset, request.MaxWords)}, nil
}

// RefineLocally skips the provider entirely.
func (s *Service) RefineLocally(payload models.RefinePromptPayload) (*models.RefinePromptResponse, error) {
	request, err := Validate(payload)
	if err != nil {
		return nil, err
	}
	prepared := Prepare(request.Raw)
	return &models.RefinePromptResponse{Refined: LocalRefine(prepared, request.Preset, request.MaxWords)}, nil
}

type generation struct {
	text string
	err  error
}

// awaitExternal races one provider call against the timeout. The losing call is
// abandoned: its context is cancelled and its result lands in a buffered channel nobody reads.
func (s *Service) awaitExternal(ctx context.Context, request models.RefineRequest, prepared string) (string, error) {
	if s.generator == nil {
		return "", MissingCredential("none")
	}
	if !s.generator.Configured() {
		return "", MissingCredential(s.generator.Name())
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	instruction := BuildInstruction(prepared, request.Preset, request.MaxWords)
	results := make(chan generation, 1)
	go func() {
		text, err := s.generator.Generate(callCtx, instruction)
		results <- generation{text: text, err: err}
	}()

	select {
	case result := <-results:
		if result.err != nil {
			var serviceErr *ExternalServiceError
			if errors.As(result.err, &serviceErr) {
				return "", result.err
			}
			return "", NewExternalServiceError(s.generator.Name(), result.err)
		}
		cleaned := utils.StripWrappingQuotes(result.text)
		if cleaned == "" {
			return "", &ExternalServiceError{Provider: s.generator.Name(), Kind: KindEmptyOutput, Err: errors.New("provider returned no text")}
		}
		return cleaned, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", &ExternalServiceError{Provider: s.generator.Name(), Kind: KindTransport, Err: ctx.Err()}
		}
		return "", &TimeoutError{After: s.timeout}
	}
}

func (s *Service) record(preset models.Preset, outcome, reason string, start time.Time) {
	s.recorder.RecordCounter(refineRequestsMetric, map[string]string{
		"preset":  string(preset),
		"outcome": outcome,
		"reason":  reason,
	}, 1)
	s.recorder.RecordTimer(refineDurationMetric, map[string]string{"outcome": outcome}, time.Since(start))
}

type noopRecorder struct{}

func (noopRecorder) RecordCounter(string, map[string]string, float64) {}
func (noopRecorder) RecordTimer(string, map[string]string, time.Duration) {}
