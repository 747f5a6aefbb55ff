package refiner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

type stubGenerator struct {
	configured bool
	generate   func(ctx context.Context, prompt string) (string, error)
	prompts    chan string
}

func newStubGenerator(generate func(ctx context.Context, prompt string) (string, error)) *stubGenerator {
	return &stubGenerator{configured: true, generate: generate, prompts: make(chan string, 1)}
}

func (g *stubGenerator) Name() string     { return "stub" }
func (g *stubGenerator) Configured() bool { return g.configured }
func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case g.prompts <- prompt:
	default:
	}
	return g.generate(ctx, prompt)
}

type counterCall struct {
	name   string
	labels map[string]string
}

type fakeRecorder struct {
	counters []counterCall
	timers   []string
}

func (r *fakeRecorder) RecordCounter(metricName string, labels map[string]string, value float64) {
	r.counters = append(r.counters, counterCall{name: metricName, labels: labels})
}

func (r *fakeRecorder) RecordTimer(metricName string, labels map[string]string, duration time.Duration) {
	r.timers = append(r.timers, metricName)
}

type stubLimiter struct{ err error }

func (l stubLimiter) Allow(string) error { return l.err }

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const developerFallback = "Write a function\n\nContext: Include technical details and clear requirements."

func developerPayload() models.RefinePromptPayload {
	return models.RefinePromptPayload{Raw: "Write a function", Preset: stringPtr("developer")}
}

func TestRefineReturnsProviderOutput(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		return "  \"Write a Go function that parses dates.\"\n", nil
	})
	recorder := &fakeRecorder{}
	service := NewService(generator, WithRecorder(recorder), WithLogger(quietLogger))

	response, err := service.Refine(context.Background(), developerPayload())

	require.NoError(t, err)
	assert.Equal(t, "Write a Go function that parses dates.", response.Refined)

	prompt := <-generator.prompts
	assert.Contains(t, prompt, "Structure this for technical/coding tasks.")
	assert.Contains(t, prompt, "Keep it under 300 words")

	require.Len(t, recorder.counters, 1)
	assert.Equal(t, "external", recorder.counters[0].labels["outcome"])
	assert.Equal(t, []string{refineDurationMetric}, recorder.timers)
}

func TestRefineFallsBackOnProviderError(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("upstream exploded")
	})
	recorder := &fakeRecorder{}
	service := NewService(generator, WithRecorder(recorder), WithLogger(quietLogger))

	response, err := service.Refine(context.Background(), developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
	require.Len(t, recorder.counters, 1)
	assert.Equal(t, "fallback", recorder.counters[0].labels["outcome"])
	assert.Equal(t, string(KindProvider), recorder.counters[0].labels["reason"])
}

func TestRefineFallsBackOnQuota(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		return "", &ExternalServiceError{Provider: "stub", Kind: KindQuota, Err: errors.New("429")}
	})
	recorder := &fakeRecorder{}
	service := NewService(generator, WithRecorder(recorder), WithLogger(quietLogger))

	response, err := service.Refine(context.Background(), developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
	assert.Equal(t, string(KindQuota), recorder.counters[0].labels["reason"])
}

func TestRefineFallsBackOnEmptyOutput(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		return ` "" `, nil
	})
	recorder := &fakeRecorder{}
	service := NewService(generator, WithRecorder(recorder), WithLogger(quietLogger))

	response, err := service.Refine(context.Background(), developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
	assert.Equal(t, string(KindEmptyOutput), recorder.counters[0].labels["reason"])
}

func TestRefineFallsBackOnTimeout(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "too late", nil
	})
	recorder := &fakeRecorder{}
	service := NewService(generator, WithTimeout(20*time.Millisecond), WithRecorder(recorder), WithLogger(quietLogger))

	start := time.Now()
	response, err := service.Refine(context.Background(), developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "timeout", recorder.counters[0].labels["reason"])
}

func TestRefineFallsBackWhenCallerCancels(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	service := NewService(generator, WithLogger(quietLogger))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	response, err := service.Refine(ctx, developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
}

func TestRefineWithoutCredentialUsesLocalPipeline(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("generator must not be called without a credential")
		return "", nil
	})
	generator.configured = false
	service := NewService(generator, WithLogger(quietLogger))

	assert.False(t, service.Configured())
	response, err := service.Refine(context.Background(), developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
}

func TestRefineFallbackTruncatesToBudget(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("down")
	})
	service := NewService(generator, WithLogger(quietLogger))

	response, err := service.Refine(context.Background(), models.RefinePromptPayload{
		Raw:      "one two three four five six seven eight nine ten eleven twelve",
		MaxWords: intPtr(10),
	})

	require.NoError(t, err)
	assert.Equal(t, "one two three four five six seven eight nine ten...", response.Refined)
}

func TestRefineReturnsValidationError(t *testing.T) {
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("generator must not be called for invalid input")
		return "", nil
	})
	recorder := &fakeRecorder{}
	service := NewService(generator, WithRecorder(recorder), WithLogger(quietLogger))

	_, err := service.Refine(context.Background(), models.RefinePromptPayload{Raw: "   "})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, recorder.counters, 1)
	assert.Equal(t, refineValidationMetric, recorder.counters[0].name)
}

func TestRefineLocally(t *testing.T) {
	service := NewService(nil)

	response, err := service.RefineLocally(developerPayload())

	require.NoError(t, err)
	assert.Equal(t, developerFallback, response.Refined)
}

func TestAdmit(t *testing.T) {
	assert.NoError(t, NewService(nil).Admit("1.2.3.4"))

	recorder := &fakeRecorder{}
	limited := errors.New("limited")
	service := NewService(nil, WithLimiter(stubLimiter{err: limited}), WithRecorder(recorder), WithLogger(quietLogger))

	assert.ErrorIs(t, service.Admit("1.2.3.4"), limited)
	assert.Equal(t, refineRateLimitedMetric, recorder.counters[0].name)
}

func TestRefineDeveloperScenarioWithProviderDown(t *testing.T) {
	raw := "write me some code for user login stuff with database and make it secure"
	generator := newStubGenerator(func(ctx context.Context, prompt string) (string, error) {
		return "", &ExternalServiceError{Provider: "stub", Kind: KindTransport, Err: errors.New("connection refused")}
	})
	service := NewService(generator, WithLogger(quietLogger))

	response, err := service.Refine(context.Background(), models.RefinePromptPayload{
		Raw:      raw,
		Preset:   stringPtr("developer"),
		MaxWords: intPtr(300),
	})

	require.NoError(t, err)
	assert.Equal(t, Prepare(raw)+"\n\nContext: Include technical details and clear requirements.", response.Refined)
}
