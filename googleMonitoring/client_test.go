package googlemonitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
)

func newLocalClient(t *testing.T) *MonitoringClient {
	t.Helper()
	client, err := NewMonitoringClient(context.Background(), config.GoogleServiceConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRecordCounterIsExposed(t *testing.T) {
	client := newLocalClient(t)

	client.RecordCounter("refine_requests_total", map[string]string{"outcome": "fallback", "preset": "developer", "reason": "timeout"}, 1)
	client.RecordCounter("refine_requests_total", map[string]string{"reason": "timeout", "preset": "developer", "outcome": "fallback"}, 2)
	client.RecordTimer("refine_duration_seconds", map[string]string{"outcome": "fallback"}, 250*time.Millisecond)

	recorder := httptest.NewRecorder()
	client.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := recorder.Body.String()
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, body, `refine_requests_total{outcome="fallback",preset="developer",reason="timeout"} 3`)
	assert.Contains(t, body, "refine_duration_seconds_count")
}

func TestConcurrentRegistrationDoesNotPanic(t *testing.T) {
	client := newLocalClient(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.RecordCounter("refine_rate_limited_total", nil, 1)
		}()
	}
	wg.Wait()

	timeSeries, err := client.collectTimeSeries(time.Now())
	require.NoError(t, err)
	require.Len(t, timeSeries, 1)
	assert.Equal(t, "custom.googleapis.com/refine_rate_limited_total", timeSeries[0].Metric.Type)
	assert.Equal(t, float64(20), timeSeries[0].Points[0].Value.GetDoubleValue())
}

func TestPushMetricsWithoutProjectIsNoop(t *testing.T) {
	client := newLocalClient(t)
	assert.NoError(t, client.PushMetrics(context.Background()))
}

func TestSplitLabelsSorted(t *testing.T) {
	names, values := splitLabels(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []string{"1", "2", "3"}, values)
}
