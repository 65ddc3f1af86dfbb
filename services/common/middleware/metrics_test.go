package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
)

type recordedMetric struct {
	name string
	dims map[string]string
}

type fakeRecorder struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (f *fakeRecorder) RecordCount(_ context.Context, name string, dims map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = append(f.metrics, recordedMetric{name, dims})
	return nil
}

func (f *fakeRecorder) RecordLatency(_ context.Context, name string, _ time.Duration, dims map[string]string) error {
	return f.RecordCount(context.Background(), name, dims)
}

func (f *fakeRecorder) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.metrics))
	for _, m := range f.metrics {
		out = append(out, m.name)
	}
	return out
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}
	r := newRouter(MetricsMiddleware(rec, "course-api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))

	assert.Eventually(t, func() bool { return len(rec.names()) == 2 }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{awspkg.MetricHTTPRequests, awspkg.MetricHTTPLatency}, rec.names())

	rec.mu.Lock()
	dims := rec.metrics[0].dims
	rec.mu.Unlock()
	assert.Equal(t, "course-api", dims["Service"])
	assert.Equal(t, "/api/auth/login", dims["Path"])
	assert.Equal(t, "2xx", dims["Status"])
}

func TestMetricsMiddleware_ClientErrors(t *testing.T) {
	rec := &fakeRecorder{}
	r := newRouter(MetricsMiddleware(rec, "course-api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Eventually(t, func() bool { return len(rec.names()) == 3 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.names(), awspkg.MetricHTTP4xx)
}

func TestStatusCodeToRange(t *testing.T) {
	assert.Equal(t, "2xx", statusCodeToRange(http.StatusCreated))
	assert.Equal(t, "3xx", statusCodeToRange(http.StatusFound))
	assert.Equal(t, "4xx", statusCodeToRange(http.StatusTooManyRequests))
	assert.Equal(t, "5xx", statusCodeToRange(http.StatusBadGateway))
	assert.Equal(t, "unknown", statusCodeToRange(0))
}
