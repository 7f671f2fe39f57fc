package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveJob(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveJob("predict", time.Now(), nil)
	m.ObserveJob("predict", time.Now(), errors.New("boom"))
	m.ObserveJob("predict", time.Now(), nil)

	if got := testutil.ToFloat64(m.JobRuns.WithLabelValues("predict", "success")); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.JobRuns.WithLabelValues("predict", "failure")); got != 1 {
		t.Errorf("failure = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.Forecast.WithLabelValues("bs", "3").Set(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `dimission_forecast_departures{days="3",unit="bs"} 4`) {
		t.Errorf("缺少预测指标:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("缺少 Go 运行时指标")
	}
}
