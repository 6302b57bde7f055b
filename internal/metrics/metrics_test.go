package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func TestRecordRun(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	report := domain.NewRunReport(started)
	report.Results = 5
	report.Stored = 3
	report.Duplicates = 1
	report.Skip(domain.FailureFetch, 1)
	report.FinishedAt = started.Add(2 * time.Second)

	r.RecordRun(report)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.resultsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.articlesStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.duplicatesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skippedTotal.WithLabelValues("fetch")))
}

func TestObserveJobAndNotifications(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveJob("refresh", time.Second, nil)
	r.ObserveJob("refresh", time.Second, errors.New("boom"))
	r.RecordNotification("email", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRunsTotal.WithLabelValues("refresh", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRunsTotal.WithLabelValues("refresh", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("email", "ok")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.RecordRun(domain.NewRunReport(time.Now()))
	r.ObserveJob("refresh", time.Second, nil)
	r.RecordNotification("log", nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveJob("notify", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `curator_job_runs_total{job="notify",status="ok"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
