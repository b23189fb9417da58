package metrics

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/checks"
	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
	"github.com/abdul-hamid-achik/echocheck/packages/http"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchange(method string, status int, d time.Duration) *checks.Exchange {
	return &checks.Exchange{
		Request:  http.NewRequest(method, "http://localhost:8080/x"),
		Response: &http.Response{StatusCode: status, Duration: d},
	}
}

func sampleRun() *runner.RunResult {
	return &runner.RunResult{
		ID:       "run-1",
		BaseURL:  "http://localhost:8080",
		Duration: time.Second,
		Passed:   2,
		Failed:   2,
		Results: []*runner.CheckResult{
			{Name: "get-basic", Passed: true, Duration: 10 * time.Millisecond, Exchanges: []*checks.Exchange{exchange("GET", 200, 10*time.Millisecond)}},
			{Name: "status-codes", Passed: true, Duration: 50 * time.Millisecond, Exchanges: []*checks.Exchange{
				exchange("GET", 200, 20*time.Millisecond),
				exchange("GET", 404, 30*time.Millisecond),
			}},
			{Name: "headers", Kind: runner.FailureAssertion, Duration: 40 * time.Millisecond, Exchanges: []*checks.Exchange{exchange("GET", 200, 40*time.Millisecond)}},
			{Name: "delay", Kind: runner.FailureError, Duration: 5 * time.Second, Exchanges: []*checks.Exchange{{
				Request: http.NewRequest("GET", "http://localhost:8080/delay/2"),
				Err:     errors.New("context deadline exceeded"),
			}}},
		},
	}
}

func TestRecorder_ObserveRun(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveRun(sampleRun())

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.checks.WithLabelValues("get-basic", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.checks.WithLabelValues("headers", "assertion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.checks.WithLabelValues("delay", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.lastFailed))
	assert.Equal(t, 4, testutil.CollectAndCount(rec.checkDuration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveRun(sampleRun())

	path := filepath.Join(t.TempDir(), "echocheck.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `echocheck_checks_total{check="get-basic",outcome="pass"} 1`)
	assert.Contains(t, string(data), "# TYPE echocheck_check_duration_seconds histogram")
	assert.Contains(t, string(data), "echocheck_last_run_failed_checks 2")
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRun())

	assert.Equal(t, int64(4), s.Count)
	assert.InDelta(t, float64(10*time.Millisecond), float64(s.Min), float64(50*time.Microsecond))
	assert.InDelta(t, float64(40*time.Millisecond), float64(s.Max), float64(100*time.Microsecond))
	assert.InDelta(t, float64(25*time.Millisecond), float64(s.Mean), float64(100*time.Microsecond))
	assert.LessOrEqual(t, s.P50, s.P95)
	assert.LessOrEqual(t, s.P95, s.P99)
}

func TestSummarize_NoResponses(t *testing.T) {
	s := Summarize(&runner.RunResult{})
	assert.Zero(t, s.Count)
	assert.Zero(t, s.P99)
}

func TestClampLatency(t *testing.T) {
	assert.Equal(t, int64(minLatencyUs), clampLatency(0))
	assert.Equal(t, int64(maxLatencyUs), clampLatency(2*time.Minute))
	assert.Equal(t, int64(1500), clampLatency(1500*time.Microsecond))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "metrics.json")
	require.NoError(t, WriteFile(jsonPath, sampleRun()))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var out JSONMetricsOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "run-1", out.Metadata.RunID)
	assert.Equal(t, JSONSummary{Total: 4, Passed: 2, Failed: 2}, out.Summary)
	assert.Equal(t, int64(4), out.Latency.Count)
	require.Len(t, out.Checks, 4)
	assert.Equal(t, "error", out.Checks[3].Outcome)
	assert.Equal(t, 2, out.Checks[1].Requests)

	promPath := filepath.Join(dir, "metrics.prom")
	require.NoError(t, WriteFile(promPath, sampleRun()))
	data, err = os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echocheck_requests_total")
}
