package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
)

const (
	// Latencies are recorded in microseconds, 1us to 60s, 3 significant digits.
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// LatencySummary describes the distribution of request latencies in a run.
type LatencySummary struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Summarize computes latency percentiles over every response received in
// result. Failed requests are not counted.
func Summarize(result *runner.RunResult) *LatencySummary {
	h := hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)
	for _, cr := range result.Results {
		for _, ex := range cr.Exchanges {
			if ex.Err != nil || ex.Response == nil {
				continue
			}
			_ = h.RecordValue(clampLatency(ex.Response.Duration))
		}
	}

	if h.TotalCount() == 0 {
		return &LatencySummary{}
	}

	return &LatencySummary{
		Count: h.TotalCount(),
		Min:   us(h.Min()),
		Max:   us(h.Max()),
		Mean:  us(int64(h.Mean())),
		P50:   us(h.ValueAtQuantile(50)),
		P95:   us(h.ValueAtQuantile(95)),
		P99:   us(h.ValueAtQuantile(99)),
	}
}

func clampLatency(d time.Duration) int64 {
	v := d.Microseconds()
	if v < minLatencyUs {
		v = minLatencyUs
	}
	if v > maxLatencyUs {
		v = maxLatencyUs
	}
	return v
}

func us(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
