package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJobMetricsCountsRunsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.ObserveRun("queue-retention", 50*time.Millisecond, nil)
	m.ObserveRun("queue-retention", 10*time.Millisecond, errors.New("boom"))
	m.AddAffected("queue-retention", 7)
	m.AddAffected("queue-retention", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for result, want := range map[string]float64{"success": 1, "failure": 1} {
		got, err := counterValue(mfs, "kickstock_job_runs_total", map[string]string{"job": "queue-retention", "result": result})
		if err != nil {
			t.Fatalf("fetch %s runs: %v", result, err)
		}
		if got != want {
			t.Fatalf("expected %s=%v, got %v", result, want, got)
		}
	}

	if got, err := counterValue(mfs, "kickstock_job_rows_affected_total", map[string]string{"job": "queue-retention"}); err != nil {
		t.Fatalf("fetch affected: %v", err)
	} else if got != 7 {
		t.Fatalf("expected affected=7, got %f", got)
	}
}

func TestJobMetricsNilSafe(t *testing.T) {
	var m *JobMetrics
	m.ObserveRun("x", time.Second, nil)
	m.AddAffected("x", 3)
	NewJobMetrics(nil).ObserveRun("x", time.Second, nil)
}
