package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncPageOutcome(PageWritten)
	pr.IncPageOutcome(PageWritten)
	pr.IncPageOutcome(PageFolder)
	pr.SetStaticFiles(3, 1)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	var pages float64
	for _, mf := range mfs {
		if mf.GetName() != "yassg_pages_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			pages += m.GetCounter().GetValue()
		}
	}
	require.InDelta(t, 3, pages, 0.001)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.ObserveBuildDuration(time.Second)
		pr.IncPageOutcome(PageUnchanged)
	})
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("success")

	path := filepath.Join(t.TempDir(), "yassg.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `yassg_build_outcomes_total{outcome="success"} 1`))
}

func TestTestRecorderCounts(t *testing.T) {
	r := newTestRecorder()
	r.IncStageResult("render", ResultFatal)
	r.IncPageOutcome(PageUnchanged)
	require.Equal(t, 1, r.stageResults["render"][ResultFatal])
	require.Equal(t, 1, r.pages[PageUnchanged])
}
