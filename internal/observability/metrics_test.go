package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
)

func sampleAnalysis() *bundlesize.Analysis {
	return &bundlesize.Analysis{
		Files: []bundlesize.FileEntry{
			bundlesize.NewFileEntry("index.js", 2048),
			bundlesize.NewFileEntry("vendor.js", 1024),
			bundlesize.NewFileEntry("style.css", 512),
			bundlesize.NewFileEntry("logo.svg", 256),
		},
		TotalSize:  3840,
		JSSize:     3072,
		CSSSize:    512,
		ChunkCount: 2,
	}
}

func TestNewMetrics(t *testing.T) {
	t.Run("metrics use a private registry", func(t *testing.T) {
		m1 := NewMetrics()
		m2 := NewMetrics()

		assert.NotSame(t, m1.Registry(), m2.Registry())
	})
}

func TestMetrics_RecordAnalysis(t *testing.T) {
	m := NewMetrics()
	m.RecordAnalysis(sampleAnalysis())

	assert.Equal(t, 3840.0, testutil.ToFloat64(m.bundleBytes.WithLabelValues("total")))
	assert.Equal(t, 3072.0, testutil.ToFloat64(m.bundleBytes.WithLabelValues("js")))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.bundleBytes.WithLabelValues("css")))
	assert.Equal(t, 256.0, testutil.ToFloat64(m.bundleBytes.WithLabelValues("image")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bundleFiles.WithLabelValues("js")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bundleChunks))
}

func TestMetrics_RecordScore(t *testing.T) {
	testCases := []struct {
		name   string
		score  float64
		target float64
		passed float64
	}{
		{"above target", 9.5, 8.5, 1},
		{"exactly target", 8.5, 8.5, 1},
		{"below target", 7, 8.5, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMetrics()
			m.RecordScore(tc.score, tc.target)

			assert.Equal(t, tc.score, testutil.ToFloat64(m.bundleScore))
			assert.Equal(t, tc.target, testutil.ToFloat64(m.bundleTarget))
			assert.Equal(t, tc.passed, testutil.ToFloat64(m.bundlePassed))
		})
	}
}

func TestMetrics_RecordRun(t *testing.T) {
	m := NewMetrics()
	finished := time.Unix(1700000000, 0)
	m.RecordRun(finished, 1500*time.Millisecond)

	assert.Equal(t, 1.5, testutil.ToFloat64(m.runDuration))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastRunUnixTime))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordAnalysis(sampleAnalysis())
	m.RecordScore(9, 8.5)

	path := filepath.Join(t.TempDir(), "textfile", "bundlescore.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "# TYPE bundlescore_score gauge")
	assert.Contains(t, content, "bundlescore_score 9")
	assert.Contains(t, content, `bundlescore_bundle_bytes{kind="total"} 3840`)
	assert.True(t, strings.HasSuffix(content, "\n"))

	count, err := testutil.GatherAndCount(m.Registry(), "bundlescore_passed")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
