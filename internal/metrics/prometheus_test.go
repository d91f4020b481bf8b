package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m := New()

	m.RecordParse(StatusOK, "native", 3*time.Millisecond)
	m.RecordParse(StatusOK, "native", time.Millisecond)
	m.RecordParse(StatusError, "cyclic reference", time.Millisecond)
	m.RecordAnalysis(12, time.Millisecond)
	m.RecordAnalysis(24, time.Millisecond)
	m.RecordWarning("OpenSurfaceApproximation")
	m.RecordCarbon(300, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(StatusOK, "native")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(StatusError, "cyclic reference")))
	assert.Equal(t, 36.0, testutil.ToFloat64(m.TrianglesAnalyzed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WarningsTotal.WithLabelValues("OpenSurfaceApproximation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnmatchedVolume))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.CarbonTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ParseDuration))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordWarning("InvertedWinding")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.WarningsTotal.WithLabelValues("InvertedWinding")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordAnalysis(5, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gomassing_triangles_analyzed_total 5")
}
