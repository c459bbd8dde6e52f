package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues("anime", "error"))
	RecordGeneration("anime", errors.New("load failed"))
	RecordGeneration("anime", nil)
	if got := testutil.ToFloat64(GenerationsTotal.WithLabelValues("anime", "error")); got != before+1 {
		t.Fatalf("error counter = %v, want %v", got, before+1)
	}
}

func TestRecordWatermarkFallback(t *testing.T) {
	before := testutil.ToFloat64(WatermarksTotal.WithLabelValues("fallback"))
	RecordWatermark(true, 0)
	if got := testutil.ToFloat64(WatermarksTotal.WithLabelValues("fallback")); got != before+1 {
		t.Fatalf("fallback counter = %v, want %v", got, before+1)
	}
}

func TestRecordVideoExportEmptyMIME(t *testing.T) {
	before := testutil.ToFloat64(VideoExportsTotal.WithLabelValues("none", "error"))
	RecordVideoExport("", errors.New("unsupported"), 0)
	if got := testutil.ToFloat64(VideoExportsTotal.WithLabelValues("none", "error")); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}
}
