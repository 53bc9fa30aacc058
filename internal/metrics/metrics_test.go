package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
}

func TestEncoderFailuresByFeature(t *testing.T) {
	before := testutil.ToFloat64(EncoderFailures.WithLabelValues("menu"))
	EncoderFailures.WithLabelValues("menu").Inc()
	EncoderFailures.WithLabelValues("tags").Inc()

	if got := testutil.ToFloat64(EncoderFailures.WithLabelValues("menu")); got != before+1 {
		t.Errorf("expected menu failures %f, got %f", before+1, got)
	}
}

func TestRequestCounter(t *testing.T) {
	RecommendRequests.WithLabelValues("success").Add(2)
	if got := testutil.ToFloat64(RecommendRequests.WithLabelValues("success")); got < 2 {
		t.Errorf("expected at least 2 successes, got %f", got)
	}
}
