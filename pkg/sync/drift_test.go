// ABOUTME: Tests for device clock drift estimation
// ABOUTME: Verifies offset tracking, outlier rejection and quality reporting
package sync

import (
	"math"
	"testing"
	"time"
)

func TestDriftEstimatorConstantOffset(t *testing.T) {
	t.Parallel()

	d := NewDriftEstimator()
	if d.CheckQuality(time.Unix(0, 0)) != QualityLost {
		t.Error("expected lost quality before any samples")
	}

	base := time.Unix(1000, 0)
	for i := 0; i < 50; i++ {
		wall := float64(i) * 0.01
		d.Observe(base.Add(time.Duration(i)*10*time.Millisecond), wall, wall-0.002)
	}

	if got := d.Offset(); got < 1900*time.Microsecond || got > 2100*time.Microsecond {
		t.Errorf("expected offset near 2ms, got %v", got)
	}
	if math.Abs(d.Drift()) > 1e-3 {
		t.Errorf("expected negligible drift, got %v", d.Drift())
	}
	if d.CheckQuality(base.Add(500*time.Millisecond)) != QualityGood {
		t.Error("expected good quality")
	}
}

func TestDriftEstimatorTracksSlowDevice(t *testing.T) {
	t.Parallel()

	d := NewDriftEstimator()
	base := time.Unix(1000, 0)

	// Device clock runs 0.1% slow
	for i := 0; i < 200; i++ {
		wall := float64(i) * 0.01
		d.Observe(base.Add(time.Duration(i)*10*time.Millisecond), wall, wall*0.999)
	}

	if math.Abs(d.Drift()-0.001) > 2e-4 {
		t.Errorf("expected drift near 0.001, got %v", d.Drift())
	}
}

func TestDriftEstimatorRejectsOutliers(t *testing.T) {
	t.Parallel()

	d := NewDriftEstimator()
	base := time.Unix(1000, 0)
	d.Observe(base, 0, 0)
	d.Observe(base.Add(10*time.Millisecond), 0.01, 0.01)
	d.Observe(base.Add(20*time.Millisecond), 0.02, 0.02)

	before := d.Samples()
	d.Observe(base.Add(30*time.Millisecond), 0.03, 0.5)

	if d.Samples() != before {
		t.Error("expected clock jump sample to be discarded")
	}
	if got := d.Offset(); got > time.Millisecond || got < -time.Millisecond {
		t.Errorf("offset moved after outlier: %v", got)
	}
}

func TestDriftEstimatorGoesStale(t *testing.T) {
	t.Parallel()

	d := NewDriftEstimator()
	base := time.Unix(1000, 0)
	d.Observe(base, 0, 0)

	if d.CheckQuality(base.Add(2*time.Second)) != QualityLost {
		t.Error("expected lost quality after samples stop")
	}
}
