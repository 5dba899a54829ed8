// ABOUTME: Drift estimation between the device playback clock and the wall clock
// ABOUTME: Tracks both offset AND drift so slow device clocks are visible in diagnostics
package sync

import (
	"log"
	"time"
)

// Quality represents how trustworthy the drift estimate is
type Quality int

const (
	QualityGood Quality = iota
	QualityDegraded
	QualityLost
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityDegraded:
		return "degraded"
	default:
		return "lost"
	}
}

const (
	// driftOutlier rejects samples whose residual suggests a clock jump
	driftOutlier = 50 * time.Millisecond
	// driftDegraded marks the estimate degraded when residuals grow this large
	driftDegraded = 5 * time.Millisecond
	// driftStale marks the estimate lost without samples for this long
	driftStale = time.Second
)

// DriftEstimator follows offset = wall - device with a fixed-gain filter.
// Not safe for concurrent use; the synchronizer goroutine owns it.
type DriftEstimator struct {
	offset        float64 // seconds, wall minus device
	drift         float64 // dimensionless, offset change per wall second
	lastWall      float64
	lastSample    time.Time
	samples       int
	rejected      int
	quality       Quality
	smoothingRate float64
}

// NewDriftEstimator creates an estimator with no samples
func NewDriftEstimator() *DriftEstimator {
	return &DriftEstimator{
		smoothingRate: 0.1,
		quality:       QualityLost,
	}
}

// Observe feeds one pairing of wall-clock and device elapsed seconds taken at now
func (d *DriftEstimator) Observe(now time.Time, wall, device float64) {
	measured := wall - device

	switch d.samples {
	case 0:
		d.offset = measured
		d.lastWall = wall
		d.lastSample = now
		d.samples++
		d.quality = QualityGood
		return
	case 1:
		dt := wall - d.lastWall
		if dt > 0 {
			d.drift = (measured - d.offset) / dt
		}
		d.offset = measured
		d.lastWall = wall
		d.lastSample = now
		d.samples++
		return
	}

	dt := wall - d.lastWall
	if dt <= 0 {
		return
	}

	predicted := d.offset + d.drift*dt
	residual := measured - predicted

	if residual > driftOutlier.Seconds() || residual < -driftOutlier.Seconds() {
		d.rejected++
		if d.rejected <= 3 {
			log.Printf("Sync: discarding drift sample, residual %.1fms (possible clock jump)", residual*1000)
		}
		return
	}

	d.offset = predicted + d.smoothingRate*residual
	d.drift += d.smoothingRate * residual / dt
	d.lastWall = wall
	d.lastSample = now
	d.samples++

	if residual < driftDegraded.Seconds() && residual > -driftDegraded.Seconds() {
		d.quality = QualityGood
	} else {
		d.quality = QualityDegraded
	}
}

// Offset returns the smoothed wall-minus-device offset
func (d *DriftEstimator) Offset() time.Duration {
	return time.Duration(d.offset * float64(time.Second))
}

// Drift returns the estimated drift rate
func (d *DriftEstimator) Drift() float64 {
	return d.drift
}

// Samples returns how many samples were accepted
func (d *DriftEstimator) Samples() int {
	return d.samples
}

// CheckQuality downgrades the estimate when samples stop arriving
func (d *DriftEstimator) CheckQuality(now time.Time) Quality {
	if d.samples > 0 && now.Sub(d.lastSample) > driftStale {
		d.quality = QualityLost
	}
	return d.quality
}
