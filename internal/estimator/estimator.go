// Package estimator converts discrete, possibly-stale timeline samples
// into a continuously advancing playback position.
//
// The provider reports position only at coarse granularity; interpolating
// via the wall-clock delta yields smooth second-by-second advancement
// between polls, while any large jump (new track, manual seek, external
// correction) is detected and snaps the estimate back to ground truth.
package estimator

import (
	"time"

	"github.com/Crypto90/nowplayingd/internal/domain"
)

// driftTolerance absorbs normal polling jitter; raw samples diverging by
// more than this from the previous raw sample are treated as a seek.
const driftTolerance = 1.0

// Estimator holds the reconciliation state between raw timeline samples.
// Not safe for concurrent use; it is owned by the poller goroutine.
type Estimator struct {
	lastSongID            string
	lastObservedPosition  float64
	lastObservedWallClock time.Time
	lastReportedPosition  float64
	primed                bool
}

// New creates an estimator with no baseline; the first observation is
// always a reconciliation point.
func New() *Estimator {
	return &Estimator{}
}

// Estimate returns the position to publish for one raw observation taken
// at the given wall-clock instant.
func (e *Estimator) Estimate(songID string, rawPos float64, status domain.PlaybackStatus, now time.Time) float64 {
	if !e.primed || songID != e.lastSongID || abs(rawPos-e.lastObservedPosition) > driftTolerance {
		// Reconciliation point: discard interpolated drift and resync
		// to the raw provider sample.
		e.lastSongID = songID
		e.lastObservedPosition = rawPos
		e.lastObservedWallClock = now
		e.lastReportedPosition = rawPos
		e.primed = true
		return rawPos
	}

	var estimated float64
	if status == domain.StatusPlaying {
		estimated = e.lastReportedPosition + now.Sub(e.lastObservedWallClock).Seconds()
	} else {
		estimated = rawPos
	}

	e.lastObservedWallClock = now
	e.lastReportedPosition = estimated
	e.lastObservedPosition = rawPos
	return estimated
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
