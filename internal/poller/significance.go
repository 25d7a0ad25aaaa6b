package poller

import "github.com/Crypto90/nowplayingd/internal/domain"

// positionTolerance is the published-position delta below which a
// candidate is considered interpolation noise rather than a new state.
const positionTolerance = 0.5

// isSignificant reports whether the candidate warrants replacing the
// current snapshot. It governs publication only; readers re-read the
// snapshot directly regardless.
func isSignificant(candidate, current domain.Snapshot) bool {
	if candidate.Title != current.Title ||
		candidate.Artist != current.Artist ||
		candidate.AppID != current.AppID ||
		candidate.Status != current.Status {
		return true
	}
	delta := candidate.Position - current.Position
	if delta < 0 {
		delta = -delta
	}
	return delta > positionTolerance
}
