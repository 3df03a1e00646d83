package refresher

import "time"

const (
	// RefreshFactor is the share of the session timeout after which a token is refreshed.
	RefreshFactor = 0.05
	// MinRefreshInterval is the lower bound of the refresh interval, in minutes.
	MinRefreshInterval = 15.0
	// MaxRefreshInterval is the upper bound of the refresh interval, in minutes.
	MaxRefreshInterval = 120.0
	// DebounceWindow is the quiet period after the last activity before a check runs.
	DebounceWindow = 2 * time.Second
)

// RefreshInterval returns clamp(timeoutMinutes*RefreshFactor, Min, Max) minutes.
func RefreshInterval(timeoutMinutes float64) float64 {
	return min(max(timeoutMinutes*RefreshFactor, MinRefreshInterval), MaxRefreshInterval)
}

// ElapsedMinutes returns the minutes between since and now as a float.
func ElapsedMinutes(since, now time.Time) float64 {
	return now.Sub(since).Minutes()
}
