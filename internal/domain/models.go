package domain

import "strings"

// PlaybackStatus represents the current state of the media session
type PlaybackStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlaybackStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlaybackStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlaybackStatus = "Stopped"
	// StatusClosed indicates the session was closed by the source application
	StatusClosed PlaybackStatus = "Closed"
	// StatusUnknown indicates the provider reported an unrecognized state
	StatusUnknown PlaybackStatus = "Unknown"
)

// Snapshot is the complete published media state. It is replaced wholesale
// by the poller once per significant cycle and read-only everywhere else.
type Snapshot struct {
	// Title of the currently playing track
	Title string
	// Artist name
	Artist string
	// Position is the estimated playback position in seconds
	Position float64
	// Duration is the track length in seconds
	Duration float64
	// Cover is the encoded artwork as a data URI, or empty
	Cover string
	// AppID is the source application identifier as reported by the provider
	AppID string
	// Status is the current playback status
	Status PlaybackStatus
}

// DefaultSnapshot returns the state published before any session is observed.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Title:  "Unknown",
		Artist: "Unknown",
		AppID:  "Unknown",
		Status: StatusStopped,
	}
}

// SongID derives the track identity used by the estimator and the cover
// cache. Title plus artist is the only stable identity the provider exposes.
func SongID(title, artist string) string {
	return title + "-" + artist
}

// ShortAppID reduces a package-qualified application id (e.g.
// "Spotify!Spotify") to its canonical short form by taking the substring
// after the first '!'. Unqualified ids are returned unchanged.
func ShortAppID(appID string) string {
	if i := strings.Index(appID, "!"); i >= 0 {
		return appID[i+1:]
	}
	return appID
}

// Layout names one of the overlay page arrangements
type Layout string

const (
	// LayoutHorizontal is the wide overlay arrangement (default)
	LayoutHorizontal Layout = "horizontal"
	// LayoutVertical is the stacked overlay arrangement
	LayoutVertical Layout = "vertical"
)

// Valid reports whether l is a known layout name.
func (l Layout) Valid() bool {
	return l == LayoutHorizontal || l == LayoutVertical
}

// Settings holds the user preferences persisted across restarts
type Settings struct {
	// LockedApp restricts published state to one source application,
	// matched against the short app id. Empty means no lock.
	LockedApp string `json:"locked_app,omitempty"`
	// Layout selects the overlay template served at /
	Layout Layout `json:"layout"`
}

// DefaultSettings returns the settings applied when no valid settings file
// exists.
func DefaultSettings() Settings {
	return Settings{Layout: LayoutHorizontal}
}
