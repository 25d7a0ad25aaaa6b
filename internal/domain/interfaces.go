package domain

import "context"

// SessionProvider abstracts the OS "now playing" API.
// Implementations should handle the platform media session bus.
type SessionProvider interface {
	// CurrentSession returns the currently active media session, or
	// (nil, nil) when no application is playing anything. Errors are
	// transient; callers are expected to retry on the next cycle.
	CurrentSession(ctx context.Context) (Session, error)
}

// Session is a handle to one application's media session. All reads go
// back to the provider, so any method may fail if the session vanished.
type Session interface {
	// Properties returns the track metadata for the session
	Properties(ctx context.Context) (SessionProperties, error)

	// PlaybackStatus returns the current playback state
	PlaybackStatus() (PlaybackStatus, error)

	// Timeline returns the raw position and duration in seconds.
	// The position is reported at coarse granularity and may be stale.
	Timeline() (Timeline, error)

	// SourceAppID returns the opaque source application identifier
	SourceAppID() string

	// Thumbnail returns the raw artwork bytes for the current track.
	// The encoding is unspecified and must be passed through opaque.
	Thumbnail(ctx context.Context) ([]byte, error)
}

// SessionProperties carries the textual track metadata
type SessionProperties struct {
	Title  string
	Artist string
}

// Timeline carries one raw timeline sample
type Timeline struct {
	Position float64
	Duration float64
}

// Fetcher defines the interface for retrieving artwork bytes
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SettingsStore persists user preferences across restarts
type SettingsStore interface {
	// Load reads the persisted settings; a missing or unreadable file
	// yields defaults, never an error
	Load() Settings

	// Save persists the settings so that a crash mid-write cannot
	// corrupt the previously valid file
	Save(Settings) error
}

// SnapshotReader is the read side of the shared snapshot store
type SnapshotReader interface {
	// Get returns a copy of the current snapshot
	Get() Snapshot
}
