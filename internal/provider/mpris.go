//go:build linux

package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisPrefix  = "org.mpris.MediaPlayer2."
	mprisPath    = "/org/mpris/MediaPlayer2"
	propMetadata = "org.mpris.MediaPlayer2.Player.Metadata"
	propStatus   = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
	propPosition = "org.mpris.MediaPlayer2.Player.Position"
)

// MprisProvider resolves the current media session via the D-Bus MPRIS
// interface. The connection is established lazily and dropped on bus
// errors so the next poll cycle reconnects.
type MprisProvider struct {
	logger  *zap.Logger
	fetcher domain.Fetcher

	mu   sync.Mutex
	conn DBusClient
}

// NewMprisProvider creates a provider; no connection is made until the
// first session request.
func NewMprisProvider(logger *zap.Logger, fetcher domain.Fetcher) *MprisProvider {
	return &MprisProvider{logger: logger, fetcher: fetcher}
}

// CurrentSession returns a handle to the active MPRIS player, preferring
// a playing one. (nil, nil) means no player is on the bus.
func (p *MprisProvider) CurrentSession(ctx context.Context) (domain.Session, error) {
	conn, err := p.client()
	if err != nil {
		return nil, fmt.Errorf("session bus connection failed: %w", err)
	}

	names, err := conn.ListNames()
	if err != nil {
		p.dropClient()
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	if len(players) == 0 {
		return nil, nil
	}

	// Prefer the player that is actually playing; multiple players idling
	// in the background are common.
	chosen := players[0]
	for _, name := range players {
		variant, err := conn.GetProperty(name, mprisPath, propStatus)
		if err != nil {
			continue
		}
		if s, ok := variant.Value().(string); ok && s == "Playing" {
			chosen = name
			break
		}
	}

	return &mprisSession{
		logger:  p.logger,
		conn:    conn,
		fetcher: p.fetcher,
		busName: chosen,
	}, nil
}

// Close releases the bus connection
func (p *MprisProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *MprisProvider) client() (DBusClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		return p.conn, nil
	}
	conn, err := NewStdDBusClient()
	if err != nil {
		return nil, err
	}
	p.logger.Info("Connected to session bus")
	p.conn = conn
	return conn, nil
}

func (p *MprisProvider) dropClient() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		p.conn = nil
	}
}

// mprisSession is a one-cycle handle to a specific player. The metadata
// map is fetched once and reused across Properties, Timeline, and
// Thumbnail; handles are recreated every poll, so staleness is bounded by
// one cycle.
type mprisSession struct {
	logger  *zap.Logger
	conn    DBusClient
	fetcher domain.Fetcher
	busName string

	metaOnce sync.Once
	meta     map[string]dbus.Variant
	metaErr  error
}

func (s *mprisSession) metadata() (map[string]dbus.Variant, error) {
	s.metaOnce.Do(func() {
		variant, err := s.conn.GetProperty(s.busName, mprisPath, propMetadata)
		if err != nil {
			s.metaErr = fmt.Errorf("failed to get metadata: %w", err)
			return
		}
		// Some players return nil or unexpected types when idle; treat
		// that as empty metadata instead of failing.
		if m, ok := variant.Value().(map[string]dbus.Variant); ok {
			s.meta = m
		}
	})
	return s.meta, s.metaErr
}

// Properties returns the track metadata for the session
func (s *mprisSession) Properties(ctx context.Context) (domain.SessionProperties, error) {
	meta, err := s.metadata()
	if err != nil {
		return domain.SessionProperties{}, err
	}

	var props domain.SessionProperties
	if titleVar, ok := meta["xesam:title"]; ok {
		if title, ok := titleVar.Value().(string); ok {
			props.Title = title
		}
	}
	if artistVar, ok := meta["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			if len(artists) > 0 {
				props.Artist = artists[0]
			}
		case string:
			// Some non-compliant players send a plain string
			props.Artist = artists
		default:
			s.logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}
	return props, nil
}

// PlaybackStatus returns the current playback state
func (s *mprisSession) PlaybackStatus() (domain.PlaybackStatus, error) {
	variant, err := s.conn.GetProperty(s.busName, mprisPath, propStatus)
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("failed to get playback status: %w", err)
	}
	status, ok := variant.Value().(string)
	if !ok {
		return domain.StatusUnknown, fmt.Errorf("invalid playback status format")
	}

	switch status {
	case "Playing":
		return domain.StatusPlaying, nil
	case "Paused":
		return domain.StatusPaused, nil
	case "Stopped":
		return domain.StatusStopped, nil
	default:
		return domain.StatusUnknown, nil
	}
}

// Timeline returns the raw position and duration in seconds
func (s *mprisSession) Timeline() (domain.Timeline, error) {
	var tl domain.Timeline

	variant, err := s.conn.GetProperty(s.busName, mprisPath, propPosition)
	if err != nil {
		// Position is optional in MPRIS; a player without it reports 0.
		s.logger.Debug("Player exposes no Position property", zap.String("player", s.busName))
	} else if micros, ok := asInt64(variant.Value()); ok {
		tl.Position = float64(micros) / 1e6
	}

	meta, err := s.metadata()
	if err != nil {
		return tl, err
	}
	if lengthVar, ok := meta["mpris:length"]; ok {
		if micros, ok := asInt64(lengthVar.Value()); ok {
			tl.Duration = float64(micros) / 1e6
		}
	}

	if tl.Position < 0 {
		tl.Position = 0
	}
	if tl.Duration < 0 {
		tl.Duration = 0
	}
	return tl, nil
}

// SourceAppID returns the player's bus name without the MPRIS prefix
func (s *mprisSession) SourceAppID() string {
	return strings.TrimPrefix(s.busName, mprisPrefix)
}

// Thumbnail resolves mpris:artUrl and fetches the bytes behind it
func (s *mprisSession) Thumbnail(ctx context.Context) ([]byte, error) {
	meta, err := s.metadata()
	if err != nil {
		return nil, err
	}

	artVar, ok := meta["mpris:artUrl"]
	if !ok {
		return nil, fmt.Errorf("no artwork url")
	}
	artURL, ok := artVar.Value().(string)
	if !ok || artURL == "" {
		return nil, fmt.Errorf("no artwork url")
	}

	return s.fetcher.Fetch(ctx, artURL)
}

// asInt64 normalizes the numeric variant types different players use for
// microsecond timestamps.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
