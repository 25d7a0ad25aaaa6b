// Package poller drives the media state synchronization loop: it samples
// the OS session provider once per interval, reconciles the playback
// position, resolves cover art, and publishes significant changes to the
// shared snapshot store.
package poller

import (
	"context"
	"time"

	"github.com/Crypto90/nowplayingd/internal/artwork"
	"github.com/Crypto90/nowplayingd/internal/config"
	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/Crypto90/nowplayingd/internal/estimator"
	"github.com/Crypto90/nowplayingd/internal/settings"
	"github.com/Crypto90/nowplayingd/internal/snapshot"
	"go.uber.org/zap"
)

// Poller owns the estimator and cover cache; both are touched only from
// the loop goroutine, so they need no locking of their own.
type Poller struct {
	logger   *zap.Logger
	provider domain.SessionProvider
	settings *settings.Manager
	store    *snapshot.Store
	est      *estimator.Estimator
	covers   *artwork.CoverCache
	interval time.Duration

	now             func() time.Time
	cancel          context.CancelFunc
	done            chan struct{}
	lastProviderLog time.Time // Rate limiting for provider failure warnings
}

// NewPoller creates the polling loop; Start launches it.
func NewPoller(
	logger *zap.Logger,
	cfg *config.AppConfig,
	prov domain.SessionProvider,
	mgr *settings.Manager,
	store *snapshot.Store,
) *Poller {
	return &Poller{
		logger:   logger,
		provider: prov,
		settings: mgr,
		store:    store,
		est:      estimator.New(),
		covers:   artwork.NewCoverCache(logger),
		interval: cfg.PollInterval(),
		now:      time.Now,
	}
}

// Start launches the poll loop in a goroutine and returns immediately.
func (p *Poller) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	p.logger.Info("Media poller started", zap.Duration("interval", p.interval))
	go p.runLoop(loopCtx)
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.logger.Info("Media poller stopped")
	return nil
}

func (p *Poller) runLoop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First sample immediately so the widget is not blank for a cycle.
	p.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle performs one poll. Every failure path is local: log, keep the
// current snapshot, try again next cycle.
func (p *Poller) cycle(ctx context.Context) {
	locked := p.settings.Get().LockedApp

	session, err := p.provider.CurrentSession(ctx)
	if err != nil {
		p.logProviderFailure(err)
		return
	}

	if session == nil {
		// While locked, transient session absence must not blank the
		// locked track's last known state.
		if locked == "" {
			p.publish(domain.DefaultSnapshot())
		}
		return
	}

	shortApp := domain.ShortAppID(session.SourceAppID())
	if locked != "" && shortApp != locked {
		p.logger.Debug("Session filtered by lock",
			zap.String("app", shortApp),
			zap.String("lockedApp", locked))
		return
	}

	props, err := session.Properties(ctx)
	if err != nil {
		p.logProviderFailure(err)
		return
	}
	status, err := session.PlaybackStatus()
	if err != nil {
		p.logProviderFailure(err)
		return
	}
	timeline, err := session.Timeline()
	if err != nil {
		p.logProviderFailure(err)
		return
	}

	title := props.Title
	if title == "" {
		title = "Unknown"
	}
	artist := props.Artist
	if artist == "" {
		artist = "Unknown"
	}

	songID := domain.SongID(title, artist)
	position := p.est.Estimate(songID, timeline.Position, status, p.now())
	cover := p.covers.Cover(ctx, songID, session.Thumbnail)

	p.publish(domain.Snapshot{
		Title:    title,
		Artist:   artist,
		Position: position,
		Duration: timeline.Duration,
		Cover:    cover,
		AppID:    session.SourceAppID(),
		Status:   status,
	})
}

// publish replaces the snapshot only when the candidate differs
// significantly from the current one, suppressing sub-second
// interpolation noise.
func (p *Poller) publish(candidate domain.Snapshot) {
	current := p.store.Get()
	if !isSignificant(candidate, current) {
		return
	}
	p.store.Set(candidate)

	if candidate.Title != current.Title || candidate.Artist != current.Artist || candidate.Status != current.Status {
		p.logger.Info("Media change detected",
			zap.String("title", candidate.Title),
			zap.String("artist", candidate.Artist),
			zap.String("app", candidate.AppID),
			zap.String("status", string(candidate.Status)))
	}
}

// logProviderFailure warns about provider errors, rate-limited so a
// disconnected provider does not spam the log once per cycle.
func (p *Poller) logProviderFailure(err error) {
	const warningInterval = 5 * time.Second
	now := p.now()
	if now.Sub(p.lastProviderLog) >= warningInterval {
		p.logger.Warn("Provider unavailable this cycle", zap.Error(err))
		p.lastProviderLog = now
	}
}
