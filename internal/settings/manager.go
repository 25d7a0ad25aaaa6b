package settings

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Manager is the in-memory authority for the current settings. Every
// change is written through to the store, but a failed write only gets
// logged: the running process keeps serving the state the user asked for.
type Manager struct {
	logger *zap.Logger
	store  domain.SettingsStore

	mu      sync.RWMutex
	current domain.Settings
}

// NewManager creates a manager seeded from the persisted settings
func NewManager(logger *zap.Logger, store domain.SettingsStore) *Manager {
	return &Manager{
		logger:  logger,
		store:   store,
		current: store.Load(),
	}
}

// Get returns a copy of the current settings
func (m *Manager) Get() domain.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetLayout changes the overlay layout and persists it. Invalid layout
// names are ignored.
func (m *Manager) SetLayout(layout domain.Layout) {
	if !layout.Valid() {
		m.logger.Warn("Ignoring unknown layout", zap.String("layout", string(layout)))
		return
	}
	m.update(func(s *domain.Settings) { s.Layout = layout })
}

// SetLockedApp sets or clears the locked application (short app id).
// An empty id clears the lock.
func (m *Manager) SetLockedApp(appID string) {
	m.update(func(s *domain.Settings) { s.LockedApp = appID })
}

func (m *Manager) update(apply func(*domain.Settings)) {
	m.mu.Lock()
	apply(&m.current)
	snapshot := m.current
	m.mu.Unlock()

	if err := m.store.Save(snapshot); err != nil {
		// In-memory state stays authoritative for the running process.
		m.logger.Error("Failed to persist settings", zap.Error(err))
	}
}

// Watch reloads the settings when the backing file changes on disk, so a
// hand-edited file takes effect without a restart. It returns immediately;
// watching stops when ctx is cancelled. Only file stores can be watched.
func (m *Manager) Watch(ctx context.Context) error {
	fs, ok := m.store.(*FileStore)
	if !ok {
		m.logger.Debug("Settings store is not file-backed, watch disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(fs.Path()); err != nil {
		// The file may not exist yet; watch its directory instead so the
		// first save is picked up.
		if dirErr := watcher.Add(filepath.Dir(fs.Path())); dirErr != nil {
			watcher.Close()
			return err
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				reloaded := m.store.Load()
				m.mu.Lock()
				m.current = reloaded
				m.mu.Unlock()
				m.logger.Info("Settings reloaded from disk",
					zap.String("layout", string(reloaded.Layout)),
					zap.String("lockedApp", reloaded.LockedApp))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Warn("Settings watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
