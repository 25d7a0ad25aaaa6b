package panel

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/Crypto90/nowplayingd/internal/settings"
	"github.com/Crypto90/nowplayingd/internal/snapshot"
	"go.uber.org/zap"
)

func newTestModel(t *testing.T) (model, *snapshot.Store, *settings.Manager) {
	t.Helper()

	store := snapshot.NewStore()
	fileStore := settings.NewFileStore(zap.NewNop(), filepath.Join(t.TempDir(), "settings.json"))
	mgr := settings.NewManager(zap.NewNop(), fileStore)

	return newModel(store, mgr, []string{"http://127.0.0.1:5000"}), store, mgr
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLayoutKeys(t *testing.T) {
	m, _, mgr := newTestModel(t)

	next, _ := m.Update(keyMsg("v"))
	m = next.(model)
	if got := mgr.Get().Layout; got != domain.LayoutVertical {
		t.Errorf("after 'v' layout = %q, want %q", got, domain.LayoutVertical)
	}

	next, _ = m.Update(keyMsg("h"))
	m = next.(model)
	if got := mgr.Get().Layout; got != domain.LayoutHorizontal {
		t.Errorf("after 'h' layout = %q, want %q", got, domain.LayoutHorizontal)
	}
}

func TestLockToggle(t *testing.T) {
	m, store, mgr := newTestModel(t)

	store.Set(domain.Snapshot{
		Title:  "Song",
		Artist: "Artist",
		AppID:  "Spotify.exe!Spotify",
		Status: domain.StatusPlaying,
	})

	// Pick up the published snapshot before toggling.
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(model)

	next, _ = m.Update(keyMsg("l"))
	m = next.(model)
	if got := mgr.Get().LockedApp; got != "Spotify" {
		t.Errorf("after first 'l' locked app = %q, want %q", got, "Spotify")
	}

	next, _ = m.Update(keyMsg("l"))
	m = next.(model)
	if got := mgr.Get().LockedApp; got != "" {
		t.Errorf("after second 'l' locked app = %q, want empty", got)
	}
}

func TestLockIgnoredWithoutSession(t *testing.T) {
	m, _, mgr := newTestModel(t)

	// Default snapshot carries the Unknown app id, which must not be
	// lockable.
	next, _ := m.Update(keyMsg("l"))
	m = next.(model)
	if got := mgr.Get().LockedApp; got != "" {
		t.Errorf("locked app = %q, want empty", got)
	}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command, got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestViewShowsSnapshot(t *testing.T) {
	m, store, _ := newTestModel(t)

	store.Set(domain.Snapshot{
		Title:    "Halcyon",
		Artist:   "Orbital",
		Position: 30,
		Duration: 120,
		AppID:    "Player!Player",
		Status:   domain.StatusPlaying,
	})
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(model)

	out := m.View()
	for _, want := range []string{"Halcyon", "Orbital", "Playing", "00:30", "02:00", "http://127.0.0.1:5000"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestWidgetURLs(t *testing.T) {
	urls := widgetURLs(":5000")
	if len(urls) == 0 {
		t.Fatal("expected at least the loopback URL")
	}
	if urls[0] != "http://127.0.0.1:5000" {
		t.Errorf("urls[0] = %q, want loopback on port 5000", urls[0])
	}

	urls = widgetURLs("bogus")
	if urls[0] != "http://127.0.0.1:5000" {
		t.Errorf("urls[0] = %q, want fallback port 5000", urls[0])
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{65, "01:05"},
		{-3, "00:00"},
		{3599, "59:59"},
	}
	for _, tc := range cases {
		if got := formatTime(tc.in); got != tc.want {
			t.Errorf("formatTime(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
