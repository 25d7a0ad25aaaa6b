package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Crypto90/nowplayingd/internal/config"
	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/Crypto90/nowplayingd/internal/settings"
	"github.com/Crypto90/nowplayingd/internal/snapshot"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *snapshot.Store, *settings.Manager) {
	t.Helper()
	logger := zap.NewNop()
	store := snapshot.NewStore()
	mgr := settings.NewManager(logger, settings.NewFileStore(logger, filepath.Join(t.TempDir(), "settings.json")))

	srv, err := NewServer(logger, config.NewAppConfig(logger), store, mgr)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv, store, mgr
}

func TestMediaEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	store.Set(domain.Snapshot{
		Title: "Bohemian Rhapsody", Artist: "Queen",
		Position: 13.2, Duration: 354,
		Cover: "data:image/png;base64,abc",
		AppID: "Spotify!Spotify", Status: domain.StatusPlaying,
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/media", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %s", ct)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	// Flat wire keys per the overlay contract.
	for _, key := range []string{"title", "artist", "position", "duration", "cover", "app_id", "status"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in media payload", key)
		}
	}
	if got["title"] != "Bohemian Rhapsody" || got["status"] != "Playing" {
		t.Errorf("unexpected payload: %v", got)
	}
	if got["position"].(float64) != 13.2 {
		t.Errorf("position: %v", got["position"])
	}
}

func TestIndexRendersActiveLayout(t *testing.T) {
	srv, store, mgr := newTestServer(t)
	store.Set(domain.Snapshot{Title: "Song & Dance", Artist: "Artist", Status: domain.StatusPlaying})

	// Default horizontal layout renders.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Song &amp; Dance") {
		t.Error("title not rendered (or not HTML-escaped)")
	}

	// Switching layout changes the rendered template.
	mgr.SetLayout(domain.LayoutVertical)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d after layout switch", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "flex-direction: column") {
		t.Error("vertical layout not rendered after switch")
	}
}

func TestReloadRedirects(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/reload", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect location: %s", loc)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv, _, mgr := newTestServer(t)

	form := url.Values{"layout": {"vertical"}}
	req := httptest.NewRequest("POST", "/layout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status %d, want 303", rec.Code)
	}
	if got := mgr.Get().Layout; got != domain.LayoutVertical {
		t.Errorf("layout not applied: %s", got)
	}
}

func TestLayoutEndpointRejectsInvalid(t *testing.T) {
	srv, _, mgr := newTestServer(t)

	form := url.Values{"layout": {"diagonal"}}
	req := httptest.NewRequest("POST", "/layout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if got := mgr.Get().Layout; got != domain.LayoutHorizontal {
		t.Errorf("invalid layout applied: %s", got)
	}
}

func TestLayoutEndpointMethodGuard(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/layout", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", rec.Code)
	}
}

func TestLockEndpoint(t *testing.T) {
	srv, _, mgr := newTestServer(t)

	post := func(app string) {
		form := url.Values{"app": {app}}
		req := httptest.NewRequest("POST", "/lock", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status %d, want 303", rec.Code)
		}
	}

	post("Spotify")
	if got := mgr.Get().LockedApp; got != "Spotify" {
		t.Errorf("lock not applied: %s", got)
	}

	post("")
	if got := mgr.Get().LockedApp; got != "" {
		t.Errorf("lock not cleared: %s", got)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}
