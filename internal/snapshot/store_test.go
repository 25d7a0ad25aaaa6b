package snapshot

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Crypto90/nowplayingd/internal/domain"
)

func TestStore_DefaultSnapshot(t *testing.T) {
	store := NewStore()
	got := store.Get()

	if got.Title != "Unknown" || got.Artist != "Unknown" {
		t.Errorf("expected Unknown defaults, got %+v", got)
	}
	if got.Status != domain.StatusStopped {
		t.Errorf("expected Stopped default status, got %v", got.Status)
	}
}

func TestStore_SetReplacesWholesale(t *testing.T) {
	store := NewStore()

	store.Set(domain.Snapshot{Title: "A", Artist: "B", Cover: "data:image/png;base64,xyz"})
	store.Set(domain.Snapshot{Title: "C", Artist: "D"})

	got := store.Get()
	if got.Title != "C" || got.Artist != "D" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	// Fields from the previous snapshot must not leak through.
	if got.Cover != "" {
		t.Errorf("stale cover survived replacement: '%s'", got.Cover)
	}
}

// TestStore_NoTornReads hammers the store from concurrent writers and
// readers. Every observed snapshot must be internally consistent: the
// writer always publishes matching title/artist pairs.
func TestStore_NoTornReads(t *testing.T) {
	store := NewStore()
	store.Set(domain.Snapshot{Title: "t0", Artist: "a0"})

	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				n := id*1000 + i
				store.Set(domain.Snapshot{
					Title:  fmt.Sprintf("t%d", n),
					Artist: fmt.Sprintf("a%d", n),
				})
			}
		}(w)
	}

	errs := make(chan string, 8)
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				got := store.Get()
				if got.Title[1:] != got.Artist[1:] {
					errs <- fmt.Sprintf("torn read: %+v", got)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
