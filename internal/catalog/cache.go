package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"animehub/pkg/models"
)

// State is the cache load state.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "empty"
	}
}

// Info is the queryable cache status for the ops surface.
type Info struct {
	State     string    `json:"state"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Cache holds the deduplicated catalog and its load state. At most one load
// is in flight at any time; the mutex guards only the state check-and-set,
// never a sleeping or fetching operation. Readers get snapshot slices that
// are replaced wholesale, never mutated.
type Cache struct {
	loader *Loader

	// OnLoaded, when set, runs on its own goroutine after each successful
	// load with the freshly committed entries (snapshot persistence).
	OnLoaded func([]models.AnimeEntry)

	mu        sync.Mutex
	state     State
	entries   []models.AnimeEntry
	updatedAt time.Time
	done      chan struct{} // closed when the in-flight load completes
}

func NewCache(loader *Loader) *Cache {
	return &Cache{loader: loader}
}

// Get returns the current snapshot without triggering a load. It may be
// stale or empty.
func (c *Cache) Get() []models.AnimeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}

// Info reports the cache state for the ops endpoints.
func (c *Cache) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Info{State: c.state.String(), Size: len(c.entries), UpdatedAt: c.updatedAt}
}

// Warm seeds the cache with previously persisted entries. It only applies
// when the cache is empty and idle, so it never races a live load.
func (c *Cache) Warm(entries []models.AnimeEntry) {
	if len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEmpty || len(c.entries) > 0 {
		return
	}
	c.entries = entries
	c.state = StateLoaded
	c.updatedAt = time.Now()
	log.Printf("[catalog] cache warmed from snapshot: %d entries", len(entries))
}

// EnsureLoaded returns the catalog, loading it synchronously when the cache
// is empty. While another caller's load is in flight, a previous snapshot
// is returned if one exists; otherwise the call waits for that load to
// finish. Exactly one upstream load runs regardless of caller count.
func (c *Cache) EnsureLoaded(ctx context.Context) []models.AnimeEntry {
	c.mu.Lock()
	switch c.state {
	case StateLoaded:
		entries := c.entries
		c.mu.Unlock()
		return entries

	case StateLoading:
		if len(c.entries) > 0 {
			entries := c.entries
			c.mu.Unlock()
			return entries
		}
		done := c.done
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return c.Get()

	default: // StateEmpty: this caller becomes the loader
		c.state = StateLoading
		c.done = make(chan struct{})
		done := c.done
		c.mu.Unlock()
		return c.load(ctx, done)
	}
}

// Reload clears the loaded flag and kicks off a fresh load in the
// background. Issued while a load is in flight it is a no-op; the in-flight
// load is allowed to finish. Returns whether a new load was scheduled.
func (c *Cache) Reload() bool {
	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return false
	}
	// Previous entries stay visible to readers until the new load commits.
	c.state = StateEmpty
	c.mu.Unlock()

	go c.EnsureLoaded(context.Background())
	return true
}

// load runs the single in-flight load. A load that produces nothing leaves
// the cache empty rather than stuck in loading.
func (c *Cache) load(ctx context.Context, done chan struct{}) []models.AnimeEntry {
	entries := c.loader.LoadAll(ctx)
	loaded := len(entries) > 0

	c.mu.Lock()
	if loaded {
		c.entries = entries
		c.state = StateLoaded
		c.updatedAt = time.Now()
	} else {
		c.state = StateEmpty
		entries = c.entries // fall back to whatever snapshot existed
	}
	close(done)
	c.mu.Unlock()

	if loaded && c.OnLoaded != nil {
		snapshot := entries
		go c.OnLoaded(snapshot)
	}
	return entries
}
