package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// KeyState is the tri-state consumers render from.
type KeyState string

const (
	StateLoading KeyState = "loading"
	StateReady   KeyState = "ready"
	StateFailed  KeyState = "failed"
)

// Status is the observable state of one tracked resource.
type Status struct {
	State       KeyState  `json:"state"`
	LastFetched time.Time `json:"last_fetched,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

type trackedKey struct {
	key   string
	ttl   time.Duration
	fetch FetchFunc
}

// Refresher is the explicit refresh policy: registered resources are
// re-fetched from a single background loop when their staleness window
// lapses, and RefreshAll re-fetches everything regardless of staleness
// (the window-focus analog, wired to SIGHUP and the dashboard endpoint).
type Refresher struct {
	queries *Queries
	poll    time.Duration

	mu     sync.Mutex
	keys   []trackedKey
	status map[string]Status
}

func NewRefresher(queries *Queries, poll time.Duration) *Refresher {
	return &Refresher{
		queries: queries,
		poll:    poll,
		status:  make(map[string]Status),
	}
}

// Track registers a resource for background refresh.
func (r *Refresher) Track(key string, ttl time.Duration, fetch FetchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, trackedKey{key: key, ttl: ttl, fetch: fetch})
	r.status[key] = Status{State: StateLoading}
}

// Status returns the tri-state for one key. Untracked keys read as loading.
func (r *Refresher) Status(key string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.status[key]; ok {
		return s
	}
	return Status{State: StateLoading}
}

// Run drives the staleness-based refresh loop until the context ends.
func (r *Refresher) Run(ctx context.Context) {
	// Prime every tracked key once before settling into the poll cadence.
	r.sweep(ctx, false)

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx, false)
		}
	}
}

// RefreshAll re-fetches every tracked key, ignoring staleness windows.
func (r *Refresher) RefreshAll(ctx context.Context) {
	r.sweep(ctx, true)
}

func (r *Refresher) sweep(ctx context.Context, force bool) {
	r.mu.Lock()
	keys := make([]trackedKey, len(r.keys))
	copy(keys, r.keys)
	r.mu.Unlock()

	for _, tk := range keys {
		var err error
		if force {
			_, err = r.queries.Refresh(ctx, tk.key, tk.fetch)
		} else {
			_, err = r.queries.Fetch(ctx, tk.key, tk.ttl, tk.fetch)
		}
		r.record(tk.key, err)
	}
}

func (r *Refresher) record(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("refresh failed")
		s := r.status[key]
		s.State = StateFailed
		s.LastError = err.Error()
		r.status[key] = s
		return
	}
	r.status[key] = Status{State: StateReady, LastFetched: time.Now()}
}
