package mapview

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sells-group/symbolmap/internal/dataset"
)

// Default registry limits.
const (
	DefaultMaxViews = 1024
	DefaultViewTTL  = 30 * time.Minute
)

// Registry hands out one MapView per client over a shared dataset. Views
// idle for longer than the TTL expire, and the least recently used view is
// evicted once the registry is full.
type Registry struct {
	ds    *dataset.Dataset
	opts  Options
	popup *PopupRenderer

	maxViews int
	ttl      time.Duration

	// mu keeps Get's refresh from resurrecting a view deleted meanwhile.
	mu    sync.Mutex
	views *expirable.LRU[string, *MapView]
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithViewLimits caps the number of live views and how long an unused view
// is kept. Non-positive values keep the defaults.
func WithViewLimits(maxViews int, ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if maxViews > 0 {
			r.maxViews = maxViews
		}
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRegistry validates opts against ds once so Create cannot fail on them
// later.
func NewRegistry(ds *dataset.Dataset, opts Options, ropts ...RegistryOption) (*Registry, error) {
	popup, err := NewPopupRenderer(opts.Popup)
	if err != nil {
		return nil, err
	}
	if _, err := newView(ds, opts, popup); err != nil {
		return nil, err
	}

	r := &Registry{
		ds:       ds,
		opts:     opts,
		popup:    popup,
		maxViews: DefaultMaxViews,
		ttl:      DefaultViewTTL,
	}
	for _, o := range ropts {
		o(r)
	}
	r.views = expirable.NewLRU[string, *MapView](r.maxViews, nil, r.ttl)
	return r, nil
}

// Dataset returns the shared dataset.
func (r *Registry) Dataset() *dataset.Dataset { return r.ds }

// Detached returns a fresh view that is not registered, for stateless queries.
func (r *Registry) Detached() *MapView {
	v, _ := newView(r.ds, r.opts, r.popup)
	return v
}

// Create registers a new view and returns its id.
func (r *Registry) Create() (string, *MapView) {
	v := r.Detached()
	id := uuid.NewString()
	r.views.Add(id, v)
	return id, v
}

// Get returns the view with id and restarts its idle timer.
func (r *Registry) Get(id string) (*MapView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views.Get(id)
	if !ok {
		return nil, false
	}
	r.views.Add(id, v)
	return v, true
}

// Delete removes the view with id and reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views.Remove(id)
}

// Len returns the number of registered views. Expired views may be counted
// until the background sweep removes them.
func (r *Registry) Len() int {
	return r.views.Len()
}
