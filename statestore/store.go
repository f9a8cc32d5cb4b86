package statestore

import (
	"log/slog"
	"strings"
	"time"

	"sync"

	"github.com/google/uuid"

	"github.com/MdEnamulHaque007/UPTOP-sub000/metric"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// Wildcard subscribes to every write and receives the whole state.
const Wildcard = "*"

// defaultHistoryCap bounds the audit history ring buffer.
const defaultHistoryCap = 100

// ChangeFunc receives a change notification. For exact-path subscribers
// oldValue is the previous value at the path; for ancestor and wildcard
// subscribers oldValue is nil (only the exact path's old value is
// tracked).
type ChangeFunc func(newValue, oldValue any, path string)

// Change is one audit-history entry.
type Change struct {
	Path     string
	OldValue any
	NewValue any
	At       time.Time
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistoryCap overrides the audit history ring-buffer size.
func WithHistoryCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithMetrics exports store write/subscription metrics.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Store) {
		if reg != nil {
			s.metrics = reg.Core
		}
	}
}

// WriteOption modifies a single Set/Update call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	silent bool
}

// Silent suppresses subscriber notification for this write. The history
// entry is still recorded.
func Silent() WriteOption {
	return func(o *writeOptions) { o.silent = true }
}

// Store is a reactive nested key/value container.
type Store struct {
	mu         sync.Mutex
	state      map[string]any
	initial    map[string]any
	subs       map[string]map[string]ChangeFunc
	history    []Change
	historyCap int
	logger     *slog.Logger
	metrics    *metric.Metrics
}

// New creates a store seeded with the initial-state shape. The seed is
// deep-copied; later mutations of the argument do not affect the store.
func New(initial map[string]any, opts ...Option) *Store {
	if initial == nil {
		initial = map[string]any{}
	}
	s := &Store{
		state:      deepCopyMap(initial),
		initial:    deepCopyMap(initial),
		subs:       make(map[string]map[string]ChangeFunc),
		historyCap: defaultHistoryCap,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a deep copy of the value at path, or nil when the path is
// unset. Reading never panics, whatever the path.
func (s *Store) Get(path string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.valueAt(path)
	if !ok {
		return nil
	}
	return deepCopy(v)
}

// Has reports whether the path holds a value.
func (s *Store) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.valueAt(path)
	return ok
}

// Snapshot returns a deep copy of the entire state tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopyMap(s.state)
}

// Set writes value at path, creating intermediate maps as needed.
// Writing to an empty or wildcard path is a programmer error and panics.
func (s *Store) Set(path string, value any, opts ...WriteOption) {
	options := applyWriteOptions(opts)

	s.mu.Lock()
	old := s.setLocked(path, deepCopy(value))
	s.recordChangeLocked(path, old, value)
	var invs []invocation
	if !options.silent {
		invs = s.notificationsLocked(path, value, old)
	}
	s.mu.Unlock()

	s.countWrite(path)
	s.dispatch(invs)
}

// Update shallow-merges partial into the mapping at path. When the
// current value is not a mapping, Update behaves like Set.
func (s *Store) Update(path string, partial map[string]any, opts ...WriteOption) {
	options := applyWriteOptions(opts)

	s.mu.Lock()
	current, ok := s.valueAt(path)
	var merged any
	if m, isMap := current.(map[string]any); ok && isMap {
		next := deepCopyMap(m)
		for k, v := range partial {
			next[k] = deepCopy(v)
		}
		merged = next
	} else {
		merged = deepCopy(map[string]any(partial))
	}
	old := s.setLocked(path, merged)
	s.recordChangeLocked(path, old, merged)
	var invs []invocation
	if !options.silent {
		invs = s.notificationsLocked(path, merged, old)
	}
	s.mu.Unlock()

	s.countWrite(path)
	s.dispatch(invs)
}

// Subscribe registers callback for writes to path (or, via ancestor and
// wildcard notification, paths below it). The returned function removes
// the subscription; after it returns the store holds no reference to the
// callback.
func (s *Store) Subscribe(path string, callback ChangeFunc) func() {
	if callback == nil {
		panic("statestore: nil subscription callback")
	}
	id := uuid.NewString()

	s.mu.Lock()
	if s.subs[path] == nil {
		s.subs[path] = make(map[string]ChangeFunc)
	}
	s.subs[path][id] = callback
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SubscriptionsActive.Inc()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[path]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(s.subs, path)
				}
			}
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.SubscriptionsActive.Dec()
			}
		})
	}
}

// Reset restores state. With no arguments the whole tree returns to the
// initial seed and only wildcard subscribers are notified; with a path,
// that path returns to its initial value through the normal notification
// chain.
func (s *Store) Reset(paths ...string) {
	if len(paths) == 0 {
		s.mu.Lock()
		s.state = deepCopyMap(s.initial)
		s.recordChangeLocked(Wildcard, nil, nil)
		whole := deepCopyMap(s.state)
		var invs []invocation
		for _, fn := range s.subs[Wildcard] {
			invs = append(invs, invocation{fn: fn, newValue: whole, path: Wildcard})
		}
		s.mu.Unlock()
		s.dispatch(invs)
		return
	}

	for _, path := range paths {
		s.mu.Lock()
		initialValue, _ := valueIn(s.initial, path)
		s.mu.Unlock()
		s.Set(path, deepCopy(initialValue))
	}
}

// History returns the audit entries, oldest first. Values are deep
// copies; at most the configured ring-buffer size is retained.
func (s *Store) History() []Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Change, len(s.history))
	for i, c := range s.history {
		out[i] = Change{
			Path:     c.Path,
			OldValue: deepCopy(c.OldValue),
			NewValue: deepCopy(c.NewValue),
			At:       c.At,
		}
	}
	return out
}

// valueAt resolves a path against the live tree. Callers hold the lock.
func (s *Store) valueAt(path string) (any, bool) {
	return valueIn(s.state, path)
}

func valueIn(root map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var current any = root
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setLocked writes value (already copied) at path and returns the old
// value. Intermediate levels are created as maps; a scalar in the way is
// replaced. Callers hold the lock.
func (s *Store) setLocked(path string, value any) any {
	if path == "" || path == Wildcard {
		panic("statestore: invalid write path " + path)
	}
	segments := strings.Split(path, ".")
	node := s.state
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	leaf := segments[len(segments)-1]
	old := node[leaf]
	node[leaf] = value
	return old
}

func (s *Store) recordChangeLocked(path string, old, value any) {
	entry := Change{
		Path:     path,
		OldValue: deepCopy(old),
		NewValue: deepCopy(value),
		At:       time.Now(),
	}
	s.history = append(s.history, entry)
	if len(s.history) > s.historyCap {
		s.history = s.history[len(s.history)-s.historyCap:]
	}
}

type invocation struct {
	fn       ChangeFunc
	newValue any
	oldValue any
	path     string
}

// notificationsLocked builds the dispatch list for a write to path:
// exact subscribers, then each ancestor nearest to root, then wildcard.
// Values are deep-copied under the lock so callbacks see a consistent
// snapshot. Callers hold the lock.
func (s *Store) notificationsLocked(path string, newValue, oldValue any) []invocation {
	var invs []invocation

	for _, fn := range s.subs[path] {
		invs = append(invs, invocation{
			fn:       fn,
			newValue: deepCopy(newValue),
			oldValue: deepCopy(oldValue),
			path:     path,
		})
	}

	segments := strings.Split(path, ".")
	for i := len(segments) - 1; i > 0; i-- {
		ancestor := strings.Join(segments[:i], ".")
		set := s.subs[ancestor]
		if len(set) == 0 {
			continue
		}
		value, _ := s.valueAt(ancestor)
		for _, fn := range set {
			invs = append(invs, invocation{
				fn:       fn,
				newValue: deepCopy(value),
				path:     ancestor,
			})
		}
	}

	if set := s.subs[Wildcard]; len(set) > 0 {
		whole := deepCopyMap(s.state)
		for _, fn := range set {
			invs = append(invs, invocation{fn: fn, newValue: whole, path: Wildcard})
		}
	}

	return invs
}

// dispatch runs callbacks outside the lock. A panic in one callback is
// isolated and logged; the rest still run.
func (s *Store) dispatch(invs []invocation) {
	for _, inv := range invs {
		s.safeCall(inv)
	}
}

func (s *Store) safeCall(inv invocation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber callback panicked",
				"path", inv.path, "panic", r)
			if s.metrics != nil {
				s.metrics.NotifyErrors.WithLabelValues(inv.path).Inc()
			}
		}
	}()
	inv.fn(inv.newValue, inv.oldValue, inv.path)
}

func (s *Store) countWrite(path string) {
	if s.metrics != nil {
		root := path
		if i := strings.IndexByte(path, '.'); i >= 0 {
			root = path[:i]
		}
		s.metrics.StoreWrites.WithLabelValues(root).Inc()
	}
}

func applyWriteOptions(opts []WriteOption) writeOptions {
	var options writeOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// deepCopy copies the container types the store traffics in. Scalars and
// unknown types pass through unchanged.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	case record.Record:
		return t.Clone()
	case []record.Record:
		return record.CloneAll(t)
	default:
		return v
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}
