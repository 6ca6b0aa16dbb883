package saved

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/RegaWeng/riseUp/pkg/catalog"
	"github.com/RegaWeng/riseUp/pkg/kv"
	"github.com/RegaWeng/riseUp/pkg/role"
)

// Manager keeps exactly one active State and switches it when an operation
// names a different role-context. Every operation takes the role-context
// explicitly; a switch drains the old State, discards its memory and
// initializes a fresh State for the new role before the operation runs.
//
// A State whose writes did not drain before the request deadline is kept in
// draining; the role-context is not loaded or cleared again until they land.
//
// Errors are limited to role.ErrInvalid and context errors raised while a
// switch drains the old role-context or loads the new one.
type Manager struct {
	store   Persister
	catalog *catalog.Catalog
	logger  *slog.Logger

	mu       sync.Mutex
	active   *State
	draining map[role.Role]*State
}

func NewManager(store Persister, cat *catalog.Catalog, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Manager{
		store:    store,
		catalog:  cat,
		logger:   logger,
		draining: make(map[role.Role]*State),
	}
}

// ActiveRole returns the role-context currently loaded, if any.
func (m *Manager) ActiveRole() (role.Role, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.Role(), true
}

func (m *Manager) with(ctx context.Context, r role.Role, fn func(*State)) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", role.ErrInvalid, string(r))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.useLocked(ctx, r)
	if err != nil {
		return err
	}
	fn(st)
	return nil
}

func (m *Manager) useLocked(ctx context.Context, r role.Role) (*State, error) {
	if m.active != nil && m.active.Role() == r {
		return m.active, nil
	}
	if m.active != nil {
		old := m.active
		m.active = nil
		if err := old.Close(ctx); err != nil {
			m.draining[old.Role()] = old
			m.logger.Warn("previous role-context still flushing", "role", string(old.Role()), "err", err)
		}
		m.logger.Debug("role-context switched", "from", string(old.Role()), "to", string(r))
	}
	if err := m.awaitDrainLocked(ctx, r); err != nil {
		return nil, fmt.Errorf("load %s state: %w", r, err)
	}
	st := NewState(r, m.store, m.catalog, m.logger)
	if err := st.Init(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, fmt.Errorf("load %s state: %w", r, err)
	}
	m.active = st
	return st, nil
}

// awaitDrainLocked waits for writes of an earlier State of r that were still
// pending when it was switched away from.
func (m *Manager) awaitDrainLocked(ctx context.Context, r role.Role) error {
	old, ok := m.draining[r]
	if !ok {
		return nil
	}
	if err := old.Close(ctx); err != nil {
		return err
	}
	delete(m.draining, r)
	return nil
}

func (m *Manager) SaveJob(ctx context.Context, r role.Role, job SavedJob) error {
	return m.with(ctx, r, func(s *State) { s.SaveJob(job) })
}

func (m *Manager) UnsaveJob(ctx context.Context, r role.Role, id string) error {
	return m.with(ctx, r, func(s *State) { s.UnsaveJob(id) })
}

func (m *Manager) IsJobSaved(ctx context.Context, r role.Role, id string) (bool, error) {
	var ok bool
	err := m.with(ctx, r, func(s *State) { ok = s.IsJobSaved(id) })
	return ok, err
}

func (m *Manager) SaveVideo(ctx context.Context, r role.Role, video SavedVideo) error {
	return m.with(ctx, r, func(s *State) { s.SaveVideo(video) })
}

func (m *Manager) UnsaveVideo(ctx context.Context, r role.Role, id string) error {
	return m.with(ctx, r, func(s *State) { s.UnsaveVideo(id) })
}

func (m *Manager) IsVideoSaved(ctx context.Context, r role.Role, id string) (bool, error) {
	var ok bool
	err := m.with(ctx, r, func(s *State) { ok = s.IsVideoSaved(id) })
	return ok, err
}

func (m *Manager) CompleteVideo(ctx context.Context, r role.Role, id string) error {
	return m.with(ctx, r, func(s *State) { s.CompleteVideo(id) })
}

func (m *Manager) IsVideoCompleted(ctx context.Context, r role.Role, id string) (bool, error) {
	var ok bool
	err := m.with(ctx, r, func(s *State) { ok = s.IsVideoCompleted(id) })
	return ok, err
}

func (m *Manager) ApplyToJob(ctx context.Context, r role.Role, id string) error {
	return m.with(ctx, r, func(s *State) { s.ApplyToJob(id) })
}

func (m *Manager) WithdrawJobApplication(ctx context.Context, r role.Role, id string) error {
	return m.with(ctx, r, func(s *State) { s.WithdrawJobApplication(id) })
}

func (m *Manager) IsJobApplied(ctx context.Context, r role.Role, id string) (bool, error) {
	var ok bool
	err := m.with(ctx, r, func(s *State) { ok = s.IsJobApplied(id) })
	return ok, err
}

func (m *Manager) CompletedVideosWithDetails(ctx context.Context, r role.Role) ([]catalog.Video, error) {
	var out []catalog.Video
	err := m.with(ctx, r, func(s *State) { out = s.CompletedVideosWithDetails() })
	return out, err
}

func (m *Manager) SavedJobs(ctx context.Context, r role.Role) ([]SavedJob, error) {
	var out []SavedJob
	err := m.with(ctx, r, func(s *State) { out = s.SavedJobs() })
	return out, err
}

func (m *Manager) SavedVideos(ctx context.Context, r role.Role) ([]SavedVideo, error) {
	var out []SavedVideo
	err := m.with(ctx, r, func(s *State) { out = s.SavedVideos() })
	return out, err
}

func (m *Manager) CompletedVideos(ctx context.Context, r role.Role) ([]string, error) {
	var out []string
	err := m.with(ctx, r, func(s *State) { out = s.CompletedVideos() })
	return out, err
}

func (m *Manager) AppliedJobs(ctx context.Context, r role.Role) ([]string, error) {
	var out []string
	err := m.with(ctx, r, func(s *State) { out = s.AppliedJobs() })
	return out, err
}

func (m *Manager) Items(ctx context.Context, r role.Role) ([]Item, error) {
	var out []Item
	err := m.with(ctx, r, func(s *State) { out = s.Items() })
	return out, err
}

func (m *Manager) Snapshot(ctx context.Context, r role.Role) (Snapshot, error) {
	var out Snapshot
	err := m.with(ctx, r, func(s *State) { out = s.Snapshot() })
	return out, err
}

func (m *Manager) Progress(ctx context.Context, r role.Role) (Progress, error) {
	var out Progress
	err := m.with(ctx, r, func(s *State) { out = s.Progress() })
	return out, err
}

// Clear removes every persisted collection of r. If r is active its memory
// is emptied too; otherwise no switch happens.
func (m *Manager) Clear(ctx context.Context, r role.Role) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", role.ErrInvalid, string(r))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active.Role() == r {
		m.active.Clear()
		return nil
	}
	if err := m.awaitDrainLocked(ctx, r); err != nil {
		return fmt.Errorf("clear %s state: %w", r, err)
	}
	for _, key := range KeysFor(r).All() {
		m.store.Remove(ctx, key)
	}
	return nil
}

// Flush waits for the active State's queued writes.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	st := m.active
	m.mu.Unlock()
	if st == nil {
		return nil
	}
	return st.Flush(ctx)
}

// Close drains and discards the active State and waits for States that were
// still draining.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for r := range m.draining {
		if err := m.awaitDrainLocked(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	if m.active != nil {
		if err := m.active.Close(ctx); err != nil {
			m.draining[m.active.Role()] = m.active
			errs = append(errs, err)
		}
		m.active = nil
	}
	return errors.Join(errs...)
}

// releaseIdle drops the in-memory State if no write is pending anywhere.
// It never blocks on storage.
func (m *Manager) releaseIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && !m.active.idle() {
		return false
	}
	for _, st := range m.draining {
		if !st.idle() {
			return false
		}
	}
	if m.active != nil {
		_ = m.active.Close(context.Background())
		m.active = nil
	}
	clear(m.draining)
	return true
}

// Registry hands out one Manager per account. Each account's keys are
// prefixed with "<accountID>:" in the shared backend. Managers are reference
// counted; Sweep evicts the ones nobody holds that stayed idle long enough.
type Registry struct {
	backend kv.Backend
	catalog *catalog.Catalog
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	managers map[string]*registryEntry
}

type registryEntry struct {
	manager  *Manager
	refs     int
	lastUsed time.Time
}

func NewRegistry(backend kv.Backend, cat *catalog.Catalog, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Registry{
		backend:  backend,
		catalog:  cat,
		logger:   logger,
		now:      time.Now,
		managers: make(map[string]*registryEntry),
	}
}

// Acquire returns the Manager of accountID, creating it on first use. The
// Manager is not evicted until release is called.
func (r *Registry) Acquire(accountID string) (*Manager, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.managers[accountID]
	if !ok {
		logger := r.logger.With("account", accountID)
		store := kv.NewStore(kv.Prefixed(r.backend, accountID+":"), logger)
		e = &registryEntry{manager: NewManager(store, r.catalog, logger)}
		r.managers[accountID] = e
	}
	e.refs++
	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			e.refs--
			e.lastUsed = r.now()
			r.mu.Unlock()
		})
	}
	return e.manager, release
}

// Len returns the number of accounts with a live Manager.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

// Sweep evicts Managers that are not held, were last released at least idle
// ago and have no pending writes. It returns the number evicted.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	evicted := 0
	for id, e := range r.managers {
		if e.refs > 0 || now.Sub(e.lastUsed) < idle {
			continue
		}
		if !e.manager.releaseIdle() {
			continue
		}
		delete(r.managers, id)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("idle saved state evicted", "accounts", evicted, "remaining", len(r.managers))
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}

// Close drains every manager.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	managers := make([]*Manager, 0, len(r.managers))
	for _, e := range r.managers {
		managers = append(managers, e.manager)
	}
	r.mu.Unlock()

	var errs []error
	for _, m := range managers {
		if err := m.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
