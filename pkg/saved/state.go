// Package saved owns the saved jobs, saved videos, completed videos and
// applied jobs of an account, one role-context at a time.
//
// A State mirrors the persisted collections of a single role-context in
// memory. It starts uninitialized; Init loads the four collections in
// parallel and from then on every mutation that changes a collection queues
// a write of that collection. Mutations made before Init never write, so
// not-yet-loaded data cannot be clobbered with empty defaults.
package saved

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/RegaWeng/riseUp/pkg/catalog"
	"github.com/RegaWeng/riseUp/pkg/role"
)

// State is the in-memory mirror of one role-context.
type State struct {
	role    role.Role
	keys    Keys
	store   Persister
	catalog *catalog.Catalog
	logger  *slog.Logger
	writes  *writer

	mu          sync.RWMutex
	initialized bool
	savedJobs   []SavedJob
	savedVideos []SavedVideo
	completed   []string
	applied     []string
}

// NewState returns an uninitialized State for r.
func NewState(r role.Role, store Persister, cat *catalog.Catalog, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	logger = logger.With("role", string(r))
	return &State{
		role:        r,
		keys:        KeysFor(r),
		store:       store,
		catalog:     cat,
		logger:      logger,
		writes:      newWriter(store, logger),
		savedJobs:   []SavedJob{},
		savedVideos: []SavedVideo{},
		completed:   []string{},
		applied:     []string{},
	}
}

func (s *State) Role() role.Role { return s.role }

func (s *State) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Init loads the four collections in parallel and switches the State to
// initialized. Absent or unreadable values load as empty collections.
// Calling Init on an initialized State is a no-op.
func (s *State) Init(ctx context.Context) error {
	if s.Initialized() {
		return nil
	}

	var (
		jobs      []SavedJob
		videos    []SavedVideo
		completed []string
		applied   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !s.store.Load(gctx, s.keys.SavedJobs, &jobs) {
			jobs = nil
		}
		return nil
	})
	g.Go(func() error {
		if !s.store.Load(gctx, s.keys.SavedVideos, &videos) {
			videos = nil
		}
		return nil
	})
	g.Go(func() error {
		if !s.store.Load(gctx, s.keys.CompletedVideos, &completed) {
			completed = nil
		}
		return nil
	})
	g.Go(func() error {
		if !s.store.Load(gctx, s.keys.AppliedJobs, &applied) {
			applied = nil
		}
		return nil
	})
	_ = g.Wait()
	// a cancelled load may have read as absent; do not treat it as state
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	s.savedJobs = normalizeJobs(jobs)
	s.savedVideos = normalizeVideos(videos)
	s.completed = uniqueIDs(completed)
	s.applied = uniqueIDs(applied)
	s.initialized = true
	s.logger.Debug("saved state loaded",
		"savedJobs", len(s.savedJobs),
		"savedVideos", len(s.savedVideos),
		"completedVideos", len(s.completed),
		"appliedJobs", len(s.applied),
	)
	return nil
}

// SaveJob appends job unless a job with the same id is already saved.
func (s *State) SaveJob(job SavedJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexJob(s.savedJobs, job.ID) >= 0 {
		return
	}
	s.savedJobs = append(s.savedJobs, job.clone())
	s.logger.Info("job saved", "id", job.ID, "title", job.Title)
	s.persistLocked(s.keys.SavedJobs, slices.Clone(s.savedJobs))
}

// UnsaveJob removes the saved job with the given id, if any.
func (s *State) UnsaveJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexJob(s.savedJobs, id)
	if i < 0 {
		return
	}
	s.savedJobs = slices.Delete(slices.Clone(s.savedJobs), i, i+1)
	s.logger.Info("job unsaved", "id", id)
	s.persistLocked(s.keys.SavedJobs, slices.Clone(s.savedJobs))
}

func (s *State) IsJobSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexJob(s.savedJobs, id) >= 0
}

// SaveVideo appends video unless a video with the same id is already saved.
func (s *State) SaveVideo(video SavedVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexVideo(s.savedVideos, video.ID) >= 0 {
		return
	}
	s.savedVideos = append(s.savedVideos, video.clone())
	s.logger.Info("video saved", "id", video.ID, "title", video.Title)
	s.persistLocked(s.keys.SavedVideos, slices.Clone(s.savedVideos))
}

// UnsaveVideo removes the saved video with the given id, if any.
func (s *State) UnsaveVideo(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexVideo(s.savedVideos, id)
	if i < 0 {
		return
	}
	s.savedVideos = slices.Delete(slices.Clone(s.savedVideos), i, i+1)
	s.logger.Info("video unsaved", "id", id)
	s.persistLocked(s.keys.SavedVideos, slices.Clone(s.savedVideos))
}

func (s *State) IsVideoSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexVideo(s.savedVideos, id) >= 0
}

// CompleteVideo marks a video as watched. Completion is irreversible.
func (s *State) CompleteVideo(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.completed, id) {
		return
	}
	s.completed = append(s.completed, id)
	title := id
	if v, ok := s.catalog.Find(id); ok {
		title = v.Title
	}
	s.logger.Info("video completed", "id", id, "title", title)
	s.persistLocked(s.keys.CompletedVideos, slices.Clone(s.completed))
}

func (s *State) IsVideoCompleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.completed, id)
}

// ApplyToJob records an application to the job.
func (s *State) ApplyToJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.applied, id) {
		return
	}
	s.applied = append(s.applied, id)
	s.logger.Info("applied to job", "id", id)
	s.persistLocked(s.keys.AppliedJobs, slices.Clone(s.applied))
}

// WithdrawJobApplication removes the application to the job, if any.
func (s *State) WithdrawJobApplication(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.applied, id)
	if i < 0 {
		return
	}
	s.applied = slices.Delete(slices.Clone(s.applied), i, i+1)
	s.logger.Info("withdrew job application", "id", id)
	s.persistLocked(s.keys.AppliedJobs, slices.Clone(s.applied))
}

func (s *State) IsJobApplied(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.applied, id)
}

// CompletedVideosWithDetails resolves completed ids against the catalog.
// The result is in catalog order; ids missing from the catalog are dropped.
func (s *State) CompletedVideosWithDetails() []catalog.Video {
	s.mu.RLock()
	ids := slices.Clone(s.completed)
	s.mu.RUnlock()
	return s.catalog.Resolve(ids)
}

func (s *State) SavedJobs() []SavedJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneJobs(s.savedJobs)
}

func (s *State) SavedVideos() []SavedVideo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneVideos(s.savedVideos)
}

func (s *State) CompletedVideos() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.completed)
}

func (s *State) AppliedJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.applied)
}

// Items returns saved jobs followed by saved videos.
func (s *State) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Item, 0, len(s.savedJobs)+len(s.savedVideos))
	for _, j := range s.savedJobs {
		items = append(items, j.clone())
	}
	for _, v := range s.savedVideos {
		items = append(items, v.clone())
	}
	return items
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Role:            s.role,
		SavedJobs:       cloneJobs(s.savedJobs),
		SavedVideos:     cloneVideos(s.savedVideos),
		CompletedVideos: slices.Clone(s.completed),
		AppliedJobs:     slices.Clone(s.applied),
	}
}

// Progress summarizes training and applications of this role-context.
func (s *State) Progress() Progress {
	s.mu.RLock()
	completed := slices.Clone(s.completed)
	applied := len(s.applied)
	s.mu.RUnlock()
	return BuildProgress(s.catalog, completed, applied)
}

// Clear empties the four collections and removes their keys from storage.
// The removals are queued behind writes that are still pending.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedJobs = []SavedJob{}
	s.savedVideos = []SavedVideo{}
	s.completed = []string{}
	s.applied = []string{}
	for _, key := range s.keys.All() {
		s.writes.remove(key)
	}
	s.logger.Info("saved state cleared")
}

// Flush waits for queued writes to reach the persistence adapter.
func (s *State) Flush(ctx context.Context) error {
	return s.writes.flush(ctx)
}

// Close drains pending writes. Mutations after Close only change memory.
func (s *State) Close(ctx context.Context) error {
	return s.writes.close(ctx)
}

// idle reports whether no write is queued or in flight.
func (s *State) idle() bool { return s.writes.idle() }

func (s *State) persistLocked(key string, value any) {
	if !s.initialized {
		return
	}
	s.writes.put(key, value)
}

func indexJob(jobs []SavedJob, id string) int {
	return slices.IndexFunc(jobs, func(j SavedJob) bool { return j.ID == id })
}

func indexVideo(videos []SavedVideo, id string) int {
	return slices.IndexFunc(videos, func(v SavedVideo) bool { return v.ID == id })
}

func cloneJobs(in []SavedJob) []SavedJob {
	out := make([]SavedJob, 0, len(in))
	for _, j := range in {
		out = append(out, j.clone())
	}
	return out
}

func cloneVideos(in []SavedVideo) []SavedVideo {
	out := make([]SavedVideo, 0, len(in))
	for _, v := range in {
		out = append(out, v.clone())
	}
	return out
}

// normalizeJobs drops duplicate ids from loaded data, keeping the first.
func normalizeJobs(in []SavedJob) []SavedJob {
	out := make([]SavedJob, 0, len(in))
	for _, j := range in {
		if indexJob(out, j.ID) >= 0 {
			continue
		}
		out = append(out, j.clone())
	}
	return out
}

func normalizeVideos(in []SavedVideo) []SavedVideo {
	out := make([]SavedVideo, 0, len(in))
	for _, v := range in {
		if indexVideo(out, v.ID) >= 0 {
			continue
		}
		out = append(out, v.clone())
	}
	return out
}

func uniqueIDs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
