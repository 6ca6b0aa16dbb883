package kv

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Set(context.Context, string, []byte) error   { return f.err }
func (f failingBackend) Delete(context.Context, string) error        { return f.err }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory(), nil)

	s.Store(ctx, "appliedJobs_user", []string{"1", "2"})

	var got []string
	require.True(t, s.Load(ctx, "appliedJobs_user", &got))
	assert.Equal(t, []string{"1", "2"}, got)

	// overwrite
	s.Store(ctx, "appliedJobs_user", []string{"3"})
	require.True(t, s.Load(ctx, "appliedJobs_user", &got))
	assert.Equal(t, []string{"3"}, got)
}

func TestLoadAbsent(t *testing.T) {
	var buf bytes.Buffer
	s := NewStore(NewMemory(), newTestLogger(&buf))

	got := []string{"untouched"}
	assert.False(t, s.Load(context.Background(), "savedJobs_user", &got))
	assert.Equal(t, []string{"untouched"}, got)
	assert.Zero(t, buf.Len(), "plain absence is not logged")
}

func TestLoadCorruptValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, "savedJobs_user", []byte("{not json")))
	require.NoError(t, mem.Set(ctx, "appliedJobs_user", []byte(`{"id":"1"}`)))
	require.NoError(t, mem.Set(ctx, "completedVideos_user", []byte("null")))

	var buf bytes.Buffer
	s := NewStore(mem, newTestLogger(&buf))

	var jobs []map[string]any
	assert.False(t, s.Load(ctx, "savedJobs_user", &jobs))

	var ids []string
	assert.False(t, s.Load(ctx, "appliedJobs_user", &ids), "type mismatch reads as absent")
	assert.False(t, s.Load(ctx, "completedVideos_user", &ids))
	assert.Nil(t, ids)

	assert.Contains(t, buf.String(), "decode value")
}

func TestBackendFailuresAreLoggedNotPropagated(t *testing.T) {
	var buf bytes.Buffer
	s := NewStore(failingBackend{err: errors.New("connection refused")}, newTestLogger(&buf))
	ctx := context.Background()

	s.Store(ctx, "k", []string{"a"})
	var got []string
	assert.False(t, s.Load(ctx, "k", &got))
	s.Remove(ctx, "k")

	out := buf.String()
	assert.Contains(t, out, "store value")
	assert.Contains(t, out, "load value")
	assert.Contains(t, out, "remove value")
}

func TestStoreUnserializableValueIsDropped(t *testing.T) {
	var buf bytes.Buffer
	mem := NewMemory()
	s := NewStore(mem, newTestLogger(&buf))

	s.Store(context.Background(), "k", make(chan int))
	assert.Empty(t, mem.Keys())
	assert.Contains(t, buf.String(), "serialize value")
}

func TestRemoveMissingKeyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	s := NewStore(NewMemory(), newTestLogger(&buf))
	s.Remove(context.Background(), "never-written")
	assert.Zero(t, buf.Len())
}

func TestPrefixedPartitionsKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	alice := NewStore(Prefixed(mem, "alice:"), nil)
	bob := NewStore(Prefixed(mem, "bob:"), nil)

	alice.Store(ctx, "savedJobs_user", []string{"a"})
	bob.Store(ctx, "savedJobs_user", []string{"b"})

	var got []string
	require.True(t, alice.Load(ctx, "savedJobs_user", &got))
	assert.Equal(t, []string{"a"}, got)
	require.True(t, bob.Load(ctx, "savedJobs_user", &got))
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, []string{"alice:savedJobs_user", "bob:savedJobs_user"}, mem.Keys())

	bob.Remove(ctx, "savedJobs_user")
	assert.Equal(t, []string{"alice:savedJobs_user"}, mem.Keys())

	assert.Same(t, Backend(mem), Prefixed(mem, ""))
}
