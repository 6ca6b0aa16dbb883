package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RegaWeng/riseUp/pkg/kv"
)

func openTestRepo(t *testing.T) (*KVRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "riseup.db")
	repo, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func TestKVRepositoryUpsert(t *testing.T) {
	t.Parallel()
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "completedVideos_user")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "completedVideos_user", []byte(`["1"]`)))
	require.NoError(t, repo.Set(ctx, "completedVideos_user", []byte(`["1","2"]`)))

	got, err := repo.Get(ctx, "completedVideos_user")
	require.NoError(t, err)
	assert.Equal(t, `["1","2"]`, string(got))

	require.NoError(t, repo.Delete(ctx, "completedVideos_user"))
	require.NoError(t, repo.Delete(ctx, "completedVideos_user"))
	_, err = repo.Get(ctx, "completedVideos_user")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVRepositorySurvivesReopen(t *testing.T) {
	t.Parallel()
	repo, path := openTestRepo(t)
	ctx := context.Background()

	store := kv.NewStore(kv.Prefixed(repo, "acc-1:"), nil)
	store.Store(ctx, "appliedJobs_user", []string{"7"})
	require.NoError(t, repo.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	var ids []string
	require.True(t, kv.NewStore(kv.Prefixed(reopened, "acc-1:"), nil).Load(ctx, "appliedJobs_user", &ids))
	assert.Equal(t, []string{"7"}, ids)

	_, err = reopened.Get(ctx, "appliedJobs_user")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
