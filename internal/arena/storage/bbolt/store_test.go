package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "arena.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestUpsertAndReadPlayer(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertPlayer(ctx, "p-1", "Alex"))
	require.NoError(t, store.UpdateStat(ctx, "p-1", storage.StatKills, 3))
	require.NoError(t, store.UpdateStat(ctx, "p-1", storage.StatDeaths, 2))
	require.NoError(t, store.UpdateStat(ctx, "p-1", storage.StatHighestKillStreak, 3))
	require.NoError(t, store.UpdateKDR(ctx, "p-1", 1.5))
	require.NoError(t, store.UpsertPlayer(ctx, "p-1", "Alexis"))

	rows, err := store.StatsByUUID(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, []storage.StatsRow{{
		UUID:              "p-1",
		Name:              "Alexis",
		Kills:             3,
		Deaths:            2,
		KDR:               1.5,
		HighestKillStreak: 3,
	}}, rows)
}

func TestMissingPlayer(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	rows, err := store.StatsByUUID(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, rows)

	require.NoError(t, store.UpdateStat(ctx, "ghost", storage.StatKills, 1))
	rows, err = store.StatsByUUID(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestUpdateStatRejectsUnknownStat(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertPlayer(ctx, "p-1", "Alex"))

	require.Error(t, store.UpdateStat(ctx, "p-1", storage.Stat("score"), 1))
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.bolt")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.UpsertPlayer(context.Background(), "p-1", "Alex"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.StatsByUUID(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestCorruptRecordSurfacesError(t *testing.T) {
	store := openTempStore(t)
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(playerBucket)).Put(playerKey("p-1"), []byte("{"))
	})
	require.NoError(t, err)

	_, err = store.StatsByUUID(context.Background(), "p-1")
	require.Error(t, err)
}

func TestOperationsRequireConfiguredStore(t *testing.T) {
	var store *Store
	require.NoError(t, store.Close())
	_, err := store.StatsByUUID(context.Background(), "p-1")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, openTempStore(t).UpsertPlayer(ctx, "p-1", "Alex"), context.Canceled)
}
