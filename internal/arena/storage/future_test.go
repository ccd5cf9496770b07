package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFutureCompleteRunsContinuationsOnce(t *testing.T) {
	t.Parallel()

	f := NewFuture[int]()
	var got []int
	f.Then(func(v int, err error) {
		require.NoError(t, err)
		got = append(got, v)
	})
	f.Complete(7, nil)
	f.Complete(9, errors.New("ignored"))

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, []int{7}, got)
}

func TestFutureThenAfterResolveRunsImmediately(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := Resolved(0, boom)
	ran := false
	f.Then(func(_ int, err error) {
		ran = true
		require.ErrorIs(t, err, boom)
	})
	require.True(t, ran)

	select {
	case <-f.Done():
	default:
		t.Fatal("expected resolved future to be done")
	}
}

func TestFutureWaitHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewFuture[string]().Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatValidate(t *testing.T) {
	t.Parallel()

	for _, stat := range []Stat{StatKills, StatDeaths, StatHighestKillStreak} {
		require.NoError(t, stat.Validate())
	}
	require.Error(t, Stat("kdr").Validate())
	require.Error(t, Stat("name; DROP TABLE players").Validate())
}
