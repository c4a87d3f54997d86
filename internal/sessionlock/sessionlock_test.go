package sessionlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/Roderick111/auror/internal/sessionlock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLocker_MutualExclusion(t *testing.T) {
	t.Parallel()
	l := sessionlock.New()

	// The counter increment is not atomic, so overlapping critical sections
	// show up either as a wrong total or as a race detector report.
	counter := 0
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 100 {
				release, err := l.Acquire(context.Background(), "player-1", "restricted-section")
				if err != nil {
					return err
				}
				counter++
				release()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 800, counter)
}

func TestLocker_DifferentInvestigationsAreIndependent(t *testing.T) {
	t.Parallel()
	l := sessionlock.New()

	release, err := l.Acquire(context.Background(), "player-1", "restricted-section")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	otherCase, err := l.Acquire(ctx, "player-1", "vanishing-cauldron")
	require.NoError(t, err, "same player, different case must not block")
	otherCase()

	otherPlayer, err := l.Acquire(ctx, "player-2", "restricted-section")
	require.NoError(t, err, "same case, different player must not block")
	otherPlayer()
}

func TestLocker_WaiterTimesOut(t *testing.T) {
	t.Parallel()
	l := sessionlock.New()

	release, err := l.Acquire(context.Background(), "player-1", "restricted-section")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "player-1", "restricted-section")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	// The lock is usable again after the holder releases and the waiter gave up.
	release, err = l.Acquire(context.Background(), "player-1", "restricted-section")
	require.NoError(t, err)
	release()
}

func TestLocker_ReleaseTwiceIsNoOp(t *testing.T) {
	t.Parallel()
	l := sessionlock.New()

	release, err := l.Acquire(context.Background(), "player-1", "restricted-section")
	require.NoError(t, err)
	release()
	release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	again, err := l.Acquire(ctx, "player-1", "restricted-section")
	require.NoError(t, err, "double release must not leave the lock held or poisoned")
	again()
}
