package workflow

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_CollapsesBurstsIntoOneRun(t *testing.T) {
	var runs atomic.Int32
	sched := newRescoreScheduler(40*time.Millisecond, func(uint64) {
		runs.Add(1)
	})

	// Five signals within the debounce window collapse into one run.
	for i := 0; i < 5; i++ {
		sched.Signal()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "no additional runs after the window elapses")
}

func TestScheduler_SeparateBurstsRunSeparately(t *testing.T) {
	var runs atomic.Int32
	sched := newRescoreScheduler(20*time.Millisecond, func(uint64) {
		runs.Add(1)
	})

	sched.Signal()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	sched.Signal()
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_NextSupersedesPendingRuns(t *testing.T) {
	sched := newRescoreScheduler(time.Hour, func(uint64) {})

	first := sched.Next()
	assert.True(t, sched.Current(first))

	second := sched.Next()
	assert.False(t, sched.Current(first), "an older issuance is stale once a newer one exists")
	assert.True(t, sched.Current(second))
}
