package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"sales_arena/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshRanking(context.Context) ([]domain.RankingEntry, error) {
	r.calls.Add(1)
	return nil, r.err
}

type countingPurger struct{ n int }

func (p *countingPurger) Purge() int {
	p.n++
	return 1
}

func TestManager_RunsJobsImmediately(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	r := &countingRefresher{}
	require.NoError(t, m.Register(NewRankingJob(r, time.Hour)))
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestManager_FailingJobKeepsSchedule(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	r := &countingRefresher{err: errors.New("db down")}
	require.NoError(t, m.Register(NewRankingJob(r, 20*time.Millisecond)))
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestCleanupJob_SkipsNilTargets(t *testing.T) {
	p := &countingPurger{}
	job := NewCleanupJob(time.Minute, map[string]Purger{"cache": p, "denylist": nil})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, p.n)
	assert.Equal(t, "memory_cleanup", job.Name())
}
