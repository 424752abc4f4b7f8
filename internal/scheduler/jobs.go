package scheduler

import (
	"context"
	"time"

	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
)

// RankingRefresher rebuilds the cached global ranking.
type RankingRefresher interface {
	RefreshRanking(ctx context.Context) ([]domain.RankingEntry, error)
}

type RankingJob struct {
	ranking  RankingRefresher
	interval time.Duration
}

func NewRankingJob(r RankingRefresher, interval time.Duration) *RankingJob {
	return &RankingJob{ranking: r, interval: interval}
}

func (j *RankingJob) Name() string            { return "ranking_refresh" }
func (j *RankingJob) Interval() time.Duration { return j.interval }

func (j *RankingJob) Run(ctx context.Context) error {
	_, err := j.ranking.RefreshRanking(ctx)
	return err
}

// Purger drops expired in-memory entries and reports how many went.
type Purger interface {
	Purge() int
}

// CleanupJob sweeps the in-process limiter, cache and token denylist.
type CleanupJob struct {
	targets  map[string]Purger
	interval time.Duration
}

func NewCleanupJob(interval time.Duration, targets map[string]Purger) *CleanupJob {
	return &CleanupJob{targets: targets, interval: interval}
}

func (j *CleanupJob) Name() string            { return "memory_cleanup" }
func (j *CleanupJob) Interval() time.Duration { return j.interval }

func (j *CleanupJob) Run(ctx context.Context) error {
	for name, p := range j.targets {
		if p == nil {
			continue
		}
		if n := p.Purge(); n > 0 {
			logger.WithContext(ctx).Debugw("purged expired entries", "target", name, "count", n)
		}
	}
	return nil
}
