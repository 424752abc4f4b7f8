package scheduler

import (
	"context"
	"time"

	"sales_arena/internal/logger"

	"github.com/go-co-op/gocron/v2"
)

// Job is a periodic background task.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Manager owns the gocron scheduler and the context its jobs run under.
type Manager struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewManager() (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{scheduler: s, ctx: ctx, cancel: cancel}, nil
}

// Register schedules job. The first run happens right after Start.
func (m *Manager) Register(job Job) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(job.Interval()),
		gocron.NewTask(m.run, job),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	return err
}

func (m *Manager) run(job Job) {
	start := time.Now()
	log := logger.With("job", job.Name())
	if err := job.Run(m.ctx); err != nil {
		log.Errorw("job failed", "error", err, "took", time.Since(start))
		return
	}
	log.Debugw("job done", "took", time.Since(start))
}

func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Info("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Stop cancels running jobs and waits for them to return.
func (m *Manager) Stop() {
	m.cancel()
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("scheduler shutdown", "error", err)
	}
}
