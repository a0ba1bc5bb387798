// Package scheduler runs named periodic tasks on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"commercial-file-service/pkg/logger"
	"commercial-file-service/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrUnknownTask    = errors.New("unknown task")
	ErrAlreadyRunning = errors.New("task is already running")
)

type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner owns one cron instance with second-level specs.
// A task never runs twice at the same time; an overlapping tick is skipped.
type Runner struct {
	ctx  context.Context
	cron *cron.Cron

	mu      sync.Mutex
	tasks   map[string]Task
	running map[string]bool
}

// New returns a stopped runner. Scheduled runs get ctx's values, such as the
// logger, but not its cancellation: a tick that has started runs to completion
// and Stop waits for it.
func New(ctx context.Context) *Runner {
	return &Runner{
		ctx:     context.WithoutCancel(ctx),
		cron:    cron.New(cron.WithSeconds()),
		tasks:   make(map[string]Task),
		running: make(map[string]bool),
	}
}

func (r *Runner) Register(spec string, task Task) error {
	name := task.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[name]; ok {
		return fmt.Errorf("task %q is already registered", name)
	}

	_, err := r.cron.AddFunc(spec, func() {
		err := r.run(r.ctx, task)
		if errors.Is(err, ErrAlreadyRunning) {
			logger.GetLogger(r.ctx).Warn("previous run still in progress, skipping tick", zap.String("task", name))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for task %q: %w", spec, name, err)
	}
	r.tasks[name] = task

	logger.GetLogger(r.ctx).Info("task scheduled", zap.String("task", name), zap.String("spec", spec))
	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
	logger.GetLogger(r.ctx).Info("scheduler started", zap.Int("tasks", len(r.cron.Entries())))
}

// Stop prevents new ticks and blocks until running tasks have returned.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	logger.GetLogger(r.ctx).Info("scheduler stopped")
}

// RunOnce runs a registered task immediately, outside its schedule.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	r.mu.Lock()
	task, ok := r.tasks[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return r.run(ctx, task)
}

func (r *Runner) run(ctx context.Context, task Task) (err error) {
	name := task.Name()

	r.mu.Lock()
	if r.running[name] {
		r.mu.Unlock()
		metrics.TaskRunsTotal.WithLabelValues(name, "skipped").Inc()
		return ErrAlreadyRunning
	}
	r.running[name] = true
	r.mu.Unlock()

	log := logger.GetLogger(ctx).With(zap.String("task", name))
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %s panicked: %v", name, p)
		}

		r.mu.Lock()
		delete(r.running, name)
		r.mu.Unlock()

		elapsed := time.Since(start)
		metrics.TaskDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		if err != nil {
			metrics.TaskRunsTotal.WithLabelValues(name, "error").Inc()
			log.Error("task failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return
		}
		metrics.TaskRunsTotal.WithLabelValues(name, "ok").Inc()
		log.Info("task finished", zap.Duration("elapsed", elapsed))
	}()

	log.Info("task started")
	return task.Run(ctx)
}
