// Package reconciler runs the periodic half-edge repair pass. The two-step
// edge mutations are not transactional, so a crash between steps leaves one
// adjacency list ahead of its mirror; this worker restores the mirror
// invariant out of band.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"follow-graph/internal/service"
)

// Config controls the repair loop.
type Config struct {
	Interval time.Duration
	Logger   *logrus.Logger
}

type Reconciler struct {
	graph    service.GraphService
	interval time.Duration
	logger   *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, graph service.GraphService) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Reconciler{
		graph:    graph,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the repair loop. One pass runs immediately so a restart
// after a crash repairs the store without waiting a full interval.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		r.runOnce(runCtx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				r.runOnce(runCtx)
			}
		}
	}()
}

// Shutdown stops the loop and waits for an in-flight pass to finish.
func (r *Reconciler) Shutdown() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Reconciler) runOnce(ctx context.Context) {
	report, err := r.graph.Reconcile(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warnf("reconcile pass: %v", err)
		}
		return
	}
	if report.Total() > 0 {
		r.logger.WithFields(logrus.Fields{
			"completed_followers":  report.CompletedFollowers,
			"completed_followings": report.CompletedFollowings,
			"dropped":              report.DroppedHalfEdges,
		}).Info("repaired half edges")
	}
}
