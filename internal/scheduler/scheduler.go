// Package scheduler runs a task immediately and then on a fixed interval
// until its context is cancelled.
package scheduler

import (
	"context"
	"time"

	"aujobs-engine/pkg/logging"
)

type Task func(ctx context.Context) error

func Every(ctx context.Context, interval time.Duration, name string, log *logging.Logger, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	if err := task(ctx); err != nil {
		log.Error("task failed", "task", name, "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Error("task failed", "task", name, "err", err)
			}
		}
	}
}
