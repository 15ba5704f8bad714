package jobs

import (
	"context"
	"log"
	"time"
)

// Task is a unit of periodic background work
type Task interface {
	Run(ctx context.Context) error
}

// Worker runs a Task on a fixed interval until stopped
type Worker struct {
	task     Task
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(task Task, interval time.Duration) *Worker {
	return &Worker{
		task:     task,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the task once immediately, then on every tick. Document
// statuses are therefore correct right after boot instead of waiting a
// full interval.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Worker started with interval: %v", w.interval)

	if err := w.task.Run(ctx); err != nil {
		log.Printf("Error running task: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.task.Run(ctx); err != nil {
				log.Printf("Error running task: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Worker shutdown complete")
}
