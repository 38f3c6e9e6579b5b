// Package orchestrator drives the worker pool: a LIFO queue of batches is
// drained concurrently by workers holding round-robin translator clients;
// a single supervisor applies results to a mutable Textures copy,
// checkpoints every 60 seconds, and terminates on completion or
// interrupt.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mapomagpie/lottr/internal/batcher"
	"github.com/mapomagpie/lottr/internal/store"
	"github.com/mapomagpie/lottr/internal/texture"
)

const checkpointInterval = 60 * time.Second

// Client is what a worker needs from a translator backend.
type Client interface {
	Translate(ctx context.Context, batch batcher.BatchPackage) (texture.TranslatedLine, error)
}

// Pool hands out clients round-robin, one per worker.
type Pool interface {
	NextClient() Client
}

// ProgressFunc is called after every applied translation with the count of
// batches completed so far and the total queue size, for a live progress
// display.
type ProgressFunc func(done, total int)

// Run spawns W = min(maxConcurrent, len(queue)) workers over queue, each
// retrying the same batch with the same client indefinitely on failure,
// and runs the supervisor loop until the queue drains or the process
// receives an interrupt. The mutable Textures (a separate copy from the
// immutable snapshot workers read batches against) is checkpointed every
// 60 seconds and once more on exit.
func Run(ctx context.Context, immutable *texture.Textures, mutable *texture.Textures, queue []batcher.BatchPackage, pool Pool, maxConcurrent int, log *slog.Logger, progress ProgressFunc) error {
	if len(queue) == 0 {
		return store.Save(mutable)
	}

	workers := maxConcurrent
	if workers > len(queue) {
		workers = len(queue)
	}
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	results := make(chan texture.TranslatedLine, 1)
	done := make(chan struct{}, workers)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := 0; w < workers; w++ {
		client := pool.NextClient()
		go runWorker(workerCtx, client, &mu, &queue, results, done, log)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(checkpointInterval)
	defer ticker.Stop()

	waitFor := workers
	total := len(queue)
	applied := 0

	for waitFor > 0 {
		select {
		case tl := <-results:
			mutable.Update(tl)
			applied++
			if progress != nil {
				progress(applied, total)
			}
		case <-done:
			waitFor--
		case <-sigCh:
			waitFor = 0
		case <-ticker.C:
			if err := store.Save(mutable); err != nil {
				log.Error("checkpoint failed", "error", err)
			}
		}
	}

	// A worker's last result can still be buffered when its done signal is
	// taken first; apply whatever is left before the final checkpoint.
	for drained := false; !drained; {
		select {
		case tl := <-results:
			mutable.Update(tl)
			applied++
			if progress != nil {
				progress(applied, total)
			}
		default:
			drained = true
		}
	}

	cancel()
	if err := store.Save(mutable); err != nil {
		return fmt.Errorf("orchestrator: final checkpoint: %w", err)
	}
	return nil
}

// runWorker pops batches from the shared stack under mu until it is
// empty (or the context is cancelled), retrying the same batch with the
// same client indefinitely on failure. No backoff is applied: the
// operator is expected to interrupt the process if progress stalls.
func runWorker(ctx context.Context, client Client, mu *sync.Mutex, queue *[]batcher.BatchPackage, results chan<- texture.TranslatedLine, done chan<- struct{}, log *slog.Logger) {
	defer func() { done <- struct{}{} }()

	for {
		batch, ok := pop(mu, queue)
		if !ok {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			tl, err := client.Translate(ctx, batch)
			if err != nil {
				log.Warn("translation failed, retrying same batch", "start", batch.Start, "end", batch.End, "error", err)
				continue
			}
			select {
			case results <- tl:
			case <-ctx.Done():
			}
			break
		}
	}
}

func pop(mu *sync.Mutex, queue *[]batcher.BatchPackage) (batcher.BatchPackage, bool) {
	mu.Lock()
	defer mu.Unlock()
	n := len(*queue)
	if n == 0 {
		return batcher.BatchPackage{}, false
	}
	batch := (*queue)[n-1]
	*queue = (*queue)[:n-1]
	return batch, true
}
