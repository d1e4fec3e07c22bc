// Package fetcher runs paged bulk lookups concurrently under a rate
// admission gate.
package fetcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"ornithology/pkg/logger"
	"ornithology/pkg/ratelimit"
)

const defaultPageSize = 100

// Config controls how FetchAll splits and dispatches work.
type Config struct {
	// PageSize caps how many ids ride in one request.
	PageSize int
	// Gate admits dispatches. A nil gate disables admission control.
	Gate   ratelimit.Limiter
	Logger logger.Logger
	// OnBatch receives the record count of every completed batch.
	// Calls are serialized.
	OnBatch func(count int)
}

// BatchFunc fetches one batch. ids is the comma-joined id list for the
// request.
type BatchFunc[T any] func(ctx context.Context, ids string) ([]T, error)

// FetchAll splits ids into ordered batches of at most cfg.PageSize,
// dispatches them concurrently as the gate admits them, and merges the
// responses in completion order.
//
// A batch in flight never waits on the gate, only dispatch does, and a
// slow batch never blocks later dispatches. The first failing batch
// aborts further dispatch; batches already in flight run to completion
// on ctx but their results are discarded and the first error is
// returned alone.
func FetchAll[T any](ctx context.Context, cfg Config, ids []uint64, fetch BatchFunc[T]) ([]T, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	batches := Partition(ids, pageSize)
	log.DebugWithFields("dispatching batches", map[string]interface{}{
		"ids":       len(ids),
		"batches":   len(batches),
		"page_size": pageSize,
	})

	var (
		mu  sync.Mutex
		all = make([]T, 0, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		if cfg.Gate != nil {
			if err := cfg.Gate.Wait(gctx); err != nil {
				// Either a batch already failed (gctx) or the caller
				// gave up (ctx); g.Wait and the ctx check below report
				// whichever it was.
				break
			}
		}

		idList := JoinIDs(batch)
		g.Go(func() error {
			// Runs on the outer ctx: a failure elsewhere stops
			// dispatch, not requests already in flight.
			data, err := fetch(ctx, idList)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			mu.Lock()
			all = append(all, data...)
			if cfg.OnBatch != nil {
				cfg.OnBatch(len(data))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

// Partition splits ids into ceil(len/size) batches preserving order.
// Every id lands in exactly one batch and only the final batch may run
// short.
func Partition(ids []uint64, size int) [][]uint64 {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	batches := make([][]uint64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		batches = append(batches, ids[start:min(start+size, len(ids))])
	}
	return batches
}

// JoinIDs renders a batch as the API's comma-separated id list, with
// no leading or trailing separator.
func JoinIDs(ids []uint64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(id, 10))
	}
	return b.String()
}
