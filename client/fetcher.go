package client

import (
	"context"
	"sync"

	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

// SearchFunc executes one list request against the API.
type SearchFunc[F, T any] func(ctx context.Context, req listquery.Request[F]) (listquery.Result[T], error)

// Fetcher executes the controller's current query and holds the last good
// page of records.
//
// Every fetch is tagged with a monotonically increasing sequence number and
// only the highest-sequence response is ever applied, so a slow response
// for a superseded query can never overwrite newer results no matter how
// the network reorders completions. On error the previous records and total
// stay in place and Err reports the failure; there is no automatic retry.
type Fetcher[F, T any] struct {
	controller *Controller[F]
	search     SearchFunc[F, T]

	mu        sync.Mutex
	nextSeq   uint64
	applied   uint64
	records   []T
	totalRows int64
	err       error
}

// NewFetcher creates a fetcher bound to a controller.
func NewFetcher[F, T any](controller *Controller[F], search SearchFunc[F, T]) *Fetcher[F, T] {
	return &Fetcher[F, T]{controller: controller, search: search}
}

// Refresh snapshots the controller's current query and executes it. Safe to
// call concurrently; whichever call started last wins.
func (f *Fetcher[F, T]) Refresh(ctx context.Context) {
	f.mu.Lock()
	f.nextSeq++
	seq := f.nextSeq
	f.mu.Unlock()

	req := f.controller.Query()
	result, err := f.search(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq <= f.applied {
		// A newer fetch already landed; this response is stale.
		return
	}
	f.applied = seq
	if err != nil {
		f.err = err
		return
	}
	f.err = nil
	f.records = result.Data
	f.totalRows = result.TotalRows
	f.controller.applyTotal(result.TotalRows)
}

// Records returns the last successfully fetched page.
func (f *Fetcher[F, T]) Records() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records
}

// TotalRows returns the total match count from the last successful fetch.
func (f *Fetcher[F, T]) TotalRows() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalRows
}

// Err returns the error from the most recent fetch, or nil if it succeeded.
func (f *Fetcher[F, T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
