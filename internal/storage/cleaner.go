package storage

import (
	"context"
	"time"

	"dentcheck/internal/appinfo"
	"dentcheck/pkg/logger"
	"dentcheck/pkg/utils"
)

/*
Orphan Blob Sweeper
===================

Attach stores the blob before the metadata transaction runs. If the process dies
between the two, or a compensating delete fails, the blob stays on disk with no
image record pointing at it. The sweeper reclaims those.

  - Only blobs older than the grace period are considered, so an upload whose
    transaction is still in flight is never touched.
  - References are checked against the image table in batches.
  - Deletion is soft-fail: a failed delete is logged and retried next sweep.
*/

const sweepBatchSize = 100

// ReferenceChecker reports which of the given references are still recorded.
type ReferenceChecker interface {
	ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error)
}

type Cleaner struct {
	store BlobStore
	refs  ReferenceChecker
	grace time.Duration
	now   func() time.Time
}

func NewCleaner(store BlobStore, refs ReferenceChecker, grace time.Duration) *Cleaner {
	return &Cleaner{store: store, refs: refs, grace: grace, now: time.Now}
}

// Start runs a sweep immediately and then on every tick until ctx is done.
func (c *Cleaner) Start(ctx context.Context, interval time.Duration) {
	logger.LogInfo("Orphan blob sweeper started. Interval: %s, Grace: %s", interval, c.grace)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweepAndLog(ctx)
		}
	}
}

func (c *Cleaner) sweepAndLog(ctx context.Context) {
	removed, freed, err := c.Sweep(ctx)
	if err != nil {
		logger.LogError("Orphan sweep failed: %v", err)
		return
	}
	if removed > 0 {
		logger.LogInfo("Orphan sweep removed %d blobs (%s freed)", removed, utils.FormatBytes(freed))
	}
}

// Sweep deletes unreferenced blobs older than the grace period.
func (c *Cleaner) Sweep(ctx context.Context) (int, int64, error) {
	blobs, err := c.store.List(ctx)
	if err != nil {
		return 0, 0, err
	}

	cutoff := c.now().Add(-c.grace)
	candidates := make([]BlobInfo, 0, len(blobs))
	for _, b := range blobs {
		if b.ModTime.Before(cutoff) {
			candidates = append(candidates, b)
		}
	}

	removed := 0
	var freed int64
	for start := 0; start < len(candidates); start += sweepBatchSize {
		end := min(start+sweepBatchSize, len(candidates))
		batch := candidates[start:end]

		refs := make([]string, len(batch))
		for i, b := range batch {
			refs[i] = b.Reference
		}

		known, err := c.refs.ExistingReferences(ctx, refs)
		if err != nil {
			return removed, freed, err
		}

		for _, b := range batch {
			if known[b.Reference] {
				continue
			}
			res := c.store.Delete(ctx, b.Reference)
			if !res.OK() {
				logger.LogWarn("Orphan blob %s could not be deleted: %v", res.Reference, res.Err)
				appinfo.BlobDeleteFailures.Add(1)
				continue
			}
			removed++
			freed += b.Size
		}
	}

	appinfo.OrphansSwept.Add(int64(removed))
	return removed, freed, nil
}
