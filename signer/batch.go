// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/btcsuite/btcd/wire"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateTx is returned when the same transaction is passed to
// SignBatch more than once.
var ErrDuplicateTx = errors.New("transaction appears in more than one job")

// Job is a single transaction to sign along with its keys and the outputs it
// spends.
type Job struct {
	Tx       *wire.MsgTx
	Keys     []*KeyPair
	PrevOuts []PrevOutput
}

// SignBatch signs independent transactions concurrently, with at most one
// goroutine per CPU. Results are returned in job order. The first fatal error
// cancels the jobs that have not started yet and is returned wrapped with
// the index of its job. Each transaction may only appear once since signing
// modifies it in place.
func SignBatch(ctx context.Context, jobs []*Job) ([]*Result, error) {
	seen := make(map[*wire.MsgTx]struct{}, len(jobs))
	for i, job := range jobs {
		if job == nil || job.Tx == nil {
			return nil, fmt.Errorf("job %d: %w", i, ErrNoInputs)
		}
		if _, ok := seen[job.Tx]; ok {
			return nil, fmt.Errorf("job %d: %w", i, ErrDuplicateTx)
		}
		seen[job.Tx] = struct{}{}
	}

	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, job := range jobs {
		job := job
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := Sign(job.Tx, job.Keys, job.PrevOuts)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debugf("Signed batch of %d transactions", len(jobs))

	return results, nil
}
