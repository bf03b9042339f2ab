/*
 * runner.go, part of dockeval.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package batch runs a per-item function over a fixed set of inputs on a
// fixed-size goroutine pool.
package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// DefaultWorkers is the pool size used when none is given.
const DefaultWorkers = 64

// Options for Run.
type Options struct {
	Workers int
	// Progress receives a progress bar. Nothing is shown if nil.
	Progress    io.Writer
	Description string
	Logger      *zap.Logger
}

// PanicError is the value Run panics with when the item function panicked.
type PanicError struct {
	Index int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("batch: item %d panicked: %v", e.Index, e.Value)
}

type completion[Out any] struct {
	index    int
	out      Out
	panicked any
}

// Run calls f once for each input, at most o.Workers at a time, and returns
// one result per input, in completion order. f is expected to turn its own
// failures into results. A panic in f is a programming error: it is raised
// again, wrapped in a *PanicError, in the goroutine that called Run.
// Run fails only if the pool can't be set up or ctx is cancelled; the results
// collected until then are returned with the error.
func Run[In, Out any](ctx context.Context, inputs []In, f func(context.Context, In) Out, o *Options) ([]Out, error) {
	if o == nil {
		o = &Options{}
	}
	workers := o.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	n := len(inputs)
	results := make([]Out, 0, n)
	if n == 0 {
		return results, nil
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(x any) {
		logger.Error("panic escaped a batch worker", zap.Any("panic", x))
	}))
	if err != nil {
		return nil, errors.Wrap(err, "batch: creating pool")
	}
	defer pool.Release()

	done := make(chan completion[Out], n)
	submitted := atomic.NewInt64(0)
	submitErr := make(chan error, 1)
	go func() {
		defer close(submitErr)
		for i, in := range inputs {
			i, in := i, in
			err := pool.Submit(func() {
				c := completion[Out]{index: i}
				defer func() {
					if x := recover(); x != nil {
						c.panicked = x
					}
					done <- c
				}()
				c.out = f(ctx, in)
			})
			if err != nil {
				submitErr <- errors.Wrapf(err, "batch: submitting item %d", i)
				return
			}
			submitted.Inc()
		}
	}()

	var bar *progressbar.ProgressBar
	if o.Progress != nil {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetWriter(o.Progress),
			progressbar.OptionSetDescription(o.Description),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}
	start := time.Now()
	for len(results) < n {
		select {
		case c := <-done:
			if c.panicked != nil {
				panic(&PanicError{Index: c.index, Value: c.panicked})
			}
			results = append(results, c.out)
			if bar != nil {
				bar.Add(1)
			}
		case err, ok := <-submitErr:
			if ok && err != nil {
				return results, err
			}
			submitErr = nil
		case <-ctx.Done():
			return results, errors.Wrapf(ctx.Err(), "batch: %d of %d items done", len(results), n)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(o.Progress)
	}
	logger.Debug("batch finished", zap.String("description", o.Description), zap.Int("items", n),
		zap.Int64("submitted", submitted.Load()), zap.Duration("elapsed", time.Since(start)))
	return results, nil
}
