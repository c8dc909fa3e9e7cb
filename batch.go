/*
Copyright 2024 piercefreeman

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package iceaxe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// options configures one hydration batch.
type options struct {
	parallelism int
	fieldLimit  int
	tracer      TraceFunc
}

// Option configures hydration.
type Option func(*options)

// WithParallelism distributes row hydration over n workers. Rows have no
// data dependency on one another, so any n preserves per-row results; each
// output is written back at the row's original index.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithFieldLimit caps the total number of field descriptors a batch may
// allocate. Zero means no limit.
func WithFieldLimit(n int) Option {
	return func(o *options) {
		o.fieldLimit = n
	}
}

// WithTracer installs a diagnostic tracer for this batch. The tracer must be
// safe for concurrent use when parallelism is enabled.
func WithTracer(t TraceFunc) Option {
	return func(o *options) {
		o.tracer = t
	}
}

func newOptions(opts []Option) options {
	o := options{tracer: defaultTracer}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Hydrate converts a batch of raw rows into typed values according to the
// selection list. The output has exactly one element per input row, in row
// order: the single hydrated value when one target is selected, or an
// ordered []any tuple in target order when several are.
//
// The batch is all-or-nothing: the first missing key, decode failure or
// construction failure aborts the whole call and no partial results are
// returned. Target classification and field metadata are computed once and
// shared read-only across all rows.
func Hydrate(rows []RawRow, selects []any, opts ...Option) ([]any, error) {
	o := newOptions(opts)
	targets, err := classifyTargets(selects)
	if err != nil {
		return nil, err
	}
	if err := precomputeFields(targets, o.fieldLimit); err != nil {
		return nil, err
	}
	if o.tracer != nil {
		o.tracer("hydrating %d rows across %d targets", len(rows), len(targets))
	}
	out := make([]any, len(rows))
	if o.parallelism > 1 && len(rows) > 1 {
		if err := hydrateParallel(rows, targets, out, o); err != nil {
			return nil, err
		}
		return out, nil
	}
	for i := range rows {
		v, err := assembleRow(rows[i], targets, i, o.tracer)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// hydrateParallel fans rows out over an errgroup. The first error cancels
// the group; queued rows short-circuit on the cancelled context, so the
// all-or-nothing contract holds without any cross-row state.
func hydrateParallel(rows []RawRow, targets []*selectTarget, out []any, o options) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(o.parallelism)
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := assembleRow(rows[i], targets, i, o.tracer)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	return g.Wait()
}

// assembleRow unwraps single-target rows and keeps multi-target rows as
// ordered tuples.
func assembleRow(row RawRow, targets []*selectTarget, rowIdx int, tracer TraceFunc) (any, error) {
	values, err := hydrateRow(row, targets, rowIdx, tracer)
	if err != nil {
		return nil, err
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

// HydrateAs hydrates a single-target batch and asserts every output to T.
// Nil outputs (all-null table rows) become T's zero value.
func HydrateAs[T any](rows []RawRow, selects []any, opts ...Option) ([]T, error) {
	if len(selects) != 1 {
		return nil, fmt.Errorf("iceaxe: HydrateAs requires exactly one select target, got %d", len(selects))
	}
	values, err := Hydrate(rows, selects, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		typed, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("iceaxe: row %d: cannot use %T as %T", i, v, out[i])
		}
		out[i] = typed
	}
	return out, nil
}
