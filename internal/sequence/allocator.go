// Package sequence mints daily-scoped sequential identifiers for orders and
// tickets. Allocation is serialized per (prefix, day) key by the counter
// store's atomic increment; counting existing rows is deliberately not an
// option here because it races under concurrent creators.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrAllocationUnavailable signals that the counter store could not be
// reached. The caller must abort entity creation rather than fabricate a
// number.
var ErrAllocationUnavailable = errors.New("sequence: counter store unavailable")

// CounterStore increments a named counter atomically and returns the new
// value. The first increment of a key returns 1.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// Allocator produces ordinals unique within a (prefix, day) scope.
type Allocator struct {
	store  CounterStore
	logger *zap.Logger
}

// NewAllocator constructs the allocator.
func NewAllocator(store CounterStore, logger *zap.Logger) *Allocator {
	return &Allocator{store: store, logger: logger}
}

// Next returns the next ordinal for the given prefix and day. Ordinals start
// at 1 and never repeat within their scope; a caller that abandons its
// allocation leaves a gap, which is acceptable.
func (a *Allocator) Next(ctx context.Context, prefix, day string) (int64, error) {
	key := counterKey(prefix, day)
	n, err := a.store.Incr(ctx, key)
	if err != nil {
		a.logger.Error("ordinal allocation failed", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrAllocationUnavailable, err)
	}
	return n, nil
}

// NextIdentifier allocates an ordinal for the given creation time and renders
// the full human-readable identifier.
func (a *Allocator) NextIdentifier(ctx context.Context, prefix string, at time.Time) (string, error) {
	day := DayKey(at)
	n, err := a.Next(ctx, prefix, day)
	if err != nil {
		return "", err
	}
	return Format(prefix, day, n), nil
}

// DayKey renders the day scope used in identifiers and counter keys.
func DayKey(at time.Time) string {
	return at.Format("20060102")
}

// Format renders <PREFIX>-<YYYYMMDD>-<NNNN>. Ordinals below 10000 are
// zero-padded to four digits; larger ones keep their natural width.
func Format(prefix, day string, n int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day, n)
}

func counterKey(prefix, day string) string {
	return "seq:" + prefix + ":" + day
}
