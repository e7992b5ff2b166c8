package pipeline

import (
	"context"
	"errors"
)

// FanOut delivers every batch to each of its loaders in order. All loaders
// are attempted; their errors are joined.
type FanOut[T any] []BatchLoader[T]

func (f FanOut[T]) LoadBatch(ctx context.Context, items []T) error {
	var errs []error
	for _, l := range f {
		if err := l.LoadBatch(ctx, items); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
