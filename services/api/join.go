package api

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Join runs calls concurrently and waits for every one of them to return.
// When any call fails the whole step fails with the first error; there is no partial success.
func Join(ctx context.Context, calls ...func(ctx context.Context) error) error {
	var g errgroup.Group
	for _, call := range calls {
		call := call
		g.Go(func() error { return call(ctx) })
	}
	return g.Wait()
}
