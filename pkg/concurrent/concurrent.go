package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ranges splits [0, n) into at most workers contiguous half-open ranges of
// near-equal length. The split depends only on n and workers.
func Ranges(n, workers int) [][2]int {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	out := make([][2]int, 0, workers)
	size, rest := n/workers, n%workers
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + size
		if w < rest {
			hi++
		}
		out = append(out, [2]int{lo, hi})
		lo = hi
	}
	return out
}

// Chunked runs action once per range returned by Ranges(n, workers), each in
// its own goroutine, and waits for all of them. It returns the first error.
// With a single range the action runs on the calling goroutine.
func Chunked(ctx context.Context, n, workers int, action func(ctx context.Context, chunk, lo, hi int) error) error {
	ranges := Ranges(n, workers)
	if len(ranges) == 1 {
		return action(ctx, 0, ranges[0][0], ranges[0][1])
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for chunk, r := range ranges {
		group.Go(func() error {
			return action(groupCtx, chunk, r[0], r[1])
		})
	}
	return group.Wait()
}
