package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// ConcurrentResult counts how a burst of concurrent calls ended. Errors
// holds everything that is not one of the named domain codes.
type ConcurrentResult struct {
	Successes  int32
	Errors     int32
	Busy       int32
	Duplicates int32
	NotFounds  int32
}

// Total is the number of calls made.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Busy + r.Duplicates + r.NotFounds
}

// RunConcurrent releases n goroutines at once, each calling fn with its
// index, and tallies the outcomes by domain error code. It returns after
// every call has finished.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		tally [5]atomic.Int32
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := range n {
		wg.Go(func() {
			<-start
			tally[bucket(fn(i))].Add(1)
		})
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes:  tally[0].Load(),
		Busy:       tally[1].Load(),
		Duplicates: tally[2].Load(),
		NotFounds:  tally[3].Load(),
		Errors:     tally[4].Load(),
	}
}

func bucket(err error) int {
	switch {
	case err == nil:
		return 0
	case dErrors.HasCode(err, dErrors.CodeBusy):
		return 1
	case dErrors.HasCode(err, dErrors.CodeDuplicate):
		return 2
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return 3
	default:
		return 4
	}
}
