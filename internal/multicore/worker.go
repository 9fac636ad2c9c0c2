// Package multicore is the scoped parallel executor. It
// reproduces bellman's Worker::scope fork-join contract using
// golang.org/x/sync/errgroup instead of a hand-rolled thread pool, the way
// the wider gnark-crypto ecosystem leans on errgroup for bounded fan-out
// (see BaoNinh2808-gnark/go.mod).
package multicore

import (
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Worker bounds the amount of parallelism a Scope may use. The zero value
// uses runtime.NumCPU().
type Worker struct {
	NumCPUs int
}

// NewWorker returns a Worker sized to the host's CPU count.
func NewWorker() Worker {
	return Worker{NumCPUs: runtime.NumCPU()}
}

// LogNumThreads reports log2(NumCPUs), rounded down, matching
// Worker::log_num_cpus in original_source.
func (w Worker) LogNumThreads() int {
	n := w.numCPUs()
	if n < 1 {
		n = 1
	}
	return bits.Len(uint(n)) - 1
}

func (w Worker) numCPUs() int {
	if w.NumCPUs > 0 {
		return w.NumCPUs
	}
	return runtime.NumCPU()
}

// Concurrency exposes the same CPU budget Scope partitions work across, for
// callers (such as multiexp) that hand their own work off to a library's
// internal parallelism instead of calling Scope directly.
func (w Worker) Concurrency() int { return w.numCPUs() }

// Scope partitions totalWork into chunks across the Worker's CPU budget and
// invokes body once per chunk with that chunk's start offset and length.
// Every invocation of body runs inside an errgroup task; Scope blocks until
// all tasks have joined (errgroup.Wait), which is also the synchronization
// point that makes it safe for body to read back buffers written by sibling
// chunks after Scope returns — the parallel FFT's interleave step depends on
// exactly this join-before-return guarantee.
//
// A panic inside any chunk is recovered, converted to an error, and
// propagated out of Scope after every chunk has been joined, mirroring
// bellman's "propagated after the scope joins" policy.
func (w Worker) Scope(totalWork int, body func(chunkStart, chunkLen int) error) error {
	numCPUs := w.numCPUs()
	if numCPUs < 1 {
		numCPUs = 1
	}
	if totalWork == 0 {
		return nil
	}
	chunkSize := (totalWork + numCPUs - 1) / numCPUs
	if chunkSize < 1 {
		chunkSize = 1
	}

	var g errgroup.Group
	for start := 0; start < totalWork; start += chunkSize {
		start := start
		end := start + chunkSize
		if end > totalWork {
			end = totalWork
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = panicError{r}
				}
			}()
			return body(start, end-start)
		})
	}
	return g.Wait()
}

type panicError struct{ value interface{} }

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return "multicore: task panicked: " + err.Error()
	}
	return "multicore: task panicked"
}
