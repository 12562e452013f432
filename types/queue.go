package types

// WorkerQueue is a forward-only cursor over a worker sequence.
//
// A single queue is shared between FillPool and FillPartitions so that a worker
// consumed by the pool is never offered to a partition.
type WorkerQueue struct {
	workers []Worker
	next    int
}

// NewWorkerQueue creates a queue that yields workers in the given order.
//
// The slice is not copied; callers must not modify it while the queue is in use.
func NewWorkerQueue(workers []Worker) *WorkerQueue {
	return &WorkerQueue{workers: workers}
}

// Next pops the next worker.
//
// Returns:
//   - Worker: The next worker (zero value when exhausted)
//   - bool: false once the supply is exhausted
func (q *WorkerQueue) Next() (Worker, bool) {
	if q == nil || q.next >= len(q.workers) {
		return "", false
	}

	w := q.workers[q.next]
	q.next++

	return w, true
}

// Len returns the number of workers not yet consumed.
func (q *WorkerQueue) Len() int {
	if q == nil {
		return 0
	}

	return len(q.workers) - q.next
}

// Remaining returns a copy of the workers not yet consumed, in queue order.
func (q *WorkerQueue) Remaining() []Worker {
	if q.Len() == 0 {
		return []Worker{}
	}

	out := make([]Worker, q.Len())
	copy(out, q.workers[q.next:])

	return out
}
