package kernel

import "context"

// Worker drains a Queue on its own goroutine.
type Worker struct {
	q    *Queue
	done chan struct{}
}

// Start runs tasks from q until ctx is done.
func Start(ctx context.Context, q *Queue) *Worker {
	w := &Worker{q: q, done: make(chan struct{})}
	go w.run(ctx)
	return w
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	for {
		t, err := w.q.Next(ctx)
		if err != nil {
			return
		}
		t()
	}
}

// Done is closed once the worker has stopped.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Drain runs every ready task on the caller's goroutine. It is used where no
// worker goroutine is started.
func (q *Queue) Drain() int {
	n := 0
	for {
		t, ok := q.TryNext()
		if !ok {
			return n
		}
		t()
		n++
	}
}
