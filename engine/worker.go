package engine

import "time"

// worker generates patterns off the render path. The render path asks for a
// track's next pattern right after swapping its previous one in, so at most
// one request per track is ever in flight and the request channel, sized to
// the track count, never fills up.
//
// Closing follows the usual close/finished pair: a send on done (capacity
// 1) asks the goroutine to quit, and finished is closed once it has.
type worker struct {
	requests chan *track
	done     chan struct{}
	finished chan struct{}
}

// workerStopTimeout bounds how long Close waits for a generation in
// progress.
const workerStopTimeout = 3 * time.Second

func newWorker(tracks int) *worker {
	return &worker{
		requests: make(chan *track, max(tracks, 1)),
		done:     make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
}

func (w *worker) run() {
	defer close(w.finished)
	for {
		select {
		case <-w.done:
			return
		case tr := <-w.requests:
			tr.prefetch()
		}
	}
}

// request is called from the render path and never blocks.
func (w *worker) request(tr *track) bool {
	return trySend(w.requests, tr)
}

func (w *worker) stop() {
	trySend(w.done, struct{}{})
	select {
	case <-w.finished:
	case <-time.After(workerStopTimeout):
	}
}

// trySend sends v on c if c is not full. It never blocks and reports
// whether the value was sent.
func trySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}
