package matching

import (
	"sync/atomic"

	tomb "gopkg.in/tomb.v2"
)

const (
	defaultDispatchBuffer = 1024
)

// dispatcher decouples fill publication from the matching critical
// section: publish is a non-blocking channel send, and a single
// tomb-managed drain goroutine delivers the channel's contents to the
// caller's sink. This is the same lifecycle primitive (gopkg.in/tomb.v2)
// the teacher uses to run its connection-handling worker pool,
// repurposed here from TCP connections to fill events — but unlike the
// teacher's pool, exactly one goroutine ever calls sink. Fills must
// reach the sink in generation order with no interleaving between
// separate matching calls (spec.md §4.6/§5); a pool of concurrent
// consumers draining the same channel would preserve receive order but
// not delivery order, since two goroutines can call sink concurrently
// once each has dequeued a fill. A single consumer makes that
// impossible by construction.
//
// If the channel is saturated (an unresponsive sink), a fill is dropped
// and counted rather than blocking the matching call, per spec: the
// critical section permits no I/O and no blocking allocation.
type dispatcher struct {
	t       *tomb.Tomb
	fills   chan Fill
	sink    Sink
	dropped atomic.Uint64
}

func newDispatcher(sink Sink, buffer int) *dispatcher {
	d := &dispatcher{
		fills: make(chan Fill, buffer),
		sink:  sink,
	}
	d.t = new(tomb.Tomb)
	d.t.Go(d.drain)
	return d
}

func (d *dispatcher) drain() error {
	for {
		select {
		case <-d.t.Dying():
			return nil
		case f := <-d.fills:
			d.sink(f)
		}
	}
}

// publish enqueues a fill for async delivery. Never blocks.
func (d *dispatcher) publish(f Fill) {
	select {
	case d.fills <- f:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns the number of fills discarded because the dispatch
// queue was full.
func (d *dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// stop signals the drain goroutine to exit, and waits for it.
func (d *dispatcher) stop() {
	d.t.Kill(nil)
	_ = d.t.Wait()
}
