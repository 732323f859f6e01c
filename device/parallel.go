package device

import (
	"context"
	"runtime"
	"sync"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// QueueLength is the number of requests which can be pending on a Parallel
// device before Submit blocks.
const QueueLength = 64

// Parallel is a Device which executes kernels on a dispatcher goroutine.
// Each kernel's blocks are split across a set of workers and the dispatcher
// waits for all of them before starting the next kernel.
//
// A Parallel device is driven by a single host goroutine.
type Parallel struct {
	state
	workers int

	mu     sync.Mutex
	closed bool
	queue  chan request
	done   chan struct{}
}

// request is a single entry in the dispatcher's queue. Exactly one of its
// fields is set.
type request struct {
	kernel Kernel
	upload []lattice.Node
	fence  *fence
}

// fence pauses the dispatcher so the host can read the buffers.
type fence struct {
	ready, release chan struct{}
}

// NewParallel returns a Parallel device covering g. If workers is not
// positive, runtime.NumCPU() workers are used.
func NewParallel(g *geom.Grid, blockWidth, workers int) (*Parallel, error) {
	dev := &Parallel{}
	if err := dev.init(g, blockWidth); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(dev.blocks) {
		workers = len(dev.blocks)
	}
	dev.workers = workers

	dev.queue = make(chan request, QueueLength)
	dev.done = make(chan struct{})
	go dev.dispatch()

	return dev, nil
}

// Workers returns the number of goroutines each kernel is split across.
func (dev *Parallel) Workers() int { return dev.workers }

func (dev *Parallel) dispatch() {
	defer close(dev.done)

	for req := range dev.queue {
		switch {
		case req.fence != nil:
			close(req.fence.ready)
			<-req.fence.release
		case dev.failed() != nil:
			// Later work is dropped once the device has failed.
		case req.upload != nil:
			copy(dev.bufs.A, req.upload)
			copy(dev.bufs.B, req.upload)
		case req.kernel != nil:
			if err := dev.runKernel(req.kernel); err != nil {
				dev.fail(err)
			}
		}
	}
}

// runKernel spreads k over the workers and blocks until each has reported
// back.
func (dev *Parallel) runKernel(k Kernel) error {
	out := make(chan error, dev.workers)

	for id := 0; id < dev.workers-1; id++ {
		go dev.chanRun(id, k, out)
	}
	dev.chanRun(dev.workers-1, k, out)

	var first error
	for i := 0; i < dev.workers; i++ {
		if err := <-out; err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (dev *Parallel) chanRun(id int, k Kernel, out chan<- error) {
	out <- dev.runBlocks(k, id, dev.workers)
}

func (dev *Parallel) enqueue(phase string, req request) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if err := dev.failed(); err != nil {
		return err
	} else if dev.closed {
		return dev.fail(lbmerr.Accelerator(phase, "Device is closed"))
	}
	dev.queue <- req
	return nil
}

// Upload queues a copy of nodes to be written into both buffers.
func (dev *Parallel) Upload(nodes []lattice.Node) error {
	if err := dev.checkLen("Upload", len(nodes)); err != nil {
		return err
	}
	cp := make([]lattice.Node, len(nodes))
	copy(cp, nodes)
	return dev.enqueue("Upload", request{upload: cp})
}

// Submit queues k.
func (dev *Parallel) Submit(k Kernel) error {
	return dev.enqueue(k.Name(), request{kernel: k})
}

// SubmitBatch queues each of ks in order.
func (dev *Parallel) SubmitBatch(ks ...Kernel) error {
	for _, k := range ks {
		if err := dev.Submit(k); err != nil {
			return err
		}
	}
	return nil
}

// Readback waits for the queue to drain and copies buffer A into dst. If ctx
// is cancelled first, its error is returned and dst is left untouched.
func (dev *Parallel) Readback(ctx context.Context, dst []lattice.Node) error {
	if err := dev.checkLen("Readback", len(dst)); err != nil {
		return err
	}

	f := &fence{make(chan struct{}), make(chan struct{})}
	if err := dev.enqueue("Readback", request{fence: f}); err != nil {
		return err
	}
	defer close(f.release)

	select {
	case <-f.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := dev.failed(); err != nil {
		return err
	}
	copy(dst, dev.bufs.A)
	return nil
}

// Close waits for queued work to finish and stops the dispatcher.
func (dev *Parallel) Close() error {
	dev.mu.Lock()
	if dev.closed {
		dev.mu.Unlock()
		return nil
	}
	dev.closed = true
	close(dev.queue)
	dev.mu.Unlock()

	<-dev.done
	return nil
}
