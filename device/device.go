/*package device runs lattice kernels over a pair of grid buffers, either on
the calling goroutine or spread across a pool of workers.

Submission is fire-and-forget: kernels run in the order they were submitted
and Readback is the only call which waits for them to finish.
*/
package device

import (
	"context"
	"sync"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// DefaultBlockWidth is the default edge length of the cubic blocks a grid is
// divided into.
const DefaultBlockWidth = 8

// Buffers are the two same-shape node buffers every kernel reads and writes.
type Buffers struct {
	A, B []lattice.Node
}

// Kernel is a unit of work applied independently to every block of the
// grid. Run must only write to cells inside blk.
type Kernel interface {
	Name() string
	Run(bufs *Buffers, blk geom.CellBounds)
}

// Device owns a pair of Buffers and executes submitted kernels over them.
type Device interface {
	// Upload copies nodes into both buffers.
	Upload(nodes []lattice.Node) error
	// Submit queues k behind every previously submitted kernel.
	Submit(k Kernel) error
	// SubmitBatch queues ks in order.
	SubmitBatch(ks ...Kernel) error
	// Readback waits for every queued kernel to finish and copies buffer A
	// into dst.
	Readback(ctx context.Context, dst []lattice.Node) error
	// Close releases the device. Calling Close more than once is allowed.
	Close() error
}

// state is the bookkeeping shared by every Device implementation.
type state struct {
	grid   geom.Grid
	blocks []geom.CellBounds
	bufs   Buffers

	errMu sync.Mutex
	err   error
}

func (s *state) init(g *geom.Grid, blockWidth int) error {
	if blockWidth <= 0 {
		return lbmerr.Config("NewDevice",
			"Block width must be positive, but is %d", blockWidth)
	} else if g.Volume <= 0 {
		return lbmerr.Config("NewDevice",
			"Grid must contain at least one cell, but has width %v", g.Width)
	}

	s.grid = *g
	s.blocks = g.Blocks(blockWidth)
	s.bufs.A = make([]lattice.Node, g.Volume)
	s.bufs.B = make([]lattice.Node, g.Volume)
	return nil
}

// fail records err as the device's error unless one is already set and
// returns the error which is now sticky.
func (s *state) fail(err error) error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
	return s.err
}

func (s *state) failed() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *state) checkLen(phase string, n int) error {
	if n != s.grid.Volume {
		return s.fail(lbmerr.Accelerator(phase,
			"Buffer holds %d nodes, but the device grid has %d cells",
			n, s.grid.Volume))
	}
	return nil
}

// runBlocks applies k to every stride-th block starting at offset and
// converts panics to AcceleratorErrors.
func (s *state) runBlocks(k Kernel, offset, stride int) (err error) {
	i := offset
	defer func() {
		if r := recover(); r != nil {
			err = lbmerr.Accelerator(k.Name(),
				"Kernel panicked on block %v: %v", s.blocks[i], r)
		}
	}()

	for ; i < len(s.blocks); i += stride {
		k.Run(&s.bufs, s.blocks[i])
	}
	return nil
}
