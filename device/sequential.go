package device

import (
	"context"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// Sequential is a Device which runs every kernel on the calling goroutine as
// soon as it is submitted. Its results are deterministic.
type Sequential struct {
	state
	closed bool
}

// NewSequential returns a Sequential device covering g.
func NewSequential(g *geom.Grid, blockWidth int) (*Sequential, error) {
	dev := &Sequential{}
	if err := dev.init(g, blockWidth); err != nil {
		return nil, err
	}
	return dev, nil
}

func (dev *Sequential) usable(phase string) error {
	if err := dev.failed(); err != nil {
		return err
	} else if dev.closed {
		return dev.fail(lbmerr.Accelerator(phase, "Device is closed"))
	}
	return nil
}

// Upload copies nodes into both buffers.
func (dev *Sequential) Upload(nodes []lattice.Node) error {
	if err := dev.usable("Upload"); err != nil {
		return err
	} else if err := dev.checkLen("Upload", len(nodes)); err != nil {
		return err
	}
	copy(dev.bufs.A, nodes)
	copy(dev.bufs.B, nodes)
	return nil
}

// Submit runs k over every block.
func (dev *Sequential) Submit(k Kernel) error {
	if err := dev.usable(k.Name()); err != nil {
		return err
	}
	if err := dev.runBlocks(k, 0, 1); err != nil {
		return dev.fail(err)
	}
	return nil
}

// SubmitBatch runs each of ks over every block, in order.
func (dev *Sequential) SubmitBatch(ks ...Kernel) error {
	for _, k := range ks {
		if err := dev.Submit(k); err != nil {
			return err
		}
	}
	return nil
}

// Readback copies buffer A into dst.
func (dev *Sequential) Readback(ctx context.Context, dst []lattice.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	} else if err := dev.usable("Readback"); err != nil {
		return err
	} else if err := dev.checkLen("Readback", len(dst)); err != nil {
		return err
	}
	copy(dst, dev.bufs.A)
	return nil
}

// Close releases the device.
func (dev *Sequential) Close() error {
	dev.closed = true
	return nil
}
