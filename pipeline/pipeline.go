/*package pipeline advances a lattice by one time step through the
collision, streaming and boundary enforcement phases.
*/
package pipeline

import (
	"github.com/phil-mansfield/golbm/device"
	"github.com/phil-mansfield/golbm/lbmerr"
	"github.com/phil-mansfield/golbm/voxel"
)

// State is the phase the host is currently submitting.
type State int

const (
	Idle State = iota
	Collision
	Streaming
	BoundaryEnforcement
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Collision:
		return "Collision"
	case Streaming:
		return "Streaming"
	case BoundaryEnforcement:
		return "BoundaryEnforcement"
	}
	return "Unknown"
}

// Params are the physical constants used by the kernels.
type Params struct {
	// Tau is the BGK relaxation time. It must be larger than 1/2.
	Tau float64
	// InletVelocity is imposed on every Inlet node.
	InletVelocity [3]float64
}

// Pipeline submits the kernels of a time step to a Device.
type Pipeline struct {
	dev   device.Device
	state State
	steps int

	collision *collision
	streaming *streaming
	capture   *boundaryCapture
	apply     *boundaryApply
}

// New returns a Pipeline which runs on dev over the cells of cls.
func New(
	dev device.Device, cls *voxel.Classification, p Params,
) (*Pipeline, error) {
	if !(p.Tau > 0.5) {
		return nil, lbmerr.Config("NewPipeline",
			"Relaxation time must be larger than 0.5, but is %g", p.Tau)
	}

	k := kernel{g: cls.Grid(), cls: cls}
	return &Pipeline{
		dev:       dev,
		collision: &collision{kernel: k, omega: 1 / p.Tau},
		streaming: &streaming{kernel: k},
		capture:   &boundaryCapture{kernel: k},
		apply:     &boundaryApply{kernel: k, inlet: p.InletVelocity},
	}, nil
}

// Step submits one full time step. It does not wait for the step to finish.
func (p *Pipeline) Step() error {
	defer func() { p.state = Idle }()

	p.state = Collision
	if err := p.dev.Submit(p.collision); err != nil {
		return lbmerr.Wrap(lbmerr.AcceleratorError, p.state.String(), err)
	}

	p.state = Streaming
	if err := p.dev.Submit(p.streaming); err != nil {
		return lbmerr.Wrap(lbmerr.AcceleratorError, p.state.String(), err)
	}

	p.state = BoundaryEnforcement
	if err := p.dev.SubmitBatch(p.capture, p.apply); err != nil {
		return lbmerr.Wrap(lbmerr.AcceleratorError, p.state.String(), err)
	}

	p.steps++
	return nil
}

// State returns the phase currently being submitted.
func (p *Pipeline) State() State { return p.state }

// Steps returns the number of steps submitted so far.
func (p *Pipeline) Steps() int { return p.steps }
