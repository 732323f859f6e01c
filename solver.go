/*package golbm is a D3Q27 lattice-Boltzmann flow solver. A Solver owns the
iteration loop: it drives a pipeline of kernels on a device, periodically
reads the grid back, hands snapshots to a Writer and checks for
convergence.
*/
package golbm

import (
	"context"
	"log"
	"runtime"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/golbm/device"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
	"github.com/phil-mansfield/golbm/pipeline"
	"github.com/phil-mansfield/golbm/voxel"
)

// State is the lifecycle stage of a Solver.
type State int

const (
	Uninitialized State = iota
	Initialized
	Running
	Converged
	MaxIterationsReached
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initialized:
		return "Initialized"
	case Running:
		return "Running"
	case Converged:
		return "Converged"
	case MaxIterationsReached:
		return "MaxIterationsReached"
	case Finalized:
		return "Finalized"
	}
	return "Unknown"
}

// HistoryEntry summarizes the grid at one snapshot.
type HistoryEntry struct {
	Iteration int
	// MaxSpeed is the largest velocity magnitude over Fluid nodes.
	MaxSpeed float64
	// Mass is the total density over every non-solid node.
	Mass float64
}

// Solver runs a simulation over a classified grid.
type Solver struct {
	con  Config
	cls  *voxel.Classification
	dev  device.Device
	w    Writer
	pipe *pipeline.Pipeline
	tau  float64

	nodes    []lattice.Node
	snap     Snapshot
	speeds   []float64
	masses   []float64
	manifest Manifest
	history  []HistoryEntry

	iteration int
	state     State
	err       error

	log bool
	ms  runtime.MemStats
}

// NewSolver validates con, seeds the grid described by cls and uploads it to
// dev. The Solver takes ownership of dev and closes it on failure or in
// Finalize.
func NewSolver(
	con *Config, cls *voxel.Classification, dev device.Device, w Writer,
) (*Solver, error) {
	s := &Solver{con: *con, cls: cls, dev: dev, w: w}
	if err := s.init(); err != nil {
		dev.Close()
		return nil, err
	}
	return s, nil
}

func (s *Solver) init() error {
	if err := s.con.Validate(); err != nil {
		return err
	}

	g := s.cls.Grid()
	if g.Width != [3]int{s.con.Nx, s.con.Ny, s.con.Nz} {
		return lbmerr.Config("NewSolver",
			"Classification covers a %v grid, but the domain is (%d, %d, %d)",
			g.Width, s.con.Nx, s.con.Ny, s.con.Nz)
	}

	s.tau = s.con.RelaxationTime()
	pipe, err := pipeline.New(s.dev, s.cls, pipeline.Params{
		Tau: s.tau, InletVelocity: s.con.InletVelocity,
	})
	if err != nil {
		return err
	}
	s.pipe = pipe

	s.nodes = make([]lattice.Node, g.Volume)
	s.seed()
	if err := s.dev.Upload(s.nodes); err != nil {
		return lbmerr.Wrap(lbmerr.AcceleratorError, "Upload", err)
	}

	s.snap = Snapshot{
		Extents: g.Width,
		Spacing: [3]float64{s.con.Dx, s.con.Dy, s.con.Dz},
		Records: make([]Record, g.Volume),
	}
	s.speeds = make([]float64, 0, s.cls.Count(lattice.Fluid))
	s.masses = make([]float64, 0, g.Volume)
	s.state = Initialized
	return nil
}

// seed sets every node to equilibrium at the reference density. Inlet nodes
// move at the inlet velocity, Fluid and Outlet nodes at a fraction of it and
// Solid nodes are at rest.
func (s *Solver) seed() {
	inlet := s.con.InletVelocity
	var fluid [3]float64
	for k := range fluid {
		fluid[k] = s.con.FluidSeedFraction * inlet[k]
	}

	for idx := range s.nodes {
		t := s.cls.Type(idx)
		var u [3]float64
		switch t {
		case lattice.Inlet:
			u = inlet
		case lattice.Fluid, lattice.Outlet:
			u = fluid
		}
		s.nodes[idx] = lattice.NewEquilibriumNode(s.con.Density, u, t)
	}
}

// Log turns progress logging on or off.
func (s *Solver) Log(flag bool) { s.log = flag }

// Run executes the main loop until the grid converges or MaxIterations is
// reached. A snapshot of the initial grid is written before the first step
// and one is written every OutputInterval steps after that. If the run stops
// at MaxIterations between intervals, a final snapshot is also written.
//
// ctx is checked once per iteration and while waiting on readbacks.
func (s *Solver) Run(ctx context.Context) error {
	if s.state != Initialized {
		return lbmerr.Config("Run",
			"Solver must be Initialized to run, but is %s", s.state)
	}
	s.state = Running

	if s.log {
		log.Printf("Running %dx%dx%d grid for at most %d iterations, "+
			"tau = %.4g", s.con.Nx, s.con.Ny, s.con.Nz,
			s.con.MaxIterations, s.tau)
		s.logMem()
	}

	if err := s.output(ctx); err != nil {
		return s.abort(err)
	}

	converged := false
	for s.iteration < s.con.MaxIterations && !converged {
		if err := ctx.Err(); err != nil {
			return s.abort(err)
		}
		if err := s.pipe.Step(); err != nil {
			return s.abort(err)
		}
		s.iteration++

		if s.iteration%s.con.OutputInterval == 0 {
			if err := s.output(ctx); err != nil {
				return s.abort(err)
			}
			converged = s.converged()

			if s.log {
				h := s.history[len(s.history)-1]
				log.Printf("Iteration %d: max speed %.4g, mass %.6g",
					h.Iteration, h.MaxSpeed, h.Mass)
			}
		}
	}

	if converged {
		s.state = Converged
	} else {
		if s.iteration%s.con.OutputInterval != 0 {
			if err := s.output(ctx); err != nil {
				return s.abort(err)
			}
		}
		s.state = MaxIterationsReached
	}

	if s.log {
		log.Printf("Stopped after %d iterations: %s", s.iteration, s.state)
		s.logMem()
	}
	return nil
}

// output reads the grid back, records its history entry and hands a
// snapshot to the Writer.
func (s *Solver) output(ctx context.Context) error {
	if err := s.dev.Readback(ctx, s.nodes); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return lbmerr.Wrap(lbmerr.AcceleratorError, "Readback", err)
	}

	s.speeds, s.masses = s.speeds[:0], s.masses[:0]
	for idx := range s.nodes {
		n := &s.nodes[idx]
		n.UpdateMoments()
		n.Type = s.cls.Type(idx)
		s.snap.Records[idx] = Record{n.Density, n.Velocity, n.Type}

		if n.Type == lattice.Fluid {
			s.speeds = append(s.speeds, n.Speed())
		}
		if n.Type.IsFluid() {
			s.masses = append(s.masses, n.Density)
		}
	}

	h := HistoryEntry{Iteration: s.iteration, Mass: floats.Sum(s.masses)}
	if len(s.speeds) > 0 {
		h.MaxSpeed = floats.Max(s.speeds)
	}
	s.history = append(s.history, h)

	s.snap.Iteration = s.iteration
	id, err := s.w.WriteSnapshot(&s.snap)
	if err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteSnapshot", err)
	}
	s.manifest = append(s.manifest, ManifestEntry{s.iteration, id})

	if s.log {
		log.Printf("Wrote snapshot %s", id)
	}
	return nil
}

// converged reports whether the fastest Fluid node in the latest snapshot
// is slower than the tolerance.
func (s *Solver) converged() bool {
	return s.history[len(s.history)-1].MaxSpeed < s.con.Tolerance
}

// abort releases the device and makes err the Solver's terminal error.
func (s *Solver) abort(err error) error {
	s.err = err
	s.dev.Close()
	if s.log {
		log.Printf("Run aborted at iteration %d: %s", s.iteration, err)
	}
	return err
}

func (s *Solver) logMem() {
	runtime.ReadMemStats(&s.ms)
	log.Printf(
		"Alloc: %5d MB, Sys: %5d MB",
		s.ms.Alloc>>20, s.ms.Sys>>20,
	)
}

// Finalize hands the manifest to the Writer and releases the device. The
// manifest is only written if Run completed. Calling Finalize more than once
// is allowed.
func (s *Solver) Finalize() error {
	if s.state == Finalized {
		return nil
	}
	done := s.state == Converged || s.state == MaxIterationsReached
	s.state = Finalized

	var err error
	if done && s.err == nil {
		if werr := s.w.WriteManifest(s.manifest); werr != nil {
			err = lbmerr.Wrap(lbmerr.IOError, "WriteManifest", werr)
		}
	}

	if cerr := s.dev.Close(); cerr != nil && err == nil {
		err = lbmerr.Wrap(lbmerr.AcceleratorError, "Close", cerr)
	}
	return err
}

// State returns the Solver's lifecycle stage.
func (s *Solver) State() State { return s.state }

// Iteration returns the number of completed steps.
func (s *Solver) Iteration() int { return s.iteration }

// Tau returns the relaxation time in use.
func (s *Solver) Tau() float64 { return s.tau }

// History returns one entry per snapshot written.
func (s *Solver) History() []HistoryEntry { return s.history }

// Manifest returns the snapshots written so far.
func (s *Solver) Manifest() Manifest { return s.manifest }

// Nodes returns the host copy of the grid from the most recent readback.
// It must not be modified.
func (s *Solver) Nodes() []lattice.Node { return s.nodes }
