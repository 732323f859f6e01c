package golbm

import (
	"math"

	"github.com/phil-mansfield/golbm/device"
	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// Config contains the physical and numerical parameters of a run. Lengths
// are in the same units as the obstacle mesh.
type Config struct {
	Nx, Ny, Nz int
	Dx, Dy, Dz float64

	Reynolds      float64
	InletVelocity [3]float64
	Density       float64
	// Viscosity and Tau are derived from the Reynolds number when zero.
	Viscosity float64
	Tau       float64

	MaxIterations  int
	Tolerance      float64
	OutputInterval int

	// FluidSeedFraction is the fraction of the inlet velocity Fluid and
	// Outlet nodes start at.
	FluidSeedFraction float64
	// BlockWidth is the edge length of the blocks kernels are dispatched
	// over. Zero means device.DefaultBlockWidth.
	BlockWidth int
}

// Validate returns a ConfigError describing the first invalid field.
func (con *Config) Validate() error {
	switch {
	case con.Nx < 2:
		return lbmerr.Config("Validate",
			"Nx must be at least 2, but is %d", con.Nx)
	case con.Ny <= 0 || con.Nz <= 0:
		return lbmerr.Config("Validate",
			"Domain extents must be positive, but are (%d, %d, %d)",
			con.Nx, con.Ny, con.Nz)
	case !(con.Dx > 0 && con.Dy > 0 && con.Dz > 0):
		return lbmerr.Config("Validate",
			"Grid spacing must be positive, but is (%g, %g, %g)",
			con.Dx, con.Dy, con.Dz)
	case !(con.Density > 0):
		return lbmerr.Config("Validate",
			"Density must be positive, but is %g", con.Density)
	case con.MaxIterations <= 0:
		return lbmerr.Config("Validate",
			"MaxIterations must be positive, but is %d", con.MaxIterations)
	case con.OutputInterval <= 0:
		return lbmerr.Config("Validate",
			"OutputInterval must be positive, but is %d", con.OutputInterval)
	case con.Tolerance < 0 || math.IsNaN(con.Tolerance):
		return lbmerr.Config("Validate",
			"Tolerance must be non-negative, but is %g", con.Tolerance)
	case con.FluidSeedFraction < 0 || math.IsNaN(con.FluidSeedFraction):
		return lbmerr.Config("Validate",
			"FluidSeedFraction must be non-negative, but is %g",
			con.FluidSeedFraction)
	case con.BlockWidth < 0:
		return lbmerr.Config("Validate",
			"BlockWidth must be non-negative, but is %d", con.BlockWidth)
	case con.Tau < 0 || con.Viscosity < 0:
		return lbmerr.Config("Validate",
			"Tau and Viscosity must be non-negative, but are %g and %g",
			con.Tau, con.Viscosity)
	case con.Tau == 0 && con.Viscosity == 0 && !(con.Reynolds > 0):
		return lbmerr.Config("Validate",
			"A positive Reynolds number is required when neither Tau nor "+
				"Viscosity is given, but Reynolds is %g", con.Reynolds)
	}

	for i, u := range con.InletVelocity {
		if math.IsNaN(u) || math.IsInf(u, 0) {
			return lbmerr.Config("Validate",
				"Component %d of the inlet velocity is %g", i, u)
		}
	}

	if tau := con.RelaxationTime(); !(tau > 0.5) {
		return lbmerr.Config("Validate",
			"Relaxation time must be larger than 0.5, but is %g", tau)
	}
	return nil
}

// RelaxationTime returns Tau if it was given and otherwise derives it from
// the viscosity, which in turn is derived from the Reynolds number using
// the largest inlet velocity component and Dx as the characteristic
// scales.
func (con *Config) RelaxationTime() float64 {
	if con.Tau > 0 {
		return con.Tau
	}
	nu := con.Viscosity
	if nu == 0 {
		nu = lattice.Viscosity(con.InletVelocity, con.Dx, con.Reynolds)
	}
	return lattice.RelaxationTime(nu)
}

// Grid returns the grid described by the domain extents.
func (con *Config) Grid() *geom.Grid {
	return geom.NewDomain(con.Nx, con.Ny, con.Nz)
}

// NewDevice returns a device covering the domain. A sequential device is
// returned if sequential is true, otherwise a parallel one with the given
// number of workers.
func (con *Config) NewDevice(sequential bool, workers int) (device.Device, error) {
	width := con.BlockWidth
	if width == 0 {
		width = device.DefaultBlockWidth
	}
	if sequential {
		dev, err := device.NewSequential(con.Grid(), width)
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
	dev, err := device.NewParallel(con.Grid(), width, workers)
	if err != nil {
		return nil, err
	}
	return dev, nil
}
