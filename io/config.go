package io

import (
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/lbmerr"
	"github.com/phil-mansfield/golbm/voxel"
)

const (
	ExampleSimulationFile = `[Domain]

#######################
# Required Parameters #
#######################

# Number of cells along each axis. Flow enters through the x = 0 plane and
# leaves through the x = Nx - 1 plane, so Nx must be at least 2.
Nx = 120
Ny = 60
Nz = 60

# Cell widths, in the same units as the obstacle mesh.
Dx = 0.05
Dy = 0.05
Dz = 0.05

[Physics]

# The Reynolds number is used to derive the viscosity (and from that the
# relaxation time) with the largest inlet velocity component and Dx as the
# characteristic scales.
Reynolds = 100

# Velocity imposed on the inlet plane, in lattice units. Keep this well below
# the lattice speed of sound (~0.577).
InletVelocityX = 0.05
InletVelocityY = 0
InletVelocityZ = 0

# Reference density every node starts at.
Density = 1.0

#######################
# Optional Parameters #
#######################

# Explicit kinematic viscosity. Overrides Reynolds.
# Viscosity = 0.01

[Simulation]

MaxIterations = 10000

# The run stops once the largest fluid speed falls below Tolerance. This is
# only checked when a snapshot is written. Note that a grid which starts at
# rest will pass this check immediately, so use FluidSeedFraction to start
# the fluid moving.
Tolerance = 1e-6

#######################
# Optional Parameters #
#######################

# Explicit relaxation time. Overrides Reynolds and Viscosity. Must be larger
# than 0.5.
# Tau = 0.8

# Fraction of the inlet velocity the fluid starts at. Default is 0.1.
# FluidSeedFraction = 0.1

# Edge length of the blocks of cells a kernel is split into and the number of
# worker threads. Threads = 0 uses every core.
# BlockWidth = 8
# Threads = 0

[Geometry]

#######################
# Optional Parameters #
#######################

# Obstacle mesh. Supported formats are binary or ASCII .stl files and
# whitespace separated tables (.txt, .dat, .tri) with one triangle per line,
# given as nine columns: x1 y1 z1 x2 y2 z2 x3 y3 z3. If Mesh isn't set, the
# channel is empty.
# Mesh = path/to/obstacle.stl

# Voxelization controls. A cell is solid if a strict majority of its
# Samples^3 test points lie within Thickness * min(Dx, Dy, Dz) of the
# surface. FillInterior also marks cells enclosed by the surface as solid.
# Samples = 3
# Thickness = 0.8
# FillInterior = true

[Output]

#######################
# Required Parameters #
#######################

# Directory which output files will be written to. It will be created if it
# doesn't exist.
Directory = path/to/output/dir

# Number of iterations between snapshots.
Interval = 100

#######################
# Optional Parameters #
#######################

# Format must be one of [ vtk | grid ]. vtk files can be opened in ParaView
# and grid files are compact binary files. Default is vtk.
# Format = vtk

# Snapshot files are named <Prefix>_<iteration>, e.g. output_000100.vtk.
# Prefix = output

# Writes a table of the convergence history and a plot of it, respectively.
# HistoryFile = history.txt
# HistoryPlot = history.png

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`
)

type DomainConfig struct {
	// Required
	Nx, Ny, Nz int
	Dx, Dy, Dz float64
}

func (con *DomainConfig) ValidExtents() bool {
	return con.Nx >= 2 && con.Ny > 0 && con.Nz > 0
}
func (con *DomainConfig) ValidSpacing() bool {
	return con.Dx > 0 && con.Dy > 0 && con.Dz > 0
}

type PhysicsConfig struct {
	// Required
	Reynolds                                       float64
	InletVelocityX, InletVelocityY, InletVelocityZ float64
	Density                                        float64

	// Optional
	Viscosity float64
}

func (con *PhysicsConfig) ValidDensity() bool {
	return con.Density > 0
}
func (con *PhysicsConfig) ValidViscosity() bool {
	return con.Viscosity >= 0
}

type SimulationConfig struct {
	// Required
	MaxIterations int
	Tolerance     float64

	// Optional
	Tau               float64
	FluidSeedFraction float64
	BlockWidth        int
	Threads           int
}

func (con *SimulationConfig) ValidMaxIterations() bool {
	return con.MaxIterations > 0
}
func (con *SimulationConfig) ValidTolerance() bool {
	return con.Tolerance >= 0
}
func (con *SimulationConfig) ValidTau() bool {
	return con.Tau == 0 || con.Tau > 0.5
}
func (con *SimulationConfig) ValidFluidSeedFraction() bool {
	return con.FluidSeedFraction >= 0
}
func (con *SimulationConfig) ValidBlockWidth() bool {
	return con.BlockWidth > 0
}
func (con *SimulationConfig) ValidThreads() bool {
	return con.Threads >= 0
}

type GeometryConfig struct {
	// Optional
	Mesh         string
	Samples      int
	Thickness    float64
	FillInterior bool
}

func (con *GeometryConfig) ValidMesh() bool {
	return con.Mesh != ""
}
func (con *GeometryConfig) ValidSamples() bool {
	return con.Samples > 0
}
func (con *GeometryConfig) ValidThickness() bool {
	return con.Thickness > 0
}

type OutputConfig struct {
	// Required
	Directory string
	Interval  int

	// Optional
	Format, Prefix           string
	HistoryFile, HistoryPlot string
	LogFile, ProfileFile     string
}

func (con *OutputConfig) ValidDirectory() bool {
	return con.Directory != ""
}
func (con *OutputConfig) ValidInterval() bool {
	return con.Interval > 0
}
func (con *OutputConfig) ValidFormat() bool {
	switch strings.ToLower(con.Format) {
	case "vtk", "grid":
		return true
	}
	return false
}
func (con *OutputConfig) ValidPrefix() bool {
	return con.Prefix != "" && !strings.ContainsAny(con.Prefix, `/\`)
}
func (con *OutputConfig) ValidHistoryFile() bool {
	return con.HistoryFile != ""
}
func (con *OutputConfig) ValidHistoryPlot() bool {
	return con.HistoryPlot != ""
}
func (con *OutputConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *OutputConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type SimulationWrapper struct {
	Domain     DomainConfig
	Physics    PhysicsConfig
	Simulation SimulationConfig
	Geometry   GeometryConfig
	Output     OutputConfig
}

func DefaultSimulationWrapper() *SimulationWrapper {
	w := &SimulationWrapper{}
	w.Physics.Density = 1
	w.Simulation.FluidSeedFraction = 0.1
	w.Simulation.BlockWidth = 8
	w.Geometry.Samples = voxel.DefaultSamples
	w.Geometry.Thickness = voxel.DefaultThickness
	w.Geometry.FillInterior = true
	w.Output.Format = "vtk"
	w.Output.Prefix = "output"
	return w
}

// ReadSimulationConfig reads a simulation config file on top of the
// defaults and checks it.
func ReadSimulationConfig(fname string) (*SimulationWrapper, error) {
	w := DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(w, fname); err != nil {
		return nil, lbmerr.Wrap(lbmerr.ConfigError, "ReadSimulationConfig", err)
	}
	if err := w.CheckInit(); err != nil {
		return nil, err
	}
	return w, nil
}

// CheckInit returns a ConfigError describing the first invalid variable.
func (w *SimulationWrapper) CheckInit() error {
	checks := []struct {
		ok   bool
		name string
		val  interface{}
	}{
		{w.Domain.ValidExtents(), "Nx, Ny, Nz", fmt.Sprintf("%d, %d, %d",
			w.Domain.Nx, w.Domain.Ny, w.Domain.Nz)},
		{w.Domain.ValidSpacing(), "Dx, Dy, Dz", fmt.Sprintf("%g, %g, %g",
			w.Domain.Dx, w.Domain.Dy, w.Domain.Dz)},
		{w.Physics.ValidDensity(), "Density", w.Physics.Density},
		{w.Physics.ValidViscosity(), "Viscosity", w.Physics.Viscosity},
		{w.Simulation.ValidMaxIterations(), "MaxIterations",
			w.Simulation.MaxIterations},
		{w.Simulation.ValidTolerance(), "Tolerance", w.Simulation.Tolerance},
		{w.Simulation.ValidTau(), "Tau", w.Simulation.Tau},
		{w.Simulation.ValidFluidSeedFraction(), "FluidSeedFraction",
			w.Simulation.FluidSeedFraction},
		{w.Simulation.ValidBlockWidth(), "BlockWidth",
			w.Simulation.BlockWidth},
		{w.Simulation.ValidThreads(), "Threads", w.Simulation.Threads},
		{w.Geometry.ValidSamples(), "Samples", w.Geometry.Samples},
		{w.Geometry.ValidThickness(), "Thickness", w.Geometry.Thickness},
		{w.Output.ValidDirectory(), "Directory", w.Output.Directory},
		{w.Output.ValidInterval(), "Interval", w.Output.Interval},
		{w.Output.ValidFormat(), "Format", w.Output.Format},
		{w.Output.ValidPrefix(), "Prefix", w.Output.Prefix},
	}

	for _, c := range checks {
		if !c.ok {
			return lbmerr.Config("CheckInit",
				"Invalid value for %s: '%v'", c.name, c.val)
		}
	}

	w.Output.Format = strings.ToLower(w.Output.Format)
	con := w.Solver()
	return con.Validate()
}

// Solver returns the solver parameters described by the config.
func (w *SimulationWrapper) Solver() *golbm.Config {
	return &golbm.Config{
		Nx: w.Domain.Nx, Ny: w.Domain.Ny, Nz: w.Domain.Nz,
		Dx: w.Domain.Dx, Dy: w.Domain.Dy, Dz: w.Domain.Dz,

		Reynolds: w.Physics.Reynolds,
		InletVelocity: [3]float64{
			w.Physics.InletVelocityX,
			w.Physics.InletVelocityY,
			w.Physics.InletVelocityZ,
		},
		Density:   w.Physics.Density,
		Viscosity: w.Physics.Viscosity,
		Tau:       w.Simulation.Tau,

		MaxIterations:  w.Simulation.MaxIterations,
		Tolerance:      w.Simulation.Tolerance,
		OutputInterval: w.Output.Interval,

		FluidSeedFraction: w.Simulation.FluidSeedFraction,
		BlockWidth:        w.Simulation.BlockWidth,
	}
}

// Voxel returns the voxelization parameters described by the config.
func (w *SimulationWrapper) Voxel() voxel.Params {
	p := voxel.DefaultParams(
		w.Domain.Nx, w.Domain.Ny, w.Domain.Nz,
		w.Domain.Dx, w.Domain.Dy, w.Domain.Dz,
	)
	p.Samples = w.Geometry.Samples
	p.Thickness = w.Geometry.Thickness
	p.FillInterior = w.Geometry.FillInterior
	return p
}
