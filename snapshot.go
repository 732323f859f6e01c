package golbm

import (
	"math"

	"github.com/phil-mansfield/golbm/lattice"
)

// Record is the macroscopic state of a single node.
type Record struct {
	Density  float64
	Velocity [3]float64
	Type     lattice.NodeType
}

// Speed returns the magnitude of the record's velocity.
func (r *Record) Speed() float64 {
	u := &r.Velocity
	return math.Sqrt(u[0]*u[0] + u[1]*u[1] + u[2]*u[2])
}

// Snapshot is the full grid at a single iteration. Records are ordered with
// x varying fastest, then y, then z.
type Snapshot struct {
	Iteration int
	Extents   [3]int
	Spacing   [3]float64
	Records   []Record
}

// Idx returns the index of the record at (x, y, z).
func (s *Snapshot) Idx(x, y, z int) int {
	return x + y*s.Extents[0] + z*s.Extents[0]*s.Extents[1]
}

// ManifestEntry associates a snapshot with the identifier its Writer
// returned for it.
type ManifestEntry struct {
	Iteration int
	ID        string
}

// Manifest lists every snapshot of a run in the order it was written.
type Manifest []ManifestEntry

// Writer is the output collaborator a Solver hands its results to. The
// Snapshot passed to WriteSnapshot is reused by the Solver, so a Writer
// which needs it after returning must copy it.
type Writer interface {
	// WriteSnapshot stores s and returns an identifier for it.
	WriteSnapshot(s *Snapshot) (id string, err error)
	// WriteManifest is called once after the last snapshot.
	WriteManifest(m Manifest) error
}

// Vorticity writes the curl of the velocity field into out using central
// differences. Only interior Fluid records are computed; every other entry
// is zero. out must have one element per record.
func (s *Snapshot) Vorticity(out [][3]float64) {
	nx, ny, nz := s.Extents[0], s.Extents[1], s.Extents[2]
	dx, dy, dz := 2*s.Spacing[0], 2*s.Spacing[1], 2*s.Spacing[2]
	for i := range out {
		out[i] = [3]float64{}
	}

	for z := 1; z < nz-1; z++ {
		for y := 1; y < ny-1; y++ {
			for x := 1; x < nx-1; x++ {
				idx := s.Idx(x, y, z)
				if s.Records[idx].Type != lattice.Fluid {
					continue
				}
				xp, xm := &s.Records[idx+1].Velocity, &s.Records[idx-1].Velocity
				yp := &s.Records[s.Idx(x, y+1, z)].Velocity
				ym := &s.Records[s.Idx(x, y-1, z)].Velocity
				zp := &s.Records[s.Idx(x, y, z+1)].Velocity
				zm := &s.Records[s.Idx(x, y, z-1)].Velocity

				out[idx] = [3]float64{
					(yp[2]-ym[2])/dy - (zp[1]-zm[1])/dz,
					(zp[0]-zm[0])/dz - (xp[2]-xm[2])/dx,
					(xp[1]-xm[1])/dx - (yp[0]-ym[0])/dy,
				}
			}
		}
	}
}

// Pressure returns the pressure (rho - rho0) * cs^2 of a record relative to
// the reference density rho0.
func (r *Record) Pressure(rho0 float64) float64 {
	return (r.Density - rho0) * lattice.CS2
}
