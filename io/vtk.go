package io

import (
	"bufio"
	"fmt"
	"os"
	"path"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
	"github.com/phil-mansfield/golbm/voxel"
)

// GeometryFile is the name of the file WriteGeometry writes to.
const GeometryFile = "geometry.vtk"

// geometryValue is the color index ParaView users expect for each node type.
var geometryValue = [lattice.EndNodeType]float64{
	lattice.Fluid:  0,
	lattice.Solid:  1,
	lattice.Inlet:  0.5,
	lattice.Outlet: 0.25,
}

// VTKWriter writes snapshots as legacy ASCII VTK structured grids and the
// manifest as a ParaView collection file.
type VTKWriter struct {
	Dir, Prefix string
	// Density is the reference density pressure is measured against.
	Density float64

	vort [][3]float64
}

// NewVTKWriter returns a VTKWriter which writes into dir.
func NewVTKWriter(dir, prefix string, rho0 float64) *VTKWriter {
	return &VTKWriter{Dir: dir, Prefix: prefix, Density: rho0}
}

// SnapshotName returns the file name used for the snapshot at iteration.
func (w *VTKWriter) SnapshotName(iteration int) string {
	return fmt.Sprintf("%s_%06d.vtk", w.Prefix, iteration)
}

// WriteSnapshot writes s to its own file and returns the file name.
func (w *VTKWriter) WriteSnapshot(s *golbm.Snapshot) (string, error) {
	name := w.SnapshotName(s.Iteration)
	n := len(s.Records)
	if len(w.vort) != n {
		w.vort = make([][3]float64, n)
	}
	s.Vorticity(w.vort)

	err := writeFile(path.Join(w.Dir, name), func(wr *bufio.Writer) {
		writeVTKHeader(wr, fmt.Sprintf(
			"LBM Solution - Iteration %d Time %.3f",
			s.Iteration, float64(s.Iteration),
		), s.Extents, s.Spacing)
		fmt.Fprintf(wr, "POINT_DATA %d\n", n)

		writeScalars(wr, "Density", n, func(i int) string {
			return fmt.Sprintf("%.6f", s.Records[i].Density)
		})
		writeVectors(wr, "Velocity", n, func(i int) [3]float64 {
			return s.Records[i].Velocity
		})
		writeScalars(wr, "VelocityMagnitude", n, func(i int) string {
			return fmt.Sprintf("%.6f", s.Records[i].Speed())
		})
		writeScalars(wr, "NodeType", n, func(i int) string {
			return fmt.Sprintf("%d", s.Records[i].Type)
		})
		writeScalars(wr, "GeometryType", n, func(i int) string {
			return fmt.Sprintf("%.2f", geometryType(s.Records[i].Type))
		})
		writeScalars(wr, "Pressure", n, func(i int) string {
			return fmt.Sprintf("%.6f", s.Records[i].Pressure(w.Density))
		})
		writeVectors(wr, "Vorticity", n, func(i int) [3]float64 {
			return w.vort[i]
		})
	})
	if err != nil {
		return "", lbmerr.Wrap(lbmerr.IOError, "WriteSnapshot", err)
	}
	return name, nil
}

// WriteManifest writes a ParaView collection, <Prefix>.pvd, listing every
// snapshot with its iteration as the time step.
func (w *VTKWriter) WriteManifest(m golbm.Manifest) error {
	err := writeFile(path.Join(w.Dir, w.Prefix+".pvd"), func(wr *bufio.Writer) {
		fmt.Fprintln(wr, `<?xml version="1.0"?>`)
		fmt.Fprintln(wr, `<VTKFile type="Collection" version="0.1">`)
		fmt.Fprintln(wr, `  <Collection>`)
		for _, e := range m {
			fmt.Fprintf(wr,
				"    <DataSet timestep=\"%.6f\" part=\"0\" file=\"%s\"/>\n",
				float64(e.Iteration), path.Base(e.ID))
		}
		fmt.Fprintln(wr, `  </Collection>`)
		fmt.Fprintln(wr, `</VTKFile>`)
	})
	if err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteManifest", err)
	}
	return nil
}

// WriteGeometry writes the node types of cls to GeometryFile.
func (w *VTKWriter) WriteGeometry(
	cls *voxel.Classification, spacing [3]float64,
) error {
	g := cls.Grid()
	err := writeFile(path.Join(w.Dir, GeometryFile), func(wr *bufio.Writer) {
		writeVTKHeader(wr, "LBM Geometry", g.Width, spacing)
		fmt.Fprintf(wr, "POINT_DATA %d\n", g.Volume)
		writeScalars(wr, "NodeType", g.Volume, func(i int) string {
			return fmt.Sprintf("%d", cls.Type(i))
		})
		writeScalars(wr, "Boundary", g.Volume, func(i int) string {
			if cls.IsBoundary(i) {
				return "1"
			}
			return "0"
		})
	})
	if err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteGeometry", err)
	}
	return nil
}

func geometryType(t lattice.NodeType) float64 {
	if t >= lattice.EndNodeType {
		return -1
	}
	return geometryValue[t]
}

// writeFile creates fname and passes a buffered writer for it to body.
// Write errors are reported when the buffer is flushed.
func writeFile(fname string, body func(wr *bufio.Writer)) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	wr := bufio.NewWriter(f)
	body(wr)
	if err := wr.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeVTKHeader(
	wr *bufio.Writer, title string, extents [3]int, spacing [3]float64,
) {
	nx, ny, nz := extents[0], extents[1], extents[2]
	fmt.Fprintln(wr, "# vtk DataFile Version 3.0")
	fmt.Fprintln(wr, title)
	fmt.Fprintln(wr, "ASCII")
	fmt.Fprintln(wr, "DATASET STRUCTURED_GRID")
	fmt.Fprintf(wr, "DIMENSIONS %d %d %d\n", nx, ny, nz)
	fmt.Fprintf(wr, "POINTS %d float\n", nx*ny*nz)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				fmt.Fprintf(wr, "%g %g %g\n", float64(x)*spacing[0],
					float64(y)*spacing[1], float64(z)*spacing[2])
			}
		}
	}
}

func writeScalars(wr *bufio.Writer, name string, n int, f func(i int) string) {
	fmt.Fprintf(wr, "SCALARS %s float\n", name)
	fmt.Fprintln(wr, "LOOKUP_TABLE default")
	for i := 0; i < n; i++ {
		fmt.Fprintln(wr, f(i))
	}
}

func writeVectors(wr *bufio.Writer, name string, n int, f func(i int) [3]float64) {
	fmt.Fprintf(wr, "VECTORS %s float\n", name)
	for i := 0; i < n; i++ {
		v := f(i)
		fmt.Fprintf(wr, "%.6f %.6f %.6f\n", v[0], v[1], v[2])
	}
}
