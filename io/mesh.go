package io

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/hschendel/stl"
	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// MeshFormat is a file format for triangulated surfaces.
type MeshFormat int

const (
	STL MeshFormat = iota
	Table
	UnknownMesh
)

// MeshFormatOf returns the format of fname from its extension.
func MeshFormatOf(fname string) MeshFormat {
	switch strings.ToLower(path.Ext(fname)) {
	case ".stl":
		return STL
	case ".txt", ".dat", ".tri":
		return Table
	}
	return UnknownMesh
}

// ReadMesh reads the triangles of a surface mesh. Failures are returned as
// GeometryErrors.
func ReadMesh(fname string) ([]geom.Triangle, error) {
	switch MeshFormatOf(fname) {
	case STL:
		return readSTL(fname)
	case Table:
		return readMeshTable(fname)
	}
	return nil, lbmerr.Geometry("ReadMesh",
		"Unrecognized mesh extension for '%s'. Must be one of "+
			"[ .stl | .txt | .dat | .tri ]", fname)
}

func readSTL(fname string) ([]geom.Triangle, error) {
	solid, err := stl.ReadFile(fname)
	if err != nil {
		return nil, lbmerr.Wrap(lbmerr.GeometryError, "ReadMesh", err)
	}

	tris := make([]geom.Triangle, len(solid.Triangles))
	for i := range solid.Triangles {
		vs := &solid.Triangles[i].Vertices
		for j := 0; j < 3; j++ {
			tris[i][j] = r3.Vec{
				X: float64(vs[j][0]), Y: float64(vs[j][1]), Z: float64(vs[j][2]),
			}
		}
	}
	return tris, nil
}

func readMeshTable(fname string) ([]geom.Triangle, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, nil)
	if err != nil {
		return nil, lbmerr.Wrap(lbmerr.GeometryError, "ReadMesh", err)
	}

	tris := make([]geom.Triangle, len(cols[0]))
	for i := range tris {
		for j := 0; j < 3; j++ {
			tris[i][j] = r3.Vec{
				X: cols[3*j][i], Y: cols[3*j+1][i], Z: cols[3*j+2][i],
			}
		}
	}
	return tris, nil
}

// WriteMesh writes tris to fname in the format given by its extension.
// Failures are returned as IOErrors.
func WriteMesh(fname string, tris []geom.Triangle) error {
	switch MeshFormatOf(fname) {
	case STL:
		return writeSTL(fname, tris)
	case Table:
		return writeMeshTable(fname, tris)
	}
	return lbmerr.IO("WriteMesh",
		"Unrecognized mesh extension for '%s'. Must be one of "+
			"[ .stl | .txt | .dat | .tri ]", fname)
}

func vec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func writeSTL(fname string, tris []geom.Triangle) error {
	solid := &stl.Solid{
		Name:      strings.TrimSuffix(path.Base(fname), path.Ext(fname)),
		Triangles: make([]stl.Triangle, len(tris)),
	}

	for i := range tris {
		t := &tris[i]
		n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		if norm := r3.Norm(n); norm > 0 {
			n = r3.Scale(1/norm, n)
		}

		st := &solid.Triangles[i]
		st.Normal = vec3(n)
		for j := 0; j < 3; j++ {
			st.Vertices[j] = vec3(t[j])
		}
	}

	if err := solid.WriteFile(fname); err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteMesh", err)
	}
	return nil
}

func writeMeshTable(fname string, tris []geom.Triangle) error {
	f, err := os.Create(fname)
	if err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteMesh", err)
	}
	defer f.Close()

	wr := bufio.NewWriter(f)
	for i := range tris {
		t := &tris[i]
		fmt.Fprintf(wr, "%.10g %.10g %.10g %.10g %.10g %.10g %.10g %.10g %.10g\n",
			t[0].X, t[0].Y, t[0].Z, t[1].X, t[1].Y, t[1].Z,
			t[2].X, t[2].Y, t[2].Z)
	}

	if err := wr.Flush(); err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteMesh", err)
	}
	return nil
}
