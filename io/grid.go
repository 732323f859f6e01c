package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

var end = binary.LittleEndian

// GridVersion is the version of the grid file layout written by GridWriter.
const GridVersion = 1

// MaxGridCells is the largest number of cells ReadGrid will allocate for.
const MaxGridCells = 1 << 30

// GridHeader is the fixed-size header at the start of every grid file. It
// is followed by the density of every node, then the three velocity
// components of every node and finally the node types, all with x varying
// fastest.
type GridHeader struct {
	Type TypeInfo
	Loc  LocationInfo
	Run  RunInfo
}

type TypeInfo struct {
	Endianness int64
	HeaderSize int64
	Version    int64
}

type LocationInfo struct {
	Extents IntVector
	Spacing Vector
}

type RunInfo struct {
	Iteration int64
}

type Vector [3]float64
type IntVector [3]int64

// Cells returns the number of nodes the header describes.
func (hd *GridHeader) Cells() int {
	e := hd.Loc.Extents
	return int(e[0] * e[1] * e[2])
}

func endiannessFlag() int64 {
	if end == binary.LittleEndian {
		return -1
	}
	return 0
}

// NewGridHeader returns the header for s.
func NewGridHeader(s *golbm.Snapshot) *GridHeader {
	hd := &GridHeader{}
	hd.Type.Endianness = endiannessFlag()
	hd.Type.HeaderSize = int64(binary.Size(hd))
	hd.Type.Version = GridVersion
	for i := 0; i < 3; i++ {
		hd.Loc.Extents[i] = int64(s.Extents[i])
		hd.Loc.Spacing[i] = s.Spacing[i]
	}
	hd.Run.Iteration = int64(s.Iteration)
	return hd
}

// WriteGrid writes s in the grid format to wr.
func WriteGrid(s *golbm.Snapshot, wr io.Writer) error {
	hd := NewGridHeader(s)
	n := len(s.Records)
	if n != hd.Cells() {
		return fmt.Errorf(
			"Snapshot has %d records, but extents %v", n, s.Extents,
		)
	}

	rhos := make([]float64, n)
	us := make([]float64, 3*n)
	types := make([]uint32, n)
	for i := range s.Records {
		r := &s.Records[i]
		rhos[i] = r.Density
		copy(us[3*i:3*i+3], r.Velocity[:])
		types[i] = uint32(r.Type)
	}

	for _, data := range []interface{}{hd, rhos, us, types} {
		if err := binary.Write(wr, end, data); err != nil {
			return err
		}
	}
	return nil
}

// ReadGridHeader reads the header at the start of rd.
func ReadGridHeader(rd io.Reader) (*GridHeader, error) {
	hd := &GridHeader{}
	if err := binary.Read(rd, end, hd); err != nil {
		return nil, err
	}

	if hd.Type.Endianness != endiannessFlag() {
		return nil, fmt.Errorf(
			"Grid file has endianness flag %d, expected %d",
			hd.Type.Endianness, endiannessFlag(),
		)
	} else if hd.Type.HeaderSize != int64(binary.Size(hd)) {
		return nil, fmt.Errorf(
			"Grid file header is %d bytes, expected %d",
			hd.Type.HeaderSize, binary.Size(hd),
		)
	} else if hd.Type.Version != GridVersion {
		return nil, fmt.Errorf(
			"Grid file has version %d, expected %d",
			hd.Type.Version, GridVersion,
		)
	}

	cells := int64(1)
	for i := 0; i < 3; i++ {
		e := hd.Loc.Extents[i]
		if e <= 0 {
			return nil, fmt.Errorf(
				"Grid file has non-positive extents %v", hd.Loc.Extents,
			)
		}
		// cells and e are both at most MaxGridCells here, so this can't
		// overflow.
		if e > MaxGridCells || cells*e > MaxGridCells {
			return nil, fmt.Errorf(
				"Grid file extents %v exceed %d cells",
				hd.Loc.Extents, MaxGridCells,
			)
		}
		cells *= e
	}
	return hd, nil
}

// ReadGrid reads a snapshot written by WriteGrid.
func ReadGrid(rd io.Reader) (*golbm.Snapshot, error) {
	hd, err := ReadGridHeader(rd)
	if err != nil {
		return nil, err
	}

	n := hd.Cells()
	rhos := make([]float64, n)
	us := make([]float64, 3*n)
	types := make([]uint32, n)
	for _, data := range []interface{}{rhos, us, types} {
		if err := binary.Read(rd, end, data); err != nil {
			return nil, err
		}
	}

	s := &golbm.Snapshot{
		Iteration: int(hd.Run.Iteration),
		Records:   make([]golbm.Record, n),
	}
	for i := 0; i < 3; i++ {
		s.Extents[i] = int(hd.Loc.Extents[i])
		s.Spacing[i] = hd.Loc.Spacing[i]
	}
	for i := range s.Records {
		if types[i] >= uint32(lattice.EndNodeType) {
			return nil, fmt.Errorf(
				"Grid file has unknown node type %d at cell %d", types[i], i,
			)
		}
		r := &s.Records[i]
		r.Density = rhos[i]
		copy(r.Velocity[:], us[3*i:3*i+3])
		r.Type = lattice.NodeType(types[i])
	}
	return s, nil
}

// ReadGridFile reads the snapshot stored in fname.
func ReadGridFile(fname string) (*golbm.Snapshot, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, lbmerr.Wrap(lbmerr.IOError, "ReadGrid", err)
	}
	defer f.Close()

	s, err := ReadGrid(bufio.NewReader(f))
	if err != nil {
		return nil, lbmerr.Wrap(lbmerr.IOError, "ReadGrid", err)
	}
	return s, nil
}

// GridWriter writes snapshots as binary grid files and the manifest as a
// two column text index.
type GridWriter struct {
	Dir, Prefix string
}

// NewGridWriter returns a GridWriter which writes into dir.
func NewGridWriter(dir, prefix string) *GridWriter {
	return &GridWriter{Dir: dir, Prefix: prefix}
}

// SnapshotName returns the file name used for the snapshot at iteration.
func (w *GridWriter) SnapshotName(iteration int) string {
	return fmt.Sprintf("%s_%06d.grid", w.Prefix, iteration)
}

// ManifestName returns the file name the manifest is written to.
func (w *GridWriter) ManifestName() string {
	return w.Prefix + "_manifest.txt"
}

// WriteSnapshot writes s to its own file and returns the file name.
func (w *GridWriter) WriteSnapshot(s *golbm.Snapshot) (string, error) {
	name := w.SnapshotName(s.Iteration)
	var gridErr error
	err := writeFile(path.Join(w.Dir, name), func(wr *bufio.Writer) {
		gridErr = WriteGrid(s, wr)
	})
	if gridErr != nil {
		err = gridErr
	}
	if err != nil {
		return "", lbmerr.Wrap(lbmerr.IOError, "WriteSnapshot", err)
	}
	return name, nil
}

// WriteManifest writes one "iteration file" line per snapshot.
func (w *GridWriter) WriteManifest(m golbm.Manifest) error {
	err := writeFile(path.Join(w.Dir, w.ManifestName()), func(wr *bufio.Writer) {
		for _, e := range m {
			fmt.Fprintf(wr, "%d %s\n", e.Iteration, e.ID)
		}
	})
	if err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteManifest", err)
	}
	return nil
}
