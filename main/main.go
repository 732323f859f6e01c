package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"runtime/pprof"
	"strings"

	plt "github.com/phil-mansfield/pyplot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/io"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/voxel"
)

type FileGroup struct {
	log, prof *os.File
}

// exit is replaced in tests.
var exit = os.Exit

// Close stops the CPU profile, if any, and closes the log file, if any.
// Logging goes back to stderr afterwards. Calling Close more than once is
// allowed.
func (fg *FileGroup) Close() {
	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		fg.prof = nil
		if err != nil {
			log.Println(err.Error())
		}
	}

	if fg.log != nil {
		log.SetOutput(os.Stderr)
		err := fg.log.Close()
		fg.log = nil
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

// Fatal logs err, closes fg so the profile and log are complete, and exits
// with a non-zero status.
func (fg *FileGroup) Fatal(err error) {
	log.Println(err.Error())
	fg.Close()
	exit(1)
}

func main() {
	var (
		run, cylinder, plotHistory, summarize string
		exampleConfig, sequential             bool
		threads, segments                     int
		radius, height, cx, cy, cz            float64
	)
	vars := map[string]*string{
		"Run":         &run,
		"Cylinder":    &cylinder,
		"PlotHistory": &plotHistory,
		"Summarize":   &summarize,
	}

	flag.StringVar(&run, "Run", "",
		"Configuration file for [Run] mode.")
	flag.BoolVar(&exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout.")
	flag.StringVar(&cylinder, "Cylinder", "",
		"Writes a closed cylinder mesh to the given .stl or .tri file.")
	flag.StringVar(&plotHistory, "PlotHistory", "",
		"Plots a history table written by [Run] mode to a .png file.")
	flag.StringVar(&summarize, "Summarize", "",
		"Prints a summary of a .grid snapshot to stdout.")

	flag.BoolVar(&sequential, "Sequential", false,
		"Runs every kernel on the calling thread.")
	flag.IntVar(&threads, "Threads", -1,
		"Number of worker threads. Overrides the config file. 0 uses "+
			"every core.")

	flag.IntVar(&segments, "Segments", 32,
		"Number of sides of the polygon approximating the cylinder.")
	flag.Float64Var(&radius, "Radius", 1, "Radius of the cylinder.")
	flag.Float64Var(&height, "Height", 2, "Height of the cylinder along z.")
	flag.Float64Var(&cx, "X", 0, "x coordinate of the cylinder's center.")
	flag.Float64Var(&cy, "Y", 0, "y coordinate of the cylinder's center.")
	flag.Float64Var(&cz, "Z", 0, "z coordinate of the cylinder's center.")

	flag.Parse()

	if exampleConfig {
		fmt.Println(io.ExampleSimulationFile)
		return
	}

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Run":
		runMain(run, sequential, threads)
	case "Cylinder":
		if segments < 3 || radius <= 0 || height <= 0 {
			log.Fatal("Cylinder requires Segments >= 3 and positive " +
				"Radius and Height.")
		}
		tris := geom.Cylinder(r3.Vec{X: cx, Y: cy, Z: cz},
			radius, height, segments)
		if err := io.WriteMesh(cylinder, tris); err != nil {
			log.Fatal(err.Error())
		}
	case "PlotHistory":
		hist, err := io.ReadHistory(plotHistory)
		if err != nil {
			log.Fatal(err.Error())
		}
		ext := path.Ext(plotHistory)
		fname := strings.TrimSuffix(plotHistory, ext) + ".png"
		if err := io.PlotHistory(fname, hist); err != nil {
			log.Fatal(err.Error())
		}
		plt.Execute()
	case "Summarize":
		summarizeMain(summarize)
	}
}

func runMain(fname string, sequential bool, threads int) {
	wrap, err := io.ReadSimulationConfig(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	out := &wrap.Output

	if err = os.MkdirAll(out.Directory, 0777); err != nil {
		log.Fatal(err.Error())
	}
	fg, err := setupFileGroup(out)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer fg.Close()

	cls, err := classify(wrap)
	if err != nil {
		fg.Fatal(err)
	}
	log.Printf(
		"Classified %d x %d x %d grid: %d fluid, %d solid, %d inlet, "+
			"%d outlet", wrap.Domain.Nx, wrap.Domain.Ny, wrap.Domain.Nz,
		cls.Count(lattice.Fluid), cls.Count(lattice.Solid),
		cls.Count(lattice.Inlet), cls.Count(lattice.Outlet),
	)

	con := wrap.Solver()
	spacing := [3]float64{con.Dx, con.Dy, con.Dz}
	vtk := io.NewVTKWriter(out.Directory, out.Prefix, con.Density)
	if err = vtk.WriteGeometry(cls, spacing); err != nil {
		fg.Fatal(err)
	}

	var w golbm.Writer = vtk
	if out.Format == "grid" {
		w = io.NewGridWriter(out.Directory, out.Prefix)
	}

	if threads < 0 {
		threads = wrap.Simulation.Threads
	}
	dev, err := con.NewDevice(sequential, threads)
	if err != nil {
		fg.Fatal(err)
	}
	solver, err := golbm.NewSolver(con, cls, dev, w)
	if err != nil {
		fg.Fatal(err)
	}
	solver.Log(true)
	log.Printf("Relaxation time is %.6f", solver.Tau())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := solver.Run(ctx)
	finErr := solver.Finalize()
	if runErr != nil {
		fg.Fatal(runErr)
	} else if finErr != nil {
		fg.Fatal(finErr)
	}
	log.Printf("Stopped after %d iterations: %s",
		solver.Iteration(), solver.State())

	hist := solver.History()
	if out.ValidHistoryFile() {
		err := io.WriteHistory(path.Join(out.Directory, out.HistoryFile), hist)
		if err != nil {
			fg.Fatal(err)
		}
	}
	if out.ValidHistoryPlot() {
		err := io.PlotHistory(path.Join(out.Directory, out.HistoryPlot), hist)
		if err != nil {
			fg.Fatal(err)
		}
		plt.Execute()
	}
}

func setupFileGroup(out *io.OutputConfig) (*FileGroup, error) {
	fg := &FileGroup{}

	if out.ValidLogFile() {
		lf, err := os.Create(path.Join(out.Directory, out.LogFile))
		if err != nil {
			return nil, err
		}
		log.SetOutput(lf)
		fg.log = lf
	}

	if out.ValidProfileFile() {
		pf, err := os.Create(path.Join(out.Directory, out.ProfileFile))
		if err != nil {
			fg.Close()
			return nil, err
		}
		if err = pprof.StartCPUProfile(pf); err != nil {
			pf.Close()
			fg.Close()
			return nil, err
		}
		fg.prof = pf
	}

	return fg, nil
}

func classify(wrap *io.SimulationWrapper) (*voxel.Classification, error) {
	p := wrap.Voxel()
	if !wrap.Geometry.ValidMesh() {
		log.Println("No mesh given, the channel is empty.")
		return voxel.Unobstructed(p)
	}

	tris, err := io.ReadMesh(wrap.Geometry.Mesh)
	if err != nil {
		return nil, err
	}
	log.Printf("Read %d triangles from %s", len(tris), wrap.Geometry.Mesh)
	return voxel.Classify(tris, p)
}

func summarizeMain(fname string) {
	s, err := io.ReadGridFile(fname)
	if err != nil {
		log.Fatal(err.Error())
	}

	speeds, masses := []float64{}, []float64{}
	for i := range s.Records {
		r := &s.Records[i]
		if r.Type == lattice.Fluid {
			speeds = append(speeds, r.Speed())
		}
		if r.Type.IsFluid() {
			masses = append(masses, r.Density)
		}
	}

	fmt.Printf("Iteration: %d\n", s.Iteration)
	fmt.Printf("Extents:   %d x %d x %d\n",
		s.Extents[0], s.Extents[1], s.Extents[2])
	fmt.Printf("Spacing:   %g x %g x %g\n",
		s.Spacing[0], s.Spacing[1], s.Spacing[2])
	fmt.Printf("Mass:      %.8g\n", floats.Sum(masses))
	if len(speeds) > 0 {
		fmt.Printf("Max |u|:   %.8g\n", floats.Max(speeds))
	}
}

func getModeName(vars map[string]*string) (string, error) {
	modeName := ""
	for name, val := range vars {
		if *val != "" {
			if modeName != "" {
				return "", fmt.Errorf(
					"Cannot use both the %s and %s modes.", name, modeName,
				)
			}
			modeName = name
		}
	}

	if modeName == "" {
		return "", fmt.Errorf("Must supply one of -Run, -Cylinder, " +
			"-PlotHistory, -Summarize or -ExampleConfig.")
	}
	return modeName, nil
}
