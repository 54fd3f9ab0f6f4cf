// Command fill_holes fills the holes of OFF models using the
// advancing front method and saves the results as STL files.
//
// The input may be a single model or a directory, which is
// walked recursively. Holes are found from the border edges
// of each model, or read from a JSON file of hole loops.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/holefill/advfront"
	"github.com/unixpickle/holefill/halfedge"
	"github.com/unixpickle/holefill/imesh"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/sync/errgroup"
)

var (
	warn    = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
)

type Options struct {
	Config     advfront.Config
	HolesPath  string
	Concurrent bool
}

func main() {
	var opts Options
	var mode string
	var progress bool

	flag.IntVar(&opts.Config.Workers, "workers", 0, "collision workers per hole (0 for one per CPU)")
	flag.Float64Var(&opts.Config.MergeThreshold, "merge-threshold", 0, "distance at which front vertices merge")
	flag.IntVar(&opts.Config.MergeEvery, "merge-every", advfront.DefaultMergeEvery,
		"iterations between vertex merges (negative to disable)")
	flag.IntVar(&opts.Config.MaxIterations, "max-iterations", 0, "maximum iterations per hole (0 for no limit)")
	flag.IntVar(&opts.Config.MaxRetries, "max-retries", advfront.DefaultMaxRetries,
		"collision rejections allowed per angle")
	flag.DurationVar(&opts.Config.CollisionTimeout, "timeout", advfront.DefaultCollisionTimeout,
		"maximum wait for one collision test")
	flag.StringVar(&mode, "mode", "filling", "collision targets: 'filling' or 'model'")
	flag.StringVar(&opts.HolesPath, "holes", "", "JSON file of hole loops (single input model only)")
	flag.BoolVar(&opts.Concurrent, "concurrent", false, "fill the holes of a model concurrently")
	flag.BoolVar(&opts.Config.Verbose, "verbose", false, "log every iteration")
	flag.BoolVar(&progress, "progress", false, "log progress of each hole")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <input> <output>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	if len(flag.Args()) != 2 {
		flag.Usage()
	}

	switch mode {
	case "filling":
		opts.Config.Mode = advfront.FillingOnly
	case "model":
		opts.Config.Mode = advfront.FillingAndModel
	default:
		essentials.Die("unknown mode:", mode)
	}
	if progress {
		opts.Config.Progress = func(p int) {
			log.Printf("  ... %d%%", p)
		}
	}
	essentials.Must(opts.Config.Validate())

	inPath := flag.Args()[0]
	outPath := flag.Args()[1]

	info, err := os.Stat(inPath)
	essentials.Must(err)
	if !info.IsDir() {
		essentials.Must(FillModel(inPath, outPath, &opts))
		return
	}
	if opts.HolesPath != "" {
		essentials.Die("-holes requires a single input model")
	}

	err = filepath.Walk(inPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inPath, path)
		essentials.Must(err)
		outPath := filepath.Join(outPath, relPath)

		if info.IsDir() {
			if _, err := os.Stat(outPath); os.IsNotExist(err) {
				essentials.Must(os.Mkdir(outPath, 0755))
			}
			return nil
		}

		if filepath.Ext(path) == ".off" {
			outPath = outPath[:len(outPath)-len(filepath.Ext(outPath))] + ".stl"
			return FillModel(path, outPath, &opts)
		}
		return nil
	})
	essentials.Must(err)
}

// FillModel fills the holes of one model and writes the
// model with its patches to outPath.
func FillModel(inPath, outPath string, opts *Options) error {
	log.Println("Filling", inPath, "...")

	mesh, err := ReadModel(inPath)
	if err != nil {
		return err
	}
	holes, err := FindHoles(mesh, opts.HolesPath)
	if err != nil {
		return errors.Wrap(err, inPath)
	}
	if len(holes) == 0 {
		log.Println(success("no holes in " + inPath))
	}

	results := make([]*advfront.Result, len(holes))
	fillHole := func(ctx context.Context, i int) error {
		res, err := advfront.FillHole(ctx, mesh, holes[i], &opts.Config)
		if err != nil {
			if fatal, ok := err.(*advfront.FatalError); ok {
				log.Println(failure(fmt.Sprintf("hole %d: %s", i, fatal)))
				return nil
			}
			return errors.Wrapf(err, "hole %d", i)
		}
		if res.State == advfront.StateDegenerateAbort {
			log.Println(warn(fmt.Sprintf("hole %d: degenerate front, hole left open", i)))
		} else if res.Truncated {
			log.Println(warn(fmt.Sprintf("hole %d: stopped after %d iterations", i, res.Stats.Iterations)))
		}
		results[i] = res
		return nil
	}

	if opts.Concurrent {
		g, ctx := errgroup.WithContext(context.Background())
		for i := range holes {
			i := i
			g.Go(func() error {
				return fillHole(ctx, i)
			})
		}
		err = g.Wait()
	} else {
		for i := range holes {
			if err = fillHole(context.Background(), i); err != nil {
				break
			}
		}
	}
	if err != nil {
		return errors.Wrap(err, inPath)
	}

	triangles := mesh.Triangles()
	var filled int
	for i, res := range results {
		if res == nil {
			continue
		}
		filled++
		log.Printf("hole %d: %d boundary vertices, %d faces, %d iterations, %d collision tests",
			i, len(holes[i]), len(res.Filling.Faces), res.Stats.Iterations, res.Stats.CollisionTests)
		triangles = append(triangles, res.Filling.Triangles()...)
	}
	if len(holes) > 0 {
		msg := fmt.Sprintf("filled %d of %d holes", filled, len(holes))
		if filled == len(holes) {
			log.Println(success(msg))
		} else {
			log.Println(warn(msg))
		}
	}

	return os.WriteFile(outPath, model3d.EncodeSTL(triangles), 0644)
}

// ReadModel reads an OFF file as an indexed mesh.
func ReadModel(path string) (*imesh.Mesh, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	triangles, err := model3d.ReadOFF(r)
	if err != nil {
		return nil, errors.Wrap(err, "read model")
	}
	return imesh.FromTriangles(triangles), nil
}

// FindHoles gets the hole loops of a mesh, either from a
// JSON file or from the border of the mesh.
func FindHoles(mesh *imesh.Mesh, holesPath string) ([][]model3d.Coord3D, error) {
	if holesPath != "" {
		r, err := os.Open(holesPath)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return imesh.ReadLoops(r)
	}

	graph, err := halfedge.Build(mesh)
	if err != nil {
		return nil, errors.Wrap(err, "find holes")
	}
	loops, err := halfedge.BorderLoops(graph)
	if err != nil {
		return nil, errors.Wrap(err, "find holes")
	}
	holes := make([][]model3d.Coord3D, len(loops))
	for i, loop := range loops {
		holes[i] = mesh.Loop(loop)
	}
	return holes, nil
}
