package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/karmalentil/potk/pkg/designs"
	"github.com/karmalentil/potk/pkg/lensio"
	"github.com/karmalentil/potk/pkg/optics"
	"github.com/karmalentil/potk/pkg/polyfit"
	"github.com/karmalentil/potk/pkg/report"
	"github.com/karmalentil/potk/pkg/sample"
	"github.com/karmalentil/potk/pkg/trace"
)

func main() {
	lensPath := flag.String("lens", "", "Lens design JSON file (default: built-in double gauss 50mm)")
	degree := flag.Int("degree", 0, "Polynomial degree; 0 runs the degree search")
	minDegree := flag.Int("min-degree", 5, "Lowest degree for the degree search")
	maxDegree := flag.Int("max-degree", 9, "Highest degree for the degree search")
	targetRMS := flag.Float64("target-rms", 0.01, "Target training RMS position error in mm for the degree search")
	samples := flag.Int("samples", 20000, "Training sample count")
	testSamples := flag.Int("test-samples", 5000, "Held-out validation sample count")
	zoom := flag.Float64("zoom", 0.5, "Zoom/focus state in [0,1]")
	threshold := flag.Float64("threshold", 0.1, "Validation pass threshold on RMS position error in mm")
	fresnel := flag.Bool("fresnel", false, "Accumulate Fresnel transmittance instead of pass-through 1.0")
	seed := flag.Int64("seed", 1, "Sampling seed")
	outDir := flag.String("out", "output", "Output directory for model and report artifacts")
	plotPNG := flag.Bool("plot", false, "Also save a residual plot PNG")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Optical polynomial fitter")
		fmt.Println("Usage: potk [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Fits a polynomial ray-transfer model to a lens design and validates it")
		fmt.Println("against raytraced ground truth. Artifacts are written to <out>/.")
		return
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	sys, err := loadLens(*lensPath)
	if err != nil {
		logger.Fatalf("load lens: %v", err)
	}
	logger.Printf("lens %q: %d surfaces, f=%.1fmm, aperture radius %.2fmm, sensor radius %.3fmm",
		sys.Name(), sys.Len(), sys.FocalLength(), sys.ApertureRadius(), sys.SensorRadius())

	policy := trace.TransmitPassThrough
	if *fresnel {
		policy = trace.TransmitFresnel
	}
	tracer := trace.NewGeometric(sys, policy)

	startTime := time.Now()
	matrix, err := sample.Generate(sys, tracer, sample.Config{
		Count: *samples,
		Zoom:  *zoom,
		Seed:  *seed,
		Log:   logger,
	})
	if err != nil {
		logger.Fatalf("sampling: %v", err)
	}

	fitCfg := polyfit.FitConfig{
		LensName:      sys.Name(),
		Zoom:          *zoom,
		Transmittance: policy,
		Log:           logger,
	}
	var model *polyfit.Model
	if *degree > 0 {
		model, err = polyfit.Fit(matrix, *degree, fitCfg)
	} else {
		model, err = polyfit.FitAuto(matrix, *minDegree, *maxDegree, *targetRMS, fitCfg)
	}
	if err != nil {
		logger.Fatalf("fit: %v", err)
	}
	logger.Printf("fitted degree %d in %v", model.Degree, time.Since(startTime).Round(time.Millisecond))

	rep, err := polyfit.Validate(sys, tracer, model, polyfit.ValidateConfig{
		TestCount: *testSamples,
		Seed:      *seed + 1, // held-out set, decorrelated from training
		Threshold: *threshold,
		Log:       logger,
	})
	if err != nil {
		logger.Fatalf("validate: %v", err)
	}
	for _, ch := range rep.Channels {
		logger.Printf("channel %-13s RMS %.6f  max %.6f", ch.Name, ch.RMS, ch.Max)
	}
	logger.Printf("position RMS %.6f mm (threshold %.3f mm): pass=%v", rep.PositionRMS, rep.Threshold, rep.Pass)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Fatalf("create output directory: %v", err)
	}
	modelPath, reportPath := artifactPaths(*outDir, sys.Name())
	if err := lensio.WriteModel(modelPath, model); err != nil {
		logger.Fatalf("%v", err)
	}
	if err := lensio.WriteReport(reportPath, rep); err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Printf("wrote %s and %s", modelPath, reportPath)

	if *plotPNG {
		png := filepath.Join(*outDir, sys.Name()+"_residuals.png")
		if err := report.PlotResiduals(rep, png); err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Printf("wrote %s", png)
	}

	if !rep.Pass {
		os.Exit(1)
	}
}

// loadLens loads a lens design file, or the built-in double gauss when no
// path is given.
func loadLens(path string) (*optics.System, error) {
	if path == "" {
		return designs.DoubleGauss50(), nil
	}
	return lensio.LoadSystem(path)
}

// artifactPaths returns the model and report output paths for a lens name
func artifactPaths(dir, lensName string) (string, string) {
	return filepath.Join(dir, lensName+"_model.json"),
		filepath.Join(dir, lensName+"_report.json")
}
