package sample

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/karmalentil/potk/pkg/optics"
	"github.com/karmalentil/potk/pkg/trace"
)

// Input channel order of the design matrix: sensor x/y (mm), aperture dx/dy
// (unit pupil disc), wavelength (µm). Output channel order: exit x/y (mm),
// exit direction x/y (cosines), transmittance.
const (
	NumInputs  = 5
	NumOutputs = 5
)

// Config controls training sample generation
type Config struct {
	Count         int     // requested sample count; rounded up to a full grid
	Workers       int     // 0 = NumCPU
	Zoom          float64 // zoom/focus state in [0,1]
	WavelengthMin float64 // µm; 0 = optics.WavelengthMin
	WavelengthMax float64 // µm; 0 = optics.WavelengthMax
	JitterScale   float64 // jitter amplitude as a fraction of a stratum cell; 0 = 1, negative = no jitter
	WarnRate      float64 // discard-rate warning threshold; 0 = 0.5
	Seed          int64
	Log           optics.Logger
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.WavelengthMin == 0 {
		c.WavelengthMin = optics.WavelengthMin
	}
	if c.WavelengthMax == 0 {
		c.WavelengthMax = optics.WavelengthMax
	}
	if c.JitterScale == 0 {
		c.JitterScale = 1
	} else if c.JitterScale < 0 {
		c.JitterScale = 0
	}
	if c.WarnRate == 0 {
		c.WarnRate = 0.5
	}
	if c.Log == nil {
		c.Log = optics.NopLogger{}
	}
	return c
}

// Stats tallies traced rays per outcome. The failure counters are atomics so
// workers can tally without a shared lock.
type Stats struct {
	Requested int
	Valid     int

	Vignetted      atomic.Int64
	TIR            atomic.Int64
	NoIntersection atomic.Int64
}

// Discarded returns the total number of failed rays
func (s *Stats) Discarded() int64 {
	return s.Vignetted.Load() + s.TIR.Load() + s.NoIntersection.Load()
}

// DiscardRate returns the fraction of traced rays that failed
func (s *Stats) DiscardRate() float64 {
	if s.Requested == 0 {
		return 0
	}
	return float64(s.Discarded()) / float64(s.Requested)
}

// DesignMatrix holds the surviving (input, output) pairs of a sampling run,
// in deterministic stratum order.
type DesignMatrix struct {
	Inputs  [][NumInputs]float64
	Outputs [][NumOutputs]float64
	Stats   Stats
}

// rowSeedMix spreads row indices across seed space. It is the signed
// two's-complement form of the 64-bit golden-ratio constant
// 0x9E3779B97F4A7C15.
const rowSeedMix = -0x61C8864680B583EB

// rowResult carries one sensor-grid row of traced samples back from a worker
type rowResult struct {
	row     int
	inputs  [][NumInputs]float64
	outputs [][NumOutputs]float64
}

// Generate samples the lens input domain, traces every sample through the
// tracer, and assembles the surviving pairs into a design matrix.
//
// Sensor positions are stratified over a square grid covering the sensor
// clear radius; aperture samples are stratified over the unit pupil disc via
// concentric-disk mapping of a per-row latin square; wavelength strata follow
// a third per-row permutation. Every stratum sample is jittered for
// decorrelation. Results are deterministic for a fixed seed, independent of
// the worker count.
func Generate(sys *optics.System, tracer trace.Tracer, cfg Config) (*DesignMatrix, error) {
	cfg = cfg.withDefaults()
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("sample: count must be positive, got %d", cfg.Count)
	}
	irisDist := sys.IrisDistance(cfg.Zoom)
	if irisDist <= 0 {
		return nil, fmt.Errorf("sample: lens %q places the iris at the sensor plane", sys.Name())
	}

	grid := int(math.Ceil(math.Sqrt(float64(cfg.Count))))
	m := &DesignMatrix{}
	m.Stats.Requested = grid * grid

	cfg.Log.Printf("sampling %d rays (%dx%d grid, %d workers, zoom %.2f)",
		m.Stats.Requested, grid, grid, cfg.Workers, cfg.Zoom)

	tasks := make(chan int, grid)
	results := make(chan rowResult, grid)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range tasks {
				results <- traceRow(sys, tracer, cfg, &m.Stats, grid, row, irisDist)
			}
		}()
	}

	for row := 0; row < grid; row++ {
		tasks <- row
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	rows := make([]rowResult, grid)
	for r := range results {
		rows[r.row] = r
	}
	for _, r := range rows {
		m.Inputs = append(m.Inputs, r.inputs...)
		m.Outputs = append(m.Outputs, r.outputs...)
	}
	m.Stats.Valid = len(m.Inputs)

	rate := m.Stats.DiscardRate()
	cfg.Log.Printf("traced %d rays: %d valid, discard rate %.1f%% (vignetted %d, TIR %d, missed %d)",
		m.Stats.Requested, m.Stats.Valid, rate*100,
		m.Stats.Vignetted.Load(), m.Stats.TIR.Load(), m.Stats.NoIntersection.Load())
	if rate > cfg.WarnRate {
		cfg.Log.Printf("warning: discard rate %.1f%% exceeds %.1f%%; the sampling domain is poorly matched to the lens aperture",
			rate*100, cfg.WarnRate*100)
	}

	return m, nil
}

// traceRow generates and traces one sensor-grid row of samples. Each row
// derives its own RNG stream from the seed, so scheduling order cannot
// change the output.
func traceRow(sys *optics.System, tracer trace.Tracer, cfg Config, stats *Stats,
	grid, row int, irisDist float64) rowResult {

	rng := rand.New(rand.NewSource(cfg.Seed ^ (int64(row+1) * rowSeedMix)))

	sensorR := sys.SensorRadius()
	apertureR := sys.ApertureRadius()
	permA := rng.Perm(grid) // aperture u strata
	permB := rng.Perm(grid) // aperture v strata
	permL := rng.Perm(grid) // wavelength strata

	res := rowResult{row: row}
	for col := 0; col < grid; col++ {
		jitter := func() float64 { return cfg.JitterScale * rng.Float64() }

		sx := (2*(float64(col)+jitter())/float64(grid) - 1) * sensorR
		sy := (2*(float64(row)+jitter())/float64(grid) - 1) * sensorR

		au := (float64(permA[col]) + jitter()) / float64(grid)
		av := (float64(permB[col]) + jitter()) / float64(grid)
		adx, ady := concentricDisk(au, av)

		lu := (float64(permL[col]) + jitter()) / float64(grid)
		wavelength := cfg.WavelengthMin + lu*(cfg.WavelengthMax-cfg.WavelengthMin)

		origin := optics.NewVec3(sx, sy, 0)
		target := optics.NewVec3(adx*apertureR, ady*apertureR, irisDist)
		ray := optics.NewRay(origin, target.Subtract(origin), wavelength)

		result := tracer.Trace(ray, cfg.Zoom)
		switch result.Fail {
		case trace.ReasonNone:
			res.inputs = append(res.inputs, [NumInputs]float64{sx, sy, adx, ady, wavelength})
			res.outputs = append(res.outputs, [NumOutputs]float64{
				result.Position.X, result.Position.Y,
				result.Direction.X, result.Direction.Y,
				result.Transmittance,
			})
		case trace.ReasonVignetted:
			stats.Vignetted.Add(1)
		case trace.ReasonTotalInternalReflection:
			stats.TIR.Add(1)
		default:
			stats.NoIntersection.Add(1)
		}
	}
	return res
}

// concentricDisk maps a point in the unit square onto the unit disk using
// concentric mapping, which preserves stratification better than polar
// mapping (no clustering at the disk center).
func concentricDisk(u, v float64) (float64, float64) {
	ox := 2*u - 1
	oy := 2*v - 1
	if ox == 0 && oy == 0 {
		return 0, 0
	}

	var r, theta float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*(ox/oy)
	}
	return r * math.Cos(theta), r * math.Sin(theta)
}
