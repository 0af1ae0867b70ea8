// Package report renders validation results for human review. The JSON
// report artifact is the machine interface; these plots exist for eyeballing
// where on the sensor a fit degrades between lens revisions.
package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/karmalentil/potk/pkg/polyfit"
)

// PlotResiduals renders the held-out exit-position residual magnitude
// against field radius and saves it as a PNG.
func PlotResiduals(rep *polyfit.Report, path string) error {
	if len(rep.Residuals) == 0 {
		return fmt.Errorf("report: validation report for %q carries no residual samples", rep.LensName)
	}

	pts := make(plotter.XYs, 0, len(rep.Residuals))
	for _, r := range rep.Residuals {
		pts = append(pts, plotter.XY{
			X: math.Hypot(r.SensorX, r.SensorY),
			Y: math.Hypot(r.ErrX, r.ErrY),
		})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s degree %d: exit position residuals (RMS %.4f mm)",
		rep.LensName, rep.Degree, rep.PositionRMS)
	p.X.Label.Text = "field radius (mm)"
	p.Y.Label.Text = "residual (mm)"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("report: build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
