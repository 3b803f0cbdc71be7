package telemetry

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/autonomysim/coresim/pkg/errkind"
)

// PlotExporter renders a recorded trajectory to an image file, grounded on
// the teacher's ctrl/plot package's plot.New/plotter.Values/title-and-axis
// idiom.
type PlotExporter struct{}

// NewPlotExporter returns a stateless PlotExporter.
func NewPlotExporter() *PlotExporter { return &PlotExporter{} }

// ExportAltitude renders altitude (POS_Z, inverted to a "up positive" NED
// convention) against sample index for one vehicle's recorded rows.
func (e *PlotExporter) ExportAltitude(rows []TelemetryRow, vehicle, outPath string) error {
	p := plot.New()
	p.Title.Text = "altitude: " + vehicle
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "altitude (m)"

	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i].X = float64(i)
		pts[i].Y = -float64(r.PosZ)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errkind.Wrap(errkind.InternalError, "building altitude line", err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return errkind.Wrap(errkind.ConfigError, "saving altitude plot", err)
	}
	return nil
}

// ExportGroundTrack renders X/Y position as a 2D flight path.
func (e *PlotExporter) ExportGroundTrack(rows []TelemetryRow, vehicle, outPath string) error {
	p := plot.New()
	p.Title.Text = "ground track: " + vehicle
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i].X = float64(r.PosX)
		pts[i].Y = float64(r.PosY)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errkind.Wrap(errkind.InternalError, "building ground track line", err)
	}
	p.Add(line)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, outPath); err != nil {
		return errkind.Wrap(errkind.ConfigError, "saving ground track plot", err)
	}
	return nil
}
