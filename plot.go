// Package lagerana holds the plotting helpers shared by the fast-MC
// analysis commands of lAger events.
package lagerana // import "github.com/decibelcooper/lagerana"

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default figure size.
const (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Color returns the color of the i-th overlaid curve.
func Color(i int) color.Color {
	switch i % 5 {
	case 1:
		return color.RGBA{G: 255, A: 255}
	case 2:
		return color.RGBA{B: 255, A: 255}
	case 3:
		return color.RGBA{R: 255, B: 127, G: 127, A: 255}
	case 4:
		return color.RGBA{R: 255, A: 255}
	}
	return color.RGBA{A: 255}
}

// NewPlot returns a plot with precise ticks on both axes.
func NewPlot(title, xlabel, ylabel string) *hplot.Plot {
	p := hplot.New()
	Style(p, title, xlabel, ylabel)
	return p
}

// Style sets the labels and the precise tick markers of p.
func Style(p *hplot.Plot, title, xlabel, ylabel string) {
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}
}

// LogY puts the y axis of p on a log scale. Call it before adding the
// histograms.
func LogY(p *hplot.Plot) {
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Scale = plot.LogScale{}
}

// AddH1D overlays h on p as the i-th curve. A non-empty legend adds an
// entry to the plot legend.
func AddH1D(p *hplot.Plot, h *hbook.H1D, i int, legend string) *hplot.H1D {
	ph := hplot.NewH1D(h)
	ph.FillColor = nil
	ph.LineStyle.Color = Color(i)
	ph.Infos.Style = hplot.HInfoNone
	if _, ok := p.Y.Scale.(plot.LogScale); ok {
		ph.LogY = true
	}
	p.Add(ph)
	if legend != "" {
		p.Legend.Add(legend, ph)
	}
	return ph
}

// Ratio returns the bin-by-bin ratio num/den with binomial errors, for
// bins where den is positive.
func Ratio(num, den *hbook.H1D) plotutil.ErrorPoints {
	n := den.Len()
	var (
		points  = make(plotter.XYs, 0, n)
		xErrors = make(plotter.XErrors, 0, n)
		yErrors = make(plotter.YErrors, 0, n)
	)
	for i := 0; i < n; i++ {
		x, trueY := den.XY(i)
		_, y := num.XY(i)
		if trueY <= 0 {
			continue
		}
		halfWidth := den.Binning.Bins[i].XWidth() / 2
		sigma := halfWidth / math.Sqrt(3)
		eff := y / trueY
		yerr := math.Sqrt(math.Max(0, (1-eff)*y) / (trueY * trueY))

		points = append(points, plotter.XY{X: x + halfWidth, Y: eff})
		xErrors = append(xErrors, struct{ Low, High float64 }{sigma, sigma})
		yErrors = append(yErrors, struct{ Low, High float64 }{yerr, yerr})
	}
	return plotutil.ErrorPoints{XYs: points, XErrors: xErrors, YErrors: yErrors}
}

// AddErrorPoints adds points with error bars to p as the i-th curve.
func AddErrorPoints(p *hplot.Plot, pts plotutil.ErrorPoints, i int, legend string) error {
	if len(pts.XYs) == 0 {
		return nil
	}
	xerr, err := plotter.NewXErrorBars(pts)
	if err != nil {
		return fmt.Errorf("could not create x error bars: %w", err)
	}
	yerr, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return fmt.Errorf("could not create y error bars: %w", err)
	}
	sca, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("could not create scatter: %w", err)
	}
	xerr.LineStyle.Color = Color(i)
	yerr.LineStyle.Color = Color(i)
	sca.GlyphStyle.Color = Color(i)
	sca.GlyphStyle.Shape = draw.CircleGlyph{}
	sca.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(xerr, yerr, sca)
	if legend != "" {
		p.Legend.Add(legend, sca)
	}
	return nil
}

// Save saves the figure to each of the named files, the format following
// the file extension.
func Save(fig hplot.Drawer, w, h vg.Length, fnames ...string) error {
	err := hplot.Save(fig, w, h, fnames...)
	if err != nil {
		return fmt.Errorf("could not save figure: %w", err)
	}
	return nil
}

// NewTiledPlot returns a rows×cols grid of plots.
func NewTiledPlot(rows, cols int) *hplot.TiledPlot {
	tp := hplot.NewTiledPlot(draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	})
	return tp
}

// HeatMap describes a heat map figure with a color bar.
type HeatMap struct {
	Title  string
	XLabel string
	YLabel string
	Min    float64
	Max    float64
}

// Save draws g as a PNG heat map with a color bar on the right.
func (hm HeatMap) Save(g plotter.GridXYZ, fname string) error {
	img := vgimg.New(670, 400)
	dc := draw.New(img)
	dc0 := draw.Crop(dc, 0, -70, 0, 0)
	dc1 := draw.Crop(dc, 620, 0, 0, 0)

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(hm.Min)
	colorMap.SetMax(hm.Max)
	pal := colorMap.Palette(1000)

	p := NewPlot(hm.Title, hm.XLabel, hm.YLabel)
	heatMap := plotter.NewHeatMap(g, pal)
	heatMap.Min = hm.Min
	heatMap.Max = hm.Max
	p.Add(heatMap)
	p.Draw(dc0)

	bar := plot.New()
	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	bar.Add(colorBar)
	bar.HideX()
	bar.Y.Padding = 0
	bar.Draw(dc1)

	w, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create heat map file: %w", err)
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		return fmt.Errorf("could not write heat map: %w", err)
	}
	return w.Close()
}
