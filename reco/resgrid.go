package reco

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// ResGrid accumulates the spread of a quantity in the bins of a 2D grid.
// It implements gonum's plotter.GridXYZ, with Z the standard deviation of
// the quantity in each bin.
type ResGrid struct {
	hCount, hV, hV2 *hbook.H2D
	nBinsX, nBinsY  int
}

func NewResGrid(nBinsX int, xLow, xHigh float64, nBinsY int, yLow, yHigh float64) *ResGrid {
	return &ResGrid{
		hCount: hbook.NewH2D(nBinsX, xLow, xHigh, nBinsY, yLow, yHigh),
		hV:     hbook.NewH2D(nBinsX, xLow, xHigh, nBinsY, yLow, yHigh),
		hV2:    hbook.NewH2D(nBinsX, xLow, xHigh, nBinsY, yLow, yHigh),
		nBinsX: nBinsX,
		nBinsY: nBinsY,
	}
}

func (g *ResGrid) Fill(x, y, z float64) {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return
	}
	g.hCount.Fill(x, y, 1)
	g.hV.Fill(x, y, z)
	g.hV2.Fill(x, y, z*z)
}

// Count returns the number of entries in bin (i, j).
func (g *ResGrid) Count(i, j int) float64 {
	return g.hCount.GridXYZ().Z(i, j)
}

func (g *ResGrid) Dims() (int, int) {
	return g.nBinsX, g.nBinsY
}

// Z returns the standard deviation in bin (i, j), or zero for bins with
// fewer than 3 entries.
func (g *ResGrid) Z(i, j int) float64 {
	n := g.Count(i, j)
	if n < 3 {
		return 0
	}
	mean := g.hV.GridXYZ().Z(i, j) / n
	mean2 := g.hV2.GridXYZ().Z(i, j) / n

	return math.Sqrt(math.Max(0, mean2-mean*mean))
}

func (g *ResGrid) X(i int) float64 {
	return g.hCount.GridXYZ().X(i)
}

func (g *ResGrid) Y(j int) float64 {
	return g.hCount.GridXYZ().Y(j)
}

// H2Ds returns the count, sum and sum of squares histograms.
func (g *ResGrid) H2Ds() (count, sum, sum2 *hbook.H2D) {
	return g.hCount, g.hV, g.hV2
}
