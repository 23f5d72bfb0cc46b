// Package accept implements the fast-MC detector acceptance: a table of
// detection probabilities binned in polar angle and momentum, and a sampler
// deciding whether a particle is seen.
package accept // import "github.com/decibelcooper/lagerana/accept"

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/decibelcooper/lagerana/kine"
)

// DefaultPeak is the maximum efficiency tables are rescaled to.
const DefaultPeak = 0.9

// Table is a uniform grid of efficiencies over the polar angle (degrees,
// first axis) and the momentum (GeV, second axis). Bins are [lo, hi);
// points outside the grid have a zero efficiency.
//
// Table implements gonum's plotter.GridXYZ.
type Table struct {
	Name string

	nx, ny int
	xmin   float64
	xmax   float64
	ymin   float64
	ymax   float64
	dx, dy float64
	eff    []float64 // eff[iy*nx+ix]
}

// New returns an empty table with nx×ny bins.
func New(name string, nx int, xmin, xmax float64, ny int, ymin, ymax float64) *Table {
	return &Table{
		Name: name,
		nx:   nx,
		ny:   ny,
		xmin: xmin,
		xmax: xmax,
		ymin: ymin,
		ymax: ymax,
		dx:   (xmax - xmin) / float64(nx),
		dy:   (ymax - ymin) / float64(ny),
		eff:  make([]float64, nx*ny),
	}
}

// Uniform returns a single-bin table with efficiency eff over all of
// phase space.
func Uniform(eff float64) *Table {
	t := New("uniform", 1, math.Inf(-1), math.Inf(+1), 1, math.Inf(-1), math.Inf(+1))
	t.eff[0] = eff
	return t
}

// FromH2D builds a table from the raw bin contents of h.
// Contents above 1 are kept until the table is rescaled.
func FromH2D(name string, h *hbook.H2D) *Table {
	grid := h.GridXYZ()
	nx, ny := grid.Dims()
	t := New(name, nx, h.XMin(), h.XMax(), ny, h.YMin(), h.YMax())
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			t.Set(ix, iy, grid.Z(ix, iy))
		}
	}
	return t
}

// Open reads the named 2D histograms from a ROOT file.
func Open(fname string, names ...string) ([]*Table, error) {
	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("accept: could not open acceptance file: %w", err)
	}
	defer f.Close()

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		obj, err := f.Get(name)
		if err != nil {
			return nil, fmt.Errorf("accept: could not find %q in %q: %w", name, fname, err)
		}
		h2, ok := obj.(rhist.H2)
		if !ok {
			return nil, fmt.Errorf("accept: object %q in %q is not a 2D histogram (%T)", name, fname, obj)
		}
		tables = append(tables, FromH2D(name, rootcnv.H2D(h2)))
	}
	return tables, nil
}

// Set sets the content of bin (ix, iy). Efficiency clamps it to [0, 1].
func (t *Table) Set(ix, iy int, eff float64) {
	t.eff[iy*t.nx+ix] = eff
}

// Max returns the largest content of the table.
func (t *Table) Max() float64 {
	max := 0.0
	for _, v := range t.eff {
		if v > max {
			max = v
		}
	}
	return max
}

// Scale rescales the table so its maximum equals peak, clamping the
// rescaled contents to [0, 1]. An empty table or a non-positive peak leaves
// the table untouched.
func (t *Table) Scale(peak float64) {
	max := t.Max()
	if max <= 0 || peak <= 0 {
		return
	}
	f := peak / max
	for i, v := range t.eff {
		t.eff[i] = clamp(v * f)
	}
}

// Efficiency returns the detection probability of a particle with polar
// angle theta (degrees) and momentum p (GeV).
func (t *Table) Efficiency(theta, p float64) float64 {
	ix, ok := bin(theta, t.xmin, t.xmax, t.dx, t.nx)
	if !ok {
		return 0
	}
	iy, ok := bin(p, t.ymin, t.ymax, t.dy, t.ny)
	if !ok {
		return 0
	}
	return clamp(t.eff[iy*t.nx+ix])
}

func bin(v, min, max, width float64, n int) (int, bool) {
	if !(v >= min && v < max) {
		return 0, false
	}
	if n == 1 {
		return 0, true
	}
	i := int((v - min) / width)
	if i >= n {
		i = n - 1
	}
	return i, true
}

func clamp(v float64) float64 {
	switch {
	case v < 0, math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (t *Table) Dims() (c, r int)         { return t.nx, t.ny }
func (t *Table) Z(c, r int) float64       { return t.eff[r*t.nx+c] }
func (t *Table) X(c int) float64          { return t.xmin + (float64(c)+0.5)*t.dx }
func (t *Table) Y(r int) float64          { return t.ymin + (float64(r)+0.5)*t.dy }
func (t *Table) XRange() (lo, hi float64) { return t.xmin, t.xmax }
func (t *Table) YRange() (lo, hi float64) { return t.ymin, t.ymax }

// Sampler draws acceptance decisions from a table.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	Table *Table
	src   rand.Source
}

// NewSampler returns a sampler drawing from src.
func NewSampler(t *Table, src rand.Source) *Sampler {
	return &Sampler{Table: t, src: src}
}

// Accept reports whether a particle with polar angle theta (degrees) and
// momentum p (GeV) is detected.
func (s *Sampler) Accept(theta, p float64) bool {
	b := distuv.Bernoulli{P: s.Table.Efficiency(theta, p), Src: s.src}
	return b.Rand() == 1
}

// AcceptP4 is Accept for a four-momentum.
func (s *Sampler) AcceptP4(p fmom.PxPyPzE) bool {
	return s.Accept(kine.Theta(p), p.P())
}
