package reco

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// Hists is an ordered set of 1D histograms sharing a name prefix.
type Hists struct {
	Prefix string

	names []string
	h1    map[string]*hbook.H1D
}

// NewHists returns an empty set of histograms named <prefix>_<name>.
func NewHists(prefix string) *Hists {
	return &Hists{
		Prefix: prefix,
		h1:     make(map[string]*hbook.H1D),
	}
}

// Book creates a histogram. Booking an existing name returns the
// existing histogram.
func (hs *Hists) Book(name, title string, n int, lo, hi float64) *hbook.H1D {
	if h, ok := hs.h1[name]; ok {
		return h
	}
	h := hbook.NewH1D(n, lo, hi)
	h.Ann["name"] = hs.FullName(name)
	h.Ann["title"] = title
	hs.h1[name] = h
	hs.names = append(hs.names, name)
	return h
}

// FullName returns the prefixed name of a histogram.
func (hs *Hists) FullName(name string) string {
	if hs.Prefix == "" {
		return name
	}
	return hs.Prefix + "_" + name
}

// Get returns the named histogram, or nil.
func (hs *Hists) Get(name string) *hbook.H1D {
	return hs.h1[name]
}

// Fill fills the named histogram with a unit weight. NaN values are
// ignored.
func (hs *Hists) Fill(name string, v float64) {
	if math.IsNaN(v) {
		return
	}
	hs.h1[name].Fill(v, 1)
}

// Names returns the histogram names in booking order.
func (hs *Hists) Names() []string {
	return hs.names
}
