package reco

import (
	"fmt"
	"sync"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
)

// Record is one row of the kinematics tree. The t branches hold -t.
type Record struct {
	TrueW           float64
	TrueQ2          float64
	TrueX           float64
	TrueT           float64
	RecoW           float64
	RecoQ2          float64
	RecoX           float64
	RecoT           float64
	RecoMesonMass   float64
	RecoMissingMass float64
	Topology        int32
	Accepted        uint32 // bit i set when particle i was detected
}

// TreeName returns the name of the kinematics tree of a sample.
func TreeName(prefix string) string {
	return prefix + "_KineTree"
}

// Output is a ROOT file shared by the analyses of several samples.
// Its methods are safe for concurrent use.
type Output struct {
	mu sync.Mutex
	f  *riofs.File
}

// Create creates the named ROOT file.
func Create(fname string) (*Output, error) {
	f, err := groot.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("reco: could not create output file: %w", err)
	}
	return &Output{f: f}, nil
}

// Tree writes Records to a ROOT tree of an Output.
type Tree struct {
	out *Output
	w   rtree.Writer
	rec Record
}

// NewTree creates a kinematics tree in the file.
func (o *Output) NewTree(name string) (*Tree, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	t := &Tree{out: o}
	wvars := []rtree.WriteVar{
		{Name: "true_W", Value: &t.rec.TrueW},
		{Name: "true_Q2", Value: &t.rec.TrueQ2},
		{Name: "true_x", Value: &t.rec.TrueX},
		{Name: "true_t", Value: &t.rec.TrueT},
		{Name: "reco_W", Value: &t.rec.RecoW},
		{Name: "reco_Q2", Value: &t.rec.RecoQ2},
		{Name: "reco_x", Value: &t.rec.RecoX},
		{Name: "reco_t", Value: &t.rec.RecoT},
		{Name: "reco_meson_mass", Value: &t.rec.RecoMesonMass},
		{Name: "reco_missing_mass", Value: &t.rec.RecoMissingMass},
		{Name: "topology", Value: &t.rec.Topology},
		{Name: "accepted", Value: &t.rec.Accepted},
	}
	w, err := rtree.NewWriter(o.f, name, wvars)
	if err != nil {
		return nil, fmt.Errorf("reco: could not create tree %q: %w", name, err)
	}
	t.w = w
	return t, nil
}

// Write appends a row to the tree.
func (t *Tree) Write(rec Record) error {
	t.out.mu.Lock()
	defer t.out.mu.Unlock()

	t.rec = rec
	_, err := t.w.Write()
	if err != nil {
		return fmt.Errorf("reco: could not write tree entry: %w", err)
	}
	return nil
}

// Close flushes the tree.
func (t *Tree) Close() error {
	t.out.mu.Lock()
	defer t.out.mu.Unlock()

	err := t.w.Close()
	if err != nil {
		return fmt.Errorf("reco: could not close tree: %w", err)
	}
	return nil
}

// WriteHists writes the histograms of hs to the file, under their
// prefixed names.
func (o *Output) WriteHists(hs *Hists) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, name := range hs.Names() {
		err := o.f.Put(hs.FullName(name), rhist.NewH1DFrom(hs.Get(name)))
		if err != nil {
			return fmt.Errorf("reco: could not write histogram %q: %w", hs.FullName(name), err)
		}
	}
	return nil
}

// WriteH2D writes a 2D histogram to the file.
func (o *Output) WriteH2D(name string, h *hbook.H2D) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.f.Put(name, rhist.NewH2DFrom(h))
	if err != nil {
		return fmt.Errorf("reco: could not write histogram %q: %w", name, err)
	}
	return nil
}

// Close closes the file. Closing a closed Output is a no-op.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.f == nil {
		return nil
	}
	err := o.f.Close()
	o.f = nil
	if err != nil {
		return fmt.Errorf("reco: could not close output file: %w", err)
	}
	return nil
}

// ReadHists reads the named 1D histograms from a ROOT file.
func ReadHists(fname string, names ...string) ([]*hbook.H1D, error) {
	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("reco: could not open %q: %w", fname, err)
	}
	defer f.Close()

	hs := make([]*hbook.H1D, 0, len(names))
	for _, name := range names {
		obj, err := f.Get(name)
		if err != nil {
			return nil, fmt.Errorf("reco: could not find %q in %q: %w", name, fname, err)
		}
		h1, ok := obj.(rhist.H1)
		if !ok {
			return nil, fmt.Errorf("reco: object %q in %q is not a 1D histogram (%T)", name, fname, obj)
		}
		hs = append(hs, rootcnv.H1D(h1))
	}
	return hs, nil
}
