package event

import (
	"context"
	"errors"
	"fmt"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// DefaultTree is the name of the flat event tree.
const DefaultTree = "events"

// Flat reads events from a flat ROOT ntuple with one entry per event:
//
//	beamE  float64
//	weight float64
//	n      int32
//	pid    []int32   (n)
//	status []int32   (n)
//	E, px, py, pz []float64 (n)
//
// Slot i of an event is entry i of the per-particle branches.
type Flat struct {
	f *riofs.File
	t rtree.Tree
}

// OpenFlat opens the named tree of a ROOT file.
func OpenFlat(fname, tree string) (*Flat, error) {
	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("event: could not open ROOT file %q: %w", fname, err)
	}

	obj, err := f.Get(tree)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("event: could not find tree %q in %q: %w", tree, fname, err)
	}

	t, ok := obj.(rtree.Tree)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("event: object %q in %q is not a tree (%T)", tree, fname, obj)
	}

	return &Flat{f: f, t: t}, nil
}

// Entries returns the number of events in the tree.
func (src *Flat) Entries() int64 { return src.t.Entries() }

func (src *Flat) Scan(ctx context.Context, f func(evt *Event) error) error {
	var (
		beamE  float64
		weight float64
		n      int32
		pid    []int32
		status []int32
		ene    []float64
		px     []float64
		py     []float64
		pz     []float64
	)
	rvars := []rtree.ReadVar{
		{Name: "beamE", Value: &beamE},
		{Name: "weight", Value: &weight},
		{Name: "n", Value: &n},
		{Name: "pid", Value: &pid},
		{Name: "status", Value: &status},
		{Name: "E", Value: &ene},
		{Name: "px", Value: &px},
		{Name: "py", Value: &py},
		{Name: "pz", Value: &pz},
	}

	r, err := rtree.NewReader(src.t, rvars)
	if err != nil {
		return fmt.Errorf("event: could not create tree reader: %w", err)
	}
	defer r.Close()

	var (
		evt     Event
		stopped bool
	)
	err = r.Read(func(rctx rtree.RCtx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		evt.reset()
		evt.Index = rctx.Entry
		evt.BeamE = beamE
		evt.Weight = weight
		for i := 0; i < int(n); i++ {
			evt.Particles = append(evt.Particles, Particle{
				PID:    pid[i],
				Status: status[i],
				P4:     fmom.NewPxPyPzE(px[i], py[i], pz[i], ene[i]),
			})
		}
		err := f(&evt)
		if errors.Is(err, ErrStop) {
			stopped = true
		}
		return err
	})
	if stopped {
		return nil
	}
	if err != nil {
		return fmt.Errorf("event: could not scan tree: %w", err)
	}
	return nil
}

func (src *Flat) Close() error {
	return src.f.Close()
}

// FlatWriter writes events as a flat ROOT ntuple readable by Flat.
type FlatWriter struct {
	w rtree.Writer

	beamE  float64
	weight float64
	n      int32
	pid    []int32
	status []int32
	ene    []float64
	px     []float64
	py     []float64
	pz     []float64
}

// NewFlatWriter creates a flat event tree under dir.
func NewFlatWriter(dir riofs.Directory, name string) (*FlatWriter, error) {
	fw := &FlatWriter{}
	wvars := []rtree.WriteVar{
		{Name: "beamE", Value: &fw.beamE},
		{Name: "weight", Value: &fw.weight},
		{Name: "n", Value: &fw.n},
		{Name: "pid", Value: &fw.pid, Count: "n"},
		{Name: "status", Value: &fw.status, Count: "n"},
		{Name: "E", Value: &fw.ene, Count: "n"},
		{Name: "px", Value: &fw.px, Count: "n"},
		{Name: "py", Value: &fw.py, Count: "n"},
		{Name: "pz", Value: &fw.pz, Count: "n"},
	}
	w, err := rtree.NewWriter(dir, name, wvars)
	if err != nil {
		return nil, fmt.Errorf("event: could not create tree %q: %w", name, err)
	}
	fw.w = w
	return fw, nil
}

// Write appends one event to the tree.
func (fw *FlatWriter) Write(evt *Event) error {
	fw.beamE = evt.BeamE
	fw.weight = evt.Weight
	fw.n = int32(len(evt.Particles))
	fw.pid = fw.pid[:0]
	fw.status = fw.status[:0]
	fw.ene = fw.ene[:0]
	fw.px = fw.px[:0]
	fw.py = fw.py[:0]
	fw.pz = fw.pz[:0]
	for _, p := range evt.Particles {
		fw.pid = append(fw.pid, p.PID)
		fw.status = append(fw.status, p.Status)
		fw.ene = append(fw.ene, p.P4.E())
		fw.px = append(fw.px, p.P4.Px())
		fw.py = append(fw.py, p.P4.Py())
		fw.pz = append(fw.pz, p.P4.Pz())
	}

	_, err := fw.w.Write()
	if err != nil {
		return fmt.Errorf("event: could not write event %d: %w", evt.Index, err)
	}
	return nil
}

// Close flushes the tree. The underlying file must be closed by the caller.
func (fw *FlatWriter) Close() error {
	return fw.w.Close()
}
