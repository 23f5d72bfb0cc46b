package reco

import (
	"context"
	"path/filepath"
	"testing"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/decibelcooper/lagerana/event"
)

type sliceSource []*event.Event

func (src sliceSource) Scan(ctx context.Context, f func(evt *event.Event) error) error {
	for i, evt := range src {
		evt.Index = int64(i)
		err := f(evt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (src sliceSource) Close() error { return nil }

func TestOutput(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "out.root")
	out, err := Create(fname)
	if err != nil {
		t.Fatalf("could not create output: %+v", err)
	}

	a, err := New("sig", noSmearing(), nil, nil, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}
	tree, err := out.NewTree(TreeName(a.Prefix))
	if err != nil {
		t.Fatalf("could not create tree: %+v", err)
	}

	src := sliceSource{phiEvent(), phiEvent(), phiEvent()}
	err = a.Run(context.Background(), src, tree)
	if err != nil {
		t.Fatalf("could not run analysis: %+v", err)
	}
	err = tree.Close()
	if err != nil {
		t.Fatalf("could not close tree: %+v", err)
	}
	err = out.WriteHists(a.Hists)
	if err != nil {
		t.Fatalf("could not write histograms: %+v", err)
	}
	count, _, _ := a.Res.H2Ds()
	err = out.WriteH2D("sig_Q2_resolution_count", count)
	if err != nil {
		t.Fatalf("could not write 2D histogram: %+v", err)
	}
	err = out.Close()
	if err != nil {
		t.Fatalf("could not close output: %+v", err)
	}

	f, err := groot.Open(fname)
	if err != nil {
		t.Fatalf("could not open output: %+v", err)
	}
	defer f.Close()

	obj, err := f.Get("sig_KineTree")
	if err != nil {
		t.Fatalf("could not find tree: %+v", err)
	}
	rt := obj.(rtree.Tree)
	if got, want := rt.Entries(), int64(3); got != want {
		t.Fatalf("invalid number of tree entries: got=%d, want=%d", got, want)
	}

	var (
		trueW float64
		topo  int32
	)
	r, err := rtree.NewReader(rt, []rtree.ReadVar{
		{Name: "true_W", Value: &trueW},
		{Name: "topology", Value: &topo},
	})
	if err != nil {
		t.Fatalf("could not create tree reader: %+v", err)
	}
	defer r.Close()
	err = r.Read(func(rtree.RCtx) error {
		if trueW < 1 || trueW > 2.4 {
			t.Errorf("invalid true W: %v", trueW)
		}
		if Topology(topo) != Full {
			t.Errorf("invalid topology: %v", Topology(topo))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not read tree: %+v", err)
	}

	_, err = f.Get("sig_Q2_resolution_count")
	if err != nil {
		t.Fatalf("could not find 2D histogram: %+v", err)
	}

	hs, err := ReadHists(fname, "sig_W_values", "sig_filtered_W_values")
	if err != nil {
		t.Fatalf("could not read histograms: %+v", err)
	}
	for i, h := range hs {
		if got, want := h.SumW(), 3.0; got != want {
			t.Fatalf("invalid content of histogram %d: got=%v, want=%v", i, got, want)
		}
	}

	_, err = ReadHists(fname, "sig_KineTree")
	if err == nil {
		t.Fatalf("expected an error reading a tree as a histogram")
	}
}
