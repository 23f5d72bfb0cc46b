package main

import (
	"os"
	"path/filepath"
	"testing"

	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/lagerana/reco"
)

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "acc.root")

	h := hbook.NewH2D(10, 0, 50, 10, 0, 10)
	for i := 0; i < 10; i++ {
		h.Fill(2.5+5*float64(i), 0.5+float64(i), 0.1*float64(i))
	}

	out, err := reco.Create(fname)
	if err != nil {
		t.Fatalf("could not create file: %+v", err)
	}
	err = out.WriteH2D("acceptance_ThetaP_overall", h)
	if err != nil {
		t.Fatalf("could not write table: %+v", err)
	}
	err = out.Close()
	if err != nil {
		t.Fatalf("could not close file: %+v", err)
	}

	old := *prefix
	*prefix = filepath.Join(dir, "map")
	defer func() { *prefix = old }()

	onames, err := process(fname, []string{"acceptance_ThetaP_overall"}, 0.9)
	if err != nil {
		t.Fatalf("could not draw acceptance: %+v", err)
	}
	if got, want := len(onames), 1; got != want {
		t.Fatalf("invalid number of figures: got=%d, want=%d", got, want)
	}
	fi, err := os.Stat(onames[0])
	if err != nil {
		t.Fatalf("could not stat figure: %+v", err)
	}
	if fi.Size() == 0 {
		t.Fatalf("empty figure %q", onames[0])
	}

	_, err = process(fname, []string{"missing"}, 0.9)
	if err == nil {
		t.Fatalf("expected an error for a missing table")
	}
}
