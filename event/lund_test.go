package event

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go-hep.org/x/hep/fmom"
)

const lundEvents = `# lAger output
 3 1 1 0.0 0.0 11 10.6 1 1 2.5e-3
 1 0 1  11 0 0  0.1 0.2 9.0  9.0028 0.000511 0 0 0
 2 0 1 2212 0 0 -0.1 0.0 0.5 1.0644 0.938272 0 0 0
 3 0 1  321 0 0  0.0 -0.2 1.1 1.2207 0.493677 0 0 0

 2 1 1 0.0 0.0 11 10.6 1 1 1.0
 1 0 1  11 0 0  0.0 0.0 5.0 5.0 0.000511 0 0 0
 2 0 0  333 0 0  0.0 0.0 1.0 1.4 1.019 0 0 0
`

func TestLUND(t *testing.T) {
	src := NewLUND(strings.NewReader(lundEvents))
	defer src.Close()

	var got []Event
	err := src.Scan(context.Background(), func(evt *Event) error {
		cpy := *evt
		cpy.Particles = append([]Particle(nil), evt.Particles...)
		got = append(got, cpy)
		return nil
	})
	if err != nil {
		t.Fatalf("could not scan LUND events: %+v", err)
	}

	want := []Event{
		{
			Index: 0, BeamE: 10.6, Weight: 2.5e-3,
			Particles: []Particle{
				{PID: 11, Status: 1, P4: fmom.NewPxPyPzE(0.1, 0.2, 9.0, 9.0028)},
				{PID: 2212, Status: 1, P4: fmom.NewPxPyPzE(-0.1, 0, 0.5, 1.0644)},
				{PID: 321, Status: 1, P4: fmom.NewPxPyPzE(0, -0.2, 1.1, 1.2207)},
			},
		},
		{
			Index: 1, BeamE: 10.6, Weight: 1,
			Particles: []Particle{
				{PID: 11, Status: 1, P4: fmom.NewPxPyPzE(0, 0, 5, 5)},
				{PID: 333, Status: 0, P4: fmom.NewPxPyPzE(0, 0, 1, 1.4)},
			},
		},
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("invalid LUND events (-want +got):\n%s", diff)
	}
}

func TestLUNDStop(t *testing.T) {
	src := NewLUND(strings.NewReader(lundEvents))
	n := 0
	err := src.Scan(context.Background(), func(evt *Event) error {
		n++
		return ErrStop
	})
	if err != nil {
		t.Fatalf("stopped scan returned an error: %+v", err)
	}
	if got, want := n, 1; got != want {
		t.Fatalf("invalid number of scanned events: got=%d, want=%d", got, want)
	}
}

func TestLUNDErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "short-header",
			raw:  " 1 1 1 0.0 0.0 11 10.6\n",
		},
		{
			name: "bad-count",
			raw:  " x 1 1 0.0 0.0 11 10.6 1 1 1.0\n",
		},
		{
			name: "bad-particle",
			raw:  " 1 1 1 0.0 0.0 11 10.6 1 1 1.0\n 1 0 1 11 0 0 a 0 5 5 0 0 0 0\n",
		},
		{
			name: "truncated",
			raw:  " 2 1 1 0.0 0.0 11 10.6 1 1 1.0\n 1 0 1 11 0 0 0 0 5 5 0 0 0 0\n",
			want: io.ErrUnexpectedEOF,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := NewLUND(strings.NewReader(tc.raw))
			err := src.Scan(context.Background(), func(*Event) error { return nil })
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("invalid error: got=%v, want=%v", err, tc.want)
			}
		})
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	_, err := Open("events.csv", "")
	if err == nil {
		t.Fatalf("expected an error for an unknown file format")
	}
}
