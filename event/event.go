// Package event provides the generated events fed to the analyses, read
// from ROOT flat ntuples, LUND text files, proio streams or HepMC2 files.
package event // import "github.com/decibelcooper/lagerana/event"

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/fmom"
)

// ErrStop can be returned by a Scan callback to end the scan early.
// Scan then returns nil.
var ErrStop = errors.New("event: stop scan")

// Particle is one generated particle.
type Particle struct {
	PID    int32 // PDG code
	Status int32 // generator status, 1 for final state particles
	P4     fmom.PxPyPzE
}

// Event is an ordered list of particles. The index of a particle in the list
// is its slot.
type Event struct {
	Index     int64
	BeamE     float64 // beam energy, when the format provides it
	Weight    float64
	Particles []Particle
}

func (evt *Event) reset() {
	evt.BeamE = 0
	evt.Weight = 1
	evt.Particles = evt.Particles[:0]
}

// Source is a stream of events.
//
// Scan calls f for each event, in order. The event is reused between calls:
// f must not retain it.
type Source interface {
	Scan(ctx context.Context, f func(evt *Event) error) error
	Close() error
}

// Open opens the named file, picking the reader from the file extension:
// .root (flat ntuple, tree named tree), .lund/.txt/.dat (LUND),
// .proio (proio, particles tagged tree) and .hepmc (HepMC2).
func Open(fname, tree string) (Source, error) {
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".root":
		if tree == "" {
			tree = DefaultTree
		}
		return OpenFlat(fname, tree)
	case ".lund", ".txt", ".dat":
		return OpenLUND(fname)
	case ".proio":
		if tree == "" {
			tree = DefaultTag
		}
		return OpenProio(fname, tree)
	case ".hepmc", ".hepmc2":
		return OpenHepMC(fname)
	default:
		return nil, fmt.Errorf("event: unknown file format %q for %q", ext, fname)
	}
}

// stop translates ErrStop into a clean end of scan.
func stop(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
