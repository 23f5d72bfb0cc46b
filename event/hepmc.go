package event

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go-hep.org/x/hep/hepmc"
)

// HepMC reads the final state particles (status 1) of HepMC2 ASCII events,
// ordered by barcode.
type HepMC struct {
	f   io.Closer
	dec *hepmc.Decoder
}

// OpenHepMC opens the named HepMC2 file.
func OpenHepMC(fname string) (*HepMC, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("event: could not open HepMC file: %w", err)
	}
	src := NewHepMC(f)
	src.f = f
	return src, nil
}

// NewHepMC reads HepMC2 events from r.
func NewHepMC(r io.Reader) *HepMC {
	return &HepMC{dec: hepmc.NewDecoder(r)}
}

func (src *HepMC) Scan(ctx context.Context, f func(evt *Event) error) error {
	var (
		evt   Event
		parts []*hepmc.Particle
	)
	for i := int64(0); ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var hevt hepmc.Event
		err := src.dec.Decode(&hevt)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("event: could not decode HepMC event %d: %w", i, err)
		}

		parts = parts[:0]
		for _, p := range hevt.Particles {
			if p.Status != 1 {
				continue
			}
			parts = append(parts, p)
		}
		sort.Slice(parts, func(i, j int) bool {
			return parts[i].Barcode < parts[j].Barcode
		})

		evt.reset()
		evt.Index = i
		for _, p := range parts {
			evt.Particles = append(evt.Particles, Particle{
				PID:    int32(p.PdgID),
				Status: int32(p.Status),
				P4:     p.Momentum,
			})
		}

		err = f(&evt)
		if err != nil {
			return stop(err)
		}
	}
}

func (src *HepMC) Close() error {
	if src.f == nil {
		return nil
	}
	return src.f.Close()
}
