package event

import (
	"context"
	"fmt"
	"math"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"
	"go-hep.org/x/hep/fmom"
)

// DefaultTag is the proio tag of generated final state particles.
const DefaultTag = "GenStable"

// Proio reads the eic.Particle entries carrying a given tag from a proio
// stream. Particle energies are computed from the momentum and mass.
type Proio struct {
	r   *proio.Reader
	tag string
}

// OpenProio opens the named proio file.
func OpenProio(fname, tag string) (*Proio, error) {
	r, err := proio.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("event: could not open proio file: %w", err)
	}
	return &Proio{r: r, tag: tag}, nil
}

func (src *Proio) Scan(ctx context.Context, f func(evt *Event) error) error {
	var (
		evt Event
		i   int64
	)
	defer src.r.StopScan()
	for pevt := range src.r.ScanEvents() {
		if err := ctx.Err(); err != nil {
			return err
		}
		evt.reset()
		evt.Index = i
		i++

		for _, id := range pevt.TaggedEntries(src.tag) {
			part, ok := pevt.GetEntry(id).(*eic.Particle)
			if !ok {
				continue
			}
			var (
				p  = part.GetP()
				px = float64(p.GetX())
				py = float64(p.GetY())
				pz = float64(p.GetZ())
				m  = float64(part.GetMass())
			)
			evt.Particles = append(evt.Particles, Particle{
				PID:    int32(part.GetPdg()),
				Status: 1,
				P4:     fmom.NewPxPyPzE(px, py, pz, math.Sqrt(px*px+py*py+pz*pz+m*m)),
			})
		}

		err := f(&evt)
		if err != nil {
			return stop(err)
		}
	}
	return nil
}

func (src *Proio) Close() error {
	src.r.Close()
	return nil
}
