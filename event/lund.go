package event

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go-hep.org/x/hep/fmom"
)

// LUND reads events in the LUND text format written by lAger:
// a 10-column header line (number of particles, target A, target Z,
// target polarization, beam polarization, beam PDG code, beam energy,
// interacted nucleon, process ID, event weight) followed by one 14-column
// line per particle (index, lifetime, type, PDG code, parent, first daughter,
// px, py, pz, E, mass, vx, vy, vz). Empty lines and lines starting with '#'
// are ignored.
type LUND struct {
	f    io.Closer
	sc   *bufio.Scanner
	line int
}

// OpenLUND opens the named LUND file.
func OpenLUND(fname string) (*LUND, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("event: could not open LUND file: %w", err)
	}
	src := NewLUND(f)
	src.f = f
	return src, nil
}

// NewLUND reads LUND events from r.
func NewLUND(r io.Reader) *LUND {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LUND{sc: sc}
}

func (src *LUND) Scan(ctx context.Context, f func(evt *Event) error) error {
	var evt Event
	for i := int64(0); ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := src.next(&evt)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		evt.Index = i
		err = f(&evt)
		if err != nil {
			return stop(err)
		}
	}
}

func (src *LUND) Close() error {
	if src.f == nil {
		return nil
	}
	return src.f.Close()
}

func (src *LUND) readLine() (string, error) {
	for src.sc.Scan() {
		src.line++
		txt := strings.TrimSpace(src.sc.Text())
		if txt == "" || txt[0] == '#' {
			continue
		}
		return txt, nil
	}
	if err := src.sc.Err(); err != nil {
		return "", fmt.Errorf("event: could not read LUND line %d: %w", src.line+1, err)
	}
	return "", io.EOF
}

func (src *LUND) next(evt *Event) error {
	hdr, err := src.readLine()
	if err != nil {
		return err
	}
	evt.reset()

	toks := strings.Fields(hdr)
	if len(toks) < 10 {
		return fmt.Errorf("event: invalid LUND header at line %d: got %d columns, want 10", src.line, len(toks))
	}
	npart, err := strconv.Atoi(toks[0])
	if err != nil || npart < 0 {
		return fmt.Errorf("event: invalid LUND particle count %q at line %d", toks[0], src.line)
	}
	evt.BeamE, err = strconv.ParseFloat(toks[6], 64)
	if err != nil {
		return fmt.Errorf("event: invalid LUND beam energy at line %d: %w", src.line, err)
	}
	evt.Weight, err = strconv.ParseFloat(toks[9], 64)
	if err != nil {
		return fmt.Errorf("event: invalid LUND event weight at line %d: %w", src.line, err)
	}

	for i := 0; i < npart; i++ {
		txt, err := src.readLine()
		if err == io.EOF {
			return fmt.Errorf("event: LUND event truncated after %d/%d particles: %w", i, npart, io.ErrUnexpectedEOF)
		}
		if err != nil {
			return err
		}
		p, err := parseLUNDParticle(txt)
		if err != nil {
			return fmt.Errorf("event: invalid LUND particle at line %d: %w", src.line, err)
		}
		evt.Particles = append(evt.Particles, p)
	}
	return nil
}

func parseLUNDParticle(txt string) (Particle, error) {
	toks := strings.Fields(txt)
	if len(toks) < 14 {
		return Particle{}, fmt.Errorf("got %d columns, want 14", len(toks))
	}

	var ints [2]int64
	for i, tok := range []string{toks[2], toks[3]} {
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return Particle{}, err
		}
		ints[i] = v
	}

	var p4 [4]float64
	for i, tok := range toks[6:10] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Particle{}, err
		}
		p4[i] = v
	}

	return Particle{
		Status: int32(ints[0]),
		PID:    int32(ints[1]),
		P4:     fmom.NewPxPyPzE(p4[0], p4[1], p4[2], p4[3]),
	}, nil
}
