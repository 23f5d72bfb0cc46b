package reco

import (
	"math"
	"testing"

	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/lagerana/accept"
	"github.com/decibelcooper/lagerana/config"
	"github.com/decibelcooper/lagerana/event"
	"github.com/decibelcooper/lagerana/kine"
)

// phiEvent returns an e p -> e' p' K+ K- event conserving four-momentum,
// in the lAger slot layout.
func phiEvent() *event.Event {
	const (
		ep    = 5.0
		theta = 0.365
	)
	var (
		k  = kine.Beam(10.6, kine.ElectronMass)
		tg = fmom.NewPxPyPzE(0, 0, 0, kine.ProtonMass)
		pm = math.Sqrt(ep*ep - kine.ElectronMass*kine.ElectronMass)
		kp = fmom.NewPxPyPzE(pm*math.Sin(theta), 0, pm*math.Cos(theta), ep)
		h  = kine.Add(tg, kine.Sub(k, kp))
		s  = kine.ProtonMass / kine.Mass(h)
		rx = h.P4.X*s + 0.05
		ry = h.P4.Y*s + 0.05
		rz = h.P4.Z * s
		rp = fmom.NewPxPyPzE(rx, ry, rz, math.Sqrt(rx*rx+ry*ry+rz*rz+kine.ProtonMass*kine.ProtonMass))
		v  = kine.Sub(h, rp)
		k1 = fmom.NewPxPyPzE(v.P4.X/2+0.1, v.P4.Y/2, v.P4.Z/2, v.P4.T/2)
		k2 = kine.Sub(v, k1)
	)

	return &event.Event{
		Weight: 1,
		Particles: []event.Particle{
			{PID: 11, P4: k},
			{PID: 2212, P4: tg},
			{PID: 22, P4: kine.Sub(k, kp)},
			{PID: 2212, P4: tg},
			{PID: 11, Status: 1, P4: kp},
			{PID: 333, P4: v},
			{PID: 2212, Status: 1, P4: rp},
			{PID: -321, Status: 1, P4: k2},
			{PID: 321, Status: 1, P4: k1},
		},
	}
}

func noSmearing() config.Config {
	cfg := config.Default()
	cfg.Smearing = config.Smearing{}
	return cfg
}

func TestZeroSmearingFullReconstruction(t *testing.T) {
	a, err := New("sig", noSmearing(), nil, nil, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}

	evt := phiEvent()
	rec, ok := a.Process(evt)
	if !ok {
		t.Fatalf("event not processed")
	}
	if got, want := Topology(rec.Topology), Full; got != want {
		t.Fatalf("invalid topology: got=%v, want=%v", got, want)
	}
	if got, want := rec.Accepted, uint32(0xf); got != want {
		t.Fatalf("invalid acceptance mask: got=0x%x, want=0x%x", got, want)
	}

	for _, tc := range []struct {
		name      string
		gen, reco float64
	}{
		{"W", rec.TrueW, rec.RecoW},
		{"Q2", rec.TrueQ2, rec.RecoQ2},
		{"x", rec.TrueX, rec.RecoX},
		{"t", rec.TrueT, rec.RecoT},
	} {
		if math.Abs(tc.reco-tc.gen) > 1e-6 {
			t.Errorf("%s: reco=%v, gen=%v", tc.name, tc.reco, tc.gen)
		}
	}

	if mm := rec.RecoMissingMass; math.Abs(mm) > 1e-5 {
		t.Fatalf("invalid missing mass: got=%v, want=0", mm)
	}
	if got, want := rec.RecoMesonMass, kine.Mass(evt.Particles[5].P4); math.Abs(got-want) > 1e-6 {
		t.Fatalf("invalid meson mass: got=%v, want=%v", got, want)
	}

	if got, want := a.Stats, (Stats{Read: 1, Selected: 1, Passed: 1, Accepted: 1, Full: 1}); got != want {
		t.Fatalf("invalid stats: got=%+v, want=%+v", got, want)
	}
	if got := a.Hists.Get("missing_mass").Entries(); got != 1 {
		t.Fatalf("invalid missing mass entries: got=%d, want=1", got)
	}
	if got := a.Hists.Get("filtered_W_values").Entries(); got != 1 {
		t.Fatalf("invalid reconstructed W entries: got=%d, want=1", got)
	}
}

func TestRecoilMissing(t *testing.T) {
	cfg := noSmearing()
	cfg.MinHadrons = 2

	// only hadrons below 2.2 GeV are seen: the kaons, not the recoil.
	had := accept.New("had", 1, 0, 180, 2, 0, 4.4)
	had.Set(0, 0, 1)

	a, err := New("sig", cfg, nil, had, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}
	rec, ok := a.Process(phiEvent())
	if !ok {
		t.Fatalf("event not processed")
	}
	if got, want := Topology(rec.Topology), RecoilMissing; got != want {
		t.Fatalf("invalid topology: got=%v, want=%v", got, want)
	}
	if got, want := rec.Accepted, uint32(0xd); got != want {
		t.Fatalf("invalid acceptance mask: got=0x%x, want=0x%x", got, want)
	}
	if got, want := rec.RecoMissingMass, kine.ProtonMass; math.Abs(got-want) > 1e-6 {
		t.Fatalf("invalid missing mass: got=%v, want=%v", got, want)
	}
	if got := rec.RecoT; got != 0 {
		t.Fatalf("t reconstructed without recoil: got=%v", got)
	}
	if got := a.Hists.Get("missing_mass_recoil_missing").Entries(); got != 1 {
		t.Fatalf("invalid missing mass entries: got=%d, want=1", got)
	}

	// the default policy needs all hadrons.
	a, err = New("sig", noSmearing(), nil, had, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}
	rec, ok = a.Process(phiEvent())
	if !ok {
		t.Fatalf("event not processed")
	}
	if got, want := Topology(rec.Topology), Missed; got != want {
		t.Fatalf("invalid topology: got=%v, want=%v", got, want)
	}
}

func TestNotDetected(t *testing.T) {
	a, err := New("bk", noSmearing(), nil, accept.Uniform(0), nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}
	rec, ok := a.Process(phiEvent())
	if !ok {
		t.Fatalf("event not processed")
	}
	if got, want := rec.Accepted, uint32(1); got != want {
		t.Fatalf("invalid acceptance mask: got=0x%x, want=0x%x", got, want)
	}
	if rec.RecoW != 0 || rec.RecoQ2 != 0 || rec.RecoMissingMass != 0 {
		t.Fatalf("lost event has reconstructed kinematics: %+v", rec)
	}
	if rec.TrueW == 0 {
		t.Fatalf("lost event has no generated kinematics: %+v", rec)
	}
	if got := a.Stats.Accepted; got != 0 {
		t.Fatalf("invalid accepted count: got=%d, want=0", got)
	}
	if got := a.Hists.Get("W_values").Entries(); got != 1 {
		t.Fatalf("generated W not filled: got=%d, want=1", got)
	}
}

func TestSkippedEvents(t *testing.T) {
	a, err := New("sig", noSmearing(), nil, nil, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}

	short := phiEvent()
	short.Particles = short.Particles[:5]
	if _, ok := a.Process(short); ok {
		t.Fatalf("event with missing particles processed")
	}

	cfg := noSmearing()
	cfg.Cuts.Q2 = config.Interval{Min: 8, Max: 60}
	b, err := New("sig", cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}
	if _, ok := b.Process(phiEvent()); ok {
		t.Fatalf("event outside the kinematic bin processed")
	}

	if got, want := a.Stats, (Stats{Read: 1}); got != want {
		t.Fatalf("invalid stats: got=%+v, want=%+v", got, want)
	}
	if got, want := b.Stats, (Stats{Read: 1, Selected: 1}); got != want {
		t.Fatalf("invalid stats: got=%+v, want=%+v", got, want)
	}
}

func TestSelectByPID(t *testing.T) {
	cfg := noSmearing()
	cfg.Selection.ByPID = true

	a, err := New("bk", cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("could not create analysis: %+v", err)
	}

	// final state only, in a shuffled order.
	full := phiEvent()
	evt := &event.Event{
		Particles: []event.Particle{
			full.Particles[8],
			full.Particles[6],
			full.Particles[4],
			full.Particles[7],
		},
	}
	rec, ok := a.Process(evt)
	if !ok {
		t.Fatalf("event not processed")
	}
	if got, want := Topology(rec.Topology), Full; got != want {
		t.Fatalf("invalid topology: got=%v, want=%v", got, want)
	}
	if mm := rec.RecoMissingMass; math.Abs(mm) > 1e-5 {
		t.Fatalf("invalid missing mass: got=%v, want=0", mm)
	}
}

func TestCutsClosed(t *testing.T) {
	cfg := config.Default()
	cuts := Cuts{W: cfg.Cuts.W, Q2: cfg.Cuts.Q2, X: cfg.Cuts.X}

	for _, tc := range []struct {
		name string
		v    kine.Vars
		want bool
	}{
		{"inside", kine.Vars{W: 2, Q2: 7, X: 0.5}, true},
		{"W-low-edge", kine.Vars{W: 1.0, Q2: 7, X: 0.5}, true},
		{"W-high-edge", kine.Vars{W: 2.4, Q2: 7, X: 0.5}, true},
		{"Q2-low-edge", kine.Vars{W: 2, Q2: 6.0, X: 0.5}, true},
		{"Q2-high-edge", kine.Vars{W: 2, Q2: 60.0, X: 0.5}, true},
		{"x-low-edge", kine.Vars{W: 2, Q2: 7, X: 0.0001}, true},
		{"x-high-edge", kine.Vars{W: 2, Q2: 7, X: 0.9999}, true},
		{"W-below", kine.Vars{W: 0.99, Q2: 7, X: 0.5}, false},
		{"Q2-above", kine.Vars{W: 2, Q2: 60.01, X: 0.5}, false},
		{"x-above", kine.Vars{W: 2, Q2: 7, X: 1}, false},
		{"nan", kine.Vars{W: math.NaN(), Q2: 7, X: 0.5}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := cuts.Pass(tc.v); got != tc.want {
				t.Fatalf("invalid cut decision: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestSmearingReproducible(t *testing.T) {
	cfg := config.Default()
	run := func() Record {
		a, err := New("sig", cfg, nil, nil, nil)
		if err != nil {
			t.Fatalf("could not create analysis: %+v", err)
		}
		rec, ok := a.Process(phiEvent())
		if !ok {
			t.Fatalf("event not processed")
		}
		return rec
	}

	r1 := run()
	r2 := run()
	if r1 != r2 {
		t.Fatalf("same seed gave different records:\n%+v\n%+v", r1, r2)
	}
	if r1.RecoW == r1.TrueW {
		t.Fatalf("smearing did not change the kinematics")
	}
}
