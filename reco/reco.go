// Package reco runs the fast-MC reconstruction of exclusive vector meson
// electroproduction events: generated kinematics, acceptance, smearing,
// reconstructed kinematics and missing mass, accumulated into histograms
// and a per-event kinematics tree.
package reco // import "github.com/decibelcooper/lagerana/reco"

import (
	"context"
	"fmt"
	"log"
	"math"

	"go-hep.org/x/hep/fmom"
	"golang.org/x/exp/rand"

	"github.com/decibelcooper/lagerana/accept"
	"github.com/decibelcooper/lagerana/config"
	"github.com/decibelcooper/lagerana/event"
	"github.com/decibelcooper/lagerana/kine"
	"github.com/decibelcooper/lagerana/smear"
)

// Topology classifies the reconstructed final state.
type Topology int32

const (
	Missed         Topology = iota // not reconstructed
	Full                           // all particles detected
	RecoilMissing                  // recoil lost, decay products detected
	ProductMissing                 // recoil detected, a decay product lost
	Partial                        // recoil and a decay product lost
)

func (t Topology) String() string {
	switch t {
	case Missed:
		return "missed"
	case Full:
		return "full"
	case RecoilMissing:
		return "recoil-missing"
	case ProductMissing:
		return "product-missing"
	case Partial:
		return "partial"
	}
	return fmt.Sprintf("Topology(%d)", int32(t))
}

// Cuts selects a kinematic bin with closed intervals.
type Cuts struct {
	W, Q2, X config.Interval
}

// Pass reports whether the kinematics lie in the bin.
func (c Cuts) Pass(v kine.Vars) bool {
	return c.W.Contains(v.W) && c.Q2.Contains(v.Q2) && c.X.Contains(v.X)
}

// Result is the reconstruction of one event.
type Result struct {
	Gen  kine.Vars
	GenT float64 // -t from the generated recoil

	Accepted []bool // lepton, recoil, decay products
	Topology Topology

	Reco        kine.Vars
	RecoT       float64 // -t from the smeared recoil, NaN if the recoil is lost
	MissingMass float64
	MesonMass   float64 // NaN unless all decay products are detected
	TrentoPhi   float64 // degrees, kine.TrentoPhiUndefined unless defined

	Smeared []fmom.PxPyPzE // zero for lost particles
}

// Record returns the kinematics tree row of the result. Quantities that
// were not reconstructed are zero.
func (res *Result) Record() Record {
	rec := Record{
		TrueW:    res.Gen.W,
		TrueQ2:   res.Gen.Q2,
		TrueX:    res.Gen.X,
		TrueT:    res.GenT,
		Topology: int32(res.Topology),
	}
	for i, ok := range res.Accepted {
		if ok {
			rec.Accepted |= 1 << uint(i)
		}
	}
	if res.Topology == Missed {
		return rec
	}
	rec.RecoW = res.Reco.W
	rec.RecoQ2 = res.Reco.Q2
	rec.RecoX = res.Reco.X
	rec.RecoT = zeroNaN(res.RecoT)
	rec.RecoMesonMass = zeroNaN(res.MesonMass)
	rec.RecoMissingMass = res.MissingMass
	return rec
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Stats counts the events at each stage of the analysis.
type Stats struct {
	Read     int64 // events read
	Selected int64 // events with all final state particles
	Passed   int64 // events in the kinematic bin
	Accepted int64 // events reconstructed
	Full     int64 // events with all particles detected
}

// Analysis reconstructs the events of one sample.
// An Analysis is not safe for concurrent use.
type Analysis struct {
	Prefix string
	Hists  *Hists
	Res    *ResGrid // relative Q² resolution vs (x, Q²)
	Stats  Stats

	msg      *log.Logger
	beams    kine.Beams
	cuts     Cuts
	sel      *event.Selector
	lepton   *accept.Sampler
	hadron   *accept.Sampler
	smearer  *smear.Smearer
	nprods   int
	required int
	meson    bool

	roles []string
	gen   []fmom.PxPyPzE
}

// New creates the analysis of a sample. Histograms are named
// <prefix>_<name>. Nil tables mean a perfect detector. msg may be nil.
func New(prefix string, cfg config.Config, lepton, hadron *accept.Table, msg *log.Logger) (*Analysis, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("reco: invalid configuration: %w", err)
	}

	sel := cfg.Selection
	roles := cfg.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	selector, err := NewSelector(cfg)
	if err != nil {
		return nil, err
	}

	if lepton == nil {
		lepton = accept.Uniform(1)
	}
	if hadron == nil {
		hadron = accept.Uniform(1)
	}

	src := rand.NewSource(cfg.Seed)
	sm := smear.New(cfg.Smearing.Momentum, cfg.Smearing.Theta, cfg.Smearing.Phi, src)
	sm.KeepEnergy = cfg.Smearing.KeepEnergy

	a := &Analysis{
		Prefix: prefix,
		Hists:  NewHists(prefix),
		Res:    NewResGrid(10, cfg.Cuts.X.Min, cfg.Cuts.X.Max, 10, cfg.Cuts.Q2.Min, cfg.Cuts.Q2.Max),
		msg:    msg,
		beams: kine.Beams{
			Lepton: kine.Beam(cfg.Beams.Lepton.Pz, cfg.Beams.Lepton.Mass),
			Target: kine.Beam(cfg.Beams.Target.Pz, cfg.Beams.Target.Mass),
		},
		cuts: Cuts{
			W:  cfg.Cuts.W,
			Q2: cfg.Cuts.Q2,
			X:  cfg.Cuts.X,
		},
		sel:      selector,
		lepton:   accept.NewSampler(lepton, src),
		hadron:   accept.NewSampler(hadron, src),
		smearer:  sm,
		nprods:   len(sel.Products),
		required: cfg.RequiredHadrons(),
		meson:    sel.Meson != nil,
		roles:    names,
		gen:      make([]fmom.PxPyPzE, len(roles)),
	}
	a.book(cfg.Hists)
	return a, nil
}

func (a *Analysis) book(cfg config.Hists) {
	hs := a.Hists
	n := cfg.Bins
	for _, role := range a.roles[:2+a.nprods] {
		hs.Book(role+"_momenta", role+" momentum", n, 0, cfg.PMax)
		hs.Book(role+"_theta", role+" theta", n, 0, cfg.ThetaMax)
		hs.Book(role+"_acc_theta", "accepted "+role+" theta", n, 0, cfg.ThetaMax)
	}
	hs.Book("W_values", "W", n, 0, cfg.WMax)
	hs.Book("Q2_values", "Q²", n, 0, cfg.Q2Max)
	hs.Book("x_values", "x", n, 0, 1)
	hs.Book("t_values", "-t", n, 0, cfg.TMax)
	hs.Book("trento_phi_values", "Trento φ", 360, 0, 360)
	if a.meson {
		hs.Book("meson_mass_values", "meson mass", n, 0, 3)
	}

	hs.Book("filtered_W_values", "Reconstructed W", n, 0, cfg.WMax)
	hs.Book("filtered_Q2_values", "Reconstructed Q²", n, 0, cfg.Q2Max)
	hs.Book("filtered_x_values", "Reconstructed x", n, 0, 1)
	hs.Book("filtered_t_values", "Reconstructed -t", n, 0, cfg.TMax)
	hs.Book("filtered_trento_phi_values", "Reconstructed Trento φ", 360, 0, 360)

	hs.Book("Q2_resolutions", "Q² Resolutions", n, -5, 5)
	hs.Book("W_resolutions", "W Resolutions", n, -2, 2)
	hs.Book("x_resolutions", "x Resolutions", n, -1, 1)
	hs.Book("y_resolutions", "y Resolutions", n, -1, 1)
	hs.Book("t_resolutions", "t Resolutions", n, -5, 5)

	hs.Book("missing_mass", "Missing Mass", n, -1, 2)
	hs.Book("missing_mass_recoil_missing", "Missing Mass, recoil missing", n, -1, 2)
	hs.Book("missing_mass_product_missing", "Missing Mass, decay product missing", n, -1, 2)
	hs.Book("meson_mass", "Decay products invariant mass", n, 0, 3)
}

// NewSelector returns the particle selector of the configured roles.
// Selection by PDG code only considers final state particles.
func NewSelector(cfg config.Config) (*event.Selector, error) {
	roles := cfg.Roles()
	eroles := make([]event.Role, len(roles))
	for i, r := range roles {
		eroles[i] = event.Role{Name: r.Name, Slot: r.Slot, PID: r.PID}
	}
	sel, err := event.NewSelector(cfg.Selection.ByPID, eroles...)
	if err != nil {
		return nil, fmt.Errorf("reco: could not create particle selector: %w", err)
	}
	sel.FinalState = true
	return sel, nil
}

// Roles returns the names of the selected particles: lepton, recoil, decay
// products and the optional meson.
func (a *Analysis) Roles() []string { return a.roles }

// Beams returns the initial state of the analysis.
func (a *Analysis) Beams() kine.Beams { return a.beams }

// Reconstruct runs acceptance and smearing on the generated particles
// (lepton, recoil, decay products, in order) and computes the
// reconstructed kinematics. It reports false for events outside the
// kinematic bin.
func (a *Analysis) Reconstruct(gen []fmom.PxPyPzE) (Result, bool) {
	nhad := 1 + a.nprods
	res := Result{
		Gen:         kine.DIS(a.beams, gen[0]),
		GenT:        -kine.T(a.beams.Target, gen[1]),
		RecoT:       math.NaN(),
		MesonMass:   math.NaN(),
		MissingMass: math.NaN(),
		TrentoPhi:   kine.TrentoPhiUndefined,
	}
	if !a.cuts.Pass(res.Gen) {
		return res, false
	}

	res.Accepted = make([]bool, 1+nhad)
	res.Accepted[0] = a.lepton.AcceptP4(gen[0])
	seen := 0
	for i := 1; i <= nhad; i++ {
		res.Accepted[i] = a.hadron.AcceptP4(gen[i])
		if res.Accepted[i] {
			seen++
		}
	}
	if !res.Accepted[0] || seen < a.required {
		return res, true
	}

	res.Smeared = make([]fmom.PxPyPzE, 1+nhad)
	detected := make([]fmom.PxPyPzE, 0, 1+nhad)
	for i, ok := range res.Accepted {
		if !ok {
			continue
		}
		res.Smeared[i] = a.smearer.Smear(gen[i])
		detected = append(detected, res.Smeared[i])
	}

	res.Reco = kine.DIS(a.beams, res.Smeared[0])
	if res.Accepted[1] {
		res.RecoT = -kine.T(a.beams.Target, res.Smeared[1])
	}
	res.MissingMass = kine.MissingMass(a.beams, detected...)

	products := true
	for _, ok := range res.Accepted[2:] {
		products = products && ok
	}
	switch {
	case res.Accepted[1] && products:
		res.Topology = Full
	case products:
		res.Topology = RecoilMissing
	case res.Accepted[1]:
		res.Topology = ProductMissing
	default:
		res.Topology = Partial
	}

	if products {
		meson := kine.Add(res.Smeared[2:]...)
		res.MesonMass = kine.Mass(meson)
		q := kine.Sub(a.beams.Lepton, res.Smeared[0])
		res.TrentoPhi = kine.TrentoPhi(a.beams.Lepton, res.Smeared[0], q, meson)
	}
	return res, true
}

// Process analyzes one event, filling the histograms. It reports false
// when the event is not written to the kinematics tree: a final state
// particle is missing or the event lies outside the kinematic bin.
func (a *Analysis) Process(evt *event.Event) (Record, bool) {
	a.Stats.Read++
	if a.Stats.Read%100000 == 1 {
		a.logf("%s: processing event %d", a.Prefix, evt.Index)
	}

	if !a.sel.Select(evt, a.gen) {
		return Record{}, false
	}
	a.Stats.Selected++

	res, ok := a.Reconstruct(a.gen[:2+a.nprods])
	if !ok {
		return Record{}, false
	}
	a.Stats.Passed++
	a.fill(&res)
	return res.Record(), true
}

func (a *Analysis) fill(res *Result) {
	hs := a.Hists
	for i, role := range a.roles[:2+a.nprods] {
		p := a.gen[i]
		theta := kine.Theta(p)
		hs.Fill(role+"_momenta", p.P())
		hs.Fill(role+"_theta", theta)
		if res.Accepted[i] {
			hs.Fill(role+"_acc_theta", theta)
		}
	}
	hs.Fill("W_values", res.Gen.W)
	hs.Fill("Q2_values", res.Gen.Q2)
	hs.Fill("x_values", res.Gen.X)
	hs.Fill("t_values", res.GenT)

	gmeson := kine.Add(a.gen[2 : 2+a.nprods]...)
	gphi := kine.TrentoPhi(a.beams.Lepton, a.gen[0], kine.Sub(a.beams.Lepton, a.gen[0]), gmeson)
	if gphi != kine.TrentoPhiUndefined {
		hs.Fill("trento_phi_values", gphi)
	}
	if a.meson {
		hs.Fill("meson_mass_values", kine.Mass(a.gen[len(a.gen)-1]))
	}

	if res.Topology == Missed {
		return
	}
	a.Stats.Accepted++

	hs.Fill("filtered_W_values", res.Reco.W)
	hs.Fill("filtered_Q2_values", res.Reco.Q2)
	hs.Fill("filtered_x_values", res.Reco.X)
	hs.Fill("filtered_t_values", res.RecoT)
	if res.TrentoPhi != kine.TrentoPhiUndefined {
		hs.Fill("filtered_trento_phi_values", res.TrentoPhi)
	}

	hs.Fill("Q2_resolutions", res.Reco.Q2-res.Gen.Q2)
	hs.Fill("W_resolutions", res.Reco.W-res.Gen.W)
	hs.Fill("x_resolutions", res.Reco.X-res.Gen.X)
	hs.Fill("y_resolutions", res.Reco.Y-res.Gen.Y)
	hs.Fill("t_resolutions", res.RecoT-res.GenT)
	a.Res.Fill(res.Gen.X, res.Gen.Q2, (res.Reco.Q2-res.Gen.Q2)/res.Gen.Q2)

	switch res.Topology {
	case Full:
		a.Stats.Full++
		hs.Fill("missing_mass", res.MissingMass)
	case RecoilMissing:
		hs.Fill("missing_mass_recoil_missing", res.MissingMass)
	case ProductMissing:
		hs.Fill("missing_mass_product_missing", res.MissingMass)
	}
	hs.Fill("meson_mass", res.MesonMass)
}

// Run processes all the events of src, writing the kinematics of the
// events in the bin to tree when it is not nil.
func (a *Analysis) Run(ctx context.Context, src event.Source, tree *Tree) error {
	err := src.Scan(ctx, func(evt *event.Event) error {
		rec, ok := a.Process(evt)
		if !ok || tree == nil {
			return nil
		}
		return tree.Write(rec)
	})
	if err != nil {
		return fmt.Errorf("reco: could not process %s events: %w", a.Prefix, err)
	}
	return nil
}

// Summary logs the event counters.
func (a *Analysis) Summary() {
	s := a.Stats
	a.logf("%s: events read:                %d", a.Prefix, s.Read)
	a.logf("%s: events with final state:    %d", a.Prefix, s.Selected)
	a.logf("%s: events in kinematic bin:    %d", a.Prefix, s.Passed)
	a.logf("%s: events reconstructed:       %d", a.Prefix, s.Accepted)
	a.logf("%s: events fully reconstructed: %d", a.Prefix, s.Full)
	if s.Passed > 0 {
		a.logf("%s: acceptance:                 %.4f", a.Prefix, float64(s.Accepted)/float64(s.Passed))
	}
}

func (a *Analysis) logf(format string, args ...interface{}) {
	if a.msg == nil {
		return
	}
	a.msg.Printf(format, args...)
}
