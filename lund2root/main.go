// Command lund2root converts generated events to ROOT. By default it writes
// a tree of the derived kinematics of the exclusive final state; with -flat
// it copies the events to the flat ntuple read by the other commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/decibelcooper/lagerana/config"
	"github.com/decibelcooper/lagerana/event"
	"github.com/decibelcooper/lagerana/kine"
	"github.com/decibelcooper/lagerana/reco"
)

var msg = log.New(os.Stdout, "lund2root: ", 0)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <input-files>...

ex:
 $> lund2root -o events.root CLAS-ep-phi-10GeV.txt
 $> lund2root -flat -o flat.root CLAS-ep-phi-10GeV.txt

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		cfgName = flag.String("config", "", "YAML analysis configuration (defaults if empty)")
		output  = flag.String("o", "events.root", "output ROOT file")
		tree    = flag.String("t", "", "output tree name (T, or "+event.DefaultTree+" with -flat)")
		flat    = flag.Bool("flat", false, "write the flat event ntuple instead of the kinematics")
		byPID   = flag.Bool("pid", true, "select particles by PDG code")
	)
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		msg.Fatalf("invalid arguments")
	}

	cfg := config.Default()
	if *cfgName != "" {
		var err error
		cfg, err = config.Load(*cfgName)
		if err != nil {
			msg.Fatalf("%+v", err)
		}
	}
	cfg.Selection.ByPID = *byPID

	err := process(context.Background(), *output, *tree, *flat, cfg, flag.Args())
	if err != nil {
		msg.Fatalf("%+v", err)
	}
}

type writer interface {
	fill(evt *event.Event) error
	Close() error
}

func process(ctx context.Context, oname, tname string, flat bool, cfg config.Config, fnames []string) error {
	f, err := groot.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer f.Close()

	var w writer
	switch {
	case flat:
		if tname == "" {
			tname = event.DefaultTree
		}
		w, err = newFlatTree(f, tname)
	default:
		if tname == "" {
			tname = "T"
		}
		w, err = newKineTree(f, tname, cfg)
	}
	if err != nil {
		return err
	}

	for _, fname := range fnames {
		err = convert(ctx, w, fname)
		if err != nil {
			return err
		}
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close tree: %w", err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}
	return nil
}

func convert(ctx context.Context, w writer, fname string) error {
	src, err := event.Open(fname, "")
	if err != nil {
		return err
	}
	defer src.Close()

	err = src.Scan(ctx, w.fill)
	if err != nil {
		return fmt.Errorf("could not convert %q: %w", fname, err)
	}
	return nil
}

type flatTree struct {
	*event.FlatWriter
	n int64
}

func newFlatTree(dir riofs.Directory, name string) (*flatTree, error) {
	w, err := event.NewFlatWriter(dir, name)
	if err != nil {
		return nil, err
	}
	return &flatTree{FlatWriter: w}, nil
}

func (ft *flatTree) fill(evt *event.Event) error {
	ft.n++
	return ft.Write(evt)
}

func (ft *flatTree) Close() error {
	msg.Printf("events written: %d", ft.n)
	return ft.FlatWriter.Close()
}

// kineTree holds one row of derived kinematics per event with all the
// final state particles. Angles are in degrees and t is signed.
type kineTree struct {
	lepton config.Beam
	beams  kine.Beams
	sel    *event.Selector
	roles  []string
	parts  []fmom.PxPyPzE

	names []string
	vals  []float64
	w     rtree.Writer

	read, filled int64
}

func newKineTree(dir riofs.Directory, name string, cfg config.Config) (*kineTree, error) {
	cfg.Selection.Meson = nil
	sel, err := reco.NewSelector(cfg)
	if err != nil {
		return nil, err
	}

	kt := &kineTree{
		lepton: cfg.Beams.Lepton,
		beams: kine.Beams{
			Lepton: kine.Beam(cfg.Beams.Lepton.Pz, cfg.Beams.Lepton.Mass),
			Target: kine.Beam(cfg.Beams.Target.Pz, cfg.Beams.Target.Mass),
		},
		sel: sel,
	}
	for _, r := range cfg.Roles() {
		kt.roles = append(kt.roles, r.Name)
	}
	kt.parts = make([]fmom.PxPyPzE, len(kt.roles))
	kt.book()

	if dir == nil {
		return kt, nil
	}
	wvars := make([]rtree.WriteVar, len(kt.names))
	for i, n := range kt.names {
		wvars[i] = rtree.WriteVar{Name: n, Value: &kt.vals[i]}
	}
	kt.w, err = rtree.NewWriter(dir, name, wvars, rtree.WithTitle("generated exclusive kinematics"))
	if err != nil {
		return nil, fmt.Errorf("could not create tree %q: %w", name, err)
	}
	return kt, nil
}

func (kt *kineTree) book() {
	kt.names = append(kt.names, "beamE")
	for _, role := range kt.roles {
		for _, v := range []string{"px", "py", "pz", "E", "p", "theta_deg", "phi_deg"} {
			kt.names = append(kt.names, role+"_"+v)
		}
	}
	kt.names = append(kt.names, "mm2_lepton_recoil", "mm2_all")
	for _, role := range kt.roles[1:] {
		kt.names = append(kt.names, "mm2_no_"+role)
	}
	kt.names = append(kt.names,
		"E_miss", "PT_miss",
		"Q2", "xB", "t", "W", "meson_mass",
		"phi_trento_deg",
	)
	kt.vals = make([]float64, len(kt.names))
}

// compute fills the row of an event. It reports false when a final state
// particle is missing.
func (kt *kineTree) compute(evt *event.Event) bool {
	if !kt.sel.Select(evt, kt.parts) {
		return false
	}

	beams := kt.beams
	if evt.BeamE > 0 {
		m := kt.lepton.Mass
		beams.Lepton = kine.Beam(math.Sqrt(math.Max(0, evt.BeamE*evt.BeamE-m*m)), m)
	}

	i := 0
	put := func(v float64) {
		kt.vals[i] = v
		i++
	}

	put(beams.Lepton.E())
	for _, p := range kt.parts {
		put(p.Px())
		put(p.Py())
		put(p.Pz())
		put(p.E())
		put(p.P())
		put(kine.Theta(p))
		put(kine.Phi(p) * 180 / math.Pi)
	}

	var (
		lepton = kt.parts[0]
		recoil = kt.parts[1]
		prods  = kt.parts[2:]
		meson  = kine.Add(prods...)
		miss   = kine.Missing(beams, kt.parts...)
	)
	mm2 := func(ps ...fmom.PxPyPzE) float64 {
		m := kine.Missing(beams, ps...)
		return kine.Dot(m, m)
	}
	put(mm2(lepton, recoil))
	put(kine.Dot(miss, miss))
	others := make([]fmom.PxPyPzE, 0, len(kt.parts)-1)
	for j := 1; j < len(kt.parts); j++ {
		others = others[:0]
		for k, p := range kt.parts {
			if k != j {
				others = append(others, p)
			}
		}
		put(mm2(others...))
	}

	put(miss.E())
	put(math.Hypot(miss.Px(), miss.Py()))

	vars := kine.DIS(beams, lepton)
	q := kine.Sub(beams.Lepton, lepton)
	put(vars.Q2)
	put(vars.X)
	put(kine.T(beams.Target, recoil))
	put(vars.W)
	put(kine.Mass(meson))
	put(kine.TrentoPhi(beams.Lepton, lepton, q, meson))
	return true
}

func (kt *kineTree) fill(evt *event.Event) error {
	kt.read++
	if !kt.compute(evt) {
		return nil
	}
	kt.filled++
	_, err := kt.w.Write()
	if err != nil {
		return fmt.Errorf("could not write event %d: %w", evt.Index, err)
	}
	return nil
}

func (kt *kineTree) Close() error {
	msg.Printf("events read: %d, entries filled: %d", kt.read, kt.filled)
	return kt.w.Close()
}

// value returns the named value of the last computed row.
func (kt *kineTree) value(name string) float64 {
	for i, n := range kt.names {
		if n == name {
			return kt.vals[i]
		}
	}
	return math.NaN()
}
