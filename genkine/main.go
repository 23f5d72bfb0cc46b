// Command genkine plots the generator-level distributions of an exclusive
// sample: momentum and polar angle (or pseudorapidity) of every selected
// particle, and the W, Q², x and -t distributions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/config"
	"github.com/decibelcooper/lagerana/event"
	"github.com/decibelcooper/lagerana/kine"
	"github.com/decibelcooper/lagerana/reco"
)

var msg = log.New(os.Stdout, "genkine: ", 0)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <input-files>...

ex:
 $> genkine -config eic.yaml -eta -o eic_gen.png lager-eic.lund

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		cfgName = flag.String("config", "", "YAML analysis configuration (defaults if empty)")
		tree    = flag.String("tree", "", "input tree name or proio tag")
		useEta  = flag.Bool("eta", false, "plot pseudorapidity instead of polar angle")
		noCuts  = flag.Bool("nocuts", false, "disable the kinematic cuts")
		output  = flag.String("o", "genkine.png", "output figure")
		root    = flag.String("root", "", "also write the histograms to this ROOT file")
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

	gk, err := newGenKine(cfg, *useEta, !*noCuts)
	if err != nil {
		msg.Fatalf("%+v", err)
	}

	for _, fname := range flag.Args() {
		err = gk.process(context.Background(), fname, *tree)
		if err != nil {
			msg.Fatalf("%+v", err)
		}
	}
	msg.Printf("events: read=%d, selected=%d, passed=%d", gk.read, gk.selected, gk.passed)

	err = gk.plot(*output)
	if err != nil {
		msg.Fatalf("%+v", err)
	}

	if *root != "" {
		out, err := reco.Create(*root)
		if err != nil {
			msg.Fatalf("%+v", err)
		}
		err = out.WriteHists(gk.hists)
		if err != nil {
			msg.Fatalf("%+v", err)
		}
		err = out.Close()
		if err != nil {
			msg.Fatalf("%+v", err)
		}
	}
}

type genKine struct {
	beams  kine.Beams
	cuts   *reco.Cuts
	sel    *event.Selector
	roles  []string
	useEta bool
	hists  *reco.Hists

	parts []fmom.PxPyPzE

	read, selected, passed int64
}

func newGenKine(cfg config.Config, useEta, withCuts bool) (*genKine, error) {
	sel, err := reco.NewSelector(cfg)
	if err != nil {
		return nil, err
	}
	var roles []string
	for _, r := range cfg.Roles() {
		roles = append(roles, r.Name)
	}

	gk := &genKine{
		beams: kine.Beams{
			Lepton: kine.Beam(cfg.Beams.Lepton.Pz, cfg.Beams.Lepton.Mass),
			Target: kine.Beam(cfg.Beams.Target.Pz, cfg.Beams.Target.Mass),
		},
		sel:    sel,
		roles:  roles,
		useEta: useEta,
		hists:  reco.NewHists("gen"),
		parts:  make([]fmom.PxPyPzE, len(roles)),
	}
	if withCuts {
		gk.cuts = &reco.Cuts{W: cfg.Cuts.W, Q2: cfg.Cuts.Q2, X: cfg.Cuts.X}
	}

	h := cfg.Hists
	for _, role := range roles {
		gk.hists.Book(role+"_momenta", role+" momentum", 200, 0, h.PMax)
		if useEta {
			gk.hists.Book(role+"_eta", role+" eta", 200, -2.5, 5)
		} else {
			gk.hists.Book(role+"_theta", role+" theta", 200, 0, 180)
		}
	}
	gk.hists.Book("W_values", "W", 100, 0, h.WMax)
	gk.hists.Book("Q2_values", "Q²", 100, 0, h.Q2Max)
	gk.hists.Book("x_values", "x", 100, 0, 1)
	gk.hists.Book("t_values", "-t", 100, 0, h.TMax)
	return gk, nil
}

func (gk *genKine) process(ctx context.Context, fname, tree string) error {
	src, err := event.Open(fname, tree)
	if err != nil {
		return err
	}
	defer src.Close()

	err = src.Scan(ctx, gk.fill)
	if err != nil {
		return fmt.Errorf("could not process %q: %w", fname, err)
	}
	return nil
}

func (gk *genKine) fill(evt *event.Event) error {
	gk.read++
	if !gk.sel.Select(evt, gk.parts) {
		return nil
	}
	gk.selected++

	vars := kine.DIS(gk.beams, gk.parts[0])
	if gk.cuts != nil && !gk.cuts.Pass(vars) {
		return nil
	}
	gk.passed++

	for i, role := range gk.roles {
		p := gk.parts[i]
		gk.hists.Fill(role+"_momenta", p.P())
		if gk.useEta {
			gk.hists.Fill(role+"_eta", kine.Eta(p))
		} else {
			gk.hists.Fill(role+"_theta", kine.Theta(p))
		}
	}
	gk.hists.Fill("W_values", vars.W)
	gk.hists.Fill("Q2_values", vars.Q2)
	gk.hists.Fill("x_values", vars.X)
	gk.hists.Fill("t_values", -kine.T(gk.beams.Target, gk.parts[1]))
	return nil
}

func (gk *genKine) plot(fname string) error {
	angle, alabel := "_theta", "θ (deg)"
	if gk.useEta {
		angle, alabel = "_eta", "η"
	}

	const rows, cols = 3, 2
	tp := lagerana.NewTiledPlot(rows, cols)

	p := tp.Plot(0, 0)
	lagerana.Style(p, "Momentum", "p (GeV)", "")
	for i, role := range gk.roles {
		lagerana.AddH1D(p, gk.hists.Get(role+"_momenta"), i, role)
	}

	p = tp.Plot(0, 1)
	lagerana.Style(p, "Angle", alabel, "")
	for i, role := range gk.roles {
		lagerana.AddH1D(p, gk.hists.Get(role+angle), i, role)
	}

	for k, v := range []struct {
		name, title, label string
	}{
		{"W_values", "W", "W (GeV)"},
		{"Q2_values", "Q²", "Q² (GeV²)"},
		{"x_values", "x", "x"},
		{"t_values", "-t", "-t (GeV²)"},
	} {
		p = tp.Plot(1+k/cols, k%cols)
		lagerana.Style(p, v.title, v.label, "")
		lagerana.AddH1D(p, gk.hists.Get(v.name), 0, "")
	}

	return lagerana.Save(tp, cols*lagerana.Width, rows*lagerana.Height, fname)
}
