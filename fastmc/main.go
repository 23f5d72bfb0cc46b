// Command fastmc runs the fast-MC reconstruction of a signal sample and an
// optional background sample, writing the histograms and the kinematics
// trees of both to one ROOT file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"
	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"

	"github.com/decibelcooper/lagerana/accept"
	"github.com/decibelcooper/lagerana/config"
	"github.com/decibelcooper/lagerana/event"
	"github.com/decibelcooper/lagerana/reco"
)

var msg = log.New(os.Stdout, "fastmc: ", 0)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <signal-file> [<background-file>]

Input files are flat ROOT event ntuples (.root), LUND (.lund, .txt, .dat),
proio (.proio) or HepMC2 (.hepmc) files.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		cfgName = flag.String("config", "", "YAML analysis configuration (defaults if empty)")
		output  = flag.String("o", "fastmc.root", "output ROOT file")
		sigTree = flag.String("sig-tree", "", "signal tree name or proio tag")
		bkTree  = flag.String("bk-tree", "", "background tree name or proio tag")
		bkPID   = flag.Bool("bk-pid", true, "select background particles by PDG code")
		plots   = flag.String("plots", "", "directory for the figures (none if empty)")
		prof    = flag.String("prof", "", "enable profiling (cpu or mem)")
	)
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 || flag.NArg() > 2 {
		printUsage()
		msg.Fatalf("invalid arguments")
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	default:
		msg.Fatalf("invalid profile %q", *prof)
	}

	cfg := config.Default()
	if *cfgName != "" {
		var err error
		cfg, err = config.Load(*cfgName)
		if err != nil {
			msg.Fatalf("%+v", err)
		}
	}

	samples := []sample{{
		prefix: "sig",
		fname:  flag.Arg(0),
		tree:   *sigTree,
		cfg:    cfg,
	}}
	if flag.NArg() == 2 {
		bk := cfg
		bk.Selection.ByPID = *bkPID
		bk.Seed = cfg.Seed + 1
		samples = append(samples, sample{
			prefix: "bk",
			fname:  flag.Arg(1),
			tree:   *bkTree,
			cfg:    bk,
		})
	}

	err := process(context.Background(), *output, cfg.Acceptance, samples, *plots)
	if err != nil {
		msg.Fatalf("%+v", err)
	}
}

type sample struct {
	prefix string
	fname  string
	tree   string
	cfg    config.Config
}

func process(ctx context.Context, oname string, acc config.Acceptance, samples []sample, plots string) error {
	lepton, hadron, err := loadAcceptance(acc)
	if err != nil {
		return err
	}

	out, err := reco.Create(oname)
	if err != nil {
		return err
	}
	defer out.Close()

	anas := make([]*reco.Analysis, len(samples))
	grp, ctx := errgroup.WithContext(ctx)
	for i := range samples {
		i := i
		grp.Go(func() error {
			a, err := run(ctx, out, samples[i], lepton, hadron)
			anas[i] = a
			return err
		})
	}
	err = grp.Wait()
	if err != nil {
		return err
	}

	for _, a := range anas {
		a.Summary()
		err = out.WriteHists(a.Hists)
		if err != nil {
			return err
		}
		count, sum, sum2 := a.Res.H2Ds()
		for _, h := range []struct {
			name string
			h    *hbook.H2D
		}{
			{"Q2_relres_count", count},
			{"Q2_relres_sum", sum},
			{"Q2_relres_sum2", sum2},
		} {
			err = out.WriteH2D(a.Hists.FullName(h.name), h.h)
			if err != nil {
				return err
			}
		}
	}

	if plots != "" {
		err = makePlots(plots, anas)
		if err != nil {
			return err
		}
	}

	msg.Printf("output written to %s", oname)
	return out.Close()
}

func loadAcceptance(acc config.Acceptance) (lepton, hadron *accept.Table, err error) {
	if acc.File == "" {
		msg.Printf("no acceptance file: perfect detector")
		return nil, nil, nil
	}
	tables, err := accept.Open(acc.File, acc.Lepton, acc.Hadron)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range tables {
		t.Scale(acc.Peak)
	}
	return tables[0], tables[1], nil
}

func run(ctx context.Context, out *reco.Output, s sample, lepton, hadron *accept.Table) (*reco.Analysis, error) {
	src, err := event.Open(s.fname, s.tree)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	a, err := reco.New(s.prefix, s.cfg, lepton, hadron, msg)
	if err != nil {
		return nil, err
	}

	tree, err := out.NewTree(reco.TreeName(s.prefix))
	if err != nil {
		return nil, err
	}

	msg.Printf("processing %s sample from %s", s.prefix, s.fname)
	err = a.Run(ctx, src, tree)
	if err != nil {
		return a, err
	}

	err = tree.Close()
	if err != nil {
		return a, err
	}
	return a, nil
}
