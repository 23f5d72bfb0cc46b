// Command invmass plots the invariant mass spectrum of particle pairs, by
// default K⁺K⁻, from the final state particles of one or more event files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/event"
	"github.com/decibelcooper/lagerana/kine"
)

var msg = log.New(os.Stdout, "invmass: ", 0)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <input-files>...

Each input file is drawn as one curve.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		title  = flag.String("title", "", "plot title")
		output = flag.String("o", "out.png", "output file")
		tree   = flag.String("tree", "", "input tree name or proio tag")
		pid1   = flag.Int("pid1", 321, "PDG code of the first particle")
		pid2   = flag.Int("pid2", -321, "PDG code of the second particle")
		nbins  = flag.Int("nbins", 50, "number of bins")
		lo     = flag.Float64("min", 0.98, "lower edge of the mass range (GeV)")
		hi     = flag.Float64("max", 1.1, "upper edge of the mass range (GeV)")
	)
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		msg.Fatalf("invalid arguments")
	}
	if *nbins <= 0 || *hi <= *lo {
		msg.Fatalf("invalid binning: nbins=%d, range=[%v, %v]", *nbins, *lo, *hi)
	}

	p := lagerana.NewPlot(*title, "Mass (GeV)", "")

	for i, fname := range flag.Args() {
		pm := pairMass{
			pid1: int32(*pid1),
			pid2: int32(*pid2),
			h:    hbook.NewH1D(*nbins, *lo, *hi),
		}
		err := pm.process(context.Background(), fname, *tree)
		if err != nil {
			msg.Fatalf("%+v", err)
		}
		msg.Printf("%s: %d pairs", fname, pm.h.Entries())

		h := lagerana.AddH1D(p, pm.h, i, "")
		if flag.NArg() == 1 {
			h.Infos.Style = hplot.HInfoSummary
		}
	}

	err := lagerana.Save(p, lagerana.Width, lagerana.Height, *output)
	if err != nil {
		msg.Fatalf("%+v", err)
	}
}

// pairMass histograms the invariant mass of the final state pairs made of
// one particle of each species. Pairs of a single species are counted once.
type pairMass struct {
	pid1, pid2 int32
	h          *hbook.H1D
}

func (pm *pairMass) process(ctx context.Context, fname, tree string) error {
	src, err := event.Open(fname, tree)
	if err != nil {
		return err
	}
	defer src.Close()

	err = src.Scan(ctx, func(evt *event.Event) error {
		pm.fill(evt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not process %q: %w", fname, err)
	}
	return nil
}

func (pm *pairMass) fill(evt *event.Event) {
	xmin, xmax := pm.h.XMin(), pm.h.XMax()
	parts := evt.Particles
	for i := range parts {
		if parts[i].Status != 1 || parts[i].PID != pm.pid1 {
			continue
		}
		j := 0
		if pm.pid1 == pm.pid2 {
			j = i + 1
		}
		for ; j < len(parts); j++ {
			if j == i || parts[j].Status != 1 || parts[j].PID != pm.pid2 {
				continue
			}

			invMass := kine.Mass(kine.Add(parts[i].P4, parts[j].P4))
			if invMass > xmin && invMass < xmax {
				pm.h.Fill(invMass, 1)
			}
		}
	}
}
