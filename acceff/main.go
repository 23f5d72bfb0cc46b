// Command acceff plots the acceptance efficiency versus generated polar
// angle of each selected particle, from fastmc output files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/plot/plotutil"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/config"
	"github.com/decibelcooper/lagerana/reco"
)

var (
	cfgName = flag.String("config", "", "YAML analysis configuration used by fastmc (defaults if empty)")
	sample  = flag.String("sample", "sig", "sample prefix")
	title   = flag.String("title", "", "plot title")
	prefix  = flag.String("prefix", "out", "output file prefix")

	msg = log.New(os.Stdout, "acceff: ", 0)
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <fastmc-output-files>...

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
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

	p := lagerana.NewPlot(*title, "θ (deg)", "efficiency")

	i := 0
	for _, fname := range flag.Args() {
		for _, role := range detected(cfg) {
			eff, err := efficiency(fname, *sample, role)
			if err != nil {
				msg.Fatalf("%+v", err)
			}
			legend := role
			if flag.NArg() > 1 {
				legend = fname + " " + role
			}
			err = lagerana.AddErrorPoints(p, eff, i, legend)
			if err != nil {
				msg.Fatalf("%+v", err)
			}
			i++
		}
	}

	err := lagerana.Save(p, lagerana.Width, lagerana.Height, *prefix+".pdf", *prefix+".png")
	if err != nil {
		msg.Fatalf("%+v", err)
	}
}

// detected returns the roles going through the acceptance: the lepton, the
// recoil and the decay products.
func detected(cfg config.Config) []string {
	roles := cfg.Roles()[:2+len(cfg.Selection.Products)]
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

func efficiency(fname, sample, role string) (pts plotutil.ErrorPoints, err error) {
	hs, err := reco.ReadHists(fname,
		sample+"_"+role+"_acc_theta",
		sample+"_"+role+"_theta",
	)
	if err != nil {
		return pts, err
	}
	return lagerana.Ratio(hs[0], hs[1]), nil
}
