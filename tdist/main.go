// Command tdist overlays the generated and reconstructed -t distributions
// of fastmc output files on a log scale.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/profile"
	"go-hep.org/x/hep/hbook"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/reco"
)

var msg = log.New(os.Stdout, "tdist: ", 0)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <fastmc-output-files>...

ex:
 $> tdist -prefix sig,bk -scale 1 -scale 0.1 -o t.png fastmc.root

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		title    = flag.String("title", "", "plot title")
		output   = flag.String("o", "out.png", "output file")
		prefixes = flag.String("prefix", "sig", "comma separated sample prefixes")
		prof     = flag.Bool("prof", false, "enable CPU profiling")
		scale    lagerana.FloatArrayFlags
	)
	flag.Var(&scale, "scale", "scale factor of each curve, in order (repeatable)")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		msg.Fatalf("invalid arguments")
	}

	if *prof {
		defer profile.Start().Stop()
	}

	curves, err := load(flag.Args(), strings.Split(*prefixes, ","))
	if err != nil {
		msg.Fatalf("%+v", err)
	}

	p := lagerana.NewPlot(*title, "-t (GeV²)", "")
	lagerana.LogY(p)
	for i, c := range curves {
		if f := scale.At(i, 1); f != 1 {
			c.h.Scale(f)
		}
		lagerana.AddH1D(p, c.h, i, c.legend)
	}

	err = lagerana.Save(p, lagerana.Width, lagerana.Height, *output)
	if err != nil {
		msg.Fatalf("%+v", err)
	}
}

type curve struct {
	legend string
	h      *hbook.H1D
}

// load reads the generated and reconstructed -t histograms of each sample
// of each file.
func load(fnames, prefixes []string) ([]curve, error) {
	var curves []curve
	for _, fname := range fnames {
		for _, prefix := range prefixes {
			prefix = strings.TrimSpace(prefix)
			if prefix == "" {
				continue
			}
			hs, err := reco.ReadHists(fname, prefix+"_t_values", prefix+"_filtered_t_values")
			if err != nil {
				return nil, err
			}
			label := prefix
			if len(fnames) > 1 {
				label = fname + " " + prefix
			}
			curves = append(curves,
				curve{label + " generated", hs[0]},
				curve{label + " reconstructed", hs[1]},
			)
		}
	}
	return curves, nil
}
