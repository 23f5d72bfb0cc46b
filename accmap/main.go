// Command accmap draws acceptance tables as heat maps of the efficiency
// in the (θ, p) plane.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/accept"
)

var (
	names  = flag.String("names", "acceptance_ThetaP_overall,acceptance_ThetaP_forwardangle", "comma separated names of the 2D histograms")
	peak   = flag.Float64("peak", accept.DefaultPeak, "rescale each table to this maximum efficiency (no rescale if <= 0)")
	effMax = flag.Float64("max", 1, "maximum efficiency in the color map")
	title  = flag.String("title", "", "plot title (table name if empty)")
	prefix = flag.String("prefix", "accmap", "output file prefix")

	msg = log.New(os.Stdout, "accmap: ", 0)
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <acceptance-file.root>

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 1 {
		printUsage()
		msg.Fatalf("invalid arguments")
	}

	fnames, err := process(flag.Arg(0), strings.Split(*names, ","), *peak)
	if err != nil {
		msg.Fatalf("%+v", err)
	}
	for _, fname := range fnames {
		msg.Printf("wrote %s", fname)
	}
}

func process(fname string, names []string, peak float64) ([]string, error) {
	tables, err := accept.Open(fname, names...)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, t := range tables {
		t.Scale(peak)
		msg.Printf("%s: max efficiency %.3f", t.Name, t.Max())

		hm := lagerana.HeatMap{
			Title:  *title,
			XLabel: "θ (deg)",
			YLabel: "p (GeV)",
			Min:    0,
			Max:    *effMax,
		}
		if hm.Title == "" {
			hm.Title = t.Name
		}
		oname := *prefix + "_" + t.Name + ".png"
		err = hm.Save(t, oname)
		if err != nil {
			return out, err
		}
		out = append(out, oname)
	}
	return out, nil
}
