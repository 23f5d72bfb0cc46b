// Command xsec computes the reduced γ*p cross section in one (Q², W, t) bin
// from the event kinematics of a lAger ROOT tree and the integrated
// luminosity of the sample.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
	"gonum.org/v1/gonum/stat"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/kine"
)

var msg = log.New(os.Stdout, "xsec: ", 0)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options] <lager-file.root>

ex:
 $> xsec -lumi 1e17 -Q2 3,4 -W 2.2,2.3 -t -1.1,-0.8 hatta-ep-phi-10GeV.root

Bins are open intervals.

options:
`,
	)
	flag.PrintDefaults()
}

func main() {
	var (
		tree  = flag.String("tree", "lAger", "name of the lAger tree")
		ebeam = flag.Float64("ebeam", 10.6, "lepton beam energy (GeV)")
		mass  = flag.Float64("mp", 0.938272, "target mass (GeV)")
		lumi  = flag.Float64("lumi", 1e17, "integrated luminosity (b⁻¹)")

		b = bin{
			Q2: lagerana.IntervalFlag{Lo: 3, Hi: 4},
			W:  lagerana.IntervalFlag{Lo: 2.2, Hi: 2.3},
			T:  lagerana.IntervalFlag{Lo: -1.1, Hi: -0.8},
		}
	)
	flag.Var(&b.Q2, "Q2", "Q² bin (GeV²)")
	flag.Var(&b.W, "W", "W bin (GeV)")
	flag.Var(&b.T, "t", "t bin (GeV²)")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 1 {
		printUsage()
		msg.Fatalf("invalid arguments")
	}

	evts, err := readTree(flag.Arg(0), *tree)
	if err != nil {
		msg.Fatalf("%+v", err)
	}

	res := b.reducedXsec(evts, *ebeam, *mass, *lumi)
	if res.N == 0 {
		msg.Fatalf("no events in bin Q2=%v, W=%v, t=%v: check the boundaries", &b.Q2, &b.W, &b.T)
	}

	msg.Printf("events in bin        : N = %d", res.N)
	msg.Printf("bin widths           : ΔW=%.3f, ΔQ2=%.3f, Δt=%.3f", b.W.Hi-b.W.Lo, b.Q2.Hi-b.Q2.Lo, b.T.Hi-b.T.Lo)
	msg.Printf("average flux <Γ_v>   : %.3e GeV⁻²", res.Flux)
	msg.Printf("reduced σ (barn)     : %.3e b", res.Barn)
	msg.Printf("reduced σ (nanobarn) : %.3e nb", res.Barn*1e9)
}

// kinematics holds the event variables read from the lAger tree.
type kinematics struct {
	Q2, W, T, Nu, Eps float64
}

type bin struct {
	Q2, W, T lagerana.IntervalFlag
}

func (b *bin) contains(k kinematics) bool {
	return b.Q2.Contains(k.Q2) && b.W.Contains(k.W) && b.T.Contains(k.T)
}

type result struct {
	N    int64
	Flux float64 // mean virtual photon flux
	Barn float64
}

// reducedXsec returns σ_red = N / (L ΔW ΔQ² Δt <Γ_v>) for the events in the
// bin. The cross section is zero when the bin is empty.
func (b *bin) reducedXsec(evts []kinematics, ebeam, mt, lumi float64) result {
	var flux []float64
	for _, k := range evts {
		if !b.contains(k) {
			continue
		}
		flux = append(flux, kine.PhotonFlux(ebeam, mt, k.Q2, k.W, k.Nu, k.Eps))
	}

	res := result{N: int64(len(flux))}
	if res.N == 0 {
		return res
	}
	res.Flux = stat.Mean(flux, nil)
	vol := (b.W.Hi - b.W.Lo) * (b.Q2.Hi - b.Q2.Lo) * math.Abs(b.T.Hi-b.T.Lo)
	res.Barn = float64(res.N) / (lumi * vol * res.Flux)
	return res
}

var branches = []string{"Q2", "W", "t", "nu", "epsilon"}

// readTree reads the kinematics of every event of the named tree. Branches
// may be stored in single or double precision.
func readTree(fname, name string) ([]kinematics, error) {
	f, err := groot.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	obj, err := f.Get(name)
	if err != nil {
		return nil, fmt.Errorf("could not find tree %q in %q: %w", name, fname, err)
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %q in %q is not a tree (%T)", name, fname, obj)
	}

	all := make(map[string]rtree.ReadVar)
	for _, rv := range rtree.NewReadVars(t) {
		all[rv.Name] = rv
	}
	rvars := make([]rtree.ReadVar, len(branches))
	for i, br := range branches {
		rv, ok := all[br]
		if !ok {
			return nil, fmt.Errorf("tree %q has no branch %q", name, br)
		}
		switch rv.Value.(type) {
		case *float32, *float64:
		default:
			return nil, fmt.Errorf("branch %q has unsupported type %T", br, rv.Value)
		}
		rvars[i] = rv
	}

	r, err := rtree.NewReader(t, rvars)
	if err != nil {
		return nil, fmt.Errorf("could not create reader for tree %q: %w", name, err)
	}
	defer r.Close()

	evts := make([]kinematics, 0, t.Entries())
	err = r.Read(func(rtree.RCtx) error {
		var v [5]float64
		for i, rv := range rvars {
			switch p := rv.Value.(type) {
			case *float32:
				v[i] = float64(*p)
			case *float64:
				v[i] = *p
			}
		}
		evts = append(evts, kinematics{Q2: v[0], W: v[1], T: v[2], Nu: v[3], Eps: v[4]})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not read tree %q: %w", name, err)
	}
	return evts, nil
}
