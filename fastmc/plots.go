package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/lagerana"
	"github.com/decibelcooper/lagerana/reco"
)

type overlay struct {
	title, xlabel string
	names         []string
	legends       []string
}

func makePlots(dir string, anas []*reco.Analysis) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("could not create plot directory: %w", err)
	}

	for _, a := range anas {
		kin := []overlay{
			{"W", "W (GeV)", []string{"W_values", "filtered_W_values"}, []string{"generated", "reconstructed"}},
			{"Q²", "Q² (GeV²)", []string{"Q2_values", "filtered_Q2_values"}, []string{"generated", "reconstructed"}},
			{"x", "x", []string{"x_values", "filtered_x_values"}, []string{"generated", "reconstructed"}},
			{"-t", "-t (GeV²)", []string{"t_values", "filtered_t_values"}, []string{"generated", "reconstructed"}},
		}
		err = tiled(a, 2, 2, kin, filepath.Join(dir, a.Prefix+"_kinematics.png"))
		if err != nil {
			return err
		}

		res := []overlay{
			{"Q² resolution", "ΔQ² (GeV²)", []string{"Q2_resolutions"}, nil},
			{"W resolution", "ΔW (GeV)", []string{"W_resolutions"}, nil},
			{"x resolution", "Δx", []string{"x_resolutions"}, nil},
			{"y resolution", "Δy", []string{"y_resolutions"}, nil},
			{"t resolution", "Δt (GeV²)", []string{"t_resolutions"}, nil},
			{"Decay products mass", "M (GeV)", []string{"meson_mass"}, nil},
		}
		err = tiled(a, 3, 2, res, filepath.Join(dir, a.Prefix+"_resolutions.png"))
		if err != nil {
			return err
		}

		var parts []overlay
		for _, role := range a.Roles() {
			if a.Hists.Get(role+"_momenta") == nil {
				continue
			}
			parts = append(parts,
				overlay{role + " momentum", "p (GeV)", []string{role + "_momenta"}, nil},
				overlay{role + " polar angle", "θ (deg)", []string{role + "_theta", role + "_acc_theta"}, []string{"generated", "accepted"}},
			)
		}
		err = tiled(a, len(parts)/2, 2, parts, filepath.Join(dir, a.Prefix+"_particles.png"))
		if err != nil {
			return err
		}

		p := lagerana.NewPlot(a.Prefix+" missing mass", "M_X (GeV)", "")
		for i, name := range []string{"missing_mass", "missing_mass_recoil_missing", "missing_mass_product_missing"} {
			lagerana.AddH1D(p, a.Hists.Get(name), i, name)
		}
		err = lagerana.Save(p, lagerana.Width, lagerana.Height,
			filepath.Join(dir, a.Prefix+"_missing_mass.png"),
			filepath.Join(dir, a.Prefix+"_missing_mass.pdf"),
		)
		if err != nil {
			return err
		}

		hm := lagerana.HeatMap{
			Title:  a.Prefix + " relative Q² resolution",
			XLabel: "x",
			YLabel: "Q² (GeV²)",
			Min:    0,
			Max:    0.05,
		}
		err = hm.Save(a.Res, filepath.Join(dir, a.Prefix+"_Q2_resolution_map.png"))
		if err != nil {
			return err
		}
	}
	return nil
}

func tiled(a *reco.Analysis, rows, cols int, panels []overlay, fname string) error {
	tp := lagerana.NewTiledPlot(rows, cols)
	for k, o := range panels {
		p := tp.Plot(k/cols, k%cols)
		lagerana.Style(p, a.Prefix+" "+o.title, o.xlabel, "")
		for i, name := range o.names {
			legend := ""
			if i < len(o.legends) {
				legend = o.legends[i]
			}
			lagerana.AddH1D(p, a.Hists.Get(name), i, legend)
		}
	}
	return lagerana.Save(tp, vg.Length(cols)*lagerana.Width, vg.Length(rows)*lagerana.Height, fname)
}
