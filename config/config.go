// Package config holds the parameters of a fast-MC analysis, read from YAML
// and layered over the defaults of the lAger φ(1020) analysis.
package config // import "github.com/decibelcooper/lagerana/config"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the configuration of one analysis.
type Config struct {
	Beams      Beams      `yaml:"beams"`
	Cuts       Cuts       `yaml:"cuts"`
	Selection  Selection  `yaml:"selection"`
	Acceptance Acceptance `yaml:"acceptance"`
	Smearing   Smearing   `yaml:"smearing"`
	Hists      Hists      `yaml:"histograms"`

	// MinHadrons is the number of accepted hadrons (recoil and decay
	// products) required to reconstruct an event. A negative value
	// requires all of them.
	MinHadrons int `yaml:"min_hadrons"`

	Seed uint64 `yaml:"seed"`
}

// Beams describes the initial state. A target with a zero momentum is at
// rest; a target with a negative momentum makes a collider.
type Beams struct {
	Lepton Beam `yaml:"lepton"`
	Target Beam `yaml:"target"`
}

// Beam is a particle moving along the z axis.
type Beam struct {
	Pz   float64 `yaml:"pz"`
	Mass float64 `yaml:"mass"`
}

// Interval is a closed interval.
type Interval struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether min <= v <= max.
func (i Interval) Contains(v float64) bool {
	return i.Min <= v && v <= i.Max
}

func (i Interval) valid() bool { return i.Min <= i.Max }

// Cuts selects a kinematic bin.
type Cuts struct {
	W  Interval `yaml:"W"`
	Q2 Interval `yaml:"Q2"`
	X  Interval `yaml:"x"`
}

// Role is a particle of the exclusive final state.
type Role struct {
	Name string `yaml:"name"`
	Slot int    `yaml:"slot"`
	PID  int32  `yaml:"pid"`
}

// Selection picks the final state particles of an event by slot, or by PDG
// code when ByPID is set.
type Selection struct {
	ByPID    bool   `yaml:"by_pid"`
	Lepton   Role   `yaml:"lepton"`
	Recoil   Role   `yaml:"recoil"`
	Products []Role `yaml:"products"`
	Meson    *Role  `yaml:"meson,omitempty"`
}

// Acceptance configures the acceptance tables. An empty file means a
// perfect detector.
type Acceptance struct {
	File   string  `yaml:"file"`
	Lepton string  `yaml:"lepton"`
	Hadron string  `yaml:"hadron"`
	Peak   float64 `yaml:"peak"` // rescaled maximum, 0 keeps the raw tables
}

// Smearing holds the detector resolutions.
type Smearing struct {
	Momentum   float64 `yaml:"momentum"` // relative
	Theta      float64 `yaml:"theta"`    // rad
	Phi        float64 `yaml:"phi"`      // rad
	KeepEnergy bool    `yaml:"keep_energy"`
}

// Hists holds the binning of the output histograms.
type Hists struct {
	Bins     int     `yaml:"bins"`
	PMax     float64 `yaml:"p_max"`
	ThetaMax float64 `yaml:"theta_max"`
	WMax     float64 `yaml:"W_max"`
	Q2Max    float64 `yaml:"Q2_max"`
	TMax     float64 `yaml:"t_max"`
}

// Default returns the configuration of the CLAS12 φ → K⁺K⁻ analysis of
// lAger events.
func Default() Config {
	return Config{
		Beams: Beams{
			Lepton: Beam{Pz: 10.6, Mass: 0.000511},
			Target: Beam{Pz: 0, Mass: 0.938},
		},
		Cuts: Cuts{
			W:  Interval{Min: 1.0, Max: 2.4},
			Q2: Interval{Min: 6.0, Max: 60.0},
			X:  Interval{Min: 0.0001, Max: 0.9999},
		},
		Selection: Selection{
			Lepton: Role{Name: "electron", Slot: 4, PID: 11},
			Recoil: Role{Name: "proton", Slot: 6, PID: 2212},
			Products: []Role{
				{Name: "kaon_plus", Slot: 8, PID: 321},
				{Name: "kaon_minus", Slot: 7, PID: -321},
			},
		},
		Acceptance: Acceptance{
			Lepton: "acceptance_ThetaP_overall",
			Hadron: "acceptance_ThetaP_forwardangle",
			Peak:   0.9,
		},
		Smearing: Smearing{
			Momentum: 0.02,
			Theta:    0.001,
			Phi:      0.001,
		},
		Hists: Hists{
			Bins:     500,
			PMax:     10.6,
			ThetaMax: 50,
			WMax:     5,
			Q2Max:    15,
			TMax:     20,
		},
		MinHadrons: -1,
		Seed:       1234,
	}
}

// Load reads a YAML configuration over the defaults.
// Unknown fields are an error.
func Load(fname string) (Config, error) {
	raw, err := os.ReadFile(fname)
	if err != nil {
		return Config{}, fmt.Errorf("config: could not read %q: %w", fname, err)
	}
	cfg, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return cfg, fmt.Errorf("config: could not load %q: %w", fname, err)
	}
	return cfg, nil
}

// Decode reads a YAML configuration from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: could not decode YAML: %w", err)
	}
	return cfg, cfg.Validate()
}

// Roles returns the selected particles in order: lepton, recoil, decay
// products and the optional meson.
func (cfg Config) Roles() []Role {
	sel := cfg.Selection
	roles := make([]Role, 0, 3+len(sel.Products))
	roles = append(roles, sel.Lepton, sel.Recoil)
	roles = append(roles, sel.Products...)
	if sel.Meson != nil {
		roles = append(roles, *sel.Meson)
	}
	return roles
}

// Hadrons returns the number of hadrons of the final state.
func (cfg Config) Hadrons() int {
	return 1 + len(cfg.Selection.Products)
}

// RequiredHadrons returns the number of accepted hadrons needed to
// reconstruct an event.
func (cfg Config) RequiredHadrons() int {
	if cfg.MinHadrons < 0 {
		return cfg.Hadrons()
	}
	return cfg.MinHadrons
}

// Validate checks the consistency of the configuration.
func (cfg Config) Validate() error {
	if cfg.Beams.Lepton.Pz == 0 {
		return fmt.Errorf("config: lepton beam has no momentum")
	}
	if cfg.Beams.Target.Mass <= 0 {
		return fmt.Errorf("config: invalid target mass %v", cfg.Beams.Target.Mass)
	}
	for _, c := range []struct {
		name string
		v    Interval
	}{
		{"W", cfg.Cuts.W},
		{"Q2", cfg.Cuts.Q2},
		{"x", cfg.Cuts.X},
	} {
		if !c.v.valid() {
			return fmt.Errorf("config: invalid %s cut [%v, %v]", c.name, c.v.Min, c.v.Max)
		}
	}

	sel := cfg.Selection
	if len(sel.Products) == 0 {
		return fmt.Errorf("config: no decay products selected")
	}
	roles := cfg.Roles()
	names := make(map[string]bool, len(roles))
	for _, r := range roles {
		switch {
		case r.Name == "":
			return fmt.Errorf("config: role with slot %d has no name", r.Slot)
		case names[r.Name]:
			return fmt.Errorf("config: duplicate role %q", r.Name)
		case sel.ByPID && r.PID == 0:
			return fmt.Errorf("config: role %q needs a PDG code", r.Name)
		case !sel.ByPID && r.Slot < 0:
			return fmt.Errorf("config: role %q has invalid slot %d", r.Name, r.Slot)
		}
		names[r.Name] = true
	}

	if cfg.MinHadrons > cfg.Hadrons() {
		return fmt.Errorf("config: min_hadrons=%d exceeds the %d hadrons of the final state", cfg.MinHadrons, cfg.Hadrons())
	}
	if p := cfg.Acceptance.Peak; p < 0 || p > 1 {
		return fmt.Errorf("config: invalid acceptance peak %v", p)
	}
	sm := cfg.Smearing
	if sm.Momentum < 0 || sm.Theta < 0 || sm.Phi < 0 {
		return fmt.Errorf("config: negative resolution")
	}
	if cfg.Hists.Bins <= 0 {
		return fmt.Errorf("config: invalid number of bins %d", cfg.Hists.Bins)
	}
	return nil
}
