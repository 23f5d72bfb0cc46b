// Package smear emulates the finite resolution of a tracking detector by
// Gaussian smearing of particle momenta and angles.
package smear // import "github.com/decibelcooper/lagerana/smear"

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default resolutions.
const (
	DefaultMomentum = 0.02  // relative
	DefaultTheta    = 0.001 // rad
	DefaultPhi      = 0.001 // rad
)

// Smearer smears the magnitude of the momentum with a relative Gaussian
// resolution and the polar and azimuthal angles with absolute Gaussian
// resolutions (radians).
//
// By default the energy is recomputed from the smeared momentum and the
// invariant mass of the original particle. KeepEnergy keeps the original
// energy instead.
//
// A Smearer is not safe for concurrent use.
type Smearer struct {
	Momentum   float64
	Theta      float64
	Phi        float64
	KeepEnergy bool

	src rand.Source
}

// New returns a smearer with the given resolutions, drawing from src.
func New(momentum, theta, phi float64, src rand.Source) *Smearer {
	return &Smearer{
		Momentum: momentum,
		Theta:    theta,
		Phi:      phi,
		src:      src,
	}
}

// Smear returns a smeared copy of p.
func (s *Smearer) Smear(p fmom.PxPyPzE) fmom.PxPyPzE {
	var (
		mag   = p.P()
		theta = 0.0
		phi   = 0.0
		m2    = p.M2()
	)
	if mag > 0 {
		theta = math.Acos(math.Max(-1, math.Min(1, p.Pz()/mag)))
	}
	if p.Px() != 0 || p.Py() != 0 {
		phi = math.Atan2(p.Py(), p.Px())
	}

	mag = s.magnitude(mag)
	theta = s.gauss(theta, s.Theta)
	phi = s.gauss(phi, s.Phi)

	var (
		sin = math.Sin(theta)
		px  = mag * sin * math.Cos(phi)
		py  = mag * sin * math.Sin(phi)
		pz  = mag * math.Cos(theta)
		e   = p.E()
	)
	if !s.KeepEnergy {
		e = math.Sqrt(math.Max(0, mag*mag+m2))
	}
	return fmom.NewPxPyPzE(px, py, pz, e)
}

// magnitude smears a momentum magnitude. Negative draws are redrawn: a
// negative magnitude would flip the direction of the particle.
func (s *Smearer) magnitude(mag float64) float64 {
	for {
		v := s.gauss(mag, s.Momentum*mag)
		if v >= 0 {
			return v
		}
	}
}

func (s *Smearer) gauss(mu, sigma float64) float64 {
	if sigma <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}
