// Package kine computes the invariants of exclusive lepton-nucleon scattering
// from lab-frame four-vectors.
package kine // import "github.com/decibelcooper/lagerana/kine"

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Masses in GeV.
const (
	ElectronMass = 0.000511
	ProtonMass   = 0.938
	KaonMass     = 0.4937
)

// Alpha is the fine-structure constant.
const Alpha = 1.0 / 137.0

// Vars holds the inclusive scattering invariants of one event.
type Vars struct {
	Q2  float64 // four-momentum transfer squared
	W   float64 // invariant mass of the hadronic system
	X   float64 // Bjorken scaling variable
	Y   float64 // inelasticity
	Nu  float64 // energy transfer in the target rest frame
	Eps float64 // virtual photon polarization
}

// Beams is the initial state: a lepton beam on a target.
type Beams struct {
	Lepton fmom.PxPyPzE
	Target fmom.PxPyPzE
}

// Beam returns a particle of mass m moving along z with momentum pz.
func Beam(pz, m float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(0, 0, pz, math.Sqrt(pz*pz+m*m))
}

// FixedTarget returns a lepton beam of momentum p on a target at rest.
func FixedTarget(p, mlep, mtgt float64) Beams {
	return Beams{
		Lepton: Beam(p, mlep),
		Target: fmom.NewPxPyPzE(0, 0, 0, mtgt),
	}
}

// Initial returns the total initial-state four-momentum.
func (b Beams) Initial() fmom.PxPyPzE {
	return Add(b.Lepton, b.Target)
}

// Add returns the sum of the four-vectors.
func Add(ps ...fmom.PxPyPzE) fmom.PxPyPzE {
	var sum fmom.PxPyPzE
	for _, p := range ps {
		sum.P4.X += p.P4.X
		sum.P4.Y += p.P4.Y
		sum.P4.Z += p.P4.Z
		sum.P4.T += p.P4.T
	}
	return sum
}

// Sub returns a-b.
func Sub(a, b fmom.PxPyPzE) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(a.P4.X-b.P4.X, a.P4.Y-b.P4.Y, a.P4.Z-b.P4.Z, a.P4.T-b.P4.T)
}

// Dot returns the Minkowski product of a and b, with a (+,-,-,-) metric.
func Dot(a, b fmom.PxPyPzE) float64 {
	return a.P4.T*b.P4.T - a.P4.X*b.P4.X - a.P4.Y*b.P4.Y - a.P4.Z*b.P4.Z
}

// Mass returns the signed invariant mass of p: negative when p is
// space-like, as ROOT's TLorentzVector::M does.
func Mass(p fmom.PxPyPzE) float64 {
	m2 := Dot(p, p)
	if m2 < 0 {
		return -math.Sqrt(-m2)
	}
	return math.Sqrt(m2)
}

// Theta returns the polar angle of p in degrees.
// A particle at rest has a zero polar angle.
func Theta(p fmom.PxPyPzE) float64 {
	mag := p.P()
	if mag == 0 {
		return 0
	}
	cos := p.Pz() / mag
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// Phi returns the azimuthal angle of p in radians.
func Phi(p fmom.PxPyPzE) float64 {
	if p.P4.X == 0 && p.P4.Y == 0 {
		return 0
	}
	return math.Atan2(p.P4.Y, p.P4.X)
}

// Eta returns the pseudorapidity of p.
func Eta(p fmom.PxPyPzE) float64 {
	theta := Theta(p) * math.Pi / 180
	return -math.Log(math.Tan(theta / 2))
}

// DIS computes the inclusive invariants from the scattered lepton.
func DIS(b Beams, scat fmom.PxPyPzE) Vars {
	q := Sub(b.Lepton, scat)
	pq := Dot(b.Target, q)
	v := Vars{
		Q2: -Dot(q, q),
		W:  Mass(Add(b.Target, q)),
		Nu: pq / Mass(b.Target),
	}
	if pq != 0 {
		v.X = v.Q2 / (2 * pq)
	}
	if pk := Dot(b.Target, b.Lepton); pk != 0 {
		v.Y = pq / pk
	}
	v.Eps = Epsilon(b, v.Q2, v.Y)
	return v
}

// T returns the Mandelstam t between the target and the recoil.
func T(target, recoil fmom.PxPyPzE) float64 {
	d := Sub(recoil, target)
	return Dot(d, d)
}

// Epsilon returns the ratio of longitudinal to transverse virtual photon
// flux, following Budnev et al., Phys. Rept. 15 (1975), eqs. 6.8-6.10.
func Epsilon(b Beams, q2, y float64) float64 {
	if q2 <= 0 {
		return 0
	}
	var (
		e   = Dot(b.Lepton, b.Target) / Mass(b.Target)
		m   = Mass(b.Lepton)
		m2  = m * m
		nu  = y * e
		rpp = (2*e-nu)*(2*e-nu)/(nu*nu+q2) + 1 - 4*m2/q2
	)
	if rpp == 0 {
		return 0
	}
	return 1 + (4*m2/q2-2)/rpp
}

// Missing returns the four-momentum not accounted for by the reconstructed
// particles.
func Missing(b Beams, reco ...fmom.PxPyPzE) fmom.PxPyPzE {
	return Sub(b.Initial(), Add(reco...))
}

// MissingMass returns the signed mass of the missing four-momentum.
func MissingMass(b Beams, reco ...fmom.PxPyPzE) float64 {
	return Mass(Missing(b, reco...))
}

// TrentoPhiUndefined is returned by TrentoPhi when one of the planes is
// degenerate.
const TrentoPhiUndefined = -999.0

// TrentoPhi returns the angle in degrees, within [0, 360), between the
// leptonic plane (k, kp) and the hadronic plane (q, v).
func TrentoPhi(k, kp, q, v fmom.PxPyPzE) float64 {
	var (
		vk  = vec3(k)
		vkp = vec3(kp)
		vq  = vec3(q)
		vv  = vec3(v)
		nl  = r3.Cross(vk, vkp)
		nh  = r3.Cross(vq, vv)
	)
	if r3.Norm(nl) == 0 || r3.Norm(nh) == 0 || r3.Norm(vq) == 0 {
		return TrentoPhiUndefined
	}
	nl = r3.Unit(nl)
	nh = r3.Unit(nh)

	cos := math.Max(-1, math.Min(1, r3.Dot(nl, nh)))
	phi := math.Acos(cos)

	z := r3.Scale(-1, r3.Unit(vq))
	if r3.Dot(z, r3.Cross(nl, nh)) < 0 {
		phi = 2*math.Pi - phi
	}
	return phi * 180 / math.Pi
}

func vec3(p fmom.PxPyPzE) r3.Vec {
	return r3.Vec{X: p.P4.X, Y: p.P4.Y, Z: p.P4.Z}
}

// PhotonFlux returns the virtual photon flux factor in the Hand convention
// for a lepton beam of energy ebeam on a target of mass mt.
func PhotonFlux(ebeam, mt, q2, w, nu, eps float64) float64 {
	var (
		k      = (w*w - mt*mt) / (2 * mt)
		eprime = ebeam - nu
	)
	return Alpha / (2 * math.Pi * math.Pi) * (k / q2) * (eprime / ebeam) / (1 - eps)
}
