package kine

import (
	"math"
	"testing"

	"go-hep.org/x/hep/fmom"
)

func TestDISFixedTarget(t *testing.T) {
	const (
		ebeam = 10.6
		mp    = 0.938
	)
	beams := FixedTarget(ebeam, 0, mp)

	for _, tc := range []struct {
		name  string
		ep    float64 // scattered lepton energy
		theta float64 // scattered lepton polar angle, degrees
	}{
		{"forward", 8.0, 6},
		{"mid", 4.0, 25},
		{"wide", 2.5, 40},
	} {
		t.Run(tc.name, func(t *testing.T) {
			th := tc.theta * math.Pi / 180
			scat := fmom.NewPxPyPzE(tc.ep*math.Sin(th), 0, tc.ep*math.Cos(th), tc.ep)

			// textbook DIS relations for a massless lepton on a target at rest.
			var (
				nu = ebeam - tc.ep
				q2 = 4 * ebeam * tc.ep * math.Pow(math.Sin(th/2), 2)
				x  = q2 / (2 * mp * nu)
				w  = math.Sqrt(mp*mp + 2*mp*nu - q2)
				y  = nu / ebeam
			)

			got := DIS(beams, scat)
			for _, v := range []struct {
				name      string
				got, want float64
			}{
				{"Q2", got.Q2, q2},
				{"W", got.W, w},
				{"x", got.X, x},
				{"y", got.Y, y},
				{"nu", got.Nu, nu},
			} {
				if math.Abs(v.got-v.want) > 1e-6 {
					t.Fatalf("invalid %s: got=%v, want=%v", v.name, v.got, v.want)
				}
			}
		})
	}
}

func TestEpsilonMasslessLimit(t *testing.T) {
	const (
		ebeam = 10.6
		mp    = 0.938
		ep    = 3.2
	)
	beams := FixedTarget(ebeam, 0, mp)
	th := 30 * math.Pi / 180
	scat := fmom.NewPxPyPzE(ep*math.Sin(th), 0, ep*math.Cos(th), ep)

	v := DIS(beams, scat)
	tan2 := math.Pow(math.Tan(th/2), 2)
	want := 1 / (1 + 2*(1+v.Nu*v.Nu/v.Q2)*tan2)
	if math.Abs(v.Eps-want) > 1e-9 {
		t.Fatalf("invalid epsilon: got=%v, want=%v", v.Eps, want)
	}
}

func TestAddSubDot(t *testing.T) {
	var (
		a = fmom.NewPxPyPzE(1, 2, 3, 10)
		b = fmom.NewPxPyPzE(-0.5, 0.25, 1, 4)
		c = fmom.NewPxPyPzE(0, 0, -2, 3)
	)

	sum := Add(a, b, c)
	if got, want := sum.P4, (fmom.Vec4{X: 0.5, Y: 2.25, Z: 2, T: 17}); got != want {
		t.Fatalf("invalid sum: got=%+v, want=%+v", got, want)
	}
	if got := Add(); got.P4 != (fmom.Vec4{}) {
		t.Fatalf("invalid empty sum: got=%+v", got.P4)
	}

	diff := Sub(a, b)
	if got, want := diff.P4, (fmom.Vec4{X: 1.5, Y: 1.75, Z: 2, T: 6}); got != want {
		t.Fatalf("invalid difference: got=%+v, want=%+v", got, want)
	}

	if got, want := Dot(a, b), 40-(-0.5+0.5+3.0); got != want {
		t.Fatalf("invalid dot product: got=%v, want=%v", got, want)
	}
	if got, want := Dot(a, a), a.M2(); got != want {
		t.Fatalf("invalid square: got=%v, want=%v", got, want)
	}
}

func TestMass(t *testing.T) {
	for _, tc := range []struct {
		p    fmom.PxPyPzE
		want float64
	}{
		{fmom.NewPxPyPzE(0, 0, 0, 0.938), 0.938},
		{fmom.NewPxPyPzE(0, 0, 3, 5), 4},
		{fmom.NewPxPyPzE(0, 0, 5, 3), -4},
		{fmom.NewPxPyPzE(0, 0, 0, 0), 0},
	} {
		if got := Mass(tc.p); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("invalid mass for %v: got=%v, want=%v", tc.p, got, tc.want)
		}
	}
}

func TestT(t *testing.T) {
	target := fmom.NewPxPyPzE(0, 0, 0, ProtonMass)
	if got := T(target, target); got != 0 {
		t.Fatalf("invalid t for elastic recoil at rest: got=%v", got)
	}

	recoil := fmom.NewPxPyPzE(0.3, -0.2, 1.1, math.Sqrt(0.09+0.04+1.21+ProtonMass*ProtonMass))
	if got := T(target, recoil); got >= 0 {
		t.Fatalf("t must be negative for a recoiling target: got=%v", got)
	}
}

func TestAngles(t *testing.T) {
	for _, tc := range []struct {
		name  string
		p     fmom.PxPyPzE
		theta float64
		phi   float64
		eta   float64
	}{
		{"along-z", fmom.NewPxPyPzE(0, 0, 2, 2), 0, 0, math.Inf(1)},
		{"transverse", fmom.NewPxPyPzE(0, 1, 0, 1), 90, math.Pi / 2, 0},
		{"at-rest", fmom.NewPxPyPzE(0, 0, 0, 1), 0, 0, math.Inf(1)},
		{"backward", fmom.NewPxPyPzE(-1, 0, -1, 2), 135, math.Pi, -math.Log(math.Tan(135 * math.Pi / 360))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Theta(tc.p); math.Abs(got-tc.theta) > 1e-9 {
				t.Fatalf("invalid theta: got=%v, want=%v", got, tc.theta)
			}
			if got := Phi(tc.p); math.Abs(got-tc.phi) > 1e-9 {
				t.Fatalf("invalid phi: got=%v, want=%v", got, tc.phi)
			}
			got := Eta(tc.p)
			switch {
			case math.IsInf(tc.eta, 1):
				if !math.IsInf(got, 1) {
					t.Fatalf("invalid eta: got=%v, want=+Inf", got)
				}
			case math.Abs(got-tc.eta) > 1e-9:
				t.Fatalf("invalid eta: got=%v, want=%v", got, tc.eta)
			}
		})
	}
}

func TestMissingMassBalanced(t *testing.T) {
	beams := FixedTarget(10.6, ElectronMass, ProtonMass)
	var (
		scat  = fmom.NewPxPyPzE(0.8, 0.1, 5.2, math.Sqrt(0.64+0.01+27.04))
		kplus = fmom.NewPxPyPzE(-0.2, 0.4, 1.9, math.Sqrt(0.04+0.16+3.61+KaonMass*KaonMass))
		kmin  = fmom.NewPxPyPzE(-0.1, -0.3, 2.1, math.Sqrt(0.01+0.09+4.41+KaonMass*KaonMass))
	)
	recoil := Missing(beams, scat, kplus, kmin)

	if got := MissingMass(beams, scat, recoil, kplus, kmin); math.Abs(got) > 1e-6 {
		t.Fatalf("invalid missing mass: got=%v, want=0", got)
	}

	want := Mass(recoil)
	if got := MissingMass(beams, scat, kplus, kmin); math.Abs(got-want) > 1e-9 {
		t.Fatalf("invalid recoil missing mass: got=%v, want=%v", got, want)
	}
}

func TestTrentoPhi(t *testing.T) {
	var (
		k  = fmom.NewPxPyPzE(0, 0, 10, 10)
		kp = fmom.NewPxPyPzE(1, 0, 5, math.Sqrt(26))
		q  = Sub(k, kp)
	)
	for _, tc := range []struct {
		name string
		v    fmom.PxPyPzE
		want float64
	}{
		{"out-of-plane", fmom.NewPxPyPzE(-1, 1, 5, 6), 270},
		{"in-plane", fmom.NewPxPyPzE(-2, 0, 5, 6), 180},
		{"along-q", fmom.NewPxPyPzE(-2, 0, 10, 11), TrentoPhiUndefined},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := TrentoPhi(k, kp, q, tc.v)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("invalid trento phi: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestPhotonFlux(t *testing.T) {
	const (
		ebeam = 10.6
		mp    = 0.938272
	)
	var (
		q2  = 3.5
		w   = 2.25
		nu  = (w*w - mp*mp + q2) / (2 * mp)
		eps = 0.6
	)
	got := PhotonFlux(ebeam, mp, q2, w, nu, eps)
	if got <= 0 {
		t.Fatalf("invalid flux: got=%v", got)
	}

	// doubling (1-eps) halves the flux.
	half := PhotonFlux(ebeam, mp, q2, w, nu, 1-2*(1-eps))
	if math.Abs(got/half-2) > 1e-12 {
		t.Fatalf("invalid flux ratio: got=%v, want=2", got/half)
	}
}
