package gate

import (
	"math"
	"testing"
)

const tol = 1e-9

func TestIdentity(t *testing.T) {
	u := Identity()
	if u[0][0] != 1 || u[1][1] != 1 || u[0][1] != 0 || u[1][0] != 0 {
		t.Fatalf("unexpected identity matrix: %v", u)
	}
}

func TestMulOrder(t *testing.T) {
	x := RotationXY(math.Pi, 0)
	z := RZ(math.Pi)
	// X then Z is Z*X in matrix order.
	u := Mul(z, x)
	v := Compose(x, z)
	if !EqualUpToPhase(u, v, tol) {
		t.Fatalf("Compose order disagrees with Mul order")
	}
}

func TestComposeEmpty(t *testing.T) {
	if !IsIdentity(Compose(), tol) {
		t.Fatalf("empty composition should be the identity")
	}
}

func TestDaggerIsInverse(t *testing.T) {
	u := Rotation(0.7, 1, 2, 3)
	if !IsIdentity(Mul(Dagger(u), u), tol) {
		t.Fatalf("dagger(u)*u is not the identity")
	}
	if !IsIdentity(Mul(u, Dagger(u)), tol) {
		t.Fatalf("u*dagger(u) is not the identity")
	}
}

func TestRotationZeroAxis(t *testing.T) {
	u := Rotation(1.3, 0, 0, 0)
	if u != Identity() {
		t.Fatalf("zero axis should yield the exact identity, got %v", u)
	}
}

func TestRotationFullTurn(t *testing.T) {
	// A 2pi rotation is the identity only up to a global phase of -1.
	u := Rotation(2*math.Pi, 1, 0, 0)
	if !IsIdentity(u, tol) {
		t.Fatalf("2pi rotation should equal identity up to phase")
	}
	if math.Abs(real(u[0][0])+1) > tol {
		t.Fatalf("2pi rotation should carry phase -1, got %v", u[0][0])
	}
}

func TestRotationXYAxes(t *testing.T) {
	x := RotationXY(math.Pi, 0)
	pauliX := Matrix{{0, 1}, {1, 0}}
	if !EqualUpToPhase(x, pauliX, tol) {
		t.Fatalf("pi rotation about X is not Pauli X up to phase")
	}
	y := RotationXY(math.Pi, math.Pi/2)
	pauliY := Matrix{{0, -1i}, {1i, 0}}
	if !EqualUpToPhase(y, pauliY, tol) {
		t.Fatalf("pi rotation about Y is not Pauli Y up to phase")
	}
}

func TestRZ(t *testing.T) {
	z := RZ(math.Pi)
	pauliZ := Matrix{{1, 0}, {0, -1}}
	if !EqualUpToPhase(z, pauliZ, tol) {
		t.Fatalf("pi rotation about Z is not Pauli Z up to phase")
	}
	if !IsIdentity(RZ(0), tol) {
		t.Fatalf("zero Z rotation should be the identity")
	}
}

func TestEqualUpToPhase(t *testing.T) {
	u := RotationXY(math.Pi/2, 0.3)
	phased := u
	phase := complex(math.Cos(1.1), math.Sin(1.1))
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			phased[i][j] *= phase
		}
	}
	if !EqualUpToPhase(u, phased, tol) {
		t.Fatalf("matrices differing only by a global phase should compare equal")
	}
	other := RotationXY(math.Pi/2, 0.4)
	if EqualUpToPhase(u, other, tol) {
		t.Fatalf("distinct rotations should not compare equal")
	}
}
