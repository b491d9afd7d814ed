package gate

import (
	"math"
	"math/cmplx"
)

// Matrix is a 2x2 complex unitary acting on a single qubit, indexed
// [row][column].
type Matrix [2][2]complex128

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0}, {0, 1}}
}

// Mul returns the matrix product a*b, i.e. the operation b applied first and
// a applied second.
func Mul(a, b Matrix) Matrix {
	var m Matrix
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return m
}

// Compose multiplies a gate word in application order: seq[0] is applied
// first. Returns identity for an empty word.
func Compose(seq ...Matrix) Matrix {
	u := Identity()
	for _, g := range seq {
		u = Mul(g, u)
	}
	return u
}

// Dagger returns the conjugate transpose.
func Dagger(m Matrix) Matrix {
	return Matrix{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// Rotation returns the rotation by angle theta about the Bloch-sphere axis
// (nx, ny, nz). The axis is normalized internally; a zero axis yields the
// identity regardless of theta.
func Rotation(theta, nx, ny, nz float64) Matrix {
	norm := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if norm == 0 {
		return Identity()
	}
	nx, ny, nz = nx/norm, ny/norm, nz/norm
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	// cos(t/2) I - i sin(t/2) (nx X + ny Y + nz Z)
	return Matrix{
		{c - 1i*s*complex(nz, 0), -1i*s*complex(nx, -ny)},
		{-1i*s*complex(nx, ny), c + 1i*s*complex(nz, 0)},
	}
}

// RotationXY returns the rotation by theta about the in-plane axis at azimuth
// phi (phi=0 is X, phi=pi/2 is Y).
func RotationXY(theta, phi float64) Matrix {
	return Rotation(theta, math.Cos(phi), math.Sin(phi), 0)
}

// RZ returns the rotation by angle about the Z axis.
func RZ(angle float64) Matrix {
	return Rotation(angle, 0, 0, 1)
}

// EqualUpToPhase reports whether a and b describe the same operation up to a
// global phase, within tolerance tol on every entry.
func EqualUpToPhase(a, b Matrix, tol float64) bool {
	// Anchor the phase on b's largest entry.
	bi, bj := 0, 0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(b[i][j]) > cmplx.Abs(b[bi][bj]) {
				bi, bj = i, j
			}
		}
	}
	if cmplx.Abs(b[bi][bj]) < tol {
		return false
	}
	phase := a[bi][bj] / b[bi][bj]
	if math.Abs(cmplx.Abs(phase)-1) > tol {
		return false
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(a[i][j]-phase*b[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// IsIdentity reports whether m is the identity up to a global phase.
func IsIdentity(m Matrix, tol float64) bool {
	return EqualUpToPhase(m, Identity(), tol)
}
