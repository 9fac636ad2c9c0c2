// Package dummyengine is a toy field/curve used only by unit tests that
// need small, hand-checkable numbers instead of the real curve's field
// size, mirroring original_source/src/mirage/tests' DummyEngine (prime
// field r = 64513, "points" represented by their own scalar,
// pairing(a, b) = a*b). Mirage's real setup/prover/verifier/kw15 packages
// are hardwired to gnark-crypto's bn254, not generic over the pairing
// engine the way original_source's bellman fork is, so this toy engine
// cannot be substituted into them the way DummyEngine is substituted into
// generate_parameters/create_proof/verify_proof in the Rust tests. Instead
// it backs a standalone evaluation of the same closed-form formulas those
// packages use (barycentric Lagrange coefficients, the H-query basis) over
// Scalar, to reproduce test_xordemo's exact-value assertions as a
// structural check on those formulas.
package dummyengine

// Modulus is the toy field's prime, exactly as used throughout
// original_source's test suite.
const Modulus uint64 = 64513

// Scalar is an element of Z/64513Z.
type Scalar uint64

func NewScalar(v uint64) Scalar { return Scalar(v % Modulus) }

func (a Scalar) Add(b Scalar) Scalar { return Scalar((uint64(a) + uint64(b)) % Modulus) }

func (a Scalar) Sub(b Scalar) Scalar {
	return Scalar((uint64(a) + Modulus - uint64(b)) % Modulus)
}

func (a Scalar) Mul(b Scalar) Scalar { return Scalar((uint64(a) * uint64(b)) % Modulus) }

// Exp computes a^e mod Modulus by square-and-multiply.
func (a Scalar) Exp(e uint64) Scalar {
	result := Scalar(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Inverse computes a^-1 via Fermat's little theorem (Modulus is prime).
func (a Scalar) Inverse() Scalar { return a.Exp(Modulus - 2) }

// LagrangeBasisAt evaluates the r-th Lagrange basis polynomial of an
// m-element multiplicative subgroup generated by omega, at tau:
// L_r(tau) = (omega^r/m)*(tau^m-1)/(tau-omega^r). Same closed form as
// setup.go's lagrangeCoefficients, kept independent here since setup.go
// only operates over gnark-crypto's fr.Element.
func LagrangeBasisAt(omega Scalar, r int, m uint64, tau Scalar) Scalar {
	omegaR := omega.Exp(uint64(r))
	numerator := tau.Exp(m).Sub(NewScalar(1))
	denominator := tau.Sub(omegaR)
	return omegaR.Mul(NewScalar(m).Inverse()).Mul(numerator).Mul(denominator.Inverse())
}

// Point is the toy engine's single group: G1 = G2 = GT = Fr, with
// scalar multiplication as field multiplication. This simplification is
// also why a KW15 key derived from the group identity rather than a real
// generator goes unnoticed against it: identity (0) behaves like "no
// generator" only when multiplication by it is the only operation ever
// exercised, which a real curve's generator would catch immediately.
type Point = Scalar

// ScalarMul returns s*p in the toy group.
func ScalarMul(p Point, s Scalar) Point { return p.Mul(s) }

// Pairing is the toy bilinear map e(a, b) = a*b.
func Pairing(a, b Point) Scalar { return a.Mul(b) }
