// Package curve is the scalar-field and group façade:
// aliases onto github.com/consensys/gnark-crypto's bn254 implementation,
// plus the handful of helpers (generators, random sampling, the pairing
// check) every other package in this module needs and that gnark-crypto
// does not expose as a single call.
package curve

import (
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type (
	Fr       = fr.Element
	G1Affine = bn254.G1Affine
	G1Jac    = bn254.G1Jac
	G2Affine = bn254.G2Affine
	G2Jac    = bn254.G2Jac
	GT       = bn254.GT
)

// G1Gen and G2Gen are the canonical generators of G1 and G2, used as the
// base point for trapdoor-derived public keys rather than the group
// identity: the original KW15 setup used G2::identity() as a base, which
// silently zeroes every derived key.
var (
	G1Gen G1Affine
	G2Gen G2Affine
)

func init() {
	_, _, g1, g2 := bn254.Generators()
	G1Gen = g1
	G2Gen = g2
}

// RandomFr draws a uniform element of Fr from r by rejection sampling:
// read fr.Bytes uniform bytes, interpret big-endian, and retry whenever the
// result falls in [q, 2^(8*fr.Bytes)) so every accepted draw is uniform over
// Fr with no modular-reduction bias. Every caller (CreateRandomProof,
// kw15.KeyGen, commit.NewCommitKey, cplink.KeyGen) threads its own r
// expecting it to be the actual entropy source, so r is never ignored here.
func RandomFr(r io.Reader) (Fr, error) {
	modulus := fr.Modulus()
	buf := make([]byte, fr.Bytes)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return fr.Element{}, err
		}
		v := new(big.Int).SetBytes(buf)
		if v.Cmp(modulus) >= 0 {
			continue
		}
		var x fr.Element
		x.SetBigInt(v)
		return x, nil
	}
}

// G1ScalarMul returns s*base in G1, affine.
func G1ScalarMul(base *G1Affine, s *Fr) G1Affine {
	var j G1Jac
	j.FromAffine(base)
	j.ScalarMultiplication(&j, s.BigInt(new(big.Int)))
	var out G1Affine
	out.FromJacobian(&j)
	return out
}

// G2ScalarMul returns s*base in G2, affine.
func G2ScalarMul(base *G2Affine, s *Fr) G2Affine {
	var j G2Jac
	j.FromAffine(base)
	j.ScalarMultiplication(&j, s.BigInt(new(big.Int)))
	var out G2Affine
	out.FromJacobian(&j)
	return out
}

// PairingCheck reports whether ∏ e(g1s[i], g2s[i]) == 1 in GT, i.e. a
// batched multi-Miller-loop followed by one final exponentiation. KW15's
// verifier and cp_link reduce to exactly one call of this.
func PairingCheck(g1s []G1Affine, g2s []G2Affine) (bool, error) {
	return bn254.PairingCheck(g1s, g2s)
}

// Pair computes the batched pairing ∏ e(g1s[i], g2s[i]) as a GT element
// (Miller loop plus final exponentiation), used once at PrepareVerifyingKey
// time to cache e(α, β).
func Pair(g1s []G1Affine, g2s []G2Affine) (GT, error) {
	return bn254.Pair(g1s, g2s)
}

// MillerLoop computes the batched Miller loop ∏ f(g1s[i], g2s[i]) without the
// final exponentiation, letting the Mirage verifier compare
// against a precomputed, already-exponentiated e(α, β) while paying for only
// one final exponentiation per VerifyProof call.
func MillerLoop(g1s []G1Affine, g2s []G2Affine) (GT, error) {
	return bn254.MillerLoop(g1s, g2s)
}

// FinalExponentiation raises a Miller-loop accumulator to the
// (p^12-1)/r power, the step that turns it into a genuine GT element
// comparable across differently-batched pairing computations.
func FinalExponentiation(z *GT) GT {
	return bn254.FinalExponentiation(z)
}
