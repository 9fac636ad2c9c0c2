// Package commit is the Pedersen commitment layer (non-linking
// half): CommitKey and Commit, ported from original_source/src/commit.rs.
package commit

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/multicore"
	"github.com/woopuiyung/mirage/internal/multiexp"
)

// CommitKey holds bases g_1...g_n plus a blinding base h.
type CommitKey struct {
	Generators []curve.G1Affine
	Blinder    curve.G1Affine
}

// NewCommitKey samples n+1 independent random G1 bases.
func NewCommitKey(n int, rng io.Reader) (*CommitKey, error) {
	gens := make([]curve.G1Affine, n)
	for i := range gens {
		s, err := curve.RandomFr(rng)
		if err != nil {
			return nil, err
		}
		gens[i] = curve.G1ScalarMul(&curve.G1Gen, &s)
	}
	s, err := curve.RandomFr(rng)
	if err != nil {
		return nil, err
	}
	blinder := curve.G1ScalarMul(&curve.G1Gen, &s)
	return &CommitKey{Generators: gens, Blinder: blinder}, nil
}

// Commit computes commit(x, r) = Σ x_i·g_i + r·h, via one MSM over the
// generators plus one scalar multiplication for the blinder.
func Commit(ck *CommitKey, x []fr.Element, r fr.Element) (curve.G1Affine, error) {
	w := multicore.NewWorker()
	fut := multiexp.G1(w, ck.Generators, 0, multiexp.FullDensity, x)
	acc, err := fut.Wait()
	if err != nil {
		return curve.G1Affine{}, err
	}
	blinded := curve.G1ScalarMul(&ck.Blinder, &r)

	var j1, j2 curve.G1Jac
	j1.FromAffine(&acc)
	j2.FromAffine(&blinded)
	j1.AddAssign(&j2)

	var out curve.G1Affine
	out.FromJacobian(&j1)
	return out, nil
}
