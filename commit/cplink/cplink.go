// Package cplink proves that k pairs of Pedersen commitments, each pair
// under a different key, open to the same vector — the glue between the
// SNARK's own per-aux-block commitments and externally usable Pedersen
// commitments. Ported from
// original_source/src/commit/cp_link.rs, with a row-structure fix applied:
// see the note on BuildMatrix below.
package cplink

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/commit"
	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/kw15"
)

// Key bundles the shared commitment key K (used for the "C" side of every
// block) and one independent key J_i per block (used for the "D" side).
type Key struct {
	K  *commit.CommitKey
	Js []*commit.CommitKey
}

// Dims names the vector length X_i of each of the k linked blocks.
type Dims []int

// BuildMatrix lays out the KW15 matrix for the relation
//
//	C_i = Commit(K,  X_i, r_i1)
//	D_i = Commit(J_i, X_i, r_i2)
//
// Witness columns per block i are (X_i ‖ r_i1 ‖ r_i2); commitment rows are
// interleaved (C_0, D_0, C_1, D_1, ...).
//
// original_source/src/commit/cp_link.rs places both K's and J_i's
// generators, and both blinding bases, onto the same row (cmt_i_1),
// leaving cmt_i_2 without the second commitment's own constraints — a
// discrepancy with the relation above, which plainly needs two separate
// rows, each tied to its own commitment. BuildMatrix instead puts K's
// generators and blinder (for r_i1) on row cmt_i_1, and J_i's generators
// and blinder (for r_i2) on row cmt_i_2, matching the relation rather than
// the original source's row indices.
func BuildMatrix(key *Key, dims Dims) *kw15.Matrix {
	numBlocks := len(dims)
	rows := 2 * numBlocks
	cols := 0
	colOffset := make([]int, numBlocks)
	for i, n := range dims {
		colOffset[i] = cols
		cols += n + 2 // X_i, r_i1, r_i2
	}

	m := kw15.NewMatrix(rows, cols)
	for i, n := range dims {
		base := colOffset[i]
		cmtI1 := 2 * i
		cmtI2 := 2*i + 1

		for j := 0; j < n; j++ {
			m.AddEntry(cmtI1, base+j, key.K.Generators[j])
			m.AddEntry(cmtI2, base+j, key.Js[i].Generators[j])
		}
		m.AddEntry(cmtI1, base+n, key.K.Blinder)     // r_i1 binds row cmt_i_1
		m.AddEntry(cmtI2, base+n+1, key.Js[i].Blinder) // r_i2 binds row cmt_i_2
	}
	return m
}

// KeyGen samples the shared and per-block commitment keys and derives the
// KW15 proving/verifying keys for the resulting matrix.
func KeyGen(dims Dims, rng io.Reader) (*Key, *kw15.ProvingKey, *kw15.VerifyingKey, error) {
	maxDim := 0
	for _, n := range dims {
		if n > maxDim {
			maxDim = n
		}
	}
	k, err := commit.NewCommitKey(maxDim, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	js := make([]*commit.CommitKey, len(dims))
	for i, n := range dims {
		js[i], err = commit.NewCommitKey(n, rng)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	key := &Key{K: k, Js: js}

	matrix := BuildMatrix(key, dims)
	pk, vk, err := kw15.KeyGen(matrix, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	return key, pk, vk, nil
}

// Witness assembles the flat KW15 witness vector (X_i ‖ r_i1 ‖ r_i2 per
// block, concatenated) from the per-block vectors and blinders.
func Witness(xs [][]fr.Element, r1s, r2s []fr.Element) []fr.Element {
	var out []fr.Element
	for i, x := range xs {
		out = append(out, x...)
		out = append(out, r1s[i], r2s[i])
	}
	return out
}

// Commitments computes the interleaved (C_0, D_0, C_1, D_1, ...) vector a
// verifier checks against.
func Commitments(key *Key, xs [][]fr.Element, r1s, r2s []fr.Element) ([]curve.G1Affine, error) {
	out := make([]curve.G1Affine, 0, 2*len(xs))
	for i, x := range xs {
		c, err := commit.Commit(key.K, x, r1s[i])
		if err != nil {
			return nil, err
		}
		d, err := commit.Commit(key.Js[i], x, r2s[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c, d)
	}
	return out, nil
}

// Prove produces π for the witness implied by xs/r1s/r2s.
func Prove(pk *kw15.ProvingKey, xs [][]fr.Element, r1s, r2s []fr.Element) (*kw15.Proof, error) {
	return kw15.Prove(pk, Witness(xs, r1s, r2s))
}

// Verify checks π against the interleaved commitments vector.
func Verify(vk *kw15.VerifyingKey, commitments []curve.G1Affine, proof *kw15.Proof) (bool, error) {
	return kw15.Verify(vk, commitments, proof)
}
