// Package kw15 is the linear-subspace argument:
// given a public matrix M over G1, proves knowledge of a witness w such that
// commitments c = M·w, verified by a single multi-pairing check. Ported from
// original_source/src/kw15.rs's Matrix/ProvingKey/VerifyingKey/Proof and
// key_gen/prove/verify.
package kw15

import (
	"errors"
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/curveio"
	"github.com/woopuiyung/mirage/internal/multicore"
	"github.com/woopuiyung/mirage/internal/multiexp"
)

// ErrVerify is returned by Verify when the number of commitments does not
// match the verifying key; a failed pairing check is reported as false with
// a nil error.
var ErrVerify = errors.New("kw15: commitment count does not match the verifying key")

// Matrix is a sparse ℓ×t matrix over G1, stored as per-(row,col) entries;
// duplicate entries at the same (row, col) accumulate additively.
type Matrix struct {
	Rows, Cols int
	entries    map[[2]int]curve.G1Affine
}

// NewMatrix returns an all-zero rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, entries: map[[2]int]curve.G1Affine{}}
}

// AddEntry accumulates g into the (row, col) entry.
func (m *Matrix) AddEntry(row, col int, g curve.G1Affine) {
	key := [2]int{row, col}
	if cur, ok := m.entries[key]; ok {
		var jCur, jG curve.G1Jac
		jCur.FromAffine(&cur)
		jG.FromAffine(&g)
		jCur.AddAssign(&jG)
		var out curve.G1Affine
		out.FromJacobian(&jCur)
		m.entries[key] = out
	} else {
		m.entries[key] = g
	}
}

// rowEntries returns the nonzero entries of row i, keyed by column.
func (m *Matrix) rowEntries(i int) map[int]curve.G1Affine {
	out := map[int]curve.G1Affine{}
	for k, v := range m.entries {
		if k[0] == i {
			out[k[1]] = v
		}
	}
	return out
}

// ProvingKey holds P ∈ G1^t.
type ProvingKey struct {
	P []curve.G1Affine
}

// VerifyingKey holds c ∈ G2^ℓ and a ∈ G2.
type VerifyingKey struct {
	C2 []curve.G2Affine
	A2 curve.G2Affine
}

// Proof is a single π ∈ G1.
type Proof struct {
	Pi curve.G1Affine
}

// KeyGen samples the trapdoors k ∈ Fr^ℓ, a ∈ Fr and derives PK/VK for m.
//
// P_j = Σ_i k_i · M_{i,j} is accumulated per column with a dedicated mutex
// per column ("number of mutexes equals the number of witness
// columns"), matching key_gen's parallel accumulation in kw15.rs.
//
// C2_i and A2 use the canonical G2 generator as their base, not the group
// identity: the original Rust used E::G2::identity(), which zeroes the
// entire verifying key and only goes unnoticed because DummyEngine's toy
// group can't tell the difference.
func KeyGen(m *Matrix, rng io.Reader) (*ProvingKey, *VerifyingKey, error) {
	k := make([]fr.Element, m.Rows)
	for i := range k {
		v, err := curve.RandomFr(rng)
		if err != nil {
			return nil, nil, err
		}
		k[i] = v
	}
	a, err := curve.RandomFr(rng)
	if err != nil {
		return nil, nil, err
	}

	p := make([]curve.G1Jac, m.Cols)
	mus := make([]sync.Mutex, m.Cols)

	w := multicore.NewWorker()
	_ = w.Scope(m.Rows, func(start, length int) error {
		for i := start; i < start+length; i++ {
			for col, g := range m.rowEntries(i) {
				var contrib curve.G1Jac
				contrib.FromAffine(&g)
				contrib.ScalarMultiplication(&contrib, k[i].BigInt(new(big.Int)))
				mus[col].Lock()
				p[col].AddAssign(&contrib)
				mus[col].Unlock()
			}
		}
		return nil
	})

	pAffine := make([]curve.G1Affine, m.Cols)
	for j := range p {
		pAffine[j].FromJacobian(&p[j])
	}

	c2 := make([]curve.G2Affine, m.Rows)
	for i := range c2 {
		var kia fr.Element
		kia.Mul(&k[i], &a)
		c2[i] = curve.G2ScalarMul(&curve.G2Gen, &kia)
	}
	a2 := curve.G2ScalarMul(&curve.G2Gen, &a)

	return &ProvingKey{P: pAffine}, &VerifyingKey{C2: c2, A2: a2}, nil
}

// Prove computes π = Σ_j w_j · P_j.
func Prove(pk *ProvingKey, witness []fr.Element) (*Proof, error) {
	w := multicore.NewWorker()
	fut := multiexp.G1(w, pk.P, 0, multiexp.FullDensity, witness)
	pi, err := fut.Wait()
	if err != nil {
		return nil, err
	}
	return &Proof{Pi: pi}, nil
}

// Verify checks e(π, A2) · ∏_i e(c_i, C2_i)^{-1} = 1 via one multi-pairing.
func Verify(vk *VerifyingKey, commitments []curve.G1Affine, proof *Proof) (bool, error) {
	if len(commitments) != len(vk.C2) {
		return false, ErrVerify
	}
	g1s := make([]curve.G1Affine, 0, len(commitments)+1)
	g2s := make([]curve.G2Affine, 0, len(commitments)+1)

	g1s = append(g1s, proof.Pi)
	g2s = append(g2s, vk.A2)

	for i, c := range commitments {
		var neg curve.G2Affine
		neg.Neg(&vk.C2[i])
		g1s = append(g1s, c)
		g2s = append(g2s, neg)
	}

	ok, err := curve.PairingCheck(g1s, g2s)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// WriteProvingKey/ReadProvingKey, WriteVerifyingKey/ReadVerifyingKey and
// WriteProof/ReadProof implement the same wire format for KW15
// artifacts: write(P) / write(C2)‖write(A2) / write(π).

func WriteProvingKey(w io.Writer, pk *ProvingKey) error {
	return curveio.WriteG1Vector(w, pk.P)
}

func ReadProvingKey(r io.Reader) (*ProvingKey, error) {
	p, err := curveio.ReadG1Vector(r, true, true)
	if err != nil {
		return nil, err
	}
	return &ProvingKey{P: p}, nil
}

func WriteVerifyingKey(w io.Writer, vk *VerifyingKey) error {
	if err := curveio.WriteG2Vector(w, vk.C2); err != nil {
		return err
	}
	return curveio.WriteG2(w, &vk.A2)
}

func ReadVerifyingKey(r io.Reader) (*VerifyingKey, error) {
	c2, err := curveio.ReadG2Vector(r, true, true)
	if err != nil {
		return nil, err
	}
	a2, err := curveio.ReadG2(r, true, false)
	if err != nil {
		return nil, err
	}
	return &VerifyingKey{C2: c2, A2: a2}, nil
}

func WriteProof(w io.Writer, p *Proof) error {
	return curveio.WriteG1(w, &p.Pi)
}

func ReadProof(r io.Reader) (*Proof, error) {
	pi, err := curveio.ReadG1(r, true, true)
	if err != nil {
		return nil, err
	}
	return &Proof{Pi: pi}, nil
}
