package mirage

import "github.com/woopuiyung/mirage/internal/curve"

// EntryKind tags one step of the transcript schedule recorded in the VK
// the order in which PublicInput/Coin/AuxCommit entries
// occurred during setup synthesis, replayed identically by both prover and
// verifier.
type EntryKind uint8

const (
	EntryPublicInput EntryKind = iota
	EntryCoin
	EntryAuxCommit
)

// Trapdoors bundles the secret field elements a trusted setup consumes:
// α, β, γ, one δ per aux block including the implicit trailing block
// (δ_0...δ_{N-1}, N = circuit.NumAuxBlocks()+1), and the evaluation point τ.
type Trapdoors struct {
	Alpha, Beta, Gamma curve.Fr
	Delta              []curve.Fr
	Tau                curve.Fr
}

// ProvingKey is the Mirage proving key: query vectors plus the
// delta tower, indexed the same way for every variable (public inputs
// first, then aux, matching how the R1CS builder allocates them).
type ProvingKey struct {
	Alpha curve.G1Affine
	Beta1 curve.G1Affine
	Beta2 curve.G2Affine

	// DeltaG1/DeltaG2 hold δ_0...δ_{N-1}; the last entry (index N-1) is the
	// "main" blinding delta shared by the non-commit part of the proof and
	// by the final aux block's L query.
	DeltaG1 []curve.G1Affine
	DeltaG2 []curve.G2Affine

	H  []curve.G1Affine // H[i] = τ^i·t(τ)/δ_last · G1, i ∈ [0, m-1)
	A  []curve.G1Affine // A[j] = u_j(τ)·G1, over all variables (inputs then aux)
	B1 []curve.G1Affine // B1[j] = v_j(τ)·G1
	B2 []curve.G2Affine // B2[j] = v_j(τ)·G2
	IC []curve.G1Affine // IC[0] is the constant term; IC[1+i] per PublicInput/Coin slot

	// L holds one query vector per aux block; L[b] for b < len(L)-1 is
	// consumed inside EndAuxBlock to form that block's commitment; L[last]
	// is used directly in the prover's main MSM (design note 9).
	L [][]curve.G1Affine

	NumInputs      int
	NumAux         int
	AuxBlockBounds []int // length = numBlocks+1, half-open [bounds[b], bounds[b+1]) per block
	Schedule       []EntryKind
}

// VerifyingKey is the Mirage verifying key.
type VerifyingKey struct {
	Alpha  curve.G1Affine
	Beta2  curve.G2Affine
	Gamma2 curve.G2Affine

	DeltaG2 []curve.G2Affine // δ_0...δ_{N-1} · G2

	IC []curve.G1Affine

	NumPublicInputs int // raw circuit public inputs, excluding coins and the constant
	Schedule        []EntryKind
}

// PreparedVerifyingKey caches the pairing-side work VerifyProof would
// otherwise repeat on every call: e(α, β) and the negated γ/δ_i points that
// feed the single multi-pairing check.
type PreparedVerifyingKey struct {
	VK         *VerifyingKey
	AlphaBeta  curve.GT
	NegGamma2  curve.G2Affine
	NegDeltaG2 []curve.G2Affine // one negated delta per aux block, same order as VK.DeltaG2
}

// Proof is the Mirage proof: (A, B, C, D_0...D_{k-1}) where
// k = len(VerifyingKey.DeltaG2) - 1.
type Proof struct {
	A curve.G1Affine
	B curve.G2Affine
	C curve.G1Affine
	D []curve.G1Affine
}

// NumAuxBlocks is the total number of aux blocks, derived from the delta
// tower's length: the circuit's explicit blocks plus the implicit trailing
// block, so one more than CcCircuit.NumAuxBlocks().
func (pk *ProvingKey) NumAuxBlocks() int { return len(pk.DeltaG1) }
