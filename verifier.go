package mirage

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/logging"
	"github.com/woopuiyung/mirage/internal/trace"
	"github.com/woopuiyung/mirage/internal/transcript"
)

// PrepareVerifyingKey precomputes e(α, β) and the negated γ/δ points a
// verifier needs, so VerifyProof reduces to one transcript replay and one
// multi-pairing call. Ported from original_source/src/mirage/verifier.rs's
// prepare_verifying_key.
func PrepareVerifyingKey(vk *VerifyingKey) (*PreparedVerifyingKey, error) {
	alphaBeta, err := curve.Pair([]curve.G1Affine{vk.Alpha}, []curve.G2Affine{vk.Beta2})
	if err != nil {
		return nil, err
	}

	var negGamma curve.G2Jac
	negGamma.FromAffine(&vk.Gamma2)
	negGamma.Neg(&negGamma)
	var negGamma2 curve.G2Affine
	negGamma2.FromJacobian(&negGamma)

	negDeltas := make([]curve.G2Affine, len(vk.DeltaG2))
	for i := range vk.DeltaG2 {
		var j curve.G2Jac
		j.FromAffine(&vk.DeltaG2[i])
		j.Neg(&j)
		negDeltas[i].FromJacobian(&j)
	}

	return &PreparedVerifyingKey{
		VK:         vk,
		AlphaBeta:  alphaBeta,
		NegGamma2:  negGamma2,
		NegDeltaG2: negDeltas,
	}, nil
}

// VerifyProof checks proof against publicInputs (the circuit's own
// AllocInput values, excluding the constant and any coins, in allocation
// order). It replays the verifying key's recorded transcript schedule to
// re-derive every coin exactly as the prover did, accumulating the IC
// combination, before running the single multi-pairing check that
// verification reduces to.
func VerifyProof(pvk *PreparedVerifyingKey, proof *Proof, publicInputs []fr.Element) error {
	span := trace.Start("verify_proof")
	defer span.End()
	log := logging.Logger("verifier")

	vk := pvk.VK
	t := transcript.New()

	var one fr.Element
	one.SetOne()
	var accJ curve.G1Jac
	accJ.FromAffine(&vk.IC[0])
	{
		b := one.Bytes()
		t.AppendMessage("input", b[:])
	}

	publicIdx, icIdx, auxIdx := 0, 1, 0
	for _, entry := range vk.Schedule {
		switch entry {
		case EntryCoin:
			coin := t.ChallengeFr("random")
			b := coin.Bytes()
			t.AppendMessage("input", b[:])
			if icIdx >= len(vk.IC) {
				return ErrInvalidVerifyingKey
			}
			term := curve.G1ScalarMul(&vk.IC[icIdx], &coin)
			var j curve.G1Jac
			j.FromAffine(&term)
			accJ.AddAssign(&j)
			icIdx++
		case EntryPublicInput:
			if publicIdx >= len(publicInputs) || icIdx >= len(vk.IC) {
				return ErrInvalidVerifyingKey
			}
			x := publicInputs[publicIdx]
			term := curve.G1ScalarMul(&vk.IC[icIdx], &x)
			var j curve.G1Jac
			j.FromAffine(&term)
			accJ.AddAssign(&j)
			b := x.Bytes()
			t.AppendMessage("input", b[:])
			publicIdx++
			icIdx++
		case EntryAuxCommit:
			if auxIdx >= len(proof.D) {
				return ErrInvalidVerifyingKey
			}
			rb := proof.D[auxIdx].RawBytes()
			t.AppendG1("aux_commit", rb[:])
			auxIdx++
		}
	}
	if icIdx != len(vk.IC) || auxIdx != len(proof.D) || publicIdx != len(publicInputs) {
		return ErrInvalidVerifyingKey
	}
	if len(pvk.NegDeltaG2) != len(proof.D)+1 {
		return ErrInvalidVerifyingKey
	}

	var accAffine curve.G1Affine
	accAffine.FromJacobian(&accJ)

	// Rearranged verification equation (original_source/src/mirage/verifier.rs):
	// A*B + acc*(-γ) + C*(-δ_last) + Σ D_i*(-δ_i) == α*β, computed as one
	// Miller loop so only a single final exponentiation is ever paid.
	last := len(pvk.NegDeltaG2) - 1
	g1s := make([]curve.G1Affine, 0, 3+len(proof.D))
	g2s := make([]curve.G2Affine, 0, 3+len(proof.D))
	g1s = append(g1s, proof.A, accAffine, proof.C)
	g2s = append(g2s, proof.B, pvk.NegGamma2, pvk.NegDeltaG2[last])
	for i, d := range proof.D {
		g1s = append(g1s, d)
		g2s = append(g2s, pvk.NegDeltaG2[i])
	}

	ml, err := curve.MillerLoop(g1s, g2s)
	if err != nil {
		return err
	}
	fe := curve.FinalExponentiation(&ml)
	if fe != pvk.AlphaBeta {
		log.Debug().Msg("proof failed pairing check")
		return ErrInvalidProof
	}
	return nil
}
