package mirage

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestProvingKeyRoundTrip(t *testing.T) {
	circuit := &xorCircuit{a: true, b: false}
	trapdoors := randTrapdoors(t, circuit.NumAuxBlocks())
	pk, _, err := GenerateParameters(circuit, trapdoors)
	if err != nil {
		t.Fatalf("GenerateParameters: %v", err)
	}

	var buf bytes.Buffer
	if _, err := pk.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var got ProvingKey
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if !got.Alpha.Equal(&pk.Alpha) || !got.Beta1.Equal(&pk.Beta1) {
		t.Fatal("Alpha/Beta1 mismatch after round trip")
	}
	if got.NumInputs != pk.NumInputs || got.NumAux != pk.NumAux {
		t.Fatalf("NumInputs/NumAux mismatch: got (%d,%d) want (%d,%d)", got.NumInputs, got.NumAux, pk.NumInputs, pk.NumAux)
	}
	if len(got.L) != len(pk.L) {
		t.Fatalf("aux block count mismatch: got %d want %d", len(got.L), len(pk.L))
	}
	for b := range pk.L {
		if len(got.L[b]) != len(pk.L[b]) {
			t.Fatalf("L[%d] length mismatch", b)
		}
		for i := range pk.L[b] {
			if !got.L[b][i].Equal(&pk.L[b][i]) {
				t.Fatalf("L[%d][%d] mismatch after round trip", b, i)
			}
		}
	}
	if len(got.Schedule) != len(pk.Schedule) {
		t.Fatalf("schedule length mismatch")
	}
	for i := range pk.Schedule {
		if got.Schedule[i] != pk.Schedule[i] {
			t.Fatalf("schedule[%d] mismatch", i)
		}
	}
}

func TestVerifyingKeyRoundTrip(t *testing.T) {
	circuit := &xorCircuit{a: false, b: true}
	trapdoors := randTrapdoors(t, circuit.NumAuxBlocks())
	_, vk, err := GenerateParameters(circuit, trapdoors)
	if err != nil {
		t.Fatalf("GenerateParameters: %v", err)
	}

	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var got VerifyingKey
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if !got.Alpha.Equal(&vk.Alpha) || !got.Gamma2.Equal(&vk.Gamma2) {
		t.Fatal("Alpha/Gamma2 mismatch after round trip")
	}
	if got.NumPublicInputs != vk.NumPublicInputs {
		t.Fatalf("NumPublicInputs mismatch: got %d want %d", got.NumPublicInputs, vk.NumPublicInputs)
	}
	if len(got.IC) != len(vk.IC) {
		t.Fatalf("IC length mismatch")
	}
	for i := range vk.IC {
		if !got.IC[i].Equal(&vk.IC[i]) {
			t.Fatalf("IC[%d] mismatch after round trip", i)
		}
	}
}

// TestProofRoundTripThenVerify round-trips a proof through WriteTo/ReadFrom
// and checks the decoded copy still verifies, exercising marshal.go and the
// prover/verifier together.
func TestProofRoundTripThenVerify(t *testing.T) {
	circuit := &xorCircuit{a: true, b: true}
	trapdoors := randTrapdoors(t, circuit.NumAuxBlocks())
	proof, _, vk := setupAndProve(t, circuit, trapdoors)

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var got Proof
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	pvk, err := PrepareVerifyingKey(vk)
	if err != nil {
		t.Fatalf("PrepareVerifyingKey: %v", err)
	}

	var zero fr.Element // a XOR b = 0 for a = b = true
	if err := VerifyProof(pvk, &got, []fr.Element{zero}); err != nil {
		t.Fatalf("VerifyProof on round-tripped proof: %v", err)
	}
}
