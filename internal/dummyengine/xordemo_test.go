package dummyengine

import "testing"

// TestXorDemoQAPMatchesHandDerivedConstants reproduces the setup-side
// assertions of original_source/src/mirage/tests/mod.rs's test_xordemo
// directly over the toy field, evaluating the same closed-form formulas
// setup.go uses (LagrangeBasisAt, the H-query basis tau^i*t(tau)/delta, the
// r/s-blinded A/B proof terms) rather than calling setup.go/prover.go
// themselves, since those are hardwired to gnark-crypto's bn254 and cannot
// run against this field. XorDemo's R1CS (a, b booleans; c = a XOR b public)
// is transcribed from the same file's synthesize method; the domain points,
// root of unity, and every expected constant below are copied from that
// test's comments, which derive them independently via Sage.
func TestXorDemoQAPMatchesHandDerivedConstants(t *testing.T) {
	const m = 8
	omega := NewScalar(20201)
	if omega.Exp(m) != NewScalar(1) {
		t.Fatalf("omega^8 = %d, want 1: not an 8th root of unity", omega.Exp(m))
	}
	if omega.Exp(m/2) == NewScalar(1) {
		t.Fatalf("omega^4 = 1: not a primitive 8th root of unity")
	}

	tau := NewScalar(3673)
	alpha := NewScalar(48577)
	beta := NewScalar(22580)
	delta := NewScalar(5481)

	// t(tau) = tau^8 - 1, cross-checked against the product (tau-p_0)...(tau-p_7).
	tAtTau := tau.Exp(m).Sub(NewScalar(1))
	product := NewScalar(1)
	for i := uint64(0); i < m; i++ {
		product = product.Mul(tau.Sub(omega.Exp(i)))
	}
	if product != tAtTau {
		t.Fatalf("t(tau) product form = %d, closed form = %d", product, tAtTau)
	}

	// XorDemo's R1CS, 5 real constraints padded to the size-8 domain:
	//   (a_0 - a_2) * a_2 = 0        a boolean
	//   (a_0 - a_3) * a_3 = 0        b boolean
	//   (a_2 + a_2) * a_3 = a_2+a_3-a_1   c = a XOR b
	//   a_0 * 0 = 0                  input constraint
	//   a_1 * 0 = 0                  input constraint
	// Columns: a_0 = 1 (constant wire), a_1 = c (public), a_2 = a, a_3 = b (aux).
	negOne := NewScalar(Modulus - 1)
	aTerm := [4][m]Scalar{
		{NewScalar(1), NewScalar(1), NewScalar(0), NewScalar(1)},
		{NewScalar(0), NewScalar(0), NewScalar(0), NewScalar(0), NewScalar(1)},
		{negOne, NewScalar(0), NewScalar(2)},
		{NewScalar(0), negOne},
	}
	bTerm := [4][m]Scalar{
		{},
		{},
		{NewScalar(1)},
		{NewScalar(0), NewScalar(1), NewScalar(1)},
	}
	cTerm := [4][m]Scalar{
		{},
		{NewScalar(0), NewScalar(0), negOne},
		{NewScalar(0), NewScalar(0), NewScalar(1)},
		{NewScalar(0), NewScalar(0), NewScalar(1)},
	}

	evalColumn := func(rows [m]Scalar) Scalar {
		acc := NewScalar(0)
		for r := 0; r < m; r++ {
			acc = acc.Add(rows[r].Mul(LagrangeBasisAt(omega, r, m, tau)))
		}
		return acc
	}

	wantU := [4]Scalar{NewScalar(59158), NewScalar(48317), NewScalar(21767), NewScalar(10402)}
	wantV := [4]Scalar{NewScalar(0), NewScalar(0), NewScalar(60619), NewScalar(30791)}
	wantW := [4]Scalar{NewScalar(0), NewScalar(23320), NewScalar(41193), NewScalar(41193)}

	var u, v, w [4]Scalar
	for i := 0; i < 4; i++ {
		u[i] = evalColumn(aTerm[i])
		v[i] = evalColumn(bTerm[i])
		w[i] = evalColumn(cTerm[i])
		if u[i] != wantU[i] {
			t.Fatalf("u_%d = %d, want %d", i, u[i], wantU[i])
		}
		if v[i] != wantV[i] {
			t.Fatalf("v_%d = %d, want %d", i, v[i], wantV[i])
		}
		if w[i] != wantW[i] {
			t.Fatalf("w_%d = %d, want %d", i, w[i], wantW[i])
		}
	}

	aDensity, bDensity := 0, 0
	for i := 0; i < 4; i++ {
		if u[i] != NewScalar(0) {
			aDensity++
		}
		if v[i] != NewScalar(0) {
			bDensity++
		}
	}
	if aDensity != 4 {
		t.Fatalf("A query density = %d, want 4", aDensity)
	}
	if bDensity != 2 {
		t.Fatalf("B query density = %d, want 2", bDensity)
	}
	// a_0 (constant) and a_1 (c) are the public wires (IC density 2);
	// a_2 (a) and a_3 (b) are the aux wires (L density 2).

	// H query: 7 elements of the form tau^i * t(tau)/delta.
	const hLen = 7
	deltaInv := delta.Inverse()
	hQuery := make([]Scalar, hLen)
	coeff := deltaInv.Mul(tAtTau)
	cur := NewScalar(1)
	for i := 0; i < hLen; i++ {
		hQuery[i] = cur.Mul(coeff)
		cur = cur.Mul(tau)
	}
	if len(hQuery) != hLen {
		t.Fatalf("H query length = %d, want %d", len(hQuery), hLen)
	}

	// proof.a = alpha + delta*r + u_0+u_1+u_2 (a_3's witness value is 0);
	// proof.b = beta + delta*s + v_0+v_1+v_2, for the r, s and a=true, b=false
	// assignment test_xordemo proves with.
	r := NewScalar(27134)
	s := NewScalar(17146)

	proofA := alpha.Add(delta.Mul(r)).Add(u[0]).Add(u[1]).Add(u[2])
	proofB := beta.Add(delta.Mul(s)).Add(v[0]).Add(v[1]).Add(v[2])

	wantProofA := NewScalar(48577).Add(NewScalar(5481).Mul(r)).Add(wantU[0]).Add(wantU[1]).Add(wantU[2])
	wantProofB := NewScalar(22580).Add(NewScalar(5481).Mul(s)).Add(wantV[0]).Add(wantV[1]).Add(wantV[2])
	if proofA != wantProofA {
		t.Fatalf("proof.a = %d, want %d", proofA, wantProofA)
	}
	if proofB != wantProofB {
		t.Fatalf("proof.b = %d, want %d", proofB, wantProofB)
	}
}
