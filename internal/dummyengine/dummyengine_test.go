package dummyengine

import "testing"

func TestFieldArithmetic(t *testing.T) {
	a := NewScalar(40000)
	b := NewScalar(30000)

	if got := a.Add(b); got != NewScalar(40000+30000-Modulus) {
		t.Fatalf("Add did not reduce mod %d: got %d", Modulus, got)
	}
	if got := a.Sub(a); got != NewScalar(0) {
		t.Fatalf("Sub(a,a) = %d, want 0", got)
	}
	if got := a.Mul(NewScalar(1)); got != a {
		t.Fatalf("Mul by 1 changed value: got %d want %d", got, a)
	}
	if got := a.Mul(a.Inverse()); got != NewScalar(1) {
		t.Fatalf("a * a^-1 = %d, want 1", got)
	}
}

func TestExpMatchesRepeatedMul(t *testing.T) {
	a := NewScalar(12345)
	want := NewScalar(1)
	for i := 0; i < 7; i++ {
		want = want.Mul(a)
	}
	if got := a.Exp(7); got != want {
		t.Fatalf("Exp(7) = %d, want %d", got, want)
	}
}

// TestPairingIsBilinear pins the toy engine's e(a,b) = a*b relation.
func TestPairingIsBilinear(t *testing.T) {
	a := NewScalar(7)
	b := NewScalar(11)
	c := NewScalar(13)

	lhs := Pairing(ScalarMul(a, c), b)
	rhs := Pairing(a, ScalarMul(b, c))
	if lhs != rhs {
		t.Fatalf("e(c*a, b) = %d != e(a, c*b) = %d", lhs, rhs)
	}
}

func TestIdentityBasedKeyIsZero(t *testing.T) {
	// Exercises the blind spot documented on Point: in this toy group, a
	// "public key" derived from the identity (0) is 0 whatever the
	// trapdoor, since 0*anything == 0.
	trapdoor := NewScalar(9999)
	fromIdentity := ScalarMul(Point(0), trapdoor)
	if fromIdentity != NewScalar(0) {
		t.Fatalf("expected identity-derived key to be 0, got %d", fromIdentity)
	}
}
