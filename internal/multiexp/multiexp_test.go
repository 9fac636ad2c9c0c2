package multiexp

import (
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/multicore"
)

func TestG1FullDensity(t *testing.T) {
	w := multicore.NewWorker()
	bases := []curve.G1Affine{curve.G1Gen, curve.G1Gen, curve.G1Gen}
	var a, b, c fr.Element
	a.SetUint64(2)
	b.SetUint64(3)
	c.SetUint64(5)
	exps := []fr.Element{a, b, c}

	got, err := G1(w, bases, 0, FullDensity, exps).Wait()
	if err != nil {
		t.Fatalf("G1: %v", err)
	}

	var sum fr.Element
	sum.Add(&a, &b)
	sum.Add(&sum, &c)
	want := curve.G1ScalarMul(&curve.G1Gen, &sum)
	if !got.Equal(&want) {
		t.Fatalf("G1 full density mismatch")
	}
}

// TestG1SkipIsBaseOffsetNotDensityOffset is a regression test for the bug
// fixed during this work: density indexing must stay local to the exponent
// vector, independent of skip, which only selects a sub-range of the bases
// vector (e.g. the aux half of a combined input+aux query).
func TestG1SkipIsBaseOffsetNotDensityOffset(t *testing.T) {
	w := multicore.NewWorker()
	// bases[0] belongs to an unrelated "input" half that skip=1 must ignore
	// entirely; bases[1:] is the "aux" half the exponents/density actually
	// describe.
	bases := []curve.G1Affine{curve.G1Gen, curve.G1Gen, curve.G1Gen}

	density := NewDensityTracker()
	density.AddElement() // index 0: live
	density.AddElement() // index 1: not referenced by any constraint
	density.Inc(0)

	var a, b fr.Element
	a.SetUint64(7)
	b.SetUint64(9) // must be skipped: density index 1 (local), not live

	got, err := G1(w, bases, 1, density, []fr.Element{a, b}).Wait()
	if err != nil {
		t.Fatalf("G1: %v", err)
	}
	want := curve.G1ScalarMul(&curve.G1Gen, &a)
	if !got.Equal(&want) {
		t.Fatalf("G1 with skip+density mismatch: density must index exponents locally, not bases[skip:]")
	}
}

func TestG1SkipsZeroExponents(t *testing.T) {
	w := multicore.NewWorker()
	bases := []curve.G1Affine{curve.G1Gen, curve.G1Gen, curve.G1Gen}
	var a, zero fr.Element
	a.SetUint64(11)

	got, err := G1(w, bases, 0, FullDensity, []fr.Element{a, zero, a}).Wait()
	if err != nil {
		t.Fatalf("G1: %v", err)
	}
	var sum fr.Element
	sum.Add(&a, &a)
	want := curve.G1ScalarMul(&curve.G1Gen, &sum)
	if !got.Equal(&want) {
		t.Fatalf("G1 should skip zero-exponent terms")
	}
}

// TestG1RunsConcurrently is a regression test for the bug fixed during this
// work: G1 must dispatch its MultiExp onto its own goroutine and return a
// Future immediately, so callers launching several MSMs back to back (as
// CreateProof does for H, L, A, B1, B2) get real overlap instead of each
// call blocking the next. A blocking implementation would serialize n
// calls into roughly n*d; launching them concurrently first keeps the
// total near one d, which this test checks for with headroom.
func TestG1RunsConcurrently(t *testing.T) {
	w := multicore.NewWorker()
	bases := make([]curve.G1Affine, 2000)
	exps := make([]fr.Element, 2000)
	for i := range bases {
		bases[i] = curve.G1Gen
		exps[i].SetUint64(uint64(i + 1))
	}

	const n = 6
	start := time.Now()
	futs := make([]*Future, n)
	for i := range futs {
		futs[i] = G1(w, bases, 0, FullDensity, exps)
	}
	launched := time.Since(start)

	for _, f := range futs {
		if _, err := f.Wait(); err != nil {
			t.Fatalf("G1: %v", err)
		}
	}
	total := time.Since(start)

	if launched > total/2 {
		t.Fatalf("launching %d Futures took %v, not much less than waiting on all of them (%v); G1 may be blocking instead of dispatching asynchronously", n, launched, total)
	}
}

func TestDensityTrackerTotals(t *testing.T) {
	d := NewDensityTracker()
	for i := 0; i < 4; i++ {
		d.AddElement()
	}
	d.Inc(0)
	d.Inc(0) // idempotent
	d.Inc(2)

	if got := d.GetTotalDensity(); got != 2 {
		t.Fatalf("GetTotalDensity() = %d, want 2", got)
	}
	if !d.Get(0) || d.Get(1) || !d.Get(2) || d.Get(3) {
		t.Fatalf("unexpected density bits: %v %v %v %v", d.Get(0), d.Get(1), d.Get(2), d.Get(3))
	}
}
