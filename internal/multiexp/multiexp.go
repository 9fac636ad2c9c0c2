// Package multiexp is the fixed-base multi-scalar multiplication layer
// a density-aware wrapper around gnark-crypto's own
// Pippenger-style G1Jac.MultiExp/G2Jac.MultiExp, plus the future/wait handle
// the prover needs so it can launch several MSMs and join them
// in a fixed order.
package multiexp

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/multicore"
)

// Density selects which indices of an exponent vector actually contribute;
// FullDensity (nil) means every index contributes.
type Density interface {
	// BitLen is the number of indices this density tracker covers.
	BitLen() int
	// Get reports whether index i was ever referenced.
	Get(i int) bool
}

// FullDensity indicates every index in range is live; pass a nil Density
// wherever a query has no zero terms to skip.
var FullDensity Density = nil

// DensityTracker is a growable bitmap recording which aux/input indices
// were ever referenced by some linear combination during synthesis, used to
// skip provably-zero terms in the A/B query MSMs.
type DensityTracker struct {
	bits  []bool
	total int
}

// NewDensityTracker returns an empty tracker.
func NewDensityTracker() *DensityTracker {
	return &DensityTracker{}
}

// AddElement grows the tracker by one index, initially absent.
func (d *DensityTracker) AddElement() {
	d.bits = append(d.bits, false)
}

// Inc marks index i as referenced (idempotent).
func (d *DensityTracker) Inc(i int) {
	if !d.bits[i] {
		d.bits[i] = true
		d.total++
	}
}

// GetTotalDensity is the number of indices ever marked.
func (d *DensityTracker) GetTotalDensity() int { return d.total }

func (d *DensityTracker) BitLen() int  { return len(d.bits) }
func (d *DensityTracker) Get(i int) bool {
	if d == nil {
		return true
	}
	return d.bits[i]
}

// Future defers an MSM result; Wait is multiexp's single suspension point,
// matching the prover's concurrency model. The computation behind a Future
// is already running on its own goroutine by the time G1 returns, so
// several Futures launched back to back genuinely overlap instead of
// running one after another.
type Future struct {
	done   chan struct{}
	result curve.G1Affine
	err    error
}

func (f *Future) Wait() (curve.G1Affine, error) {
	<-f.done
	return f.result, f.err
}

// G1 computes Σ exponents[i]·bases[skip+i] over every index i admitted by
// density (or every index, if density is FullDensity). skip selects which
// sub-range of a combined bases vector (e.g. the aux half of a query that
// stores inputs and aux contiguously) to multiply against; density's index
// space is always local to exponents/bases[skip:], independent of skip.
// w bounds both the goroutine this call is dispatched on and the number of
// tasks gnark-crypto's own MultiExp splits itself across internally.
func G1(w multicore.Worker, bases []curve.G1Affine, skip int, density Density, exponents []fr.Element) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		filteredBases, filteredExp := filter(bases, skip, density, exponents)
		var res curve.G1Jac
		if _, err := res.MultiExp(filteredBases, filteredExp, ecc.MultiExpConfig{NbTasks: w.Concurrency()}); err != nil {
			f.err = err
			return
		}
		f.result.FromJacobian(&res)
	}()
	return f
}

// G2Future is G1's G2 analogue (used for the B2 query).
type G2Future struct {
	done   chan struct{}
	result curve.G2Affine
	err    error
}

func (f *G2Future) Wait() (curve.G2Affine, error) {
	<-f.done
	return f.result, f.err
}

func G2(w multicore.Worker, bases []curve.G2Affine, skip int, density Density, exponents []fr.Element) *G2Future {
	f := &G2Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		n := len(bases) - skip
		if density != nil {
			n = density.BitLen()
		}
		filteredBases := make([]curve.G2Affine, 0, n)
		filteredExp := make([]fr.Element, 0, n)
		for i := 0; i < len(exponents); i++ {
			if density != nil && !density.Get(i) {
				continue
			}
			if exponents[i].IsZero() {
				continue
			}
			filteredBases = append(filteredBases, bases[skip+i])
			filteredExp = append(filteredExp, exponents[i])
		}
		var res curve.G2Jac
		if _, err := res.MultiExp(filteredBases, filteredExp, ecc.MultiExpConfig{NbTasks: w.Concurrency()}); err != nil {
			f.err = err
			return
		}
		f.result.FromJacobian(&res)
	}()
	return f
}

func filter(bases []curve.G1Affine, skip int, density Density, exponents []fr.Element) ([]curve.G1Affine, []fr.Element) {
	n := len(bases) - skip
	filteredBases := make([]curve.G1Affine, 0, n)
	filteredExp := make([]fr.Element, 0, n)
	for i := 0; i < len(exponents); i++ {
		if density != nil && !density.Get(i) {
			continue
		}
		if exponents[i].IsZero() {
			continue
		}
		filteredBases = append(filteredBases, bases[skip+i])
		filteredExp = append(filteredExp, exponents[i])
	}
	return filteredBases, filteredExp
}
