// Package fft is the evaluation-domain engine: radix-2
// DFT/iDFT and coset variants over Fr, plus the pointwise operations the
// prover's quotient-polynomial computation needs. The butterfly network,
// bit-reversal permutation and parallel split-recombine algorithm are
// hand-written here, ported from original_source/src/domain.rs — this is
// this package's hard core and is deliberately not delegated to
// gnark-crypto's own fft package. Only the scalar-field 2-adicity data
// (the m-th root of unity and the multiplicative coset generator) is
// sourced from gnark-crypto/.../fr/fft.NewDomain, since hand-deriving a
// primitive root from first principles would reimplement exactly the part
// of gnark-crypto that is safe and standard to reuse.
package fft

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gfft "github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/woopuiyung/mirage/internal/multicore"
)

// ErrDegreeTooLarge is returned by NewDomain when the requested size would
// need more than the scalar field's 2-adicity worth of doublings.
var ErrDegreeTooLarge = errors.New("fft: requested domain size exceeds the scalar field's 2-adic capacity")

// Domain is a radix-2 evaluation domain of size m = 2^logM over Fr.
type Domain struct {
	m             uint64
	logM          uint32
	generator     fr.Element // primitive m-th root of unity
	generatorInv  fr.Element
	mInv          fr.Element // 1/m
	cosetShift    fr.Element // multiplicative generator g, for coset_fft
	cosetShiftInv fr.Element
}

// Size is the domain's cardinality m (a power of two).
func (d *Domain) Size() uint64 { return d.m }

// Generator is the domain's primitive m-th root of unity.
func (d *Domain) Generator() fr.Element { return d.generator }

// NewDomain builds the smallest power-of-two domain able to hold minSize
// coefficients/evaluations.
func NewDomain(minSize int) (*Domain, error) {
	if minSize < 1 {
		minSize = 1
	}
	logM := uint32(bits.Len(uint(minSize - 1)))
	m := uint64(1) << logM

	// Delegate only the root-of-unity derivation to gnark-crypto; panics
	// there (size beyond the field's 2-adicity) are turned into our own
	// sentinel error instead of propagating a panic to callers.
	gd, err := safeNewGnarkDomain(m)
	if err != nil {
		return nil, err
	}

	var mInv fr.Element
	mInv.SetUint64(m)
	mInv.Inverse(&mInv)

	d := &Domain{
		m:          m,
		logM:       logM,
		generator:  gd.Generator,
		mInv:       mInv,
		cosetShift: gd.FrMultiplicativeGen,
	}
	d.generatorInv.Inverse(&d.generator)
	d.cosetShiftInv.Inverse(&d.cosetShift)
	return d, nil
}

func safeNewGnarkDomain(m uint64) (gd *gfft.Domain, err error) {
	defer func() {
		if r := recover(); r != nil {
			gd = nil
			err = ErrDegreeTooLarge
		}
	}()
	return gfft.NewDomain(m), nil
}

// pad zero-extends (or truncates, though callers never truncate) coeffs to
// exactly d.m elements, matching from_coeffs' padding behavior.
func (d *Domain) pad(coeffs []fr.Element) []fr.Element {
	if uint64(len(coeffs)) == d.m {
		return coeffs
	}
	out := make([]fr.Element, d.m)
	copy(out, coeffs)
	return out
}

// FFT evaluates coeffs (padded to domain size) at the domain's m-th roots of
// unity, in place.
func (d *Domain) FFT(coeffs []fr.Element, w multicore.Worker) []fr.Element {
	a := d.pad(coeffs)
	bestFFT(a, w, d.generator, d.logM)
	return a
}

// IFFT is FFT's inverse: interpolates evaluations back to coefficients.
func (d *Domain) IFFT(evals []fr.Element, w multicore.Worker) []fr.Element {
	a := d.pad(evals)
	bestFFT(a, w, d.generatorInv, d.logM)
	for i := range a {
		a[i].Mul(&a[i], &d.mInv)
	}
	return a
}

// CosetFFT evaluates coeffs over the coset g·H of the domain H.
func (d *Domain) CosetFFT(coeffs []fr.Element, w multicore.Worker) []fr.Element {
	a := d.pad(coeffs)
	distributePowers(a, w, d.cosetShift)
	bestFFT(a, w, d.generator, d.logM)
	return a
}

// ICosetFFT is CosetFFT's inverse.
func (d *Domain) ICosetFFT(evals []fr.Element, w multicore.Worker) []fr.Element {
	a := d.pad(evals)
	bestFFT(a, w, d.generatorInv, d.logM)
	for i := range a {
		a[i].Mul(&a[i], &d.mInv)
	}
	distributePowers(a, w, d.cosetShiftInv)
	return a
}

// distributePowers multiplies a[i] by g^i in place, parallelized across w.
func distributePowers(a []fr.Element, w multicore.Worker, g fr.Element) {
	if g.IsZero() {
		return
	}
	_ = w.Scope(len(a), func(start, length int) error {
		var cur fr.Element
		cur.Exp(g, big.NewInt(int64(start)))
		for i := start; i < start+length; i++ {
			a[i].Mul(&a[i], &cur)
			cur.Mul(&cur, &g)
		}
		return nil
	})
}

// MulAssign computes the pointwise product a[i] *= b[i]; a and b must have
// equal length.
func MulAssign(a, b []fr.Element) {
	for i := range a {
		a[i].Mul(&a[i], &b[i])
	}
}

// SubAssign computes the pointwise difference a[i] -= b[i].
func SubAssign(a, b []fr.Element) {
	for i := range a {
		a[i].Sub(&a[i], &b[i])
	}
}

// Z evaluates the vanishing polynomial z(x) = x^m - 1 at tau.
func (d *Domain) Z(tau *fr.Element) fr.Element {
	var z fr.Element
	z.Exp(*tau, new(big.Int).SetUint64(d.m))
	var one fr.Element
	one.SetOne()
	z.Sub(&z, &one)
	return z
}

// DivideByZOnCoset multiplies every element of a (assumed to already be
// coset-evaluations) by 1/z(g), where g is the coset shift — the one
// nonzero value z takes on every point of the coset g·H.
func (d *Domain) DivideByZOnCoset(a []fr.Element) {
	i := d.Z(&d.cosetShift)
	i.Inverse(&i)
	for j := range a {
		a[j].Mul(&a[j], &i)
	}
}

// bestFFT dispatches to the parallel implementation once the domain is
// bigger than the per-thread chunk a single core would otherwise handle
// (parallel once m exceeds 2^log_cpus), falling back to the
// serial butterfly network otherwise.
func bestFFT(a []fr.Element, w multicore.Worker, omega fr.Element, logN uint32) {
	logCPUs := uint32(w.LogNumThreads())
	if logN <= logCPUs {
		serialFFT(a, omega, logN)
		return
	}
	parallelFFT(a, w, omega, logN, logCPUs)
}

// serialFFT is the textbook in-place radix-2 Cooley-Tukey DFT: bit-reversal
// permutation followed by logN butterfly rounds.
func serialFFT(a []fr.Element, omega fr.Element, logN uint32) {
	n := uint32(len(a))
	bitReverse(a, logN)

	for s := uint32(1); s <= logN; s++ {
		m := uint64(1) << s
		var wM fr.Element
		wM.Exp(omega, new(big.Int).SetUint64(uint64(n)/m))

		for k := uint64(0); k < uint64(n); k += m {
			var w fr.Element
			w.SetOne()
			half := m / 2
			for j := uint64(0); j < half; j++ {
				var t fr.Element
				t.Mul(&w, &a[k+j+half])
				var u fr.Element
				u.Set(&a[k+j])
				a[k+j].Add(&u, &t)
				a[k+j+half].Sub(&u, &t)
				w.Mul(&w, &wM)
			}
		}
	}
}

func bitReverse(a []fr.Element, logN uint32) {
	n := uint32(len(a))
	for k := uint32(0); k < n; k++ {
		rk := bits.Reverse32(k) >> (32 - logN)
		if k < rk {
			a[k], a[rk] = a[rk], a[k]
		}
	}
}

// parallelFFT reproduces domain.rs's parallel_fft: split the domain into
// 2^logCPUs interleaved cosets, run an independent serial sub-FFT on each
// (accumulating twiddle-weighted contributions from every original index
// first), then interleave the sub-results back into a. The second Scope's
// reads of tmp are safe only because the first Scope has already joined,
// via multicore.Worker.Scope's join-before-return guarantee.
func parallelFFT(a []fr.Element, w multicore.Worker, omega fr.Element, logN, logCPUs uint32) {
	numCPUs := 1 << logCPUs
	logNewN := logN - logCPUs
	newN := 1 << logNewN

	tmp := make([][]fr.Element, numCPUs)
	for j := range tmp {
		tmp[j] = make([]fr.Element, newN)
	}

	var newOmega fr.Element
	newOmega.Exp(omega, big.NewInt(int64(numCPUs)))

	_ = w.Scope(numCPUs, func(jStart, jLen int) error {
		for j := jStart; j < jStart+jLen; j++ {
			var omegaJ fr.Element
			omegaJ.Exp(omega, big.NewInt(int64(j)))
			var omegaStep fr.Element
			omegaStep.Exp(omega, big.NewInt(int64(j)<<logNewN))

			var elt fr.Element
			elt.SetOne()
			for i := 0; i < newN; i++ {
				for s := 0; s < numCPUs; s++ {
					idx := (i + (s << logNewN)) % (1 << logN)
					var t fr.Element
					t.Mul(&a[idx], &elt)
					tmp[j][i].Add(&tmp[j][i], &t)
					elt.Mul(&elt, &omegaStep)
				}
				elt.Mul(&elt, &omegaJ)
			}
			serialFFT(tmp[j], newOmega, logNewN)
		}
		return nil
	})

	mask := uint64(1)<<logCPUs - 1
	_ = w.Scope(len(a), func(chunkStart, chunkLen int) error {
		idx := uint64(chunkStart)
		for i := chunkStart; i < chunkStart+chunkLen; i++ {
			a[i] = tmp[idx&mask][idx>>logCPUs]
			idx++
		}
		return nil
	})
}
