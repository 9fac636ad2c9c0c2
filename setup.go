package mirage

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/fft"
	"github.com/woopuiyung/mirage/internal/logging"
	"github.com/woopuiyung/mirage/internal/multicore"
	"github.com/woopuiyung/mirage/internal/trace"
)

// keyAssembly is the "key-assembly" synthesizer: it
// drives the circuit once to record, per variable, its accumulated
// u_i(τ)/v_i(τ)/w_i(τ) Lagrange-interpolated value, using the standard
// barycentric trick (accumulate coeff·L_r(τ) per row instead of an O(n²)
// per-variable evaluation). It never needs witness values, so Alloc's
// ValueFn is never invoked.
type keyAssembly struct {
	numInputs int
	numAux    int

	auxBlockBounds []int
	schedule       []EntryKind

	u, v, w  []fr.Element // accumulators, indexed [inputs..., aux...]
	lagrange []fr.Element // L_r(τ), indexed by constraint row r
	row      int
}

func (ka *keyAssembly) varIndex(v Variable) int {
	if v.Kind == Input {
		return v.Idx
	}
	return ka.numInputs + v.Idx
}

func (ka *keyAssembly) Alloc(annotation string, _ ValueFn) (Variable, error) {
	v := AuxVariable(ka.numAux)
	ka.numAux++
	return v, nil
}

func (ka *keyAssembly) AllocInput(annotation string, _ ValueFn) (Variable, error) {
	v := InputVariable(ka.numInputs)
	ka.numInputs++
	ka.schedule = append(ka.schedule, EntryPublicInput)
	return v, nil
}

func (ka *keyAssembly) AllocRandom(annotation string) (Variable, fr.Element, bool, error) {
	v := InputVariable(ka.numInputs)
	ka.numInputs++
	ka.schedule = append(ka.schedule, EntryCoin)
	return v, fr.Element{}, false, nil
}

func (ka *keyAssembly) EndAuxBlock(annotation string) {
	ka.auxBlockBounds = append(ka.auxBlockBounds, ka.numAux)
	ka.schedule = append(ka.schedule, EntryAuxCommit)
}

func (ka *keyAssembly) Enforce(annotation string, a, b, c LinearCombination) {
	l := ka.lagrange[ka.row]
	ka.accumulate(ka.u, a, l)
	ka.accumulate(ka.v, b, l)
	ka.accumulate(ka.w, c, l)
	ka.row++
}

func (ka *keyAssembly) accumulate(acc []fr.Element, lc LinearCombination, l fr.Element) {
	for _, t := range lc {
		idx := ka.varIndex(t.Var)
		var contrib fr.Element
		contrib.Mul(&t.Coeff, &l)
		acc[idx].Add(&acc[idx], &contrib)
	}
}

func (ka *keyAssembly) PushNamespace(string)   {}
func (ka *keyAssembly) PopNamespace()          {}
func (ka *keyAssembly) Root() ConstraintSystem { return ka }

var _ CcConstraintSystem = (*keyAssembly)(nil)

// GenerateParameters runs the trusted setup for circuit: it evaluates every
// constraint's A/B/C linear combinations at τ (via Lagrange interpolation
// over the constraint-count domain), partitions aux variables into blocks
// using the circuit's own end_aux_block schedule, and assembles the query
// vectors the trusted setup needs.
func GenerateParameters(circuit CcCircuit, trapdoors Trapdoors) (*ProvingKey, *VerifyingKey, error) {
	span := trace.Start("generate_parameters")
	defer span.End()
	log := logging.Logger("setup")

	// Pass 1: synthesize once just to count constraints, so the domain size
	// (and hence the per-row Lagrange coefficients) is known before the
	// real accumulation pass runs. Input(0) is reserved, unseen by
	// Synthesize, for the constant wire "one" (mirrored in CreateProof).
	counter := &rowCounter{numInputs: 1}
	if err := circuit.Synthesize(counter); err != nil {
		return nil, nil, err
	}
	// Pinning constraints are added for every input slot (the constant,
	// public inputs, and coins alike), so the domain must hold counter.rows
	// plus counter.numInputs rows, not just the public-input subset.
	numConstraints := counter.rows + counter.numInputs

	domain, err := fft.NewDomain(numConstraints)
	if err != nil {
		return nil, nil, ErrPolynomialDegreeTooLarge
	}
	log.Debug().Uint64("domain_size", domain.Size()).Msg("evaluation domain sized")

	lagrange := lagrangeCoefficients(trapdoors.Tau, domain.Size(), domain.Generator())

	total := counter.numInputs + counter.numAux
	ka := &keyAssembly{
		numInputs: 1, // reserve Input(0) for the constant wire "one"
		lagrange:  lagrange,
		u:         make([]fr.Element, total),
		v:         make([]fr.Element, total),
		w:         make([]fr.Element, total),
	}
	if err := circuit.Synthesize(ka); err != nil {
		return nil, nil, err
	}
	// Pinning constraints: (x_i)·0 = 0 for every public input, added after
	// synthesis so the A-query has full density over inputs (design note:
	// "Densities vs. full density").
	for i := 0; i < ka.numInputs; i++ {
		l := ka.lagrange[ka.row]
		ka.u[i].Add(&ka.u[i], &l)
		ka.row++
	}

	numBlocks := len(ka.auxBlockBounds) + 1 // + implicit trailing block
	bounds := append(append([]int{0}, ka.auxBlockBounds...), ka.numAux)

	if len(trapdoors.Delta) != numBlocks {
		return nil, nil, ErrUnexpectedIdentity
	}
	for _, d := range trapdoors.Delta {
		if d.IsZero() {
			return nil, nil, ErrUnexpectedIdentity
		}
	}

	deltaG1 := make([]curve.G1Affine, numBlocks)
	deltaG2 := make([]curve.G2Affine, numBlocks)
	for b := 0; b < numBlocks; b++ {
		deltaG1[b] = curve.G1ScalarMul(&curve.G1Gen, &trapdoors.Delta[b])
		deltaG2[b] = curve.G2ScalarMul(&curve.G2Gen, &trapdoors.Delta[b])
	}
	lastDelta := trapdoors.Delta[numBlocks-1]
	var lastDeltaInv fr.Element
	lastDeltaInv.Inverse(&lastDelta)

	var gammaInv fr.Element
	gammaInv.Inverse(&trapdoors.Gamma)

	a := make([]curve.G1Affine, total)
	b1 := make([]curve.G1Affine, total)
	b2 := make([]curve.G2Affine, total)
	w := multicore.NewWorker()
	_ = w.Scope(total, func(start, length int) error {
		for i := start; i < start+length; i++ {
			a[i] = curve.G1ScalarMul(&curve.G1Gen, &ka.u[i])
			// b1[i]/b2[i] are left as the zero value when v_i(τ)==0: gnark-crypto's
			// affine representation of the point at infinity is X=Y=0, which is
			// exactly what a zero-value G1Affine/G2Affine already is.
			if !ka.v[i].IsZero() {
				b1[i] = curve.G1ScalarMul(&curve.G1Gen, &ka.v[i])
				b2[i] = curve.G2ScalarMul(&curve.G2Gen, &ka.v[i])
			}
		}
		return nil
	})

	// IC holds one entry per Input slot (slot 0 is the constant wire "one").
	ic := make([]curve.G1Affine, ka.numInputs)
	for i := 0; i < ka.numInputs; i++ {
		var icVal fr.Element
		icVal.Mul(&trapdoors.Beta, &ka.u[i])
		var tmp fr.Element
		tmp.Mul(&trapdoors.Alpha, &ka.v[i])
		icVal.Add(&icVal, &tmp)
		icVal.Add(&icVal, &ka.w[i])
		icVal.Mul(&icVal, &gammaInv)
		ic[i] = curve.G1ScalarMul(&curve.G1Gen, &icVal)
	}

	lQueries := make([][]curve.G1Affine, numBlocks)
	for blk := 0; blk < numBlocks; blk++ {
		start, end := bounds[blk], bounds[blk+1]
		var deltaInv fr.Element
		deltaInv.Inverse(&trapdoors.Delta[blk])
		q := make([]curve.G1Affine, end-start)
		for j := start; j < end; j++ {
			idx := ka.numInputs + j
			var lv fr.Element
			lv.Mul(&trapdoors.Beta, &ka.u[idx])
			var tmp fr.Element
			tmp.Mul(&trapdoors.Alpha, &ka.v[idx])
			lv.Add(&lv, &tmp)
			lv.Add(&lv, &ka.w[idx])
			lv.Mul(&lv, &deltaInv)
			q[j-start] = curve.G1ScalarMul(&curve.G1Gen, &lv)
		}
		lQueries[blk] = q
	}

	// H query: τ^i·t(τ)/δ_last for i ∈ [0, m-1).
	tTau := domain.Z(&trapdoors.Tau)
	hQuery := make([]curve.G1Affine, domain.Size()-1)
	var tauPow fr.Element
	tauPow.SetOne()
	for i := range hQuery {
		var hv fr.Element
		hv.Mul(&tauPow, &tTau)
		hv.Mul(&hv, &lastDeltaInv)
		hQuery[i] = curve.G1ScalarMul(&curve.G1Gen, &hv)
		tauPow.Mul(&tauPow, &trapdoors.Tau)
	}

	pk := &ProvingKey{
		Alpha:          curve.G1ScalarMul(&curve.G1Gen, &trapdoors.Alpha),
		Beta1:          curve.G1ScalarMul(&curve.G1Gen, &trapdoors.Beta),
		Beta2:          curve.G2ScalarMul(&curve.G2Gen, &trapdoors.Beta),
		DeltaG1:        deltaG1,
		DeltaG2:        deltaG2,
		H:              hQuery,
		A:              a,
		B1:             b1,
		B2:             b2,
		IC:             ic,
		L:              lQueries,
		NumInputs:      ka.numInputs,
		NumAux:         ka.numAux,
		AuxBlockBounds: bounds,
		Schedule:       ka.schedule,
	}
	vk := &VerifyingKey{
		Alpha:           pk.Alpha,
		Beta2:           pk.Beta2,
		Gamma2:          curve.G2ScalarMul(&curve.G2Gen, &trapdoors.Gamma),
		DeltaG2:         deltaG2,
		IC:              ic,
		NumPublicInputs: counter.publicInputs,
		Schedule:        ka.schedule,
	}
	return pk, vk, nil
}

// rowCounter is a minimal CcConstraintSystem used only to discover the row
// and public-input counts before the real Lagrange-accumulating pass.
type rowCounter struct {
	rows          int
	numInputs     int
	numAux        int
	publicInputs  int
	auxBlockCount int
}

func (c *rowCounter) Alloc(string, ValueFn) (Variable, error) {
	v := AuxVariable(c.numAux)
	c.numAux++
	return v, nil
}
func (c *rowCounter) AllocInput(string, ValueFn) (Variable, error) {
	v := InputVariable(c.numInputs)
	c.numInputs++
	c.publicInputs++
	return v, nil
}
func (c *rowCounter) AllocRandom(string) (Variable, fr.Element, bool, error) {
	v := InputVariable(c.numInputs)
	c.numInputs++
	return v, fr.Element{}, false, nil
}
func (c *rowCounter) EndAuxBlock(string) { c.auxBlockCount++ }
func (c *rowCounter) Enforce(string, LinearCombination, LinearCombination, LinearCombination) {
	c.rows++
}
func (c *rowCounter) PushNamespace(string)   {}
func (c *rowCounter) PopNamespace()          {}
func (c *rowCounter) Root() ConstraintSystem { return c }

var _ CcConstraintSystem = (*rowCounter)(nil)

// lagrangeCoefficients evaluates every Lagrange basis polynomial of an
// m-point domain (generator omega) at tau, via the barycentric identity
// L_r(τ) = (ω^r/m)·(τ^m-1)/(τ-ω^r).
func lagrangeCoefficients(tau fr.Element, m uint64, omega fr.Element) []fr.Element {
	var z fr.Element
	z.Exp(tau, new(big.Int).SetUint64(m))
	var one fr.Element
	one.SetOne()
	z.Sub(&z, &one)

	var mInv fr.Element
	mInv.SetUint64(m)
	mInv.Inverse(&mInv)

	out := make([]fr.Element, m)
	var omegaPow fr.Element
	omegaPow.SetOne()
	for i := uint64(0); i < m; i++ {
		var denom fr.Element
		denom.Sub(&tau, &omegaPow)
		denom.Inverse(&denom)

		var li fr.Element
		li.Mul(&z, &mInv)
		li.Mul(&li, &omegaPow)
		li.Mul(&li, &denom)
		out[i] = li

		omegaPow.Mul(&omegaPow, &omega)
	}
	return out
}
