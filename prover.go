package mirage

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/fft"
	"github.com/woopuiyung/mirage/internal/logging"
	"github.com/woopuiyung/mirage/internal/multicore"
	"github.com/woopuiyung/mirage/internal/multiexp"
	"github.com/woopuiyung/mirage/internal/shape"
	"github.com/woopuiyung/mirage/internal/trace"
	"github.com/woopuiyung/mirage/internal/transcript"
)

// provingAssignment drives a circuit once with real witness values,
// recording the A/B/C evaluation vectors, the density of every
// query, and the per-aux-block Pedersen-style commitments. Ported from
// original_source/src/mirage/prover.rs's ProvingAssignment.
type provingAssignment struct {
	aAuxDensity   *multiexp.DensityTracker
	bInputDensity *multiexp.DensityTracker
	bAuxDensity   *multiexp.DensityTracker

	a, b, c []fr.Element

	inputAssignment []fr.Element
	auxAssignment   []fr.Element

	kappa3s         []fr.Element
	piDs            []curve.G1Affine
	auxBlocks       [][]fr.Element
	auxBlockIndices []int
	schedule        []EntryKind

	pk         *ProvingKey
	transcript *transcript.Transcript
	worker     multicore.Worker
	err        error
}

func (pa *provingAssignment) Alloc(annotation string, value ValueFn) (Variable, error) {
	v, err := value()
	if err != nil {
		return Variable{}, err
	}
	pa.auxAssignment = append(pa.auxAssignment, v)
	pa.aAuxDensity.AddElement()
	pa.bAuxDensity.AddElement()
	return AuxVariable(len(pa.auxAssignment) - 1), nil
}

func (pa *provingAssignment) AllocInput(annotation string, value ValueFn) (Variable, error) {
	v, err := value()
	if err != nil {
		return Variable{}, err
	}
	pa.inputAssignment = append(pa.inputAssignment, v)
	b := v.Bytes()
	pa.transcript.AppendMessage("input", b[:])
	pa.bInputDensity.AddElement()
	pa.schedule = append(pa.schedule, EntryPublicInput)
	return InputVariable(len(pa.inputAssignment) - 1), nil
}

func (pa *provingAssignment) AllocRandom(annotation string) (Variable, fr.Element, bool, error) {
	value := pa.transcript.ChallengeFr("random")
	v, err := pa.AllocInput(annotation, func() (fr.Element, error) { return value, nil })
	if err != nil {
		return Variable{}, fr.Element{}, false, err
	}
	pa.schedule[len(pa.schedule)-1] = EntryCoin
	return v, value, true, nil
}

func (pa *provingAssignment) EndAuxBlock(annotation string) {
	pa.schedule = append(pa.schedule, EntryAuxCommit)
	i := len(pa.auxBlockIndices)
	if i >= len(pa.kappa3s) {
		pa.err = ErrAuxBlockCountMismatch
		return
	}
	start := 0
	if i > 0 {
		start = pa.auxBlockIndices[i-1]
	}
	end := len(pa.auxAssignment)
	block := append([]fr.Element(nil), pa.auxAssignment[start:end]...)
	if i >= len(pa.pk.L)-1 || len(block) > len(pa.pk.L[i]) {
		pa.err = ErrShapeMismatch
		return
	}
	pa.auxBlocks = append(pa.auxBlocks, block)

	fut := multiexp.G1(pa.worker, pa.pk.L[i], 0, multiexp.FullDensity, block)
	piD, err := fut.Wait()
	if err != nil {
		pa.err = err
		return
	}
	// [ J_i(τ)/δ_i + δ_last·κ_3,i ]_1 (design note 9: the per-block commitment
	// blinds with the shared last delta, not the block's own).
	last := len(pa.pk.DeltaG1) - 1
	blind := curve.G1ScalarMul(&pa.pk.DeltaG1[last], &pa.kappa3s[i])
	var j1, j2 curve.G1Jac
	j1.FromAffine(&piD)
	j2.FromAffine(&blind)
	j1.AddAssign(&j2)
	piD.FromJacobian(&j1)

	rb := piD.RawBytes()
	pa.transcript.AppendG1("aux_commit", rb[:])
	pa.piDs = append(pa.piDs, piD)
	pa.auxBlockIndices = append(pa.auxBlockIndices, len(pa.auxAssignment))
}

// evalDensity is Enforce's per-row evaluator: it mirrors LinearCombination.Eval
// but also records, for every nonzero term visited, which input/aux index
// contributed — the density bitmap the A/B query MSMs use to skip
// provably-zero terms.
func evalDensity(lc LinearCombination, inputDensity, auxDensity *multiexp.DensityTracker, input, aux []fr.Element) fr.Element {
	var acc fr.Element
	for _, t := range lc {
		if t.Coeff.IsZero() {
			continue
		}
		var tmp fr.Element
		switch t.Var.Kind {
		case Input:
			tmp = input[t.Var.Idx]
			if inputDensity != nil {
				inputDensity.Inc(t.Var.Idx)
			}
		default:
			tmp = aux[t.Var.Idx]
			if auxDensity != nil {
				auxDensity.Inc(t.Var.Idx)
			}
		}
		tmp.Mul(&tmp, &t.Coeff)
		acc.Add(&acc, &tmp)
	}
	return acc
}

func (pa *provingAssignment) Enforce(annotation string, a, b, c LinearCombination) {
	// Inputs have full density in the A query: every public input also gets
	// a pinning constraint x_i·0 = 0 added after synthesis, so the A query
	// never needs an input-side density tracker.
	av := evalDensity(a, nil, pa.aAuxDensity, pa.inputAssignment, pa.auxAssignment)
	bv := evalDensity(b, pa.bInputDensity, pa.bAuxDensity, pa.inputAssignment, pa.auxAssignment)
	// C has no query of its own (only the combined βA+αB+C query, which has
	// full density), so neither density tracker applies here.
	cv := evalDensity(c, nil, nil, pa.inputAssignment, pa.auxAssignment)
	pa.a = append(pa.a, av)
	pa.b = append(pa.b, bv)
	pa.c = append(pa.c, cv)
}

func (pa *provingAssignment) PushNamespace(string)   {}
func (pa *provingAssignment) PopNamespace()          {}
func (pa *provingAssignment) Root() ConstraintSystem { return pa }

var _ CcConstraintSystem = (*provingAssignment)(nil)

// CreateRandomProof samples r, s and one κ_3 per explicit aux block from rng,
// then calls CreateProof. It also returns the plaintext aux-block vectors,
// the same way the original returns them alongside the proof so a caller
// can separately run cp_link against them.
func CreateRandomProof(circuit CcCircuit, pk *ProvingKey, rng io.Reader) (*Proof, [][]fr.Element, error) {
	r, err := curve.RandomFr(rng)
	if err != nil {
		return nil, nil, err
	}
	s, err := curve.RandomFr(rng)
	if err != nil {
		return nil, nil, err
	}
	kappa3s := make([]fr.Element, circuit.NumAuxBlocks())
	for i := range kappa3s {
		kappa3s[i], err = curve.RandomFr(rng)
		if err != nil {
			return nil, nil, err
		}
	}
	return CreateProof(circuit, pk, r, s, kappa3s)
}

// CreateProof runs the Mirage prover against pk with explicit
// blinding r, s, and one κ_3 per explicit EndAuxBlock call.
func CreateProof(circuit CcCircuit, pk *ProvingKey, r, s fr.Element, kappa3s []fr.Element) (*Proof, [][]fr.Element, error) {
	if len(kappa3s) != circuit.NumAuxBlocks() {
		return nil, nil, ErrAuxBlockCountMismatch
	}

	span := trace.Start("create_proof")
	defer span.End()
	log := logging.Logger("prover")

	pa := &provingAssignment{
		aAuxDensity:   multiexp.NewDensityTracker(),
		bInputDensity: multiexp.NewDensityTracker(),
		bAuxDensity:   multiexp.NewDensityTracker(),
		kappa3s:       kappa3s,
		pk:            pk,
		transcript:    transcript.New(),
		worker:        multicore.NewWorker(),
	}

	var one fr.Element
	one.SetOne()
	if _, err := pa.AllocInput("one", func() (fr.Element, error) { return one, nil }); err != nil {
		return nil, nil, err
	}

	synthSpan := trace.Start("synthesis")
	if err := circuit.Synthesize(pa); err != nil {
		synthSpan.End()
		return nil, nil, err
	}
	synthSpan.End()
	if pa.err != nil {
		return nil, nil, pa.err
	}
	if len(pa.auxBlockIndices) != len(kappa3s) {
		return nil, nil, ErrAuxBlockCountMismatch
	}
	if err := checkShape(pa, pk); err != nil {
		return nil, nil, err
	}

	// Pinning constraints: x_i·0 = 0 for every public input (including the
	// constant), giving the A query full density over inputs.
	for i := 0; i < len(pa.inputAssignment); i++ {
		lc := LinearCombination{}.Add(InputVariable(i), one)
		pa.Enforce("pinning", lc, LinearCombination{}, LinearCombination{})
	}

	w := pa.worker

	hSpan := trace.Start("h_commit")
	domain, err := fft.NewDomain(len(pa.a))
	if err != nil {
		hSpan.End()
		return nil, nil, ErrPolynomialDegreeTooLarge
	}

	aCoeffs := domain.IFFT(pa.a, w)
	aCoeffs = domain.CosetFFT(aCoeffs, w)
	bCoeffs := domain.IFFT(pa.b, w)
	bCoeffs = domain.CosetFFT(bCoeffs, w)
	cCoeffs := domain.IFFT(pa.c, w)
	cCoeffs = domain.CosetFFT(cCoeffs, w)

	fft.MulAssign(aCoeffs, bCoeffs)
	fft.SubAssign(aCoeffs, cCoeffs)
	domain.DivideByZOnCoset(aCoeffs)
	hCoeffs := domain.ICosetFFT(aCoeffs, w)
	hCoeffs = hCoeffs[:len(hCoeffs)-1]

	if len(hCoeffs) != len(pk.H) {
		return nil, nil, ErrInvalidVerifyingKey
	}
	hFut := multiexp.G1(w, pk.H, 0, multiexp.FullDensity, hCoeffs)
	hSpan.End()

	mSpan := trace.Start("msm_setup")

	finalStart := 0
	if n := len(pa.auxBlockIndices); n > 0 {
		finalStart = pa.auxBlockIndices[n-1]
	}
	finalAux := pa.auxAssignment[finalStart:]
	lastBlock := len(pk.L) - 1
	lFut := multiexp.G1(w, pk.L[lastBlock], 0, multiexp.FullDensity, finalAux)

	numInputs := len(pa.inputAssignment)

	aInputsFut := multiexp.G1(w, pk.A, 0, multiexp.FullDensity, pa.inputAssignment)
	aAuxFut := multiexp.G1(w, pk.A, numInputs, pa.aAuxDensity, pa.auxAssignment)

	b1InputsFut := multiexp.G1(w, pk.B1, 0, pa.bInputDensity, pa.inputAssignment)
	b1AuxFut := multiexp.G1(w, pk.B1, numInputs, pa.bAuxDensity, pa.auxAssignment)

	b2InputsFut := multiexp.G2(w, pk.B2, 0, pa.bInputDensity, pa.inputAssignment)
	b2AuxFut := multiexp.G2(w, pk.B2, numInputs, pa.bAuxDensity, pa.auxAssignment)

	for i := range pk.DeltaG1 {
		if pk.DeltaG1[i].IsInfinity() || pk.DeltaG2[i].IsInfinity() {
			mSpan.End()
			return nil, nil, ErrUnexpectedIdentity
		}
	}
	mSpan.End()

	foldSpan := trace.Start("pre_msm_fold")
	last := len(pk.DeltaG1) - 1

	gA := curve.G1ScalarMul(&pk.DeltaG1[last], &r)
	addG1(&gA, &pk.Alpha)

	gB := curve.G2ScalarMul(&pk.DeltaG2[last], &s)
	addG2(&gB, &pk.Beta2)

	var rs fr.Element
	rs.Mul(&r, &s)
	gC := curve.G1ScalarMul(&pk.DeltaG1[last], &rs)
	for i, k3 := range kappa3s {
		neg := curve.G1ScalarMul(&pk.DeltaG1[i], &k3)
		var negJ curve.G1Jac
		negJ.FromAffine(&neg)
		negJ.Neg(&negJ)
		var negAff curve.G1Affine
		negAff.FromJacobian(&negJ)
		addG1(&gC, &negAff)
	}
	{
		sAlpha := curve.G1ScalarMul(&pk.Alpha, &s)
		addG1(&gC, &sAlpha)
		rBeta := curve.G1ScalarMul(&pk.Beta1, &r)
		addG1(&gC, &rBeta)
	}
	foldSpan.End()

	waitSpan := trace.Start("wait_msms")
	aAnswer, err := aInputsFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	aAuxAns, err := aAuxFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	addG1(&aAnswer, &aAuxAns)
	addG1(&gA, &aAnswer)
	sAAnswer := curve.G1ScalarMul(&aAnswer, &s)
	addG1(&gC, &sAAnswer)

	b1Answer, err := b1InputsFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	b1AuxAns, err := b1AuxFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	addG1(&b1Answer, &b1AuxAns)

	b2Answer, err := b2InputsFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	b2AuxAns, err := b2AuxFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	addG2(&b2Answer, &b2AuxAns)
	addG2(&gB, &b2Answer)

	rB1Answer := curve.G1ScalarMul(&b1Answer, &r)
	addG1(&gC, &rB1Answer)

	hVal, err := hFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	addG1(&gC, &hVal)

	lVal, err := lFut.Wait()
	if err != nil {
		waitSpan.End()
		return nil, nil, err
	}
	addG1(&gC, &lVal)
	waitSpan.End()

	log.Debug().Int("aux_blocks", len(pa.piDs)).Msg("proof assembled")

	return &Proof{A: gA, B: gB, C: gC, D: pa.piDs}, pa.auxBlocks, nil
}

func addG1(acc *curve.G1Affine, other *curve.G1Affine) {
	var j1, j2 curve.G1Jac
	j1.FromAffine(acc)
	j2.FromAffine(other)
	j1.AddAssign(&j2)
	acc.FromJacobian(&j1)
}

func addG2(acc *curve.G2Affine, other *curve.G2Affine) {
	var j1, j2 curve.G2Jac
	j1.FromAffine(acc)
	j2.FromAffine(other)
	j1.AddAssign(&j2)
	acc.FromJacobian(&j1)
}

// checkShape compares the circuit's just-synthesized structure against the
// one pk was generated for, via internal/shape's structural fingerprint, so
// a stale or mismatched proving key is rejected with ErrShapeMismatch
// instead of an out-of-bounds panic deep inside an MSM. EndAuxBlock makes
// the same check against pk.L during synthesis, before its own MSM.
func checkShape(pa *provingAssignment, pk *ProvingKey) error {
	// pa.schedule[0] is the reserved constant wire "one", allocated directly
	// in CreateProof rather than via circuit.Synthesize; GenerateParameters's
	// key-assembly pass reserves that same slot without a schedule entry, so
	// it must be stripped here to compare like with like.
	got := buildShape(len(pa.inputAssignment), pa.auxBlockIndices, len(pa.auxAssignment), pa.schedule[1:])
	want := buildShape(pk.NumInputs, pk.AuxBlockBounds[1:len(pk.AuxBlockBounds)-1], pk.NumAux, pk.Schedule)
	if !got.Equal(&want) {
		return ErrShapeMismatch
	}
	return nil
}

func buildShape(numInputs int, blockBounds []int, numAux int, schedule []EntryKind) shape.Shape {
	sizes := make([]int, 0, len(blockBounds)+1)
	prev := 0
	for _, b := range blockBounds {
		sizes = append(sizes, b-prev)
		prev = b
	}
	sizes = append(sizes, numAux-prev)

	sched := make([]shape.EntryKind, len(schedule))
	for i, e := range schedule {
		sched[i] = shape.EntryKind(e)
	}

	return shape.Shape{
		NumPublicInputs: numInputs,
		AuxBlockSizes:   sizes,
		Schedule:        sched,
	}
}
