package mirage

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// ValueFn supplies the witness value for a freshly allocated variable. It is
// invoked only when the constraint system is being driven by a prover (the
// setup-time synthesizer never calls it, and may pass a ValueFn that always
// returns ErrAssignmentMissing).
type ValueFn func() (fr.Element, error)

// ConstraintSystem is the builder interface a circuit uses to declare
// variables and constraints. Namespacing is accepted for
// annotation/debugging purposes but is a no-op with respect to the produced
// R1CS.
type ConstraintSystem interface {
	// Alloc allocates a new auxiliary variable.
	Alloc(annotation string, value ValueFn) (Variable, error)
	// AllocInput allocates a new public-input variable.
	AllocInput(annotation string, value ValueFn) (Variable, error)
	// Enforce records one R1CS row.
	Enforce(annotation string, a, b, c LinearCombination)
	PushNamespace(name string)
	PopNamespace()
	// Root returns the outermost ConstraintSystem a namespaced view wraps.
	Root() ConstraintSystem
}

// CcConstraintSystem extends ConstraintSystem with the commit-carrying
// operations: in-circuit Fiat-Shamir coins and aux-block boundaries
// (the commit-carrying extension).
type CcConstraintSystem interface {
	ConstraintSystem

	// AllocRandom allocates a public-input variable (a "coin") whose value
	// is derived deterministically from the transcript of everything
	// committed so far. At setup time no value is known yet, so the
	// returned Fr is the zero value and ok is false; at proof time ok is
	// always true. AllocRandom must never be called before at least one
	// EndAuxBlock.
	AllocRandom(annotation string) (Variable, fr.Element, bool, error)

	// EndAuxBlock closes the current aux block: every Aux variable
	// allocated since the previous EndAuxBlock (or since synthesis began)
	// belongs to the block being closed. At proof time this also computes
	// and absorbs that block's Pedersen-style commitment into the
	// transcript.
	EndAuxBlock(annotation string)
}

// CcCircuit is the contract a circuit implements to be usable with
// GenerateParameters/CreateProof/CreateRandomProof. Synthesize must be
// deterministic across the setup call and every proof call: the same
// sequence of Alloc/AllocInput/AllocRandom/Enforce/EndAuxBlock calls in the
// same order.
type CcCircuit interface {
	Synthesize(cs CcConstraintSystem) error
	// NumAuxBlocks reports how many EndAuxBlock calls Synthesize will make.
	NumAuxBlocks() int
}
