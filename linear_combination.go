package mirage

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Term is one (Variable, coefficient) pair of a LinearCombination.
type Term struct {
	Var   Variable
	Coeff fr.Element
}

// LinearCombination is an ordered list of (Variable, coefficient) terms.
// Zero-coefficient terms are tolerated and simply contribute nothing when
// evaluated; callers are not required to filter them out before enforcing a
// constraint.
type LinearCombination []Term

// Add appends a term and returns the (possibly reallocated) combination, so
// calls can be chained.
func (lc LinearCombination) Add(v Variable, coeff fr.Element) LinearCombination {
	return append(lc, Term{Var: v, Coeff: coeff})
}

// AddConstant appends a term for the fixed One variable.
func (lc LinearCombination) AddConstant(coeff fr.Element) LinearCombination {
	return lc.Add(One, coeff)
}

// Eval computes ⟨lc, w⟩ given accessors for the input and aux halves of the
// assignment vector w.
func (lc LinearCombination) Eval(input, aux []fr.Element) fr.Element {
	var acc, tmp fr.Element
	for _, t := range lc {
		switch t.Var.Kind {
		case Input:
			tmp.Mul(&t.Coeff, &input[t.Var.Idx])
		default:
			tmp.Mul(&t.Coeff, &aux[t.Var.Idx])
		}
		acc.Add(&acc, &tmp)
	}
	return acc
}

// Constraint is one R1CS row: the predicate ⟨A,w⟩·⟨B,w⟩ = ⟨C,w⟩.
type Constraint struct {
	A, B, C LinearCombination
}
