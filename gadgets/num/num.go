// Package num provides AllocatedNum, a thin wrapper pairing a Variable with
// its witness value, ported from original_source's gadgets::num module (used
// throughout original_source/src/mirage/tests/mod.rs to build test circuits).
// It is the only gadget this module carries; anything more elaborate belongs
// to a circuit's own Synthesize.
package num

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	mirage "github.com/woopuiyung/mirage"
)

// AllocatedNum is a field element allocated into a constraint system,
// together with the witness value it was given (zero/unset during
// setup-time synthesis).
type AllocatedNum struct {
	Variable mirage.Variable
	Value    fr.Element
}

// Alloc allocates a new auxiliary variable and records its witness value.
// The setup-time synthesizer never calls value, so n.Value stays at zero
// there; if value returns an error, n.Value is likewise left at zero.
func Alloc(cs mirage.ConstraintSystem, annotation string, value mirage.ValueFn) (AllocatedNum, error) {
	var n AllocatedNum
	v, err := cs.Alloc(annotation, func() (fr.Element, error) {
		val, e := value()
		if e == nil {
			n.Value = val
		}
		return val, e
	})
	if err != nil {
		return AllocatedNum{}, err
	}
	n.Variable = v
	return n, nil
}

// Inputize re-allocates n as a public input constrained equal to n's
// existing auxiliary variable, with one R1CS row: input·1 = n.
func Inputize(cs mirage.ConstraintSystem, annotation string, n AllocatedNum) (AllocatedNum, error) {
	var one fr.Element
	one.SetOne()
	input, err := cs.AllocInput(annotation, func() (fr.Element, error) { return n.Value, nil })
	if err != nil {
		return AllocatedNum{}, err
	}
	a := mirage.LinearCombination{}.Add(input, one)
	b := mirage.LinearCombination{}.AddConstant(one)
	c := mirage.LinearCombination{}.Add(n.Variable, one)
	cs.Enforce(annotation+"/inputize", a, b, c)
	return AllocatedNum{Variable: input, Value: n.Value}, nil
}

// Mul allocates and returns the product n*other, enforcing it with one R1CS
// row: n*other = product.
func Mul(cs mirage.ConstraintSystem, annotation string, n, other AllocatedNum) (AllocatedNum, error) {
	var product fr.Element
	product.Mul(&n.Value, &other.Value)

	out, err := Alloc(cs, annotation, func() (fr.Element, error) { return product, nil })
	if err != nil {
		return AllocatedNum{}, err
	}

	var one fr.Element
	one.SetOne()
	a := mirage.LinearCombination{}.Add(n.Variable, one)
	b := mirage.LinearCombination{}.Add(other.Variable, one)
	c := mirage.LinearCombination{}.Add(out.Variable, one)
	cs.Enforce(annotation, a, b, c)
	return out, nil
}
