package main

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	mirage "github.com/woopuiyung/mirage"
	"github.com/woopuiyung/mirage/gadgets/num"
)

// productCircuit proves knowledge of three private factors a, b, c whose
// product equals a public input x, while folding in one Fiat-Shamir coin so
// the CLI's demo setup/prove/verify round trip exercises AllocRandom and
// EndAuxBlock the same way the package tests do. a and b belong to the
// first (explicit) aux block, c to the implicit trailing block.
type productCircuit struct {
	a, b, c fr.Element
}

func (circuit *productCircuit) NumAuxBlocks() int { return 1 }

func (circuit *productCircuit) Synthesize(cs mirage.CcConstraintSystem) error {
	a, err := num.Alloc(cs, "a", func() (fr.Element, error) { return circuit.a, nil })
	if err != nil {
		return err
	}
	b, err := num.Alloc(cs, "b", func() (fr.Element, error) { return circuit.b, nil })
	if err != nil {
		return err
	}
	cs.EndAuxBlock("ab")

	coinVar, coinVal, _, err := cs.AllocRandom("blind")
	if err != nil {
		return err
	}
	coin := num.AllocatedNum{Variable: coinVar, Value: coinVal}

	c, err := num.Alloc(cs, "c", func() (fr.Element, error) { return circuit.c, nil })
	if err != nil {
		return err
	}

	ab, err := num.Mul(cs, "a*b", a, b)
	if err != nil {
		return err
	}
	abc, err := num.Mul(cs, "ab*c", ab, c)
	if err != nil {
		return err
	}
	if _, err := num.Mul(cs, "abc*coin", abc, coin); err != nil {
		return err
	}

	if _, err := num.Inputize(cs, "x", abc); err != nil {
		return err
	}
	return nil
}
