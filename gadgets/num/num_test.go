package num

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	mirage "github.com/woopuiyung/mirage"
)

// fakeCS is a minimal mirage.ConstraintSystem that records every allocated
// witness value and constraint, so gadget tests can check both the witness
// assignment gadgets compute and the R1CS rows they enforce.
type fakeCS struct {
	input       []fr.Element
	aux         []fr.Element
	constraints []mirage.Constraint
}

func newFakeCS() *fakeCS {
	var one fr.Element
	one.SetOne()
	return &fakeCS{input: []fr.Element{one}}
}

func (cs *fakeCS) Alloc(_ string, value mirage.ValueFn) (mirage.Variable, error) {
	v, err := value()
	if err != nil {
		return mirage.Variable{}, err
	}
	cs.aux = append(cs.aux, v)
	return mirage.AuxVariable(len(cs.aux) - 1), nil
}

func (cs *fakeCS) AllocInput(_ string, value mirage.ValueFn) (mirage.Variable, error) {
	v, err := value()
	if err != nil {
		return mirage.Variable{}, err
	}
	cs.input = append(cs.input, v)
	return mirage.InputVariable(len(cs.input) - 1), nil
}

func (cs *fakeCS) Enforce(_ string, a, b, c mirage.LinearCombination) {
	cs.constraints = append(cs.constraints, mirage.Constraint{A: a, B: b, C: c})
}

func (cs *fakeCS) PushNamespace(string)          {}
func (cs *fakeCS) PopNamespace()                 {}
func (cs *fakeCS) Root() mirage.ConstraintSystem { return cs }

// satisfied reports whether every recorded constraint holds against the
// witness recorded so far, the same check GenerateParameters/CreateProof
// rely on a satisfying circuit to pass.
func (cs *fakeCS) satisfied() bool {
	for _, c := range cs.constraints {
		av := c.A.Eval(cs.input, cs.aux)
		bv := c.B.Eval(cs.input, cs.aux)
		cv := c.C.Eval(cs.input, cs.aux)
		var got fr.Element
		got.Mul(&av, &bv)
		if !got.Equal(&cv) {
			return false
		}
	}
	return true
}

func feltFromUint(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestAllocRecordsWitnessValue(t *testing.T) {
	assert := require.New(t)

	cs := newFakeCS()
	n, err := Alloc(cs, "x", func() (fr.Element, error) { return feltFromUint(7), nil })
	assert.NoError(err)

	want := feltFromUint(7)
	assert.True(n.Value.Equal(&want))
	assert.Equal(mirage.Aux, n.Variable.Kind)
	assert.Equal(0, n.Variable.Idx)
}

func TestMulEnforcesProductAndSatisfies(t *testing.T) {
	assert := require.New(t)

	cs := newFakeCS()
	a, err := Alloc(cs, "a", func() (fr.Element, error) { return feltFromUint(6), nil })
	assert.NoError(err)
	b, err := Alloc(cs, "b", func() (fr.Element, error) { return feltFromUint(7), nil })
	assert.NoError(err)
	product, err := Mul(cs, "a*b", a, b)
	assert.NoError(err)

	want := feltFromUint(42)
	assert.True(product.Value.Equal(&want))
	assert.True(cs.satisfied(), "Mul's constraint does not hold against its own witness")
}

func TestInputizePinsAuxToPublicInput(t *testing.T) {
	assert := require.New(t)

	cs := newFakeCS()
	n, err := Alloc(cs, "x", func() (fr.Element, error) { return feltFromUint(5), nil })
	assert.NoError(err)
	pub, err := Inputize(cs, "x_pub", n)
	assert.NoError(err)

	assert.Equal(mirage.Input, pub.Variable.Kind)
	assert.True(cs.satisfied(), "Inputize's pinning constraint does not hold against its own witness")
}

func TestMulOnUnsatisfiedWitnessFailsCheck(t *testing.T) {
	assert := require.New(t)

	cs := newFakeCS()
	a, err := Alloc(cs, "a", func() (fr.Element, error) { return feltFromUint(6), nil })
	assert.NoError(err)
	b, err := Alloc(cs, "b", func() (fr.Element, error) { return feltFromUint(7), nil })
	assert.NoError(err)
	_, err = Mul(cs, "a*b", a, b)
	assert.NoError(err)

	cs.aux[0] = feltFromUint(999) // corrupt a's witness after the fact
	assert.False(cs.satisfied(), "satisfied() should detect the corrupted witness")
}
