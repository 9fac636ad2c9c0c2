package shape

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleShape() Shape {
	return Shape{
		NumConstraints:  3,
		NumPublicInputs: 2,
		AuxBlockSizes:   []int{4, 5},
		Schedule:        []EntryKind{PublicInput, AuxCommit, Coin, AuxCommit},
	}
}

func TestWriteToReadFromRoundTrip(t *testing.T) {
	want := sampleShape()

	var buf bytes.Buffer
	if _, err := want.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var got Shape
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip changed shape (-want +got):\n%s", diff)
	}
}

func TestWriteToIsDeterministic(t *testing.T) {
	s := sampleShape()

	var b1, b2 bytes.Buffer
	if _, err := s.WriteTo(&b1); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if _, err := s.WriteTo(&b2); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Fatal("CBOR encoding of the same shape differed across calls")
	}
}

func TestEqualDetectsEveryField(t *testing.T) {
	base := sampleShape()

	variants := []Shape{
		{NumConstraints: 99, NumPublicInputs: base.NumPublicInputs, AuxBlockSizes: base.AuxBlockSizes, Schedule: base.Schedule},
		{NumConstraints: base.NumConstraints, NumPublicInputs: 99, AuxBlockSizes: base.AuxBlockSizes, Schedule: base.Schedule},
		{NumConstraints: base.NumConstraints, NumPublicInputs: base.NumPublicInputs, AuxBlockSizes: []int{4}, Schedule: base.Schedule},
		{NumConstraints: base.NumConstraints, NumPublicInputs: base.NumPublicInputs, AuxBlockSizes: []int{4, 99}, Schedule: base.Schedule},
		{NumConstraints: base.NumConstraints, NumPublicInputs: base.NumPublicInputs, AuxBlockSizes: base.AuxBlockSizes, Schedule: []EntryKind{PublicInput}},
		{NumConstraints: base.NumConstraints, NumPublicInputs: base.NumPublicInputs, AuxBlockSizes: base.AuxBlockSizes, Schedule: []EntryKind{Coin, AuxCommit, Coin, AuxCommit}},
	}

	for i, v := range variants {
		if base.Equal(&v) {
			t.Fatalf("variant %d: Equal returned true for differing shapes: %+v vs %+v", i, base, v)
		}
	}
}

func TestEqualIgnoresNilVsEmptySliceDistinction(t *testing.T) {
	a := Shape{NumConstraints: 1, AuxBlockSizes: nil, Schedule: nil}
	b := Shape{NumConstraints: 1, AuxBlockSizes: []int{}, Schedule: []EntryKind{}}

	if !a.Equal(&b) {
		t.Fatal("Equal should treat nil and empty slices as equivalent shapes")
	}
}
