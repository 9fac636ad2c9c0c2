// Package curveio is the serialization layer: uncompressed
// affine point encoding and big-endian length-prefixed vectors, ported from
// original_source/src/curve_io.rs's GroupWriter/GroupReader default-method
// pattern.
package curveio

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/woopuiyung/mirage/internal/curve"
)

// ErrPointAtInfinity and ErrNotInSubgroup are returned by ReadG1/ReadG2. The
// root package's ReadFrom methods pass them through unchanged; they are not
// wrapped in the root package's own sentinels of the same names.
var (
	ErrPointAtInfinity = errors.New("curveio: point at infinity not allowed here")
	ErrNotInSubgroup   = errors.New("curveio: point is not in the prime-order subgroup")
)

// WriteG1 writes g's uncompressed affine encoding.
func WriteG1(w io.Writer, g *curve.G1Affine) error {
	b := g.RawBytes()
	_, err := w.Write(b[:])
	return err
}

// WriteG2 writes g's uncompressed affine encoding.
func WriteG2(w io.Writer, g *curve.G2Affine) error {
	b := g.RawBytes()
	_, err := w.Write(b[:])
	return err
}

// ReadG1 reads an uncompressed G1 point. If checked is true the point is
// verified to lie in the prime-order subgroup; if allowZero is false the
// identity is rejected with ErrPointAtInfinity.
func ReadG1(r io.Reader, checked, allowZero bool) (curve.G1Affine, error) {
	var g curve.G1Affine
	var buf [sizeG1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return g, err
	}
	if _, err := g.SetBytes(buf[:]); err != nil {
		return g, err
	}
	if !allowZero && g.IsInfinity() {
		return g, ErrPointAtInfinity
	}
	if checked && !g.IsInSubGroup() {
		return g, ErrNotInSubgroup
	}
	return g, nil
}

// ReadG2 is ReadG1's G2 analogue.
func ReadG2(r io.Reader, checked, allowZero bool) (curve.G2Affine, error) {
	var g curve.G2Affine
	var buf [sizeG2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return g, err
	}
	if _, err := g.SetBytes(buf[:]); err != nil {
		return g, err
	}
	if !allowZero && g.IsInfinity() {
		return g, ErrPointAtInfinity
	}
	if checked && !g.IsInSubGroup() {
		return g, ErrNotInSubgroup
	}
	return g, nil
}

// WriteG1Vector writes a u64 big-endian length prefix followed by each
// point's uncompressed encoding, in order.
func WriteG1Vector(w io.Writer, gs []curve.G1Affine) error {
	if err := writeLen(w, len(gs)); err != nil {
		return err
	}
	for i := range gs {
		if err := WriteG1(w, &gs[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadG1Vector is WriteG1Vector's inverse.
func ReadG1Vector(r io.Reader, checked, allowZero bool) ([]curve.G1Affine, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	out := make([]curve.G1Affine, n)
	for i := range out {
		g, err := ReadG1(r, checked, allowZero)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// WriteG2Vector is WriteG1Vector's G2 analogue.
func WriteG2Vector(w io.Writer, gs []curve.G2Affine) error {
	if err := writeLen(w, len(gs)); err != nil {
		return err
	}
	for i := range gs {
		if err := WriteG2(w, &gs[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadG2Vector is ReadG1Vector's G2 analogue.
func ReadG2Vector(r io.Reader, checked, allowZero bool) ([]curve.G2Affine, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	out := make([]curve.G2Affine, n)
	for i := range out {
		g, err := ReadG2(r, checked, allowZero)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

func writeLen(w io.Writer, n int) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	_, err := w.Write(b[:])
	return err
}

func readLen(r io.Reader) (int, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint64(b[:])), nil
}

const (
	sizeG1 = 64 // bn254 G1 uncompressed affine: two 32-byte field elements
	sizeG2 = 128
)
