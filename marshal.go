package mirage

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/blang/semver/v4"

	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/curveio"
)

// countingWriter/countingReader track bytes written/read so WriteTo/ReadFrom
// can satisfy io.WriterTo/io.ReaderFrom's (int64, error) contract without
// threading a running total through every call site.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// FormatVersion is stamped into every serialized ProvingKey/VerifyingKey/Proof
// A reader rejects any artifact whose major version differs,
// the same compatibility rule github.com/blang/semver/v4 is built around.
var FormatVersion = semver.MustParse("0.1.0")

func writeVersion(w io.Writer) error {
	v := FormatVersion.String()
	if err := writeUint64(w, uint64(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(w, v)
	return err
}

func readVersion(r io.Reader) error {
	n, err := readUint64(r)
	if err != nil {
		return err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return ErrShortRead
	}
	v, err := semver.Parse(string(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormatVersion, err)
	}
	if v.Major != FormatVersion.Major {
		return ErrFormatVersion
	}
	return nil
}

func writeUint64(w io.Writer, n uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrShortRead
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeInts(w io.Writer, xs []int) error {
	if err := writeUint64(w, uint64(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := writeUint64(w, uint64(x)); err != nil {
			return err
		}
	}
	return nil
}

func readInts(r io.Reader) ([]int, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		v, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

func writeSchedule(w io.Writer, s []EntryKind) error {
	if err := writeUint64(w, uint64(len(s))); err != nil {
		return err
	}
	for _, e := range s {
		if _, err := w.Write([]byte{byte(e)}); err != nil {
			return err
		}
	}
	return nil
}

func readSchedule(r io.Reader) ([]EntryKind, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	out := make([]EntryKind, n)
	var b [1]byte
	for i := range out {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, ErrShortRead
		}
		out[i] = EntryKind(b[0])
	}
	return out, nil
}

// WriteTo serializes pk: an uncompressed, length-prefixed
// encoding, versioned so future format changes can be detected on read.
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := writeVersion(cw); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1(cw, &pk.Alpha); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1(cw, &pk.Beta1); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2(cw, &pk.Beta2); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, pk.DeltaG1); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2Vector(cw, pk.DeltaG2); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, pk.H); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, pk.A); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, pk.B1); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2Vector(cw, pk.B2); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, pk.IC); err != nil {
		return cw.n, err
	}
	if err := writeUint64(cw, uint64(len(pk.L))); err != nil {
		return cw.n, err
	}
	for _, q := range pk.L {
		if err := curveio.WriteG1Vector(cw, q); err != nil {
			return cw.n, err
		}
	}
	if err := writeUint64(cw, uint64(pk.NumInputs)); err != nil {
		return cw.n, err
	}
	if err := writeUint64(cw, uint64(pk.NumAux)); err != nil {
		return cw.n, err
	}
	if err := writeInts(cw, pk.AuxBlockBounds); err != nil {
		return cw.n, err
	}
	if err := writeSchedule(cw, pk.Schedule); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom decodes a ProvingKey previously written by WriteTo. Every point is
// checked to lie in its prime-order subgroup. The identity is allowed
// everywhere except in DeltaG1/DeltaG2 (setup queries legitimately contain
// it wherever a variable's u/v/w evaluates to zero).
func (pk *ProvingKey) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	if err := readVersion(cr); err != nil {
		return cr.n, err
	}
	var err error
	if pk.Alpha, err = curveio.ReadG1(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.Beta1, err = curveio.ReadG1(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.Beta2, err = curveio.ReadG2(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.DeltaG1, err = curveio.ReadG1Vector(cr, true, false); err != nil {
		return cr.n, err
	}
	if pk.DeltaG2, err = curveio.ReadG2Vector(cr, true, false); err != nil {
		return cr.n, err
	}
	if pk.H, err = curveio.ReadG1Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.A, err = curveio.ReadG1Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.B1, err = curveio.ReadG1Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.B2, err = curveio.ReadG2Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	if pk.IC, err = curveio.ReadG1Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	numBlocks, err := readUint64(cr)
	if err != nil {
		return cr.n, err
	}
	pk.L = make([][]curve.G1Affine, numBlocks)
	for i := range pk.L {
		if pk.L[i], err = curveio.ReadG1Vector(cr, true, true); err != nil {
			return cr.n, err
		}
	}
	numInputs, err := readUint64(cr)
	if err != nil {
		return cr.n, err
	}
	pk.NumInputs = int(numInputs)
	numAux, err := readUint64(cr)
	if err != nil {
		return cr.n, err
	}
	pk.NumAux = int(numAux)
	if pk.AuxBlockBounds, err = readInts(cr); err != nil {
		return cr.n, err
	}
	if pk.Schedule, err = readSchedule(cr); err != nil {
		return cr.n, err
	}
	return cr.n, nil
}

// WriteTo serializes vk using the same versioned, length-prefixed encoding
// as ProvingKey.WriteTo.
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := writeVersion(cw); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1(cw, &vk.Alpha); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2(cw, &vk.Beta2); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2(cw, &vk.Gamma2); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2Vector(cw, vk.DeltaG2); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, vk.IC); err != nil {
		return cw.n, err
	}
	if err := writeUint64(cw, uint64(vk.NumPublicInputs)); err != nil {
		return cw.n, err
	}
	if err := writeSchedule(cw, vk.Schedule); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom decodes a VerifyingKey previously written by WriteTo.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	if err := readVersion(cr); err != nil {
		return cr.n, err
	}
	var err error
	if vk.Alpha, err = curveio.ReadG1(cr, true, true); err != nil {
		return cr.n, err
	}
	if vk.Beta2, err = curveio.ReadG2(cr, true, true); err != nil {
		return cr.n, err
	}
	if vk.Gamma2, err = curveio.ReadG2(cr, true, false); err != nil {
		return cr.n, err
	}
	if vk.DeltaG2, err = curveio.ReadG2Vector(cr, true, false); err != nil {
		return cr.n, err
	}
	if vk.IC, err = curveio.ReadG1Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	numPublicInputs, err := readUint64(cr)
	if err != nil {
		return cr.n, err
	}
	vk.NumPublicInputs = int(numPublicInputs)
	if vk.Schedule, err = readSchedule(cr); err != nil {
		return cr.n, err
	}
	return cr.n, nil
}

// WriteTo serializes proof: A, B, C followed by the per-aux-block D vector.
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := writeVersion(cw); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1(cw, &proof.A); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG2(cw, &proof.B); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1(cw, &proof.C); err != nil {
		return cw.n, err
	}
	if err := curveio.WriteG1Vector(cw, proof.D); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom decodes a Proof previously written by WriteTo. Every point is
// subgroup-checked; A, B, C and the D entries may each be the identity.
func (proof *Proof) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	if err := readVersion(cr); err != nil {
		return cr.n, err
	}
	var err error
	if proof.A, err = curveio.ReadG1(cr, true, true); err != nil {
		return cr.n, err
	}
	if proof.B, err = curveio.ReadG2(cr, true, true); err != nil {
		return cr.n, err
	}
	if proof.C, err = curveio.ReadG1(cr, true, true); err != nil {
		return cr.n, err
	}
	if proof.D, err = curveio.ReadG1Vector(cr, true, true); err != nil {
		return cr.n, err
	}
	return cr.n, nil
}
