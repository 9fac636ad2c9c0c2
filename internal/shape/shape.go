// Package shape snapshots a traced circuit's constraint/aux-block/transcript
// schedule counts to CBOR, using github.com/fxamacker/cbor/v2 with
// deterministic encoding options. CreateProof uses this to detect when a
// circuit's synthesize schedule has drifted from the one a supplied proving
// key was generated against.
package shape

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/exp/slices"
)

// EntryKind mirrors the transcript entry tags recorded in the VK
// PublicInput, Coin, AuxCommit.
type EntryKind uint8

const (
	PublicInput EntryKind = iota
	Coin
	AuxCommit
)

// Shape is a structural fingerprint of one synthesize() run: how many rows,
// how many aux variables per block, and the transcript schedule.
type Shape struct {
	NumConstraints  int         `cbor:"1,keyasint"`
	NumPublicInputs int         `cbor:"2,keyasint"`
	AuxBlockSizes   []int       `cbor:"3,keyasint"`
	Schedule        []EntryKind `cbor:"4,keyasint"`
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

// WriteTo CBOR-encodes s deterministically.
func (s *Shape) WriteTo(w io.Writer) (int64, error) {
	b, err := encMode.Marshal(s)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// ReadFrom decodes a Shape previously written by WriteTo.
func (s *Shape) ReadFrom(r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := cbor.Unmarshal(b, s); err != nil {
		return int64(len(b)), err
	}
	return int64(len(b)), nil
}

// Equal reports whether two shapes describe the same circuit structure.
func (s *Shape) Equal(other *Shape) bool {
	if s.NumConstraints != other.NumConstraints || s.NumPublicInputs != other.NumPublicInputs {
		return false
	}
	return slices.Equal(s.AuxBlockSizes, other.AuxBlockSizes) && slices.Equal(s.Schedule, other.Schedule)
}
