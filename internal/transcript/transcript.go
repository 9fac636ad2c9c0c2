// Package transcript is the Fiat-Shamir transcript: an
// append-only, domain-separated byte log with a Merlin-style forked-PRG
// challenge derivation, built on golang.org/x/crypto/sha3's SHAKE256 XOF —
// the same primitive Merlin itself uses, and a direct dependency of the
// wider example pack (BaoNinh2808-gnark/go.mod).
package transcript

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

// ProtocolLabel is the fixed domain-separation string for the whole
// protocol, kept verbatim from original_source/src/mirage.
const ProtocolLabel = "mirage_aozdemir_1"

// Transcript is an append-only log; every method mutates the running XOF
// state except ChallengeFr, which works on a clone of it.
type Transcript struct {
	state sha3.ShakeHash
}

// New starts a transcript under the protocol's fixed domain separator.
func New() *Transcript {
	t := &Transcript{state: sha3.NewShake256()}
	t.AppendMessage("dom-sep", []byte(ProtocolLabel))
	return t
}

// AppendMessage absorbs a labeled, length-prefixed message.
func (t *Transcript) AppendMessage(label string, msg []byte) {
	writeLenPrefixed(t.state, []byte(label))
	writeLenPrefixed(t.state, msg)
}

// AppendFr absorbs a field element's canonical byte representation under
// label.
func (t *Transcript) AppendFr(label string, x *fr.Element) {
	b := x.Bytes()
	t.AppendMessage(label, b[:])
}

// AppendG1 absorbs a G1 point's uncompressed bytes under label.
func (t *Transcript) AppendG1(label string, uncompressed []byte) {
	t.AppendMessage(label, uncompressed)
}

// ChallengeFr derives a field element deterministically from the
// transcript's current state and label, without mutating the parent
// transcript (the fork absorbs the label on its own clone, matching
// Merlin's challenge_bytes). The first 512 bits of the XOF output are
// interpreted as a big-endian integer and reduced into Fr (wide reduction,
// protocol).
func (t *Transcript) ChallengeFr(label string) fr.Element {
	fork := t.state.Clone()
	writeLenPrefixed(fork, []byte(label))

	var wide [64]byte
	if _, err := fork.Read(wide[:]); err != nil {
		panic("transcript: XOF read failed: " + err.Error())
	}

	var x big.Int
	x.SetBytes(wide[:])
	var e fr.Element
	e.SetBigInt(&x)
	return e
}

func writeLenPrefixed(h sha3.ShakeHash, b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	h.Write(lenBuf[:])
	h.Write(b)
}
