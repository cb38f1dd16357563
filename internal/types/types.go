// Package types holds small shared value types that would otherwise
// create an import cycle between internal/round and the packages that
// describe session parameters.
package types

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ThresholdWrapper lets a bare threshold count be absorbed into a hash
// transcript alongside the rest of a session's parameters.
type ThresholdWrapper int32

// WriteTo implements io.WriterTo.
func (t ThresholdWrapper) WriteTo(w io.Writer) (int64, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(t))
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ThresholdWrapper) Domain() string { return "Threshold" }

// ridSize is the byte length of an RID: large enough that ⊕ⱼ ridⱼ over
// any honest-majority-or-not set of parties is still uniform unless
// every contributor is corrupt.
const ridSize = 32

// RID is a random identifier every keygen round mixes in and XORs
// together (ridᵢ) to bind the final key share to a session no single
// party could have predicted in advance, and to stretch the final
// chain key. A nil RID marks "not yet set" (e.g. no previous chain key
// to refresh from), so it is a slice rather than a fixed array.
type RID []byte

// NewRID samples a fresh random RID.
func NewRID(rnd io.Reader) (RID, error) {
	out := make(RID, ridSize)
	if _, err := io.ReadFull(rnd, out); err != nil {
		return nil, fmt.Errorf("types: failed to sample RID: %w", err)
	}
	return out, nil
}

// EmptyRID returns the all-zero RID, the identity element for XOR.
func EmptyRID() RID {
	return make(RID, ridSize)
}

// XOR combines other into r in place.
func (r RID) XOR(other RID) {
	for i := range r {
		r[i] ^= other[i]
	}
}

// Validate reports whether r has the length a genuine RID must have.
func (r RID) Validate() error {
	if len(r) != ridSize {
		return fmt.Errorf("types: invalid RID length %d", len(r))
	}
	return nil
}

// WriteTo implements io.WriterTo so an RID can be absorbed into a hash
// transcript.
func (r RID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (RID) Domain() string { return "RID" }
