// Package party defines the opaque party identifier used throughout the
// module: a fixed-width value derived from a human-readable name, the
// total order over such identifiers, and the sorted-slice helpers that
// every round and access-control structure relies on.
package party

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
)

// ID is an opaque, 128-bit party identifier (spec §3: "the hash of a
// human-readable party name"). It is represented as a string purely for
// convenient map-keying and JSON round-tripping; NewID always derives
// it deterministically from a name.
type ID string

// NewID derives a party ID from a human-readable name by hashing it.
func NewID(name string) ID {
	digest := hash.Sum256("Party ID", []byte(name))
	return ID(digest[:16])
}

// WriteTo implements io.WriterTo so an ID can be absorbed into a hash
// transcript.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte(id))
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string { return "Party ID" }

// Scalar deterministically maps this ID onto a nonzero scalar index of
// a Shamir sharing's domain, over the given group. Every sharing and
// interpolation operation in this module — VSS shares, Lagrange
// interpolation, pkg/ac's access-tree sharing — uses this same mapping,
// so a share produced for an ID and a coefficient reconstructed for
// that ID always agree on which point they refer to.
func (id ID) Scalar(group curve.Curve) curve.Scalar {
	digest := hash.Sum256("Polynomial Index", []byte(id))
	wide := make([]byte, len(digest)+1)
	copy(wide, digest)
	// Force the low byte odd so the reduced scalar is never 0 for any
	// curve order this module supports (all odd, > 2^200).
	wide[len(wide)-1] = 1
	n := new(saferith.Nat).SetBytes(wide)
	return group.NewScalar().SetNat(n)
}

// IDSlice is a party.ID slice kept in the canonical sorted order used
// for Lagrange interpolation and session-ID derivation (spec §3:
// "Parties are ordered by their PID byte representation").
type IDSlice []ID

// NewIDSlice returns ids sorted into canonical order.
func NewIDSlice(ids []ID) IDSlice {
	s := make(IDSlice, len(ids))
	copy(s, ids)
	sort.Sort(s)
	return s
}

func (s IDSlice) Len() int           { return len(s) }
func (s IDSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s IDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Valid reports whether the slice is sorted, non-empty, and free of
// duplicates.
func (s IDSlice) Valid() bool {
	if len(s) == 0 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return false
		}
	}
	return true
}

// Contains reports whether id is present in the (sorted) slice.
func (s IDSlice) Contains(id ID) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// Remove returns a new IDSlice with id removed, preserving order.
func (s IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(s))
	for _, other := range s {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// WriteTo implements io.WriterTo.
func (s IDSlice) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	n, err := w.Write(lenBuf[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, id := range s {
		n, err := w.Write([]byte(id))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string { return "Party ID Slice" }
