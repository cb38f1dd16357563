// Package hash implements the random-oracle façade every proof system,
// commitment, and session-ID derivation in this module is built on top
// of. It mirrors the teacher's pkg/hash: a domain-separated transcript
// builder over BLAKE3, with typed WriteAny for every type that crosses
// a hash boundary.
package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"
)

// WriterToWithDomain is anything that can write itself into a hash
// transcript under a named domain tag, so two structurally identical
// values from different contexts never collide.
type WriterToWithDomain interface {
	io.WriterTo
	Domain() string
}

// Hash is a cloneable, domain-separated transcript.
type Hash struct {
	h *blake3.Hasher
}

// New returns a fresh transcript seeded with a fixed protocol tag.
func New() *Hash {
	h := blake3.New()
	_, _ = h.Write([]byte("tss-core random oracle v1"))
	return &Hash{h: h}
}

// Clone returns an independent copy of the current transcript state.
func (h *Hash) Clone() *Hash {
	return &Hash{h: h.h.Clone()}
}

// Digest returns an io.Reader of unbounded output derived from the
// current transcript state, without mutating it.
func (h *Hash) Digest() io.Reader {
	return h.h.Digest()
}

// Sum returns a fixed 64-byte digest of the current transcript state.
func (h *Hash) Sum() []byte {
	out := make([]byte, 64)
	_, _ = io.ReadFull(h.h.Digest(), out)
	return out
}

// WriteAny absorbs a sequence of values into the transcript. Values
// implementing WriterToWithDomain are absorbed with a length-prefixed
// domain tag ahead of their own serialization, so no two differently
// typed values ever collide; the bare numeric types every proof's
// commitments and responses are built from (saferith.Nat/Int/Modulus,
// raw byte slices) are absorbed directly, since their position within a
// fixed call to WriteAny already fixes their meaning.
func (h *Hash) WriteAny(vs ...interface{}) error {
	for _, v := range vs {
		if v == nil {
			continue
		}
		switch x := v.(type) {
		case WriterToWithDomain:
			domain := x.Domain()
			var lenBuf [8]byte
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(domain)))
			if _, err := h.h.Write(lenBuf[:]); err != nil {
				return err
			}
			if _, err := h.h.Write([]byte(domain)); err != nil {
				return err
			}
			if _, err := x.WriteTo(h.h); err != nil {
				return err
			}
		case *saferith.Nat:
			if _, err := h.h.Write(x.Bytes()); err != nil {
				return err
			}
		case *saferith.Int:
			if _, err := h.h.Write(x.Abs().Bytes()); err != nil {
				return err
			}
		case *saferith.Modulus:
			data, err := x.MarshalBinary()
			if err != nil {
				return err
			}
			if _, err := h.h.Write(data); err != nil {
				return err
			}
		case io.WriterTo:
			if _, err := x.WriteTo(h.h); err != nil {
				return err
			}
		case []byte:
			if _, err := h.h.Write(x); err != nil {
				return err
			}
		default:
			return fmt.Errorf("hash: value of type %T cannot be absorbed into a transcript", v)
		}
	}
	return nil
}

// BytesWithDomain wraps a raw byte slice so it can be absorbed by
// WriteAny under an explicit domain tag — used for session-ID material,
// protocol IDs, and other values with no richer type.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b *BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b *BytesWithDomain) Domain() string { return b.TheDomain }

// IntWithDomain wraps a big.Int for absorption into a transcript.
type IntWithDomain struct {
	TheDomain string
	Int       *big.Int
}

func (i *IntWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(i.Int.Bytes())
	return int64(n), err
}

func (i *IntWithDomain) Domain() string { return i.TheDomain }

// Commitment binds a sender to a sequence of values without revealing
// them, the generic two-phase Commit/Open every round that must commit
// before it is safe to reveal builds on (spec §4.2).
type Commitment []byte

// Decommitment is the randomness a Commitment hides; revealing it lets
// the commitment be recomputed and checked against what was sent.
type Decommitment []byte

// Validate reports whether c has the shape a genuine Commitment from
// Commit can have.
func (c Commitment) Validate() error {
	if len(c) != 64 {
		return fmt.Errorf("hash: invalid commitment length %d", len(c))
	}
	return nil
}

// Validate reports whether d has the shape a genuine Decommitment from
// Commit can have.
func (d Decommitment) Validate() error {
	if len(d) != 32 {
		return fmt.Errorf("hash: invalid decommitment length %d", len(d))
	}
	return nil
}

func (h *Hash) hashValues(vs ...interface{}) (Commitment, error) {
	cloned := h.Clone()
	if err := cloned.WriteAny(vs...); err != nil {
		return nil, err
	}
	return Commitment(cloned.Sum()), nil
}

// Commit absorbs vs into a clone of h along with fresh randomness and
// returns the binding commitment plus the decommitment needed to open
// it later. h itself is left untouched, so the same session transcript
// can commit to several independent values.
func (h *Hash) Commit(vs ...interface{}) (Commitment, Decommitment, error) {
	decommitment := make(Decommitment, 32)
	if _, err := rand.Read(decommitment); err != nil {
		return nil, nil, err
	}
	commitment, err := h.hashValues(append(append([]interface{}{}, vs...), []byte(decommitment))...)
	if err != nil {
		return nil, nil, err
	}
	return commitment, decommitment, nil
}

// Decommit recomputes the commitment to vs under decommitment and
// reports whether it matches commitment, in constant time.
func (h *Hash) Decommit(commitment Commitment, decommitment Decommitment, vs ...interface{}) bool {
	got, err := h.hashValues(append(append([]interface{}{}, vs...), []byte(decommitment))...)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, commitment) == 1
}

// Sum256 is a standalone convenience hash used outside of a protocol
// transcript (pkg/party derives party IDs and polynomial indices with
// it).
func Sum256(tag string, parts ...[]byte) []byte {
	h := blake3.New()
	_, _ = h.Write([]byte(tag))
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	out := make([]byte, 32)
	_, _ = io.ReadFull(h.Digest(), out)
	return out
}
