// Package curve abstracts scalar and point arithmetic over the five
// curves this module supports (secp256k1, P-256, P-384, P-521,
// Ed25519), following the teacher's tagged-capability design rather
// than the C++ original's class hierarchy (spec §9): a Curve is a
// small value type dispatching to one of three concrete
// implementations, with no inheritance and no vtables.
//
// Timing: the P-256/P-384/P-521 and Ed25519 scalar multiplications use
// their libraries' constant-time code paths. The secp256k1 backend uses
// the decred library's variable-time ScalarMultNonConst and
// ScalarBaseMultNonConst for every scalar multiplication, secret or
// public. There is no switch between constant-time and variable-time
// paths.
package curve

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/hash"
)

// Curve is a capability trait implemented by each supported group.
type Curve interface {
	NewPoint() Point
	NewBasePoint() Point
	NewScalar() Scalar
	// ScalarBits is the bit-length of the group order.
	ScalarBits() int
	// SafeScalarBytes is the base byte count for sampling a scalar: 32
	// for secp256k1 and Ed25519, the order's byte length plus 16 for the
	// NIST curves. sample.Scalar reads 16 bytes more than this.
	SafeScalarBytes() int
	Order() *saferith.Modulus
	Name() string
}

// Scalar is an element of Z_q for some curve's order q.
type Scalar interface {
	hash.WriterToWithDomain
	Curve() Curve
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Negate() Scalar
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar
	SetNat(*saferith.Nat) Scalar
	// SetInt reduces a signed integer modulo the curve order, preserving
	// sign (x and -x map to additive inverses), the conversion every
	// zk proof uses to fold a Paillier-domain response into a curve
	// scalar.
	SetInt(*saferith.Int) Scalar
	// Act returns [s]P.
	Act(Point) Point
	// ActOnBase returns [s]G.
	ActOnBase() Point
	// IsOverHalfOrder reports whether s > q/2, the low-S malleability
	// check every ECDSA signer in this module applies before returning.
	IsOverHalfOrder() bool
}

// Point is an element of a curve's group.
type Point interface {
	hash.WriterToWithDomain
	Curve() Curve
	XBytes() []byte
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
	Add(Point) Point
	Sub(Point) Point
	Set(Point) Point
	Negate() Point
	Equal(Point) bool
	IsIdentity() bool
	// XScalar reduces the point's affine X coordinate modulo the
	// group's order, needed by ECDSA verification (r = R.X mod q).
	XScalar() Scalar
}

// WriteTo is a small helper so Scalar/Point implementations can satisfy
// io.WriterTo uniformly via MarshalBinary.
func WriteTo(w io.Writer, marshal func() ([]byte, error)) (int64, error) {
	data, err := marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// FromHash converts a message digest into a scalar the way ECDSA's
// bits2int does: the digest is interpreted as a big-endian integer and,
// if it is longer than the group's order, truncated to the order's bit
// length by discarding the low-order bits (not reduced modulo the
// order) before the final reduction SetNat performs. Every signer and
// verifier must use the same conversion for r/s to agree, so this lives
// once here rather than being reimplemented per call site.
func FromHash(group Curve, digest []byte) Scalar {
	orderBits := group.ScalarBits()
	digestBits := len(digest) * 8

	nat := new(saferith.Nat).SetBytes(digest)
	if digestBits > orderBits {
		nat = nat.Rsh(nat, uint(digestBits-orderBits), -1)
	}
	return group.NewScalar().SetNat(nat)
}

// MakeInt is the inverse of Scalar.SetInt: it recovers a signed integer
// in the symmetric range around zero (magnitude at most q/2) from a
// scalar's canonical [0, q) representative, the same centered-residue
// construction paillier.SecretKey.Dec already applies to decrypted
// plaintexts via SetModSymmetric. Round code hands this signed value
// straight to a Paillier encryption or to an integer combination that
// must stay sign-correct outside the curve's field.
func MakeInt(s Scalar) *saferith.Int {
	data, err := s.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("curve: cannot marshal scalar: %v", err))
	}
	v := new(saferith.Nat).SetBytes(data)
	return new(saferith.Int).SetModSymmetric(v, s.Curve().Order())
}
