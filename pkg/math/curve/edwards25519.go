package curve

import (
	"fmt"
	"io"

	"filippo.io/edwards25519"
	"github.com/cronokirby/saferith"
)

// Edwards25519 is the curve used by the EdDSA 2P and n-party signing
// protocols. Unlike Secp256k1, group arithmetic is delegated entirely to
// filippo.io/edwards25519, which is not part of the corpus this module
// was distilled from but is the de-facto standard, audited Go backend
// for this curve (see SPEC_FULL.md, ambient stack).
type Edwards25519 struct{}

func (Edwards25519) NewPoint() Point {
	return &Edwards25519Point{value: edwards25519.NewIdentityPoint()}
}

func (Edwards25519) NewBasePoint() Point {
	return &Edwards25519Point{value: edwards25519.NewGeneratorPoint()}
}

func (Edwards25519) NewScalar() Scalar {
	return &Edwards25519Scalar{value: edwards25519.NewScalar()}
}

func (Edwards25519) ScalarBits() int { return 253 }

func (Edwards25519) SafeScalarBytes() int { return 32 }

var edwards25519OrderNat, _ = new(saferith.Nat).SetHex("1000000000000000000000000000000014DEF9DEA2F79CD65812631A5CF5D3ED")
var edwards25519Order = saferith.ModulusFromNat(edwards25519OrderNat)

func (Edwards25519) Order() *saferith.Modulus { return edwards25519Order }

func (Edwards25519) Name() string { return "ed25519" }

// Edwards25519Scalar is an element of Z_l, l the order of the Ed25519
// prime-order subgroup.
type Edwards25519Scalar struct {
	value *edwards25519.Scalar
}

func edwards25519CastScalar(generic Scalar) *Edwards25519Scalar {
	out, ok := generic.(*Edwards25519Scalar)
	if !ok {
		panic(fmt.Sprintf("curve: not an ed25519 scalar: %T", generic))
	}
	return out
}

func (*Edwards25519Scalar) Curve() Curve { return Edwards25519{} }

func (s *Edwards25519Scalar) MarshalBinary() ([]byte, error) {
	return append([]byte{}, s.value.Bytes()...), nil
}

func (s *Edwards25519Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("curve: invalid length for ed25519 scalar: %d", len(data))
	}
	if _, err := s.value.SetCanonicalBytes(data); err != nil {
		return fmt.Errorf("curve: invalid ed25519 scalar: %w", err)
	}
	return nil
}

func (s *Edwards25519Scalar) WriteTo(w io.Writer) (int64, error) {
	return WriteTo(w, s.MarshalBinary)
}

func (*Edwards25519Scalar) Domain() string { return "Edwards25519 Scalar" }

func (s *Edwards25519Scalar) Add(that Scalar) Scalar {
	other := edwards25519CastScalar(that)
	out := edwards25519.NewScalar()
	out.Add(s.value, other.value)
	return &Edwards25519Scalar{value: out}
}

func (s *Edwards25519Scalar) Sub(that Scalar) Scalar {
	other := edwards25519CastScalar(that)
	out := edwards25519.NewScalar()
	out.Subtract(s.value, other.value)
	return &Edwards25519Scalar{value: out}
}

func (s *Edwards25519Scalar) Mul(that Scalar) Scalar {
	other := edwards25519CastScalar(that)
	out := edwards25519.NewScalar()
	out.Multiply(s.value, other.value)
	return &Edwards25519Scalar{value: out}
}

func (s *Edwards25519Scalar) Invert() Scalar {
	out := edwards25519.NewScalar()
	out.Invert(s.value)
	return &Edwards25519Scalar{value: out}
}

func (s *Edwards25519Scalar) Negate() Scalar {
	out := edwards25519.NewScalar()
	out.Negate(s.value)
	return &Edwards25519Scalar{value: out}
}

func (s *Edwards25519Scalar) Equal(that Scalar) bool {
	other := edwards25519CastScalar(that)
	return s.value.Equal(other.value) == 1
}

func (s *Edwards25519Scalar) IsZero() bool {
	zero := edwards25519.NewScalar()
	return s.value.Equal(zero) == 1
}

// IsOverHalfOrder reports whether s > l/2.
func (s *Edwards25519Scalar) IsOverHalfOrder() bool {
	le := s.value.Bytes()
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	v := new(saferith.Nat).SetBytes(be)
	half := new(saferith.Nat).Rsh(edwards25519OrderNat, 1, -1)
	gt, _, _ := v.CmpMod(saferith.ModulusFromNat(half))
	return gt == 1
}

func (s *Edwards25519Scalar) Set(that Scalar) Scalar {
	other := edwards25519CastScalar(that)
	s.value.Set(other.value)
	return s
}

func (s *Edwards25519Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, edwards25519Order)
	var wide [64]byte
	copy(wide[:32], reduced.Bytes())
	if _, err := s.value.SetUniformBytes(wide[:]); err != nil {
		panic(err)
	}
	return s
}

func (s *Edwards25519Scalar) SetInt(x *saferith.Int) Scalar {
	s.SetNat(x.Abs())
	if x.IsNegative() {
		s.value.Negate(s.value)
	}
	return s
}

func (s *Edwards25519Scalar) Act(that Point) Point {
	other := edwards25519CastPoint(that)
	out := new(edwards25519.Point)
	out.ScalarMult(s.value, other.value)
	return &Edwards25519Point{value: out}
}

func (s *Edwards25519Scalar) ActOnBase() Point {
	out := new(edwards25519.Point)
	out.ScalarBaseMult(s.value)
	return &Edwards25519Point{value: out}
}

// Edwards25519Point is a point on the Ed25519 curve.
type Edwards25519Point struct {
	value *edwards25519.Point
}

func edwards25519CastPoint(generic Point) *Edwards25519Point {
	out, ok := generic.(*Edwards25519Point)
	if !ok {
		panic(fmt.Sprintf("curve: not an ed25519 point: %T", generic))
	}
	return out
}

func (*Edwards25519Point) Curve() Curve { return Edwards25519{} }

// XBytes returns the compressed (32-byte) encoding, the only
// serialization an Edwards point uses — there is no separate
// affine-X-only representation the way there is for Weierstrass curves.
func (p *Edwards25519Point) XBytes() []byte {
	return p.value.Bytes()
}

func (p *Edwards25519Point) MarshalBinary() ([]byte, error) {
	return p.value.Bytes(), nil
}

func (p *Edwards25519Point) UnmarshalBinary(data []byte) error {
	if _, err := p.value.SetBytes(data); err != nil {
		return fmt.Errorf("curve: invalid ed25519 point: %w", err)
	}
	return nil
}

func (p *Edwards25519Point) WriteTo(w io.Writer) (int64, error) {
	return WriteTo(w, p.MarshalBinary)
}

func (*Edwards25519Point) Domain() string { return "Edwards25519 Point" }

func (p *Edwards25519Point) Add(that Point) Point {
	other := edwards25519CastPoint(that)
	out := new(edwards25519.Point)
	out.Add(p.value, other.value)
	return &Edwards25519Point{value: out}
}

func (p *Edwards25519Point) Sub(that Point) Point {
	other := edwards25519CastPoint(that)
	out := new(edwards25519.Point)
	out.Subtract(p.value, other.value)
	return &Edwards25519Point{value: out}
}

func (p *Edwards25519Point) Set(that Point) Point {
	other := edwards25519CastPoint(that)
	p.value.Set(other.value)
	return p
}

func (p *Edwards25519Point) Negate() Point {
	out := new(edwards25519.Point)
	out.Negate(p.value)
	return &Edwards25519Point{value: out}
}

func (p *Edwards25519Point) Equal(that Point) bool {
	other := edwards25519CastPoint(that)
	return p.value.Equal(other.value) == 1
}

func (p *Edwards25519Point) IsIdentity() bool {
	identity := edwards25519.NewIdentityPoint()
	return p.value.Equal(identity) == 1
}

// XScalar reduces the point's compressed encoding modulo the group
// order. Ed25519 points have no separate affine-X-only representation
// (see XBytes) the way Weierstrass curves do; this exists only to
// satisfy the Point interface ECDSA needs for r = R.X mod q. The
// EdDSA/BIP340 signing paths never call it, hashing the compressed
// point directly into their challenge instead.
func (p *Edwards25519Point) XScalar() Scalar {
	le := p.value.Bytes()
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	nat := new(saferith.Nat).SetBytes(be)
	return (&Edwards25519Scalar{value: edwards25519.NewScalar()}).SetNat(nat)
}
