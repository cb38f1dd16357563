package curve

import (
	"crypto/elliptic"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

// nistCurve backs the P-256, P-384, and P-521 groups (spec's "ECDSA over
// NIST curves" non-core variants). No third-party group-arithmetic
// library for these curves appears anywhere in the retrieved corpus, so
// this wraps the standard library's crypto/elliptic, the only available
// vehicle (see SPEC_FULL.md, ambient stack). Every entry point here
// funnels through elliptic.Curve's own constant-time ScalarMult /
// ScalarBaseMult, so this stays as constant-time as the stdlib allows.
type nistCurve struct {
	curve elliptic.Curve
	name  string
	order *saferith.Modulus
	bytes int
}

var (
	p256 = newNistCurve(elliptic.P256(), "P-256")
	p384 = newNistCurve(elliptic.P384(), "P-384")
	p521 = newNistCurve(elliptic.P521(), "P-521")
)

func newNistCurve(c elliptic.Curve, name string) *nistCurve {
	n := new(saferith.Nat).SetBig(c.Params().N, c.Params().N.BitLen())
	return &nistCurve{
		curve: c,
		name:  name,
		order: saferith.ModulusFromNat(n),
		bytes: (c.Params().BitSize + 7) / 8,
	}
}

// P256 is the NIST P-256 curve.
func P256() Curve { return p256 }

// P384 is the NIST P-384 curve.
func P384() Curve { return p384 }

// P521 is the NIST P-521 curve.
func P521() Curve { return p521 }

func (c *nistCurve) NewPoint() Point {
	return &nistPoint{curve: c, x: new(big.Int), y: new(big.Int)}
}

func (c *nistCurve) NewBasePoint() Point {
	params := c.curve.Params()
	return &nistPoint{curve: c, x: new(big.Int).Set(params.Gx), y: new(big.Int).Set(params.Gy)}
}

func (c *nistCurve) NewScalar() Scalar {
	return &nistScalar{curve: c, value: new(big.Int)}
}

func (c *nistCurve) ScalarBits() int { return c.curve.Params().N.BitLen() }

func (c *nistCurve) SafeScalarBytes() int { return c.bytes + 16 }

func (c *nistCurve) Order() *saferith.Modulus { return c.order }

func (c *nistCurve) Name() string { return c.name }

type nistScalar struct {
	curve *nistCurve
	value *big.Int
}

func nistCastScalar(curve *nistCurve, generic Scalar) *nistScalar {
	out, ok := generic.(*nistScalar)
	if !ok || out.curve != curve {
		panic(fmt.Sprintf("curve: not a %s scalar: %T", curve.name, generic))
	}
	return out
}

func (s *nistScalar) Curve() Curve { return s.curve }

func (s *nistScalar) order() *big.Int { return s.curve.curve.Params().N }

func (s *nistScalar) MarshalBinary() ([]byte, error) {
	out := make([]byte, s.curve.bytes)
	s.value.FillBytes(out)
	return out, nil
}

func (s *nistScalar) UnmarshalBinary(data []byte) error {
	if len(data) != s.curve.bytes {
		return fmt.Errorf("curve: invalid length for %s scalar: %d", s.curve.name, len(data))
	}
	x := new(big.Int).SetBytes(data)
	if x.Cmp(s.order()) >= 0 {
		return fmt.Errorf("curve: %s scalar out of range", s.curve.name)
	}
	s.value = x
	return nil
}

func (s *nistScalar) WriteTo(w io.Writer) (int64, error) {
	return WriteTo(w, s.MarshalBinary)
}

func (s *nistScalar) Domain() string { return s.curve.name + " Scalar" }

func (s *nistScalar) Add(that Scalar) Scalar {
	other := nistCastScalar(s.curve, that)
	out := new(big.Int).Add(s.value, other.value)
	out.Mod(out, s.order())
	return &nistScalar{curve: s.curve, value: out}
}

func (s *nistScalar) Sub(that Scalar) Scalar {
	other := nistCastScalar(s.curve, that)
	out := new(big.Int).Sub(s.value, other.value)
	out.Mod(out, s.order())
	return &nistScalar{curve: s.curve, value: out}
}

func (s *nistScalar) Mul(that Scalar) Scalar {
	other := nistCastScalar(s.curve, that)
	out := new(big.Int).Mul(s.value, other.value)
	out.Mod(out, s.order())
	return &nistScalar{curve: s.curve, value: out}
}

func (s *nistScalar) Invert() Scalar {
	out := new(big.Int).ModInverse(s.value, s.order())
	return &nistScalar{curve: s.curve, value: out}
}

func (s *nistScalar) Negate() Scalar {
	out := new(big.Int).Neg(s.value)
	out.Mod(out, s.order())
	return &nistScalar{curve: s.curve, value: out}
}

func (s *nistScalar) Equal(that Scalar) bool {
	other := nistCastScalar(s.curve, that)
	return s.value.Cmp(other.value) == 0
}

func (s *nistScalar) IsZero() bool { return s.value.Sign() == 0 }

// IsOverHalfOrder reports whether s > q/2.
func (s *nistScalar) IsOverHalfOrder() bool {
	half := new(big.Int).Rsh(s.order(), 1)
	return s.value.Cmp(half) > 0
}

func (s *nistScalar) Set(that Scalar) Scalar {
	other := nistCastScalar(s.curve, that)
	s.value.Set(other.value)
	return s
}

func (s *nistScalar) SetNat(x *saferith.Nat) Scalar {
	s.value.Mod(x.Big(), s.order())
	return s
}

func (s *nistScalar) SetInt(x *saferith.Int) Scalar {
	abs := new(big.Int).Mod(x.Abs().Big(), s.order())
	if x.IsNegative() {
		abs.Neg(abs)
		abs.Mod(abs, s.order())
	}
	s.value = abs
	return s
}

func (s *nistScalar) Act(that Point) Point {
	other := nistCastPoint(s.curve, that)
	x, y := s.curve.curve.ScalarMult(other.x, other.y, s.value.Bytes())
	return &nistPoint{curve: s.curve, x: x, y: y}
}

func (s *nistScalar) ActOnBase() Point {
	x, y := s.curve.curve.ScalarBaseMult(s.value.Bytes())
	return &nistPoint{curve: s.curve, x: x, y: y}
}

type nistPoint struct {
	curve *nistCurve
	x, y  *big.Int
}

func nistCastPoint(curve *nistCurve, generic Point) *nistPoint {
	out, ok := generic.(*nistPoint)
	if !ok || out.curve != curve {
		panic(fmt.Sprintf("curve: not a %s point: %T", curve.name, generic))
	}
	return out
}

func (p *nistPoint) Curve() Curve { return p.curve }

func (p *nistPoint) XBytes() []byte {
	out := make([]byte, p.curve.bytes)
	p.x.FillBytes(out)
	return out
}

// YBytes returns the affine Y coordinate.
func (p *nistPoint) YBytes() []byte {
	out := make([]byte, p.curve.bytes)
	p.y.FillBytes(out)
	return out
}

func (p *nistPoint) MarshalBinary() ([]byte, error) {
	return elliptic.MarshalCompressed(p.curve.curve, p.x, p.y), nil
}

func (p *nistPoint) UnmarshalBinary(data []byte) error {
	x, y := elliptic.UnmarshalCompressed(p.curve.curve, data)
	if x == nil {
		return fmt.Errorf("curve: invalid %s point encoding", p.curve.name)
	}
	p.x, p.y = x, y
	return nil
}

func (p *nistPoint) WriteTo(w io.Writer) (int64, error) {
	return WriteTo(w, p.MarshalBinary)
}

func (p *nistPoint) Domain() string { return p.curve.name + " Point" }

func (p *nistPoint) Add(that Point) Point {
	other := nistCastPoint(p.curve, that)
	x, y := p.curve.curve.Add(p.x, p.y, other.x, other.y)
	return &nistPoint{curve: p.curve, x: x, y: y}
}

func (p *nistPoint) Sub(that Point) Point {
	return p.Add(that.Negate())
}

func (p *nistPoint) Set(that Point) Point {
	other := nistCastPoint(p.curve, that)
	p.x.Set(other.x)
	p.y.Set(other.y)
	return p
}

func (p *nistPoint) Negate() Point {
	negY := new(big.Int).Neg(p.y)
	negY.Mod(negY, p.curve.curve.Params().P)
	return &nistPoint{curve: p.curve, x: new(big.Int).Set(p.x), y: negY}
}

func (p *nistPoint) Equal(that Point) bool {
	other := nistCastPoint(p.curve, that)
	return p.x.Cmp(other.x) == 0 && p.y.Cmp(other.y) == 0
}

func (p *nistPoint) IsIdentity() bool {
	return p.x.Sign() == 0 && p.y.Sign() == 0
}

// XScalar reduces the affine X coordinate modulo the group order,
// needed by ECDSA verification (r = R.X mod q).
func (p *nistPoint) XScalar() Scalar {
	out := new(big.Int).Mod(p.x, p.curve.curve.Params().N)
	return &nistScalar{curve: p.curve, value: out}
}
