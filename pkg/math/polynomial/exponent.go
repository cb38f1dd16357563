package polynomial

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/party"
)

type rawExponentData struct {
	IsConstant   bool
	Coefficients []curve.Point
}

// Exponent represents a polynomial F(X) whose coefficients live in a
// curve's point group, used whenever parties must agree on a public
// commitment to shares without any party learning the underlying
// polynomial over the scalar field.
type Exponent struct {
	Group curve.Curve
	// IsConstant indicates the constant coefficient is the identity, so
	// it never needs to be sent or encoded (an encoded identity point is
	// rejected as invalid by every curve backend).
	IsConstant   bool
	Coefficients []curve.Point
}

// NewPolynomialExponent lifts a scalar Polynomial into the exponent:
// F(X) = [secret + a_1*X + ... + a_t*X^t]*G.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		Group:        polynomial.Group,
		IsConstant:   polynomial.Coefficients[0].IsZero(),
		Coefficients: make([]curve.Point, 0, len(polynomial.Coefficients)),
	}

	for i, c := range polynomial.Coefficients {
		if p.IsConstant && i == 0 {
			continue
		}
		p.Coefficients = append(p.Coefficients, c.ActOnBase())
	}

	return p
}

// Evaluate returns F(x) via Horner's method in the exponent.
func (p *Exponent) Evaluate(x curve.Scalar) curve.Point {
	result := p.Group.NewPoint()

	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		result = x.Act(result).Add(p.Coefficients[i])
	}

	if p.IsConstant {
		result = x.Act(result)
	}

	return result
}

// EvaluateFor evaluates the exponent polynomial at the canonical index
// derived from id, producing the public commitment to that party's
// share.
func (p *Exponent) EvaluateFor(id party.ID) curve.Point {
	return p.Evaluate(IndexOf(p.Group, id))
}

// Degree returns the degree t of the polynomial.
func (p *Exponent) Degree() int {
	if p.IsConstant {
		return len(p.Coefficients)
	}
	return len(p.Coefficients) - 1
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.Coefficients) != len(q.Coefficients) {
		return errors.New("polynomial: exponent length mismatch")
	}
	if p.IsConstant != q.IsConstant {
		return errors.New("polynomial: exponent IsConstant mismatch")
	}

	for i := 0; i < len(p.Coefficients); i++ {
		p.Coefficients[i] = p.Coefficients[i].Add(q.Coefficients[i])
	}

	return nil
}

// Sum creates a new exponent polynomial by summing several existing
// ones coefficient-wise — the operation every DKG round uses to combine
// each party's contribution into the joint public commitment.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	summed := polynomials[0].copy()

	for j := 1; j < len(polynomials); j++ {
		if err := summed.add(polynomials[j]); err != nil {
			return nil, err
		}
	}
	return summed, nil
}

func (p *Exponent) copy() *Exponent {
	q := &Exponent{
		Group:        p.Group,
		IsConstant:   p.IsConstant,
		Coefficients: make([]curve.Point, 0, len(p.Coefficients)),
	}
	q.Coefficients = append(q.Coefficients, p.Coefficients...)
	return q
}

// Equal reports whether p and other represent the same exponent
// polynomial.
func (p *Exponent) Equal(other *Exponent) bool {
	if p.IsConstant != other.IsConstant {
		return false
	}
	if len(p.Coefficients) != len(other.Coefficients) {
		return false
	}
	for i := 0; i < len(p.Coefficients); i++ {
		if !p.Coefficients[i].Equal(other.Coefficients[i]) {
			return false
		}
	}
	return true
}

// Constant returns the constant coefficient of the polynomial in the
// exponent (the joint public key, for a DKG's final output).
func (p *Exponent) Constant() curve.Point {
	if p.IsConstant {
		return p.Group.NewPoint()
	}
	return p.Coefficients[0]
}

// WriteTo implements io.WriterTo so an Exponent can be absorbed into a
// hash transcript.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Exponent) Domain() string { return "Exponent" }

// EmptyExponent returns an Exponent with no coefficients, ready to be
// populated by UnmarshalBinary once its Group is known.
func EmptyExponent(group curve.Curve) *Exponent {
	return &Exponent{Group: group}
}

func (p *Exponent) UnmarshalBinary(data []byte) error {
	if p == nil || p.Group == nil {
		return errors.New("polynomial: cannot unmarshal an Exponent with no Group set")
	}
	if len(data) < 4 {
		return errors.New("polynomial: truncated Exponent encoding")
	}
	group := p.Group
	size := binary.BigEndian.Uint32(data)
	coefficients := make([]curve.Point, size)
	for i := range coefficients {
		coefficients[i] = group.NewPoint()
	}
	raw := rawExponentData{Coefficients: coefficients}
	if err := cbor.Unmarshal(data[4:], &raw); err != nil {
		return err
	}
	p.Group = group
	p.Coefficients = raw.Coefficients
	p.IsConstant = raw.IsConstant
	return nil
}

func (p *Exponent) MarshalBinary() ([]byte, error) {
	data, err := cbor.Marshal(rawExponentData{
		IsConstant:   p.IsConstant,
		Coefficients: p.Coefficients,
	})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(p.Coefficients)))
	copy(out[4:], data)
	return out, nil
}
