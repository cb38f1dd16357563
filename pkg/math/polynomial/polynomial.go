// Package polynomial implements the secret-sharing polynomials behind
// every threshold DKG and refresh operation in this module: generation
// over Z_q, Horner evaluation, and — in exponent.go and lagrange.go —
// the exponent-only and Lagrange-interpolation operations threshold
// signing needs without ever reconstructing a private share.
package polynomial

import (
	"crypto/rand"

	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/party"
)

// Polynomial represents f(X) = a_0 + a_1*X + ... + a_t*X^t over a
// curve's scalar field.
type Polynomial struct {
	Group        curve.Curve
	Coefficients []curve.Scalar
}

// NewPolynomial generates a random polynomial of the given degree whose
// constant term is fixed to constant (or 0, if nil).
func NewPolynomial(group curve.Curve, degree int, constant curve.Scalar) *Polynomial {
	p := &Polynomial{
		Group:        group,
		Coefficients: make([]curve.Scalar, degree+1),
	}

	if constant == nil {
		constant = group.NewScalar()
	}
	p.Coefficients[0] = constant

	for i := 1; i <= degree; i++ {
		p.Coefficients[i] = sample.Scalar(rand.Reader, group)
	}

	return p
}

// Evaluate computes f(index) via Horner's method. index must be nonzero:
// evaluating at 0 would return the secret constant term directly.
//
// Scalar arithmetic here returns new values rather than mutating the
// receiver (see DESIGN.md), so each Horner step reassigns result rather
// than chaining a mutating call the way the upstream project does.
func (p *Polynomial) Evaluate(index curve.Scalar) curve.Scalar {
	if index.IsZero() {
		panic("polynomial: cannot evaluate at the secret index 0")
	}

	result := p.Group.NewScalar()
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		result = result.Mul(index).Add(p.Coefficients[i])
	}
	return result
}

// ShareFor evaluates the polynomial at the canonical index derived from
// id, the share a DKG or refresh round hands to that party.
func (p *Polynomial) ShareFor(id party.ID) curve.Scalar {
	return p.Evaluate(IndexOf(p.Group, id))
}

// Constant returns the constant coefficient (the shared secret).
func (p *Polynomial) Constant() curve.Scalar {
	return p.Group.NewScalar().Set(p.Coefficients[0])
}

// Degree is the highest power of the polynomial.
func (p *Polynomial) Degree() uint32 {
	return uint32(len(p.Coefficients)) - 1
}
