package polynomial

import (
	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/party"
)

// IndexOf deterministically maps a party ID onto a nonzero scalar index
// of the polynomial's domain; see party.ID.Scalar for the mapping
// itself. Every sharing and interpolation operation in this module —
// including pkg/ac's access-tree sharing — goes through this same
// function, so a share produced for an ID and a coefficient
// reconstructed for that ID always agree on which point they refer to.
func IndexOf(group curve.Curve, id party.ID) curve.Scalar {
	return id.Scalar(group)
}

// Lagrange computes every Lagrange coefficient l_j(0) for j in ids, the
// weights needed to reconstruct f(0) = sum_j l_j(0) * f(x_j) from a
// full set of shares (spec §4.5, threshold reconstruction).
func Lagrange(group curve.Curve, ids []party.ID) map[party.ID]curve.Scalar {
	return LagrangeAt(group, ids, group.NewScalar())
}

// LagrangeAt computes every Lagrange coefficient l_j(x) for j in ids,
// generalizing Lagrange to interpolate at an arbitrary point x instead
// of just the secret index 0 — used by partial reconstruction in an
// access-control tree, where a subtree's share must be expressed in
// terms of a sibling subtree's evaluation point.
func LagrangeAt(group curve.Curve, ids []party.ID, x curve.Scalar) map[party.ID]curve.Scalar {
	xs := make(map[party.ID]curve.Scalar, len(ids))
	for _, id := range ids {
		xs[id] = IndexOf(group, id)
	}

	coefficients := make(map[party.ID]curve.Scalar, len(ids))
	for _, j := range ids {
		xJ := xs[j]

		numerator := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
		denominator := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))

		for _, k := range ids {
			if k == j {
				continue
			}
			xK := xs[k]
			// numerator *= (x - x_k)
			numerator = numerator.Mul(x.Sub(xK))
			// denominator *= (x_j - x_k)
			denominator = denominator.Mul(xJ.Sub(xK))
		}

		coefficients[j] = numerator.Mul(denominator.Invert())
	}

	return coefficients
}
