package ac

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/polynomial"
	"github.com/shardsign/tss-core/pkg/party"
)

// Reconstruct mirrors Share in reverse: given a set of leaf shares and
// the present leaf names (already known, via Node.Quorum, to satisfy
// tree), it reconstructs the root secret.
func Reconstruct(group curve.Curve, tree *Node, leaves map[party.ID]curve.Scalar, present map[party.ID]bool) (curve.Scalar, error) {
	if !tree.Quorum(present) {
		return nil, fmt.Errorf("ac: present parties do not satisfy the access tree")
	}
	return reconstructNode(group, tree, leaves, present)
}

func reconstructNode(group curve.Curve, n *Node, leaves map[party.ID]curve.Scalar, present map[party.ID]bool) (curve.Scalar, error) {
	switch n.Kind {
	case KindLeaf:
		if !present[n.Name] {
			return nil, fmt.Errorf("ac: leaf %q not present", n.Name)
		}
		share, ok := leaves[n.Name]
		if !ok {
			return nil, fmt.Errorf("ac: no share supplied for leaf %q", n.Name)
		}
		return share, nil

	case KindAnd:
		sum := group.NewScalar()
		for _, c := range n.Children {
			v, err := reconstructNode(group, c, leaves, present)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(v)
		}
		return sum, nil

	case KindOr:
		for _, c := range n.Children {
			if c.Quorum(present) {
				return reconstructNode(group, c, leaves, present)
			}
		}
		return nil, fmt.Errorf("ac: no satisfied child under OR node")

	case KindThreshold:
		type satisfied struct {
			id    party.ID
			value curve.Scalar
		}
		var pool []satisfied
		for _, c := range n.Children {
			if !c.Quorum(present) {
				continue
			}
			v, err := reconstructNode(group, c, leaves, present)
			if err != nil {
				return nil, err
			}
			pool = append(pool, satisfied{id: childIndexID(c), value: v})
			if len(pool) == n.Threshold {
				break
			}
		}
		if len(pool) < n.Threshold {
			return nil, fmt.Errorf("ac: only %d of %d required children satisfied", len(pool), n.Threshold)
		}

		ids := make([]party.ID, len(pool))
		for i, p := range pool {
			ids[i] = p.id
		}
		coeffs := polynomial.Lagrange(group, ids)

		result := group.NewScalar()
		for _, p := range pool {
			result = result.Add(coeffs[p.id].Mul(p.value))
		}
		return result, nil

	default:
		return nil, fmt.Errorf("ac: unknown node kind %d", n.Kind)
	}
}

// ReconstructExponent is Reconstruct's analog for per-party public
// sub-shares x_i*G, used to check a DKG's distributed public key
// without ever combining the private shares themselves.
func ReconstructExponent(group curve.Curve, tree *Node, leaves map[party.ID]curve.Point, present map[party.ID]bool) (curve.Point, error) {
	if !tree.Quorum(present) {
		return nil, fmt.Errorf("ac: present parties do not satisfy the access tree")
	}
	return reconstructExponentNode(group, tree, leaves, present)
}

func reconstructExponentNode(group curve.Curve, n *Node, leaves map[party.ID]curve.Point, present map[party.ID]bool) (curve.Point, error) {
	switch n.Kind {
	case KindLeaf:
		if !present[n.Name] {
			return nil, fmt.Errorf("ac: leaf %q not present", n.Name)
		}
		p, ok := leaves[n.Name]
		if !ok {
			return nil, fmt.Errorf("ac: no public sub-share supplied for leaf %q", n.Name)
		}
		return p, nil

	case KindAnd:
		sum := group.NewPoint()
		for _, c := range n.Children {
			v, err := reconstructExponentNode(group, c, leaves, present)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(v)
		}
		return sum, nil

	case KindOr:
		for _, c := range n.Children {
			if c.Quorum(present) {
				return reconstructExponentNode(group, c, leaves, present)
			}
		}
		return nil, fmt.Errorf("ac: no satisfied child under OR node")

	case KindThreshold:
		type satisfied struct {
			id    party.ID
			value curve.Point
		}
		var pool []satisfied
		for _, c := range n.Children {
			if !c.Quorum(present) {
				continue
			}
			v, err := reconstructExponentNode(group, c, leaves, present)
			if err != nil {
				return nil, err
			}
			pool = append(pool, satisfied{id: childIndexID(c), value: v})
			if len(pool) == n.Threshold {
				break
			}
		}
		if len(pool) < n.Threshold {
			return nil, fmt.Errorf("ac: only %d of %d required children satisfied", len(pool), n.Threshold)
		}

		ids := make([]party.ID, len(pool))
		for i, p := range pool {
			ids[i] = p.id
		}
		coeffs := polynomial.Lagrange(group, ids)

		result := group.NewPoint()
		for _, p := range pool {
			result = result.Add(coeffs[p.id].Act(p.value))
		}
		return result, nil

	default:
		return nil, fmt.Errorf("ac: unknown node kind %d", n.Kind)
	}
}

// AdditiveShares re-expresses every active leaf's access-control share
// as an equivalent additive share of the same secret, restricted to the
// quorum described by present: walking the tree, pruning branches whose
// children are absent, and at THRESHOLD nodes multiplying each active
// child's contribution by its Lagrange coefficient (computed over the
// node's satisfied children, which interpolate the node's value at 0). The
// returned shares sum to the root secret modulo the group order,
// letting plain additive-share protocols run against an access-control
// key threshold-style.
func AdditiveShares(group curve.Curve, tree *Node, leaves map[party.ID]curve.Scalar, present map[party.ID]bool) (map[party.ID]curve.Scalar, error) {
	if !tree.Quorum(present) {
		return nil, fmt.Errorf("ac: present parties do not satisfy the access tree")
	}
	one := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	out := make(map[party.ID]curve.Scalar)
	if err := additiveSharesNode(group, tree, leaves, present, one, out); err != nil {
		return nil, err
	}
	return out, nil
}

func additiveSharesNode(group curve.Curve, n *Node, leaves map[party.ID]curve.Scalar, present map[party.ID]bool, weight curve.Scalar, out map[party.ID]curve.Scalar) error {
	switch n.Kind {
	case KindLeaf:
		if !present[n.Name] {
			return fmt.Errorf("ac: leaf %q not present", n.Name)
		}
		share, ok := leaves[n.Name]
		if !ok {
			return fmt.Errorf("ac: no share supplied for leaf %q", n.Name)
		}
		contribution := weight.Mul(share)
		if existing, ok := out[n.Name]; ok {
			out[n.Name] = existing.Add(contribution)
		} else {
			out[n.Name] = contribution
		}
		return nil

	case KindAnd:
		for _, c := range n.Children {
			if err := additiveSharesNode(group, c, leaves, present, weight, out); err != nil {
				return err
			}
		}
		return nil

	case KindOr:
		for _, c := range n.Children {
			if c.Quorum(present) {
				return additiveSharesNode(group, c, leaves, present, weight, out)
			}
		}
		return fmt.Errorf("ac: no satisfied child under OR node")

	case KindThreshold:
		var activeChildren []*Node
		var activeIDs []party.ID
		for _, c := range n.Children {
			if c.Quorum(present) {
				activeChildren = append(activeChildren, c)
				activeIDs = append(activeIDs, childIndexID(c))
			}
		}
		if len(activeChildren) < n.Threshold {
			return fmt.Errorf("ac: only %d of %d required children satisfied", len(activeChildren), n.Threshold)
		}

		coeffs := polynomial.LagrangeAt(group, activeIDs, group.NewScalar())
		for _, c := range activeChildren {
			id := childIndexID(c)
			childWeight := weight.Mul(coeffs[id])
			if err := additiveSharesNode(group, c, leaves, present, childWeight, out); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("ac: unknown node kind %d", n.Kind)
	}
}
