package ac

import (
	"crypto/rand"
	"fmt"

	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/polynomial"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/party"
)

// Shares is the output of sharing a secret across an access-control
// tree: one scalar share per leaf party, plus the public commitment
// vector published by every THRESHOLD node along the way.
type Shares struct {
	Group curve.Curve
	// Leaves holds each leaf party's additive/polynomial share.
	Leaves map[party.ID]curve.Scalar
	// NodeCommitments holds, for every THRESHOLD node, the exponent
	// commitment to its degree-(t-1) sharing polynomial
	// ({f_j*G}_{j<t}, spec's "ac_internal_pub_shares"), keyed by the
	// node's content-addressed ID.
	NodeCommitments map[NodeID]*polynomial.Exponent
}

// childIndexID returns the identity a child node is indexed by when its
// parent is a THRESHOLD node: a leaf is indexed by its own party ID (so
// a flat THRESHOLD directly over leaves behaves exactly like ordinary
// Shamir/VSS sharing elsewhere in this module), and any other node is
// indexed by its content-addressed NodeID reinterpreted as a party.ID
// (party.ID is just a byte string; polynomial.IndexOf only needs stable,
// distinct entropy, not a registered party).
func childIndexID(c *Node) party.ID {
	if c.Kind == KindLeaf {
		return c.Name
	}
	id := c.ID()
	return party.ID(id[:])
}

// Share distributes secret across tree, producing a share for every
// leaf party and a public commitment for every THRESHOLD node.
func Share(group curve.Curve, tree *Node, secret curve.Scalar) (*Shares, error) {
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	s := &Shares{
		Group:           group,
		Leaves:          make(map[party.ID]curve.Scalar),
		NodeCommitments: make(map[NodeID]*polynomial.Exponent),
	}
	if err := shareNode(group, tree, secret, s); err != nil {
		return nil, err
	}
	return s, nil
}

func shareNode(group curve.Curve, n *Node, x curve.Scalar, s *Shares) error {
	switch n.Kind {
	case KindLeaf:
		if _, exists := s.Leaves[n.Name]; exists {
			return fmt.Errorf("ac: party %q appears more than once in the tree", n.Name)
		}
		s.Leaves[n.Name] = x
		return nil

	case KindAnd:
		remaining := group.NewScalar().Set(x)
		for i, c := range n.Children {
			if i == len(n.Children)-1 {
				if err := shareNode(group, c, remaining, s); err != nil {
					return err
				}
				continue
			}
			xi := sample.Scalar(rand.Reader, group)
			remaining = remaining.Sub(xi)
			if err := shareNode(group, c, xi, s); err != nil {
				return err
			}
		}
		return nil

	case KindOr:
		for _, c := range n.Children {
			if err := shareNode(group, c, x, s); err != nil {
				return err
			}
		}
		return nil

	case KindThreshold:
		poly := polynomial.NewPolynomial(group, n.Threshold-1, x)
		s.NodeCommitments[n.ID()] = polynomial.NewPolynomialExponent(poly)
		for _, c := range n.Children {
			alpha := polynomial.IndexOf(group, childIndexID(c))
			xi := poly.Evaluate(alpha)
			if err := shareNode(group, c, xi, s); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("ac: unknown node kind %d", n.Kind)
	}
}
