// Package ac implements access-control secret sharing: a tree of AND/
// OR/THRESHOLD gates over leaf parties that determines which subsets of
// parties ("quorums") can reconstruct a shared secret, generalizing the
// flat Lagrange/Shamir sharing pkg/math/polynomial already provides for
// a single THRESHOLD node into an arbitrary nested access structure.
package ac

import (
	"encoding/binary"
	"fmt"

	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/party"
)

// Kind identifies the gate a Node applies to its children.
type Kind int

const (
	// KindLeaf carries a share directly for a single party.
	KindLeaf Kind = iota
	// KindAnd requires every child to be satisfied; the secret is split
	// additively across children.
	KindAnd
	// KindOr requires any one child to be satisfied; every child
	// receives the same share.
	KindOr
	// KindThreshold requires at least Threshold of its children;
	// shares are points on a degree-(Threshold-1) polynomial.
	KindThreshold
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "LEAF"
	case KindAnd:
		return "AND"
	case KindOr:
		return "OR"
	case KindThreshold:
		return "THRESHOLD"
	default:
		return "UNKNOWN"
	}
}

// Node is a single gate (or leaf) of an access-control tree.
type Node struct {
	Kind Kind
	// Name identifies the leaf party. Only set when Kind == KindLeaf.
	Name party.ID
	// Threshold is the quorum size t for a KindThreshold node.
	Threshold int
	Children  []*Node
}

// Leaf returns a tree node carrying a single party's share directly.
func Leaf(name party.ID) *Node {
	return &Node{Kind: KindLeaf, Name: name}
}

// And returns an additive-split node: all children must be satisfied.
func And(children ...*Node) *Node {
	return &Node{Kind: KindAnd, Children: children}
}

// Or returns a node giving every child the same share: any one
// satisfies it.
func Or(children ...*Node) *Node {
	return &Node{Kind: KindOr, Children: children}
}

// Threshold returns a degree-(t-1) polynomial-split node requiring any
// t of its children.
func Threshold(t int, children ...*Node) *Node {
	return &Node{Kind: KindThreshold, Threshold: t, Children: children}
}

// Validate checks the tree is well-formed: leaves carry a non-empty
// name, internal nodes carry at least one child, and THRESHOLD nodes
// have 1 <= Threshold <= len(Children).
func (n *Node) Validate() error {
	switch n.Kind {
	case KindLeaf:
		if n.Name == "" {
			return fmt.Errorf("ac: leaf node has empty party ID")
		}
		if len(n.Children) != 0 {
			return fmt.Errorf("ac: leaf node %q must not have children", n.Name)
		}
	case KindAnd, KindOr:
		if len(n.Children) == 0 {
			return fmt.Errorf("ac: %s node must have at least one child", n.Kind)
		}
	case KindThreshold:
		if len(n.Children) == 0 {
			return fmt.Errorf("ac: THRESHOLD node must have at least one child")
		}
		if n.Threshold < 1 || n.Threshold > len(n.Children) {
			return fmt.Errorf("ac: THRESHOLD node has invalid threshold %d of %d children", n.Threshold, len(n.Children))
		}
	default:
		return fmt.Errorf("ac: unknown node kind %d", n.Kind)
	}
	for _, c := range n.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Leaves returns every leaf party name under n, in tree order.
func (n *Node) Leaves() []party.ID {
	if n.Kind == KindLeaf {
		return []party.ID{n.Name}
	}
	var out []party.ID
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// ID is a content-addressed identifier for an internal node, derived
// deterministically from its kind, threshold, and the IDs of its
// children (or its party name, for a leaf), so every party holding the
// same tree structure computes the same node_id without coordination —
// needed as the map key for a THRESHOLD node's published commitment
// vector and for verifying a leaf's share against its chain of
// ancestors.
func (n *Node) ID() NodeID {
	h := hash.New()
	var kindBuf [8]byte
	binary.BigEndian.PutUint64(kindBuf[:], uint64(n.Kind))
	_ = h.WriteAny(kindBuf[:])
	if n.Kind == KindLeaf {
		_ = h.WriteAny([]byte(n.Name))
	}
	if n.Kind == KindThreshold {
		var tBuf [8]byte
		binary.BigEndian.PutUint64(tBuf[:], uint64(n.Threshold))
		_ = h.WriteAny(tBuf[:])
	}
	for _, c := range n.Children {
		childID := c.ID()
		_ = h.WriteAny(childID[:])
	}
	var out NodeID
	copy(out[:], h.Sum()[:32])
	return out
}

// NodeID is the fixed-width identifier returned by Node.ID.
type NodeID [32]byte

// Quorum reports whether present — the set of leaf party names known
// to be available — satisfies n: AND requires every child satisfied,
// OR requires any, THRESHOLD requires at least Threshold children
// satisfied.
func (n *Node) Quorum(present map[party.ID]bool) bool {
	switch n.Kind {
	case KindLeaf:
		return present[n.Name]
	case KindAnd:
		for _, c := range n.Children {
			if !c.Quorum(present) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range n.Children {
			if c.Quorum(present) {
				return true
			}
		}
		return false
	case KindThreshold:
		count := 0
		for _, c := range n.Children {
			if c.Quorum(present) {
				count++
			}
		}
		return count >= n.Threshold
	default:
		return false
	}
}
