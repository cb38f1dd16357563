package ac

import (
	"fmt"

	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/polynomial"
	"github.com/shardsign/tss-core/pkg/party"
)

// pathTo returns the chain of nodes from tree down to the leaf named
// name, root first, leaf last.
func pathTo(tree *Node, name party.ID) ([]*Node, bool) {
	if tree.Kind == KindLeaf {
		if tree.Name == name {
			return []*Node{tree}, true
		}
		return nil, false
	}
	for _, c := range tree.Children {
		if rest, ok := pathTo(c, name); ok {
			return append([]*Node{tree}, rest...), true
		}
	}
	return nil, false
}

// exponentOf returns the public commitment of node's own x-value in
// the exponent, if it is derivable without any private input: a leaf's
// own claimed share (the base case, supplied by the caller), or a
// THRESHOLD node's polynomial constant term (commitments[node.ID()]'s
// Constant(), i.e. f(0)*G). AND/OR nodes publish no such commitment
// and so cannot serve as an intermediate checkpoint; VerifyLeaf skips
// over them, verifying only the THRESHOLD-to-THRESHOLD and
// THRESHOLD-to-leaf edges along the path.
func exponentOf(node *Node, commitments map[NodeID]*polynomial.Exponent) (curve.Point, bool) {
	if node.Kind != KindThreshold {
		return nil, false
	}
	exp, ok := commitments[node.ID()]
	if !ok {
		return nil, false
	}
	return exp.Constant(), true
}

// VerifyLeaf checks a leaf party's share for consistency against the
// public commitments published by the THRESHOLD nodes on the path from
// it to the root (spec §4.5, "verify its own leaf share's consistency
// against the chain of public auxiliary points from leaf to root").
//
// Only THRESHOLD nodes publish a commitment, so this verifies every
// edge of the path whose lower endpoint is the leaf itself or another
// THRESHOLD node; an AND/OR node between two THRESHOLD ancestors is not
// independently checkable and is skipped.
func VerifyLeaf(group curve.Curve, tree *Node, leaf party.ID, share curve.Scalar, commitments map[NodeID]*polynomial.Exponent) (bool, error) {
	path, ok := pathTo(tree, leaf)
	if !ok {
		return false, fmt.Errorf("ac: party %q is not a leaf of this tree", leaf)
	}

	// childExponent is the exponent commitment of the node at path[i+1],
	// known without needing any sibling's private share.
	childExponent := func(i int) (curve.Point, bool) {
		if i+1 == len(path)-1 {
			return share.ActOnBase(), true
		}
		return exponentOf(path[i+1], commitments)
	}

	checked := false
	for i := 0; i < len(path)-1; i++ {
		parent := path[i]
		if parent.Kind != KindThreshold {
			continue
		}
		commitment, ok := commitments[parent.ID()]
		if !ok {
			return false, fmt.Errorf("ac: missing commitment for THRESHOLD node on path to %q", leaf)
		}
		wantExp, ok := childExponent(i)
		if !ok {
			continue
		}
		alpha := polynomial.IndexOf(group, childIndexID(path[i+1]))
		gotExp := commitment.Evaluate(alpha)
		if !gotExp.Equal(wantExp) {
			return false, nil
		}
		checked = true
	}

	if !checked {
		return false, fmt.Errorf("ac: no THRESHOLD commitment on the path to %q to verify against", leaf)
	}
	return true, nil
}
