// Package sign implements the two-party signing protocol of spec
// §4.6, run against the Config produced by protocols/ecdsa2p/dkg.
//
// Rounds 1-2 mirror key generation's commit-then-open nonce exchange.
// From round 3 onward the two parties play asymmetric roles: the
// non-holder runs an MtA exchange against the Paillier holder's
// encrypted share to convert the product k⁻¹·r·x into an additive
// share of the signature, and the holder — the only party who can
// decrypt that exchange — assembles the final signature and relays it
// back in round 5.
package sign

import (
	"crypto/rand"
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/protocols/ecdsa2p/config"
)

var _ round.Round = (*Round1)(nil)

// Round1 samples this party's nonce share and commits to it, exactly
// the way dkg.Round1 commits to the long-term share.
type Round1 struct {
	*round.Helper

	Cfg     *config.Config
	Message []byte
}

func (Round1) VerifyMessage(round.Message) error { return nil }
func (Round1) StoreMessage(round.Message) error  { return nil }
func (Round1) MessageContent() round.Content     { return nil }
func (Round1) Number() round.Number              { return 1 }

// Broadcast1 commits to this party's nonce point Rᵢ = kᵢ·G.
type Broadcast1 struct {
	round.NormalBroadcastContent

	Commitment hash.Commitment
}

func (Broadcast1) RoundNumber() round.Number { return 2 }

func (r *Round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	group := r.Group()

	nonce := sample.Scalar(rand.Reader, group)
	public := nonce.ActOnBase()

	h := r.HashForID(r.SelfID())
	commitment, decommitment, err := h.Commit(public)
	if err != nil {
		return nil, nil, fmt.Errorf("ecdsa2p/sign: round1: %w", err)
	}

	out = r.BroadcastMessage(out, &Broadcast1{Commitment: commitment})

	return &Round2{
		Round1:       r,
		Nonce:        nonce,
		Public:       public,
		Decommitment: decommitment,
	}, out, nil
}
