package dkg

import (
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/math/curve"
	zklogstar "github.com/shardsign/tss-core/pkg/zk/logstar"
	zkmod "github.com/shardsign/tss-core/pkg/zk/mod"
	zksch "github.com/shardsign/tss-core/pkg/zk/sch"
	"github.com/shardsign/tss-core/protocols/ecdsa2p/config"
)

var _ round.Round = (*Round3)(nil)

// Round3 verifies what the other party opened in Round2 and produces
// the final Config.
type Round3 struct {
	*Round2

	OtherPublic curve.Point
}

// VerifyMessage implements round.Round; Round3 only expects a broadcast.
func (Round3) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round; Round3 only expects a broadcast.
func (Round3) StoreMessage(round.Message) error { return nil }

// MessageContent implements round.Round; Round3 only expects a broadcast.
func (Round3) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (Round3) Number() round.Number { return 3 }

// BroadcastContent implements round.BroadcastRound: Round3 expects the
// other party's Broadcast2, whose interface-typed fields need a
// concrete curve hint before cbor can unmarshal into them.
func (r *Round3) BroadcastContent() round.BroadcastContent {
	return &Broadcast2{
		Public:   r.Group().NewPoint(),
		SchProof: zksch.EmptyProof(r.Group()),
		LogProof: zklogstar.Empty(r.Group()),
	}
}

// StoreBroadcastMessage implements round.BroadcastRound: verifies the
// other party's opening, Schnorr proof, modulus proof, and (if they
// hold the Paillier key) the PDL-equivalent log-star proof, before
// accepting their revealed public share.
func (r *Round3) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*Broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Public == nil || body.Public.IsIdentity() {
		return round.ErrNilFields
	}

	from := msg.From
	if from == r.SelfID() {
		// The handler delivers every broadcast to every party,
		// including the sender itself; nothing to verify here.
		return nil
	}
	h := r.HashForID(from)
	if !h.Decommit(r.OtherCommitment, body.Decommitment, body.Public) {
		return fmt.Errorf("ecdsa2p/dkg: round3: %s's opening does not match its round 1 commitment", from)
	}

	if !body.SchProof.Verify(r.Group(), h.Clone(), body.Public) {
		return fmt.Errorf("ecdsa2p/dkg: round3: %s's UC-DL proof failed", from)
	}

	if !body.ModProof.Verify(zkmod.Public{N: r.PaillierPublicOf[from].N()}, h.Clone(), r.Pool) {
		return fmt.Errorf("ecdsa2p/dkg: round3: %s's Paillier modulus proof failed", from)
	}

	if from == r.PaillierHolder {
		ckey := r.CKeyOf[from]
		if ckey == nil || body.LogProof == nil {
			return errors.New("ecdsa2p/dkg: round3: paillier holder did not send c_key proof")
		}
		if !body.LogProof.Verify(h.Clone(), zklogstar.Public{
			C:      ckey,
			X:      body.Public,
			Prover: r.PaillierPublicOf[from],
			Aux:    r.PedersenPublic,
		}) {
			return fmt.Errorf("ecdsa2p/dkg: round3: %s's c_key proof failed", from)
		}
	}

	r.OtherPublic = body.Public
	return nil
}

// Finalize implements round.Round: assembles the joint public key and
// returns this party's Config.
func (r *Round3) Finalize([]*round.Message) (round.Session, []*round.Message, error) {
	if r.OtherPublic == nil {
		return nil, nil, errors.New("ecdsa2p/dkg: round3: other party's share was never verified")
	}

	cfg := &config.Config{
		Group:          r.Group(),
		Self:           r.SelfID(),
		Other:          r.Other,
		ECDSA:          r.Secret,
		Public:         r.Public.Add(r.OtherPublic),
		PaillierHolder: r.PaillierHolder,
		Paillier:       r.PaillierSecret,
		PaillierPublic: r.PaillierPublicOf,
		Pedersen:       r.PedersenOf,
		CKey:           r.CKeyOf[r.PaillierHolder],
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("ecdsa2p/dkg: round3: %w", err)
	}

	return r.ResultRound(cfg), nil, nil
}
