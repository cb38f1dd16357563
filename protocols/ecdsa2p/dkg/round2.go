package dkg

import (
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pedersen"
	zklogstar "github.com/shardsign/tss-core/pkg/zk/logstar"
	zkmod "github.com/shardsign/tss-core/pkg/zk/mod"
	zksch "github.com/shardsign/tss-core/pkg/zk/sch"
)

var _ round.BroadcastRound = (*Round2)(nil)

// Round2 holds this party's own share and key material plus whatever
// the other party has revealed (Paillier/Pedersen material, and the
// commitment to their own share, which stays unopened until Round3).
type Round2 struct {
	*Round1

	Secret       curve.Scalar
	Public       curve.Point
	Commitment   hash.Commitment
	Decommitment hash.Decommitment

	PaillierSecret *paillier.SecretKey
	PedersenPublic *pedersen.Parameters
	PedersenSecret *saferith.Nat

	CKey      *paillier.Ciphertext
	CKeyNonce *saferith.Nat

	PaillierPublicOf map[party.ID]*paillier.PublicKey
	PedersenOf       map[party.ID]*pedersen.Parameters
	CKeyOf           map[party.ID]*paillier.Ciphertext

	OtherCommitment hash.Commitment
}

// StoreBroadcastMessage implements round.BroadcastRound: records the
// other party's Paillier/Pedersen material and (if they are the
// designated holder) their encrypted share, alongside their still
// unopened commitment.
func (r *Round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*Broadcast1)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.PaillierPublic == nil || body.Pedersen == nil || len(body.Commitment) == 0 {
		return round.ErrNilFields
	}
	from := msg.From
	r.PaillierPublicOf[from] = body.PaillierPublic
	r.PedersenOf[from] = body.Pedersen
	if body.CKey != nil {
		r.CKeyOf[from] = body.CKey
	}
	// The handler delivers every broadcast to every party, including
	// the sender itself; only the other party's commitment is new.
	if from == r.SelfID() {
		return nil
	}
	r.OtherCommitment = body.Commitment
	return nil
}

// VerifyMessage implements round.Round; Round2 only expects a broadcast.
func (Round2) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round; Round2 only expects a broadcast.
func (Round2) StoreMessage(round.Message) error { return nil }

// MessageContent implements round.Round; Round2 only expects a broadcast.
func (Round2) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (Round2) Number() round.Number { return 2 }

// BroadcastContent implements round.BroadcastRound: Round2 expects the
// other party's Broadcast1.
func (Round2) BroadcastContent() round.BroadcastContent { return &Broadcast1{} }

// Broadcast2 opens the commitment from round 1 and proves knowledge of
// the revealed share; the Paillier holder additionally proves c_key
// encrypts its discrete log, and both parties prove their own Paillier
// modulus is a valid Blum integer.
type Broadcast2 struct {
	round.NormalBroadcastContent

	Public       curve.Point
	Decommitment hash.Decommitment
	SchProof     *zksch.Proof
	ModProof     *zkmod.Proof
	// LogProof is only set by the Paillier holder.
	LogProof *zklogstar.Proof
}

// RoundNumber implements round.Content: Broadcast2 is produced during
// Round2's Finalize but consumed by Round3's StoreBroadcastMessage.
func (Broadcast2) RoundNumber() round.Number { return 3 }

// Finalize implements round.Round.
func (r *Round2) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	h := r.HashForID(r.SelfID())

	schProof := zksch.NewProof(r.Group(), h.Clone(), r.Public, r.Secret)

	modProof := zkmod.NewProof(h.Clone(), zkmod.Private{
		P:   r.PaillierSecret.P(),
		Q:   r.PaillierSecret.Q(),
		Phi: r.PaillierSecret.Phi(),
	}, zkmod.Public{N: r.PaillierSecret.N()}, r.Pool)

	broadcast := &Broadcast2{
		Public:       r.Public,
		Decommitment: r.Decommitment,
		SchProof:     schProof,
		ModProof:     modProof,
	}

	if r.SelfID() == r.PaillierHolder {
		otherPedersen := r.PedersenOf[r.Other]
		if otherPedersen == nil {
			return nil, nil, fmt.Errorf("ecdsa2p/dkg: round2: missing %s's pedersen parameters", r.Other)
		}
		broadcast.LogProof = zklogstar.NewProof(r.Group(), h.Clone(), zklogstar.Public{
			C:      r.CKey,
			X:      r.Public,
			Prover: r.PaillierSecret.PublicKey,
			Aux:    otherPedersen,
		}, zklogstar.Private{
			X:   curve.MakeInt(r.Secret),
			Rho: r.CKeyNonce,
		})
	}

	out = r.BroadcastMessage(out, broadcast)

	return &Round3{
		Round2: r,
	}, out, nil
}
