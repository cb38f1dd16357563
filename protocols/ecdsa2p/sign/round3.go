package sign

import (
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/mta"
	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/paillier"
	zkaffg "github.com/shardsign/tss-core/pkg/zk/affg"
	zksch "github.com/shardsign/tss-core/pkg/zk/sch"
)

var _ round.Round = (*Round3)(nil)

// Round3 combines both nonce shares into the joint nonce point R and
// its x-coordinate r, then hands off to the asymmetric MtA exchange:
// the non-holder computes a = r·k⁻¹ and runs internal/mta.ProveAffG
// against the Paillier holder's encrypted long-term share, converting
// the product a·x into an additive share of the signature.
type Round3 struct {
	*Round2

	OtherPublic curve.Point
	R           curve.Point
	Rx          curve.Scalar
}

func (Round3) VerifyMessage(round.Message) error { return nil }
func (Round3) StoreMessage(round.Message) error  { return nil }
func (Round3) MessageContent() round.Content     { return nil }
func (Round3) Number() round.Number              { return 3 }

func (r *Round3) BroadcastContent() round.BroadcastContent {
	return &Broadcast2{
		Public:   r.Group().NewPoint(),
		SchProof: zksch.EmptyProof(r.Group()),
	}
}

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
		// including the sender itself; nothing new here.
		return nil
	}

	h := r.HashForID(from)
	if !h.Decommit(r.OtherCommitment, body.Decommitment, body.Public) {
		return fmt.Errorf("ecdsa2p/sign: round3: %s's opening does not match its round 1 commitment", from)
	}
	if !body.SchProof.Verify(r.Group(), h.Clone(), body.Public) {
		return fmt.Errorf("ecdsa2p/sign: round3: %s's nonce proof failed", from)
	}

	r.OtherPublic = body.Public
	return nil
}

// MtAMessage is the round-4 message: the non-holder's half of the MtA
// exchange against the holder's encrypted share, plus its cleartext
// additive contribution z2 = β + k⁻¹·(m + r·x2) to the signature.
type MtAMessage struct {
	round.NormalBroadcastContent

	BigA  curve.Point
	D, F  *paillier.Ciphertext
	Proof *zkaffg.Proof
	Z2    curve.Scalar
}

// RoundNumber implements round.Content: MtAMessage is produced during
// Round3's Finalize but consumed by Round4.
func (MtAMessage) RoundNumber() round.Number { return 4 }

func (r *Round3) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	if r.OtherPublic == nil {
		return nil, nil, errors.New("ecdsa2p/sign: round3: other party's nonce was never verified")
	}

	R := r.Nonce.Act(r.OtherPublic)
	Rx := R.XScalar()

	next := &Round4{Round3: r, R: R, Rx: Rx}

	if r.Cfg.IsPaillierHolder(r.SelfID()) {
		return next, out, nil
	}

	kInv := r.Group().NewScalar().Set(r.Nonce).Invert()
	a := r.Group().NewScalar().Set(Rx).Mul(kInv)
	bigA := a.ActOnBase()

	holderID := r.Cfg.PaillierHolder
	holderPaillier := r.Cfg.PaillierPublic[holderID]
	holderPedersen := r.Cfg.Pedersen[holderID]

	h := r.HashForID(r.SelfID())
	beta, D, F, proof := mta.ProveAffG(r.Group(), h.Clone(), curve.MakeInt(a), bigA,
		r.Cfg.CKey, r.Cfg.Paillier, holderPaillier, holderPedersen)

	// z2 = β + k⁻¹·(m + r·x2)
	m := curve.FromHash(r.Group(), r.Message)
	betaScalar := r.Group().NewScalar().SetInt(beta)
	inner := r.Group().NewScalar().Set(Rx).Mul(r.Cfg.ECDSA).Add(m)
	z2 := r.Group().NewScalar().Set(kInv).Mul(inner).Add(betaScalar)

	out = r.SendMessage(out, &MtAMessage{BigA: bigA, D: D, F: F, Proof: proof, Z2: z2}, holderID)

	return next, out, nil
}
