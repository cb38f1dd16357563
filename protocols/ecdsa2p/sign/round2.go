package sign

import (
	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	zksch "github.com/shardsign/tss-core/pkg/zk/sch"
)

var _ round.BroadcastRound = (*Round2)(nil)

// Round2 holds this party's own nonce share and, once StoreBroadcastMessage
// runs, the other party's still-unopened commitment.
type Round2 struct {
	*Round1

	Nonce        curve.Scalar
	Public       curve.Point
	Decommitment hash.Decommitment

	OtherCommitment hash.Commitment
}

func (r *Round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*Broadcast1)
	if !ok || body == nil || len(body.Commitment) == 0 {
		return round.ErrInvalidContent
	}
	if msg.From == r.SelfID() {
		// The handler delivers every broadcast to every party,
		// including the sender itself; nothing new here.
		return nil
	}
	r.OtherCommitment = body.Commitment
	return nil
}

func (Round2) VerifyMessage(round.Message) error { return nil }
func (Round2) StoreMessage(round.Message) error  { return nil }
func (Round2) MessageContent() round.Content     { return nil }
func (Round2) Number() round.Number              { return 2 }
func (Round2) BroadcastContent() round.BroadcastContent {
	return &Broadcast1{}
}

// Broadcast2 opens the nonce commitment and proves knowledge of its
// discrete log, the same UC-DL proof dkg.Broadcast2 uses for the
// long-term share.
type Broadcast2 struct {
	round.NormalBroadcastContent

	Public       curve.Point
	Decommitment hash.Decommitment
	SchProof     *zksch.Proof
}

func (Broadcast2) RoundNumber() round.Number { return 3 }

func (r *Round2) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	h := r.HashForID(r.SelfID())
	schProof := zksch.NewProof(r.Group(), h.Clone(), r.Public, r.Nonce)

	out = r.BroadcastMessage(out, &Broadcast2{
		Public:       r.Public,
		Decommitment: r.Decommitment,
		SchProof:     schProof,
	})

	return &Round3{Round2: r}, out, nil
}
