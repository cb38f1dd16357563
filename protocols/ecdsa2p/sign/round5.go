package sign

import (
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/ecdsa"
)

var _ round.Round = (*Round5)(nil)

// Round5 relays the assembled signature from the Paillier holder back
// to the non-holder, who has no other way to learn it. The holder's
// own instance already has Signature set from Round4 and does no
// further work.
type Round5 struct {
	*Round4

	Signature *ecdsa.Signature
}

func (r *Round5) MessageContent() round.Content {
	if r.Cfg.IsPaillierHolder(r.SelfID()) {
		return nil
	}
	return &FinalMessage{Signature: ecdsa.EmptySignature(r.Group())}
}

func (r *Round5) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*FinalMessage)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if !body.Signature.Verify(r.Cfg.Public, r.Message) {
		return errors.New("ecdsa2p/sign: round5: relayed signature does not verify")
	}
	return nil
}

func (r *Round5) StoreMessage(msg round.Message) error {
	body, ok := msg.Content.(*FinalMessage)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	sig := body.Signature
	r.Signature = &sig
	return nil
}

func (Round5) Number() round.Number { return 5 }

// FinalMessage carries the assembled signature from the holder to the
// non-holder.
type FinalMessage struct {
	round.NormalBroadcastContent

	Signature ecdsa.Signature
}

// RoundNumber implements round.Content.
func (FinalMessage) RoundNumber() round.Number { return 5 }

func (r *Round5) Finalize([]*round.Message) (round.Session, []*round.Message, error) {
	if r.Signature == nil {
		return nil, nil, fmt.Errorf("ecdsa2p/sign: round5: no signature available for %s", r.SelfID())
	}
	return r.ResultRound(r.Signature), nil, nil
}
