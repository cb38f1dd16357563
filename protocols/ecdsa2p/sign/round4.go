package sign

import (
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/ecdsa"
	zkaffg "github.com/shardsign/tss-core/pkg/zk/affg"
)

var _ round.Round = (*Round4)(nil)

// Round4 is where the asymmetry peaks: only the Paillier holder
// expects an inbound MtAMessage this round, and only the holder does
// any work in Finalize — decrypting the non-holder's D to recover its
// share of the signature, combining it with its own, and relaying the
// finished signature onward in round 5.
type Round4 struct {
	*Round3

	// MtA holds what the holder received from the non-holder; nil on
	// the non-holder's own instance.
	MtA *MtAMessage
}

func (r *Round4) MessageContent() round.Content {
	if !r.Cfg.IsPaillierHolder(r.SelfID()) {
		return nil
	}
	return &MtAMessage{
		BigA:  r.Group().NewPoint(),
		Proof: zkaffg.Empty(r.Group()),
		Z2:    r.Group().NewScalar(),
	}
}

func (r *Round4) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*MtAMessage)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.BigA == nil || body.D == nil || body.F == nil || body.Proof == nil || body.Z2 == nil {
		return round.ErrNilFields
	}

	from := msg.From
	h := r.HashForID(from)
	ok = body.Proof.Verify(h.Clone(), zkaffg.Public{
		Kv:       r.Cfg.CKey,
		Dv:       body.D,
		Fp:       body.F,
		Xp:       body.BigA,
		Prover:   r.Cfg.PaillierPublic[from],
		Verifier: r.Cfg.Paillier.PublicKey,
		Aux:      r.Cfg.Pedersen[r.SelfID()],
	})
	if !ok {
		return fmt.Errorf("ecdsa2p/sign: round4: %s's MtA proof failed", from)
	}

	return nil
}

func (r *Round4) StoreMessage(msg round.Message) error {
	body, ok := msg.Content.(*MtAMessage)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	r.MtA = body
	return nil
}

func (Round4) Number() round.Number { return 4 }

func (r *Round4) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	if !r.Cfg.IsPaillierHolder(r.SelfID()) {
		return &Round5{Round4: r}, out, nil
	}
	if r.MtA == nil {
		return nil, nil, errors.New("ecdsa2p/sign: round4: never received the other party's MtA message")
	}

	alphaInt, err := r.Cfg.Paillier.Dec(r.MtA.D)
	if err != nil {
		return nil, nil, fmt.Errorf("ecdsa2p/sign: round4: decrypting MtA ciphertext: %w", err)
	}
	alpha := r.Group().NewScalar().SetInt(alphaInt)

	// s' = alpha + z2 = k⁻¹·(m + r·x); s = s'/k1
	sPrime := r.Group().NewScalar().Set(alpha).Add(r.MtA.Z2)
	kInv := r.Group().NewScalar().Set(r.Nonce).Invert()
	s := r.Group().NewScalar().Set(sPrime).Mul(kInv)

	if s.IsOverHalfOrder() {
		s = s.Negate()
	}

	sig := ecdsa.Signature{R: r.R, S: s}
	if !sig.Verify(r.Cfg.Public, r.Message) {
		return nil, nil, errors.New("ecdsa2p/sign: round4: assembled signature failed self-check")
	}

	out = r.SendMessage(out, &FinalMessage{Signature: sig}, r.Cfg.Other)

	return &Round5{Round4: r, Signature: &sig}, out, nil
}
