package broadcast

import (
	"sort"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/party"
)

var _ round.BroadcastRound = (*Round1)(nil)

// Round1 implements the first half of an echo broadcast: every party
// sends its raw Broadcaster data to every other party, and once all N
// copies have arrived, they are hashed together into a single digest.
// That digest is threaded into the following round via Round2, so that
// round's messages all attest to having seen the same broadcast data,
// the property a naive (non-reliable) broadcast cannot guarantee against
// a malicious sender who equivocates.
type Round1 struct {
	*round.Helper
	Round    round.Round
	received map[party.ID][]byte
}

// Message1 carries one party's raw broadcast data for the echo round.
type Message1 struct {
	round.ReliableBroadcastContent
	Number round.Number
	Data   []byte
}

// RoundNumber implements round.Content.
func (m Message1) RoundNumber() round.Number { return m.Number }

// Number implements round.Round; Round1 stands in for the same round
// number as the round it wraps.
func (r *Round1) Number() round.Number { return r.Round.Number() }

// VerifyMessage implements round.Round, forwarding to the wrapped round
// since Round1 only intercepts the broadcast channel.
func (r *Round1) VerifyMessage(msg round.Message) error {
	return r.Round.VerifyMessage(msg)
}

// StoreMessage implements round.Round.
func (r *Round1) StoreMessage(msg round.Message) error {
	return r.Round.StoreMessage(msg)
}

// MessageContent implements round.Round.
func (r *Round1) MessageContent() round.Content {
	return r.Round.MessageContent()
}

// BroadcastContent implements round.BroadcastRound.
func (r *Round1) BroadcastContent() round.BroadcastContent {
	return &Message1{}
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *Round1) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*Message1)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	r.received[msg.From] = body.Data
	return nil
}

// Finalize computes the echo digest over every party's raw broadcast
// data, then runs the wrapped round's own Finalize. If the resulting
// round expects a reliable broadcast of its own, its messages are
// upgraded to carry the echo digest via Round2.
func (r *Round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	ids := make(party.IDSlice, 0, len(r.received))
	for id := range r.received {
		ids = append(ids, id)
	}
	sort.Sort(ids)

	h := r.Helper.Hash()
	for _, id := range ids {
		_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: string(id), Bytes: r.received[id]})
	}
	echoHash := h.Sum()

	nextSession, messages, err := r.Round.Finalize(out)
	if err != nil || nextSession == nil {
		return nextSession, messages, err
	}

	if _, ok := nextSession.(round.BroadcastRound); !ok {
		return nextSession, messages, nil
	}

	return &echoSession{Session: nextSession, echo: &Round2{Round: nextSession, EchoHash: echoHash}}, messages, nil
}

// echoSession upgrades a Session's P2P message handling to go through a
// Round2, while every other Session method still comes from the
// original round.
type echoSession struct {
	round.Session
	echo *Round2
}

func (e *echoSession) VerifyMessage(msg round.Message) error { return e.echo.VerifyMessage(msg) }
func (e *echoSession) StoreMessage(msg round.Message) error  { return e.echo.StoreMessage(msg) }
func (e *echoSession) MessageContent() round.Content         { return e.echo.MessageContent() }

func (e *echoSession) StoreBroadcastMessage(msg round.Message) error {
	return e.Session.(round.BroadcastRound).StoreBroadcastMessage(msg)
}

func (e *echoSession) BroadcastContent() round.BroadcastContent {
	return e.Session.(round.BroadcastRound).BroadcastContent()
}
