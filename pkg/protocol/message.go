package protocol

import (
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/party"
)

// Message is the wire representation of a round.Message: a CBOR-framed
// Content, plus the routing and session-binding metadata a Handler
// needs to decide whether to accept it before trying to unmarshal the
// Content itself.
type Message struct {
	SSID        []byte
	From        party.ID
	To          party.ID
	Protocol    string
	RoundNumber round.Number
	Data        []byte
	Broadcast   bool
	// BroadcastVerification carries the previous round's broadcast
	// transcript hash, so a receiver can detect a round where different
	// parties were shown different broadcast messages.
	BroadcastVerification []byte
}

// IsFor reports whether this message should be delivered to id: either
// addressed directly to it, or a broadcast (To is empty) not authored
// by it.
func (m *Message) IsFor(id party.ID) bool {
	if m.Broadcast {
		return m.From != id
	}
	return m.To == id
}

// Hash returns a digest of this message's routing metadata and payload,
// used to confirm every party saw the same broadcast message this round.
func (m *Message) Hash() []byte {
	h := hash.New()
	_ = h.WriteAny(
		&hash.BytesWithDomain{TheDomain: "Message SSID", Bytes: m.SSID},
		&hash.BytesWithDomain{TheDomain: "Message From", Bytes: []byte(m.From)},
		&hash.BytesWithDomain{TheDomain: "Message To", Bytes: []byte(m.To)},
		&hash.BytesWithDomain{TheDomain: "Message Protocol", Bytes: []byte(m.Protocol)},
		&hash.BytesWithDomain{TheDomain: "Message Data", Bytes: m.Data},
	)
	return h.Sum()
}

// Error is returned by Handler.Result when the protocol aborted, naming
// whichever parties' messages caused the abort.
type Error struct {
	Culprits []party.ID
	Err      error
}

func (e Error) Error() string {
	return fmt.Sprintf("protocol: aborted by %v: %s", e.Culprits, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
