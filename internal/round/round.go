package round

import (
	"errors"

	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/party"
)

// Number identifies a round within a protocol's execution. Round 0 is
// reserved for an abort message injected by the handler; rounds count
// up from 1 to Session.FinalRoundNumber(), after which an Output round
// is produced.
type Number uint32

// Content is the payload carried by a round.Message: the round that
// produced it, and the bits that get CBOR-framed onto the wire.
type Content interface {
	// RoundNumber returns the round this content belongs to, so the
	// handler can route an incoming wire message to the right round
	// without first unmarshalling it.
	RoundNumber() Number
	// Init prepares any curve-dependent fields (points, scalars) for
	// unmarshalling, since CBOR cannot construct a concrete curve.Point
	// or curve.Scalar on its own.
	Init(group curve.Curve)
}

// BroadcastContent is the Content reliably broadcast by a round, via
// internal/broadcast's echo wrapper.
type BroadcastContent interface {
	Content
}

// Message is a Content routed between two parties (or to everyone, when
// Broadcast is set and To is empty).
type Message struct {
	From      party.ID
	To        party.ID
	Broadcast bool
	Content   Content
}

// Round is a single step of a multi-round protocol.
type Round interface {
	// VerifyMessage checks that a P2P message is valid for this round,
	// without mutating round state.
	VerifyMessage(Message) error
	// StoreMessage saves the contents of a message, after it has been
	// verified by VerifyMessage (or StoreBroadcastMessage, for a
	// BroadcastRound).
	StoreMessage(Message) error
	// Finalize runs this round's computation using all stored messages,
	// and returns the next round (or an Output / Abort round), along
	// with the messages to send for it.
	Finalize(out []*Message) (Session, []*Message, error)
	// MessageContent returns an empty Content of the correct concrete
	// type for this round's P2P messages, or nil if this round expects
	// none.
	MessageContent() Content
	// Number returns which round this is.
	Number() Number
}

// BroadcastRound is a Round that additionally expects a message
// reliably broadcast to every party before its P2P messages (if any)
// can be processed.
type BroadcastRound interface {
	Round
	// StoreBroadcastMessage is like StoreMessage, but also performs
	// whatever validation is required of data that every party is
	// guaranteed to see identically.
	StoreBroadcastMessage(Message) error
	// BroadcastContent returns an empty BroadcastContent of the correct
	// concrete type for this round.
	BroadcastContent() BroadcastContent
}

var (
	// ErrInvalidContent is returned when a Message's Content is not of
	// the type a round expects.
	ErrInvalidContent = errors.New("round: received invalid content")
	// ErrNilFields is returned when a message is missing data that
	// should always be present.
	ErrNilFields = errors.New("round: message has nil fields")
)

// NormalBroadcastContent is embedded by BroadcastContent implementations
// whose round has no special reliability requirement beyond what
// internal/broadcast already provides (every round's broadcast content
// passes through the same echo wrapper regardless).
type NormalBroadcastContent struct{}

// Init implements Content; there is nothing curve-dependent to set up.
func (NormalBroadcastContent) Init(curve.Curve) {}

// ReliableBroadcastContent marks a round's first broadcast as the one
// the echo-hash of a protocol's reliable broadcast round is computed
// over (internal/broadcast.Round1), rather than just a regular
// broadcast relayed through it.
type ReliableBroadcastContent struct{}

// Init implements Content; there is nothing curve-dependent to set up.
func (ReliableBroadcastContent) Init(curve.Curve) {}
