// Package agree implements the "agree on a random string" family of
// two-party primitives (spec §4.3): small building blocks a larger
// round protocol calls inline to produce a value neither side alone
// could have predicted, without needing a full round.Session of their
// own. Grounded on cbmpc's protocol/agree_random.{h,cpp}; the n-party
// variants there (multi_agree_random, weak_multi_agree_random,
// multi_pairwise_agree_random) need the broadcast/round machinery of
// internal/broadcast to do the "every party sees the same value"
// check and are left for when that integration is built.
package agree

import (
	"crypto/rand"
	"fmt"

	"github.com/shardsign/tss-core/pkg/hash"
)

// SecBytes is the length of the nonce each side of the weak,
// no-commitment variants contributes: cbmpc's SEC_P_COM (128 bits).
// The weak variants accept any bitlen; a request below 128 bits is not
// rejected.
const SecBytes = 16

// Transport is the minimal two-party exchange every primitive here
// needs: send one message to the peer, then receive one back. A round
// that embeds one of these exchanges inside a larger protocol
// typically implements this directly over its own message channel.
type Transport interface {
	Send(data []byte) error
	Receive() ([]byte, error)
}

func byteLen(bitlen int) int { return (bitlen + 7) / 8 }

// RandomP1 runs the P1 side of Random: commit to a fresh string,
// receive P2's string in the clear, then reveal. h must be a fresh
// clone (or otherwise domain-separated) transcript shared with the P2
// side's RandomP2 call, the same way every commitment in this module
// binds to a session-specific hash state rather than a bare nonce.
func RandomP1(t Transport, h *hash.Hash, bitlen int) ([]byte, error) {
	n := byteLen(bitlen)
	mine := make([]byte, n)
	if _, err := rand.Read(mine); err != nil {
		return nil, fmt.Errorf("agree: sample: %w", err)
	}

	commitment, decommitment, err := h.Commit(mine)
	if err != nil {
		return nil, fmt.Errorf("agree: commit: %w", err)
	}
	if err := t.Send(commitment); err != nil {
		return nil, fmt.Errorf("agree: send commitment: %w", err)
	}

	peer, err := t.Receive()
	if err != nil {
		return nil, fmt.Errorf("agree: receive peer value: %w", err)
	}
	if len(peer) != n {
		return nil, fmt.Errorf("agree: invalid peer value length %d", len(peer))
	}

	if err := t.Send(append(append([]byte{}, mine...), decommitment...)); err != nil {
		return nil, fmt.Errorf("agree: send reveal: %w", err)
	}

	return xor(mine, peer), nil
}

// RandomP2 runs the P2 side of Random: receive P1's commitment, send a
// fresh string in the clear, then open the commitment P1 reveals.
func RandomP2(t Transport, h *hash.Hash, bitlen int) ([]byte, error) {
	n := byteLen(bitlen)

	commitment, err := t.Receive()
	if err != nil {
		return nil, fmt.Errorf("agree: receive commitment: %w", err)
	}
	if err := hash.Commitment(commitment).Validate(); err != nil {
		return nil, fmt.Errorf("agree: %w", err)
	}

	mine := make([]byte, n)
	if _, err := rand.Read(mine); err != nil {
		return nil, fmt.Errorf("agree: sample: %w", err)
	}
	if err := t.Send(mine); err != nil {
		return nil, fmt.Errorf("agree: send: %w", err)
	}

	reveal, err := t.Receive()
	if err != nil {
		return nil, fmt.Errorf("agree: receive reveal: %w", err)
	}
	if len(reveal) <= n {
		return nil, fmt.Errorf("agree: invalid reveal length %d", len(reveal))
	}
	peer, decommitment := reveal[:n], reveal[n:]
	if err := hash.Decommitment(decommitment).Validate(); err != nil {
		return nil, fmt.Errorf("agree: %w", err)
	}
	if !h.Decommit(hash.Commitment(commitment), hash.Decommitment(decommitment), peer) {
		return nil, fmt.Errorf("agree: commitment did not open")
	}

	return xor(peer, mine), nil
}

// WeakRandomFirst runs the speaking-first side of a weak (no
// commitment) agreement: send a fresh SecBytes-secure nonce, receive
// the peer's, and hash both into the agreed string. Safe only when it
// is already known which party speaks first — e.g. the other side of
// a protocol that has already fixed roles — which is what makes the
// commitment round unnecessary.
func WeakRandomFirst(t Transport, bitlen int) ([]byte, error) {
	mine := make([]byte, SecBytes)
	if _, err := rand.Read(mine); err != nil {
		return nil, fmt.Errorf("agree: sample: %w", err)
	}
	if err := t.Send(mine); err != nil {
		return nil, fmt.Errorf("agree: send: %w", err)
	}
	peer, err := t.Receive()
	if err != nil {
		return nil, fmt.Errorf("agree: receive: %w", err)
	}
	if len(peer) != SecBytes {
		return nil, fmt.Errorf("agree: invalid peer nonce length %d", len(peer))
	}
	return squeeze(mine, peer, bitlen), nil
}

// WeakRandomSecond runs the other side of WeakRandomFirst: receive the
// peer's nonce first, then send its own.
func WeakRandomSecond(t Transport, bitlen int) ([]byte, error) {
	peer, err := t.Receive()
	if err != nil {
		return nil, fmt.Errorf("agree: receive: %w", err)
	}
	if len(peer) != SecBytes {
		return nil, fmt.Errorf("agree: invalid peer nonce length %d", len(peer))
	}
	mine := make([]byte, SecBytes)
	if _, err := rand.Read(mine); err != nil {
		return nil, fmt.Errorf("agree: sample: %w", err)
	}
	if err := t.Send(mine); err != nil {
		return nil, fmt.Errorf("agree: send: %w", err)
	}
	return squeeze(mine, peer, bitlen), nil
}

func xor(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func squeeze(a, b []byte, bitlen int) []byte {
	h := hash.New()
	_ = h.WriteAny(a, b)
	out := make([]byte, byteLen(bitlen))
	_, _ = h.Digest().Read(out)
	return out
}
