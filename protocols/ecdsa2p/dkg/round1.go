// Package dkg implements the three-round two-party key generation of
// spec §4.6: both parties sample an additive share of the ECDSA key,
// commit to their public share, and establish the Paillier/Pedersen
// material Sign will later need.
package dkg

import (
	"crypto/rand"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pedersen"
)

var _ round.Round = (*Round1)(nil)

// Round1 is the first round of DKG. It carries no inbound content: the
// handler starts every party on this round directly.
type Round1 struct {
	*round.Helper

	Self, Other party.ID
	// PaillierHolder is whichever of Self, Other sorts first; that
	// party's Paillier key backs CKey.
	PaillierHolder party.ID
}

// VerifyMessage implements round.Round; Round1 receives nothing.
func (Round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round; Round1 receives nothing.
func (Round1) StoreMessage(round.Message) error { return nil }

// MessageContent implements round.Round; Round1 receives nothing.
func (Round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (Round1) Number() round.Number { return 1 }

// Broadcast1 is the commit-phase message: a binding commitment to this
// party's public share, plus its Paillier/Pedersen material (which
// doesn't need hiding) and, for the Paillier holder, the encrypted
// share c_key.
type Broadcast1 struct {
	round.NormalBroadcastContent

	Commitment     hash.Commitment
	PaillierPublic *paillier.PublicKey
	Pedersen       *pedersen.Parameters
	// CKey is set only by the Paillier holder.
	CKey *paillier.Ciphertext
}

// RoundNumber implements round.Content: Broadcast1 is produced during
// Round1's Finalize but consumed by Round2's StoreBroadcastMessage, so
// it is tagged with the number of the round that stores it.
func (Broadcast1) RoundNumber() round.Number { return 2 }

// Finalize implements round.Round: sample this party's share, generate
// its Paillier/Pedersen material, commit to the public share, and (if
// this party is the designated Paillier holder) encrypt the share.
func (r *Round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	group := r.Group()

	secret := sample.Scalar(rand.Reader, group)
	public := secret.ActOnBase()

	paillierPublic, paillierSecret := paillier.KeyGen(r.Pool)
	pedersenPublic, pedersenSecret := paillierSecret.GeneratePedersen()

	h := r.HashForID(r.SelfID())
	commitment, decommitment, err := h.Commit(public)
	if err != nil {
		return nil, nil, fmt.Errorf("ecdsa2p/dkg: round1: %w", err)
	}

	broadcast := &Broadcast1{
		Commitment:     commitment,
		PaillierPublic: paillierPublic,
		Pedersen:       pedersenPublic,
	}

	var ckey *paillier.Ciphertext
	var ckeyNonce *saferith.Nat
	if r.SelfID() == r.PaillierHolder {
		ckey, ckeyNonce = paillierPublic.Enc(curve.MakeInt(secret))
		broadcast.CKey = ckey
	}

	out = r.BroadcastMessage(out, broadcast)

	return &Round2{
		Round1:         r,
		Secret:         secret,
		Public:         public,
		Commitment:     commitment,
		Decommitment:   decommitment,
		PaillierSecret: paillierSecret,
		PedersenPublic: pedersenPublic,
		PedersenSecret: pedersenSecret,
		CKey:           ckey,
		CKeyNonce:      ckeyNonce,
		PaillierPublicOf: map[party.ID]*paillier.PublicKey{
			r.SelfID(): paillierPublic,
		},
		PedersenOf: map[party.ID]*pedersen.Parameters{
			r.SelfID(): pedersenPublic,
		},
		CKeyOf: ckeyMap(r.PaillierHolder, ckey),
	}, out, nil
}

func ckeyMap(holder party.ID, ckey *paillier.Ciphertext) map[party.ID]*paillier.Ciphertext {
	m := make(map[party.ID]*paillier.Ciphertext, 1)
	if ckey != nil {
		m[holder] = ckey
	}
	return m
}
