// Package ecdsa2p is the entry point for the two-party ECDSA protocol
// of spec §4.6: DKG produces a Config, Sign consumes it to jointly
// produce a signature without either party ever learning the other's
// share. Follows protocols/cmp's own wiring style — Keygen/Sign build a
// round.Session's static inputs and hand the first round to
// pkg/protocol.MultiHandler, which drives the rest.
package ecdsa2p

import (
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pool"
	"github.com/shardsign/tss-core/pkg/protocol"
	"github.com/shardsign/tss-core/protocols/ecdsa2p/config"
	"github.com/shardsign/tss-core/protocols/ecdsa2p/dkg"
	"github.com/shardsign/tss-core/protocols/ecdsa2p/sign"
)

// Config is the result of Keygen, and the input Sign consumes.
// Re-exported so callers only need this package.
type Config = config.Config

const (
	protocolKeygenID                 = "ecdsa2p/dkg"
	protocolKeygenRounds round.Number = 3
	protocolSignID                    = "ecdsa2p/sign"
	protocolSignRounds   round.Number = 5
)

// paillierHolder deterministically assigns the Paillier-holding role to
// whichever of the two parties sorts first, so both sides agree on it
// without a further round of negotiation.
func paillierHolder(self, other party.ID) party.ID {
	if self < other {
		return self
	}
	return other
}

// Keygen starts a fresh two-party key generation between self and
// other.
func Keygen(group curve.Curve, self, other party.ID, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if self == "" || other == "" || self == other {
			return nil, errors.New("ecdsa2p.Keygen: self and other must be distinct, non-empty party IDs")
		}
		if pl == nil {
			pl = pool.NewPool(0)
		}

		info := round.Info{
			ProtocolID:       protocolKeygenID,
			FinalRoundNumber: protocolKeygenRounds,
			SelfID:           self,
			PartyIDs:         party.NewIDSlice([]party.ID{self, other}),
			Threshold:        1,
			Group:            group,
		}
		helper, err := round.NewSession(info, sessionID, pl)
		if err != nil {
			return nil, fmt.Errorf("ecdsa2p.Keygen: %w", err)
		}

		return &dkg.Round1{
			Helper:         helper,
			Self:           self,
			Other:          other,
			PaillierHolder: paillierHolder(self, other),
		}, nil
	}
}

// Sign starts a two-party signing session over hashToSign, using cfg
// from a prior Keygen between the same two parties.
func Sign(cfg *Config, hashToSign []byte, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if len(hashToSign) == 0 {
			return nil, errors.New("ecdsa2p.Sign: hashToSign is empty")
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("ecdsa2p.Sign: %w", err)
		}
		if pl == nil {
			pl = pool.NewPool(0)
		}

		info := round.Info{
			ProtocolID:       protocolSignID,
			FinalRoundNumber: protocolSignRounds,
			SelfID:           cfg.Self,
			PartyIDs:         party.NewIDSlice([]party.ID{cfg.Self, cfg.Other}),
			Threshold:        1,
			Group:            cfg.Group,
		}
		helper, err := round.NewSession(info, sessionID, pl, cfg, &hash.BytesWithDomain{
			TheDomain: "Signature Message",
			Bytes:     hashToSign,
		})
		if err != nil {
			return nil, fmt.Errorf("ecdsa2p.Sign: %w", err)
		}

		return &sign.Round1{
			Helper:  helper,
			Cfg:     cfg,
			Message: hashToSign,
		}, nil
	}
}
