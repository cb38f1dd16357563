// Package cmp is the single entry point for the CMP/CGGMP21 threshold
// ECDSA protocol: Keygen and Sign each build the first round of a
// multi-party session, which pkg/protocol.MultiHandler then drives to
// completion. The round logic itself lives in the keygen and sign
// subpackages; this file only wires a session's static inputs (group,
// parties, threshold, or an existing Config) into the Helper every
// first round needs to satisfy round.Session.
package cmp

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/polynomial"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pedersen"
	"github.com/shardsign/tss-core/pkg/pool"
	"github.com/shardsign/tss-core/pkg/protocol"
	"github.com/shardsign/tss-core/protocols/cmp/config"
	"github.com/shardsign/tss-core/protocols/cmp/keygen"
	"github.com/shardsign/tss-core/protocols/cmp/sign"
)

// Config is the result of a keygen, and the input every signing session
// consumes. Re-exported here so callers only ever need to import this
// package, not protocols/cmp/config directly.
type Config = config.Config

const (
	protocolKeygenID                  = "cmp/keygen"
	protocolKeygenRounds  round.Number = 5
	protocolSignID                     = "cmp/sign"
	protocolSignRounds    round.Number = 5
)

// Keygen starts a fresh distributed key generation for group, among
// participants, tolerating up to threshold corruptions.
func Keygen(group curve.Curve, selfID party.ID, participants []party.ID, threshold int, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		participantsSlice := party.NewIDSlice(participants)
		if !participantsSlice.Contains(selfID) {
			return nil, errors.New("cmp.Keygen: selfID not among participants")
		}
		if !config.ValidThreshold(threshold, len(participantsSlice)) {
			return nil, fmt.Errorf("cmp.Keygen: invalid threshold %d for %d participants", threshold, len(participantsSlice))
		}
		if pl == nil {
			pl = pool.NewPool(0)
		}

		info := round.Info{
			ProtocolID:       protocolKeygenID,
			FinalRoundNumber: protocolKeygenRounds,
			SelfID:           selfID,
			PartyIDs:         participantsSlice,
			Threshold:        threshold,
			Group:            group,
		}
		helper, err := round.NewSession(info, sessionID, pl)
		if err != nil {
			return nil, fmt.Errorf("cmp.Keygen: %w", err)
		}

		// fᵢ(0) = xⁱ, a fresh additive share of the eventual secret key.
		vssSecret := polynomial.NewPolynomial(group, threshold, sample.Scalar(rand.Reader, group))

		return &keygen.Kround1{
			Helper:    helper,
			VSSSecret: vssSecret,
		}, nil
	}
}

// Sign starts a signing session over hashToSign, using the threshold
// shares of the given signers out of cfg.
func Sign(cfg *Config, signers []party.ID, hashToSign []byte, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if len(hashToSign) == 0 {
			return nil, errors.New("cmp.Sign: hashToSign is empty")
		}
		signerIDs := party.NewIDSlice(signers)
		if !cfg.CanSign(signerIDs) {
			return nil, errors.New("cmp.Sign: signers is not a valid signing subset")
		}
		if pl == nil {
			pl = pool.NewPool(0)
		}

		info := round.Info{
			ProtocolID:       protocolSignID,
			FinalRoundNumber: protocolSignRounds,
			SelfID:           cfg.ID,
			PartyIDs:         signerIDs,
			Threshold:        cfg.Threshold,
			Group:            cfg.Group,
		}
		helper, err := round.NewSession(info, sessionID, pl, cfg, &hash.BytesWithDomain{
			TheDomain: "Signature Message",
			Bytes:     hashToSign,
		})
		if err != nil {
			return nil, fmt.Errorf("cmp.Sign: %w", err)
		}

		// Scale every signer's share and public data by its Lagrange
		// coefficient over the signing set, so round code downstream can
		// treat the t-of-n config as if it were a t-of-t sharing.
		lagrange := polynomial.Lagrange(cfg.Group, signerIDs)

		ecdsaShares := make(map[party.ID]curve.Point, len(signerIDs))
		paillierPublic := make(map[party.ID]*paillier.PublicKey, len(signerIDs))
		pedersenPublic := make(map[party.ID]*pedersen.Parameters, len(signerIDs))
		publicKey := cfg.Group.NewPoint()
		for _, j := range signerIDs {
			pub, ok := cfg.Public[j]
			if !ok {
				return nil, fmt.Errorf("cmp.Sign: missing public data for %v", j)
			}
			ecdsaShares[j] = lagrange[j].Act(pub.ECDSA)
			paillierPublic[j] = pub.Paillier
			pedersenPublic[j] = pub.Pedersen
			publicKey = publicKey.Add(ecdsaShares[j])
		}
		secretECDSA := lagrange[cfg.ID].Mul(cfg.ECDSA)

		return &sign.Sround1{
			Helper:         helper,
			PublicKey:      publicKey,
			SecretECDSA:    secretECDSA,
			SecretPaillier: cfg.Paillier,
			Paillier:       paillierPublic,
			Pedersen:       pedersenPublic,
			ECDSA:          ecdsaShares,
			Message:        hashToSign,
		}, nil
	}
}
