// Package bip32 implements unhardened BIP-32 public-key derivation for
// the secp256k1 curve, the mechanism config.Config.DeriveBIP32 uses to
// derive child key shares without ever reconstructing the parent
// private key. Every MPC party derives the same child offset locally
// from public data alone (the parent's public point and chain code),
// then adds that offset to its own secret share.
package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/math/curve"
)

// ErrHardenedIndex is returned when the requested child index requires
// hardened derivation, which needs the private key and so cannot be
// computed from a public point alone.
var ErrHardenedIndex = errors.New("bip32: hardened derivation requires a private key")

// ErrInvalidChainKey is returned when the supplied chain code is not
// exactly 32 bytes.
var ErrInvalidChainKey = errors.New("bip32: chain key must be 32 bytes")

const hardenedBit = uint32(1) << 31

// DeriveScalar computes the BIP-32 CKDpub child offset for index i given
// the parent's public point and chain code: it returns the scalar to
// add to the parent's secret share, and the child's chain code.
func DeriveScalar(parent *curve.Secp256k1Point, chainKey []byte, i uint32) (curve.Scalar, []byte, error) {
	if i&hardenedBit != 0 {
		return nil, nil, ErrHardenedIndex
	}
	if len(chainKey) != 32 {
		return nil, nil, ErrInvalidChainKey
	}

	serP, err := parent.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}

	data := make([]byte, 0, len(serP)+4)
	data = append(data, serP...)
	data = append(data, byte(i>>24), byte(i>>16), byte(i>>8), byte(i))

	mac := hmac.New(sha512.New, chainKey)
	mac.Write(data)
	I := mac.Sum(nil)

	IL, IR := I[:32], I[32:]

	group := curve.Secp256k1{}
	scalar := group.NewScalar()
	if err := scalar.UnmarshalBinary(IL); err != nil {
		// IL isn't a canonically-reduced scalar (astronomically rare);
		// reduce it mod the group order instead of failing derivation,
		// per the BIP-32 spec's "proceed with the next value of i".
		scalar = group.NewScalar().SetNat(new(saferith.Nat).SetBytes(IL))
	}

	return scalar, IR, nil
}
