// Package pve implements encryption of a scalar to one recipient
// (spec §4.11): a ciphertext that only the recipient's private key can
// decrypt, carrying a proof that anyone holding the recipient's public
// key can check: that the encryptor knew the discrete log of a given
// public point, bound to the recipient, label and ephemeral key. The
// check does not show that the sealed bytes decrypt to that scalar.
// Grounded on cbmpc's
// protocol/pve.h usage in tests/unit/protocol/test_pve.cpp (no pve.cpp
// source ships in the retrieved pack, so this follows the test file's
// encrypt/verify/decrypt shape rather than porting an implementation)
// — ec_pve_t<hybrid_cipher_t> there is an ECDH-derived AEAD sealing a
// scalar plus a proof the ciphertext opens to the claimed public point;
// this builds that same shape from this module's own primitives: ECDH
// over curve.Point/Scalar, golang.org/x/crypto/hkdf to derive a key,
// golang.org/x/crypto/chacha20poly1305 for the AEAD, and the existing
// Schnorr proof of knowledge (pkg/zk/sch) for the public verifiability
// step.
package pve

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	zksch "github.com/shardsign/tss-core/pkg/zk/sch"
)

// Ciphertext is a publicly verifiable encryption of one scalar to one
// recipient, bound to a label (the way test_pve.cpp binds each
// ciphertext to a "test-label"/"wrong-label" string).
type Ciphertext struct {
	Ephemeral curve.Point
	Nonce     []byte
	Sealed    []byte
	Proof     *zksch.Proof
}

func transcript(recipient curve.Point, label string, ephemeral curve.Point) (*hash.Hash, error) {
	h := hash.New()
	recipientBytes, err := recipient.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := h.WriteAny(&hash.BytesWithDomain{TheDomain: "PVE Recipient", Bytes: recipientBytes}); err != nil {
		return nil, err
	}
	if err := h.WriteAny(&hash.BytesWithDomain{TheDomain: "PVE Label", Bytes: []byte(label)}); err != nil {
		return nil, err
	}
	ephemeralBytes, err := ephemeral.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := h.WriteAny(&hash.BytesWithDomain{TheDomain: "PVE Ephemeral", Bytes: ephemeralBytes}); err != nil {
		return nil, err
	}
	return h, nil
}

func deriveKey(shared curve.Point, label string) ([]byte, error) {
	sharedBytes, err := shared.MarshalBinary()
	if err != nil {
		return nil, err
	}
	kdf := hkdf.New(sha256.New, sharedBytes, []byte(label), []byte("tss-core PVE"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("pve: derive key: %w", err)
	}
	return key, nil
}

// Encrypt seals x (the discrete log of the public point x.ActOnBase())
// to recipient under label, and attaches a Schnorr proof of knowledge
// of x bound to the recipient, label and ephemeral point, so Verify can
// check it without the recipient's private key. The proof does not
// cover the nonce or the sealed bytes.
func Encrypt(group curve.Curve, recipient curve.Point, label string, x curve.Scalar) (*Ciphertext, error) {
	ephemeralSecret, err := randomScalar(group)
	if err != nil {
		return nil, err
	}
	ephemeralPublic := ephemeralSecret.ActOnBase()
	shared := ephemeralSecret.Act(recipient)

	key, err := deriveKey(shared, label)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("pve: new aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("pve: nonce: %w", err)
	}

	plaintext, err := x.MarshalBinary()
	if err != nil {
		return nil, err
	}

	h, err := transcript(recipient, label, ephemeralPublic)
	if err != nil {
		return nil, err
	}
	aad := h.Sum()
	sealed := aead.Seal(nil, nonce, plaintext, aad)

	proof := zksch.NewProof(group, h, x.ActOnBase(), x)

	return &Ciphertext{
		Ephemeral: ephemeralPublic,
		Nonce:     nonce,
		Sealed:    sealed,
		Proof:     proof,
	}, nil
}

// Verify checks, without the recipient's private key, that ct carries
// a valid proof of knowledge of the discrete log of X bound to
// recipient, label and ct.Ephemeral. It does not check that ct.Sealed
// decrypts to that discrete log.
func Verify(group curve.Curve, recipient curve.Point, X curve.Point, label string, ct *Ciphertext) error {
	if ct == nil || ct.Proof == nil || ct.Ephemeral == nil {
		return fmt.Errorf("pve: incomplete ciphertext")
	}
	h, err := transcript(recipient, label, ct.Ephemeral)
	if err != nil {
		return err
	}
	if !ct.Proof.Verify(group, h, X) {
		return fmt.Errorf("pve: proof of knowledge failed to verify")
	}
	return nil
}

// Decrypt recovers the scalar sealed in ct, using the recipient's
// private key.
func Decrypt(group curve.Curve, priv curve.Scalar, label string, ct *Ciphertext) (curve.Scalar, error) {
	if ct == nil {
		return nil, fmt.Errorf("pve: nil ciphertext")
	}
	shared := priv.Act(ct.Ephemeral)
	key, err := deriveKey(shared, label)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("pve: new aead: %w", err)
	}

	recipient := priv.ActOnBase()
	h, err := transcript(recipient, label, ct.Ephemeral)
	if err != nil {
		return nil, err
	}
	aad := h.Sum()

	plaintext, err := aead.Open(nil, ct.Nonce, ct.Sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("pve: open: %w", err)
	}

	x := group.NewScalar()
	if err := x.UnmarshalBinary(plaintext); err != nil {
		return nil, fmt.Errorf("pve: invalid plaintext: %w", err)
	}
	return x, nil
}

// randomScalar samples a uniform scalar from SafeScalarBytes()+16
// random bytes, the same oversampling margin sample.Scalar uses to keep
// the final reduction's bias negligible.
func randomScalar(group curve.Curve) (curve.Scalar, error) {
	data := make([]byte, group.SafeScalarBytes()+16)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}
	n := new(saferith.Nat).SetBytes(data)
	return group.NewScalar().SetNat(n), nil
}
