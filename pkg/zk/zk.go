// Package zk holds fixed Paillier/Pedersen fixtures shared by every
// proof package's tests, so each test doesn't have to pay for a fresh
// Paillier key generation (the dominant cost of these tests by far).
package zk

import (
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/pedersen"
	"github.com/shardsign/tss-core/pkg/pool"
)

var (
	proverPaillierSecret *paillier.SecretKey
	verifierPaillierSecret *paillier.SecretKey

	// ProverPaillierPublic is a fixed Paillier public key used as the
	// "prover" side in every zk proof test.
	ProverPaillierPublic *paillier.PublicKey
	// VerifierPaillierPublic is a fixed Paillier public key used as the
	// "verifier" side, where a proof requires two distinct keys.
	VerifierPaillierPublic *paillier.PublicKey
	// Pedersen is a fixed set of Pedersen auxiliary parameters, generated
	// alongside VerifierPaillierPublic's key.
	Pedersen *pedersen.Parameters
)

func init() {
	pl := pool.NewPool(0)

	proverPaillierSecret = paillier.NewSecretKey(pl)
	ProverPaillierPublic = proverPaillierSecret.PublicKey

	verifierPaillierSecret = paillier.NewSecretKey(pl)
	VerifierPaillierPublic = verifierPaillierSecret.PublicKey
	Pedersen, _ = verifierPaillierSecret.GeneratePedersen()
}
