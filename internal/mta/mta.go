// Package mta implements the multiplicative-to-additive share conversion
// used to turn a product of two parties' secrets into an additive
// sharing of that product, with a Πᵃᶠᶠᵍ proof attached so the receiving
// party can check the conversion was done honestly.
//
// Given a prover holding a (with public commitment bigA = a•G) and a
// ciphertext Kv = Encᵥ(b; *) encrypted under the receiver's own Paillier
// key, ProveAffG produces β such that, once the receiver decrypts the
// returned ciphertext D, their plaintext α satisfies α + β ≡ a⋅b (mod q).
package mta

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/pedersen"
	zkaffg "github.com/shardsign/tss-core/pkg/zk/affg"
)

// ProveAffG runs the prover's side of an MtA exchange against the
// receiver's ciphertext Kv, and produces a Πᵃᶠᶠᵍ proof that the returned
// D, F were computed honestly from a and β.
//
// a is the prover's secret multiplicand, bigA = a•G its public
// commitment. Kv is the receiver's own Paillier ciphertext of b. prover
// is the sender's own Paillier secret key; receiverPaillier and
// receiverPedersen belong to the party Kv was encrypted for, and who
// will verify the returned proof.
func ProveAffG(
	group curve.Curve,
	h *hash.Hash,
	a *saferith.Int,
	bigA curve.Point,
	Kv *paillier.Ciphertext,
	prover *paillier.SecretKey,
	receiverPaillier *paillier.PublicKey,
	receiverPedersen *pedersen.Parameters,
) (beta *saferith.Int, D *paillier.Ciphertext, F *paillier.Ciphertext, proof *zkaffg.Proof) {
	beta0 := sample.IntervalLPrimeEps(rand.Reader)
	negBeta0 := new(saferith.Int).Neg(beta0, -1)

	s := sample.UnitModN(rand.Reader, receiverPaillier.N())
	r := sample.UnitModN(rand.Reader, prover.N())

	D = Kv.Clone().Mul(receiverPaillier, a).Add(receiverPaillier, receiverPaillier.EncWithNonce(negBeta0, s))
	F = prover.PublicKey.EncWithNonce(negBeta0, r)

	proof = zkaffg.NewProof(group, h, zkaffg.Public{
		Kv:       Kv,
		Dv:       D,
		Fp:       F,
		Xp:       bigA,
		Prover:   prover.PublicKey,
		Verifier: receiverPaillier,
		Aux:      receiverPedersen,
	}, zkaffg.Private{
		X: a,
		Y: negBeta0,
		S: s,
		R: r,
	})

	return beta0, D, F, proof
}
