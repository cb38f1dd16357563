// Package zkdec implements the proof that a Paillier ciphertext and a
// publicly revealed scalar commit to the same value: given C = Enc(y; ρ)
// and a revealed x = y mod q, the prover shows that C decrypts to a
// value congruent to x without revealing y or ρ. This is what lets a
// signer publish a partial-signature share in the clear (pkg/ecdsa)
// while every other party checks it against that share's ciphertext.
package zkdec

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/arith"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/pedersen"
)

// Public holds the statement being proven: C encrypts a value y, and
// the scalar X equals y mod q.
type Public struct {
	// C = Enc₀(y; ρ)
	C *paillier.Ciphertext
	// X is the publicly revealed value x = y mod q.
	X curve.Scalar

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

// Private holds the witness: the plaintext and the nonce it was
// encrypted with.
type Private struct {
	// Y is the plaintext of C; X = Y mod q.
	Y *saferith.Int
	// Rho is the nonce C was encrypted with.
	Rho *saferith.Nat
}

// Commitment is the prover's first message.
type Commitment struct {
	// S = sʸtᵘ
	S *saferith.Nat
	// A = Enc₀(α; r)
	A *paillier.Ciphertext
	// Y = α•G
	Y curve.Point
	// D = sᵃtᵍ
	D *saferith.Nat
}

// Proof is a non-interactive Πᵈᵉᶜ proof.
type Proof struct {
	*Commitment
	// Z1 = α + e⋅y
	Z1 *saferith.Int
	// Z2 = r ⋅ ρᵉ mod N₀
	Z2 *saferith.Nat
	// Z3 = γ + e⋅μ
	Z3 *saferith.Int
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.A) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Z2) {
		return false
	}
	return true
}

// NewProof creates a proof that public.C and public.X commit to the
// same value, using the Fiat-Shamir transform.
func NewProof(group curve.Curve, hash *hash.Hash, public Public, private Private) *Proof {
	N := public.Prover.N()
	NModulus := public.Prover.Modulus()

	alpha := sample.IntervalLEps(rand.Reader)
	r := sample.UnitModN(rand.Reader, N)
	mu := sample.IntervalLN(rand.Reader)
	gamma := sample.IntervalLEpsN(rand.Reader)

	A := public.Prover.EncWithNonce(alpha, r)
	Y := group.NewScalar().SetInt(alpha).ActOnBase()

	commitment := &Commitment{
		S: public.Aux.Commit(private.Y, mu),
		A: A,
		Y: Y,
		D: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, group, public, commitment)

	z1 := new(saferith.Int).SetInt(private.Y)
	z1.Mul(e, z1, -1)
	z1.Add(z1, alpha, -1)

	z2 := NModulus.ExpI(private.Rho, e)
	z2.ModMul(z2, r, N)

	z3 := new(saferith.Int).Mul(e, mu, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}
}

// Verify checks a Πᵈᵉᶜ proof against the given statement.
func (p Proof) Verify(group curve.Curve, hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}
	prover := public.Prover

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	e, err := challenge(hash, group, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.D, p.S) {
		return false
	}

	{
		// lhs = Enc(z1; z2)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)
		// rhs = (e ⊙ C) ⊕ A
		rhs := public.C.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// lhs = z1•G
		lhs := group.NewScalar().SetInt(p.Z1).ActOnBase()
		// rhs = Y + e•(x•G)
		rhs := group.NewScalar().SetInt(e).Act(public.X.ActOnBase())
		rhs = rhs.Add(p.Y)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	err = hash.WriteAny(public.Aux, public.Prover, public.C, public.X,
		commitment.S, commitment.A, commitment.Y, commitment.D)
	e = sample.IntervalScalar(hash.Digest(), group)
	return
}

// Empty returns a Proof with zero-valued fields of the correct concrete
// type, for use as a CBOR unmarshal target.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		Commitment: &Commitment{
			S: new(saferith.Nat),
			A: &paillier.Ciphertext{C: new(saferith.Nat)},
			Y: group.NewPoint(),
			D: new(saferith.Nat),
		},
		Z1: new(saferith.Int),
		Z2: new(saferith.Nat),
		Z3: new(saferith.Int),
	}
}
