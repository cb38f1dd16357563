// Package zklogstar implements the proof that a Paillier ciphertext
// encrypts the discrete log of a public point: given C = Enc(x; ρ) and
// X = x•G (or x•G' for a supplied alternate generator G'), the prover
// shows the two commit to the same x without revealing it. This binds
// a party's encrypted share of a signing nonce to the EC point it
// publishes for that share, both against the standard base point
// (keygen/sign round 2, where G is implicit) and against a session
// specific generator (sign round 3, where Δ is proven against Γ
// instead of the curve's base point).
package zklogstar

import (
	"crypto/rand"
	"encoding/json"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/arith"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/pedersen"
)

// Public holds the statement being proven: C encrypts the discrete log
// of X, relative to G if set, or to the curve's base point otherwise.
type Public struct {
	// C = Enc₀(x; ρ)
	C *paillier.Ciphertext
	// X = x•G (or x•G̃ when G̃ is set below)
	X curve.Point
	// G is an alternate generator to prove X against. If nil, the
	// curve's base point is used.
	G curve.Point

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

// Private holds the witness: the plaintext and the nonce it was
// encrypted with.
type Private struct {
	// X is the plaintext of C, and the discrete log of public.X.
	X *saferith.Int
	// Rho is the nonce C was encrypted with.
	Rho *saferith.Nat
}

// Commitment is the prover's first message.
type Commitment struct {
	// S = sˣtᵘ
	S *saferith.Nat
	// A = Enc₀(α; r)
	A *paillier.Ciphertext
	// Y = α•G (or α•G̃)
	Y curve.Point
	// D = sᵃtᵍ
	D *saferith.Nat
}

// Proof is a non-interactive Πˡᵒᵍ* proof.
type Proof struct {
	group curve.Curve
	*Commitment
	// Z1 = α + e⋅x
	Z1 *saferith.Int
	// Z2 = r⋅ρᵉ mod N₀
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
	if p.Y.IsIdentity() {
		return false
	}
	return true
}

// actOn applies scalar to the generator designated by public.G, falling
// back to the curve's base point when no alternate generator is set.
func actOn(group curve.Curve, scalar curve.Scalar, public Public) curve.Point {
	if public.G != nil {
		return scalar.Act(public.G)
	}
	return scalar.ActOnBase()
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
	Y := actOn(group, group.NewScalar().SetNat(alpha.Mod(group.Order())), public)

	commitment := &Commitment{
		S: public.Aux.Commit(private.X, mu),
		A: A,
		Y: Y,
		D: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, group, public, commitment)

	z1 := new(saferith.Int).SetInt(private.X)
	z1.Mul(e, z1, -1)
	z1.Add(z1, alpha, -1)

	z2 := NModulus.ExpI(private.Rho, e)
	z2.ModMul(z2, r, N)

	z3 := new(saferith.Int).Mul(e, mu, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}
}

// Verify checks a Πˡᵒᵍ* proof against the given statement.
func (p Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}
	prover := public.Prover
	group := p.group

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
		// lhs = Enc₀(z1; z2)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)
		// rhs = (e ⊙ C) ⊕ A
		rhs := public.C.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// lhs = z1•G (or z1•G̃)
		lhs := actOn(group, group.NewScalar().SetNat(p.Z1.Mod(group.Order())), public)
		// rhs = Y + e•X
		rhs := group.NewScalar().SetNat(e.Mod(group.Order())).Act(public.X)
		rhs = rhs.Add(p.Y)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	toHash := []interface{}{public.Aux, public.Prover, public.C, public.X,
		commitment.S, commitment.A, commitment.Y, commitment.D}
	if public.G != nil {
		toHash = append(toHash, public.G)
	}
	err = hash.WriteAny(toHash...)
	e = sample.IntervalScalar(hash.Digest(), group)
	return
}

// Empty returns a Proof with zero-valued fields of the correct concrete
// type, for use as a CBOR unmarshal target.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		group: group,
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

func (p Proof) MarshalJSON() ([]byte, error) {
	z1b, e := p.Z1.MarshalBinary()
	if e != nil {
		return nil, e
	}
	z2b, e := p.Z2.MarshalBinary()
	if e != nil {
		return nil, e
	}
	z3b, e := p.Z3.MarshalBinary()
	if e != nil {
		return nil, e
	}
	return json.Marshal(map[string]interface{}{
		"Commitment": p.Commitment,
		"Z1":         z1b,
		"Z2":         z2b,
		"Z3":         z3b,
	})
}

func (p *Proof) UnmarshalJSON(j []byte) error {
	var tmp map[string]json.RawMessage
	if e := json.Unmarshal(j, &tmp); e != nil {
		return e
	}

	var z1, z3 saferith.Int
	var z2 saferith.Modulus
	var z1bytes, z2bytes, z3bytes []byte

	if e := json.Unmarshal(tmp["Z1"], &z1bytes); e != nil {
		return e
	}
	if e := json.Unmarshal(tmp["Z2"], &z2bytes); e != nil {
		return e
	}
	if e := json.Unmarshal(tmp["Z3"], &z3bytes); e != nil {
		return e
	}
	if e := z1.UnmarshalBinary(z1bytes); e != nil {
		return e
	}
	if e := z2.UnmarshalBinary(z2bytes); e != nil {
		return e
	}
	if e := z3.UnmarshalBinary(z3bytes); e != nil {
		return e
	}

	var commitment *Commitment
	if e := json.Unmarshal(tmp["Commitment"], &commitment); e != nil {
		return e
	}

	p.Z1 = &z1
	p.Z2 = z2.Nat()
	p.Z3 = &z3
	p.Commitment = commitment
	p.group = curve.Secp256k1{}
	return nil
}

func (c Commitment) MarshalJSON() ([]byte, error) {
	sb, e := c.S.MarshalBinary()
	if e != nil {
		return nil, e
	}
	db, e := c.D.MarshalBinary()
	if e != nil {
		return nil, e
	}
	yb, e := c.Y.MarshalBinary()
	if e != nil {
		return nil, e
	}
	return json.Marshal(map[string]interface{}{
		"S": sb,
		"D": db,
		"A": c.A,
		"Y": yb,
	})
}

func (c *Commitment) UnmarshalJSON(j []byte) error {
	var tmp map[string]json.RawMessage
	if e := json.Unmarshal(j, &tmp); e != nil {
		return e
	}

	var s, d saferith.Modulus
	var sBytes, dBytes, yBytes []byte

	if e := json.Unmarshal(tmp["S"], &sBytes); e != nil {
		return e
	}
	if e := s.UnmarshalBinary(sBytes); e != nil {
		return e
	}
	if e := json.Unmarshal(tmp["D"], &dBytes); e != nil {
		return e
	}
	if e := d.UnmarshalBinary(dBytes); e != nil {
		return e
	}

	var a *paillier.Ciphertext
	if e := json.Unmarshal(tmp["A"], &a); e != nil {
		return e
	}

	if e := json.Unmarshal(tmp["Y"], &yBytes); e != nil {
		return e
	}
	group := curve.Secp256k1{}
	y := group.NewPoint()
	if e := y.UnmarshalBinary(yBytes); e != nil {
		return e
	}

	c.S = s.Nat()
	c.D = d.Nat()
	c.A = a
	c.Y = y
	return nil
}
