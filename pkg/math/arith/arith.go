// Package arith wraps saferith.Modulus with the small amount of extra
// bookkeeping every protocol in this module needs: an optional CRT
// decomposition for faster exponentiation when the factorization of the
// modulus is known, and the symmetric range checks the ZK proof library
// leans on throughout.
package arith

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/internal/params"
)

// Modulus wraps a saferith.Modulus, optionally caching the prime
// factorization so that exponentiation can use the Chinese Remainder
// Theorem. This mirrors the teacher's pkg/math/arith.Modulus: callers
// that hold a Paillier private key get the fast path for free.
type Modulus struct {
	*saferith.Modulus
	// p, q are the prime factors, when known (nil otherwise).
	p, q *saferith.Nat
}

// ModulusFromN wraps a bare modulus with no known factorization.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{Modulus: n}
}

// ModulusFromFactors builds a Modulus from two primes, enabling CRT
// exponentiation.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	n := new(saferith.Nat).Mul(p, q, -1)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(n),
		p:       p,
		q:       q,
	}
}

// Exp computes x^e mod n, using the CRT decomposition when available.
func (m *Modulus) Exp(x *saferith.Nat, e *saferith.Nat) *saferith.Nat {
	if m.p == nil || m.q == nil {
		return new(saferith.Nat).Exp(x, e, m.Modulus)
	}
	pMod := saferith.ModulusFromNat(m.p)
	qMod := saferith.ModulusFromNat(m.q)
	xp := new(saferith.Nat).Mod(x, pMod)
	xq := new(saferith.Nat).Mod(x, qMod)
	rp := new(saferith.Nat).Exp(xp, e, pMod)
	rq := new(saferith.Nat).Exp(xq, e, qMod)
	return crtCombine(rp, rq, m.p, m.q, m.Modulus)
}

// ExpI computes x^e mod n for a signed exponent e, handling negative
// exponents via the multiplicative inverse of x.
func (m *Modulus) ExpI(x *saferith.Nat, e *saferith.Int) *saferith.Nat {
	eAbs, eNeg := e.Abs(), e.IsNegative()
	out := m.Exp(x, eAbs)
	if eNeg {
		out = new(saferith.Nat).ModInverse(out, m.Modulus)
	}
	return out
}

// crtCombine reconstructs x mod pq from its residues mod p and mod q.
func crtCombine(xp, xq *saferith.Nat, p, q *saferith.Nat, pq *saferith.Modulus) *saferith.Nat {
	pMod := saferith.ModulusFromNat(p)
	qInv := new(saferith.Nat).ModInverse(q, pMod)
	diff := new(saferith.Nat).ModSub(xp, new(saferith.Nat).Mod(xq, pMod), pMod)
	h := new(saferith.Nat).ModMul(diff, qInv, pMod)
	out := new(saferith.Nat).Mul(h, q, -1)
	out.Add(out, xq, -1)
	out.Mod(out, pq)
	return out
}

// Bytes returns the big-endian byte representation of the modulus.
func (m *Modulus) Bytes() []byte {
	return m.Modulus.Nat().Bytes()
}

// MarshalBinary round-trips through the underlying Nat's serialization.
func (m *Modulus) MarshalBinary() ([]byte, error) {
	return m.Modulus.Nat().MarshalBinary()
}

// UnmarshalBinary restores a modulus with no known factorization.
func (m *Modulus) UnmarshalBinary(data []byte) error {
	var n saferith.Nat
	if err := n.UnmarshalBinary(data); err != nil {
		return err
	}
	m.Modulus = saferith.ModulusFromNat(&n)
	m.p, m.q = nil, nil
	return nil
}

// Cmp compares m's modulus against n, returning the saferith.Choice
// triple (gt, eq, lt) of the underlying comparison.
func (m *Modulus) Cmp(n *saferith.Modulus) (int, int, int) {
	a := m.Modulus.Nat()
	b := n.Nat()
	gt, eq, lt := a.CmpMod(n)
	_ = b
	return int(gt), int(eq), int(lt)
}

// IsValidNatModN checks that x is a properly reduced, invertible residue
// mod n: 0 <= x < n and gcd(x, n) = 1. Every ZK verifier in this module
// runs this check before trusting a response value, per spec §4.4's
// "statement elements are validated before the algebraic relation".
func IsValidNatModN(n *saferith.Modulus, x *saferith.Nat) bool {
	if x == nil {
		return false
	}
	_, _, lt := x.CmpMod(n)
	if lt != 1 {
		return false
	}
	return x.IsUnit(n) == 1
}

// IsInIntervalLEps checks that |x| < 2^(L+Eps), the range enforced on
// witnesses encoded as scalars throughout the affg/enc/logstar proofs.
func IsInIntervalLEps(x interface{ Abs() *saferith.Nat }) bool {
	one := new(saferith.Nat).SetUint64(1)
	bound := new(saferith.Nat).Lsh(one, uint(lEpsBits()), -1)
	_, _, lt := x.Abs().CmpMod(saferith.ModulusFromNat(bound))
	return lt == 1
}

func lEpsBits() int {
	return params.L + params.Eps
}

// IsInIntervalLPrimeEps checks that |x| < 2^(L'+Eps), the wider range
// enforced on witnesses that may be a product of two scalars (affg's z2).
func IsInIntervalLPrimeEps(x interface{ Abs() *saferith.Nat }) bool {
	one := new(saferith.Nat).SetUint64(1)
	bound := new(saferith.Nat).Lsh(one, uint(params.LPrime+params.Eps), -1)
	_, _, lt := x.Abs().CmpMod(saferith.ModulusFromNat(bound))
	return lt == 1
}

// IsInIntervalLEpsPlus1RootN checks that |x| < 2^(L+Eps+1) * sqrt(N),
// the fac proof's range check on z1/z2 (one extra bit of slack over the
// prover's own sampling range, to absorb rounding in the bound).
func IsInIntervalLEpsPlus1RootN(x interface{ Abs() *saferith.Nat }) bool {
	one := new(saferith.Nat).SetUint64(1)
	bound := new(saferith.Nat).Lsh(one, uint(params.L+params.Eps+1+params.BitsBlumPrime), -1)
	_, _, lt := x.Abs().CmpMod(saferith.ModulusFromNat(bound))
	return lt == 1
}

// RandomUnit samples a uniformly random unit (invertible element) modulo n.
func RandomUnit(n *saferith.Modulus) *saferith.Nat {
	for {
		buf := make([]byte, (n.BitLen()+7)/8)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		x := new(saferith.Nat).SetBytes(buf)
		x.Mod(x, n)
		if x.IsUnit(n) == 1 {
			return x
		}
	}
}
