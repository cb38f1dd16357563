// Package sample collects every place this module needs to draw
// uniformly random numeric values: scalars, unit residues mod N, Blum
// primes for Paillier, and the various "interval" values the ZK proof
// library uses as blinding factors. It mirrors the teacher's
// pkg/math/sample.
package sample

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/internal/params"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/pool"
)

// Scalar draws a uniform element of Z_q for the given curve.
func Scalar(rnd io.Reader, group curve.Curve) curve.Scalar {
	buf := make([]byte, group.SafeScalarBytes()+16)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		panic(err)
	}
	n := new(saferith.Nat).SetBytes(buf)
	return group.NewScalar().SetNat(n)
}

// ScalarPointPair draws a random scalar a and returns (a, a.G).
func ScalarPointPair(rnd io.Reader, group curve.Curve) (curve.Scalar, curve.Point) {
	s := Scalar(rnd, group)
	return s, s.ActOnBase()
}

// IntervalScalar draws a Fiat-Shamir challenge from a hash digest as a
// non-negative integer of SafeScalarBytes()+Eps/8 bytes. It is not
// reduced modulo the group order; callers reduce it where they need a
// scalar.
func IntervalScalar(rnd io.Reader, group curve.Curve) *saferith.Int {
	buf := make([]byte, group.SafeScalarBytes()+params.Eps/8)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		panic(err)
	}
	n := new(saferith.Nat).SetBytes(buf)
	return new(saferith.Int).SetNat(n)
}

// bound returns a uniformly random value in (-2^bits, 2^bits).
func bound(rnd io.Reader, bits int) *saferith.Int {
	buf := make([]byte, bits/8+1)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		panic(err)
	}
	neg := buf[0]&1 == 1
	buf[0] >>= 1
	n := new(saferith.Nat).SetBytes(buf)
	x := new(saferith.Int).SetNat(n)
	if neg {
		x.Neg(1)
	}
	return x
}

// IntervalL draws a value in (-2^L, 2^L): the range of a plaintext that
// should match a group scalar (spec §4.4, "range_pedersen").
func IntervalL(rnd io.Reader) *saferith.Int { return bound(rnd, params.L) }

// IntervalLPrime draws a value in (-2^L', 2^L'): the wider range
// admitted for a plaintext that may be a product of two scalars.
func IntervalLPrime(rnd io.Reader) *saferith.Int { return bound(rnd, params.LPrime) }

// IntervalLEps draws a value in (-2^(L+Eps), 2^(L+Eps)), the blinding
// range used by the enc/affg/logstar/dec proofs.
func IntervalLEps(rnd io.Reader) *saferith.Int { return bound(rnd, params.L+params.Eps) }

// IntervalLPrimeEps draws a value in (-2^(L'+Eps), 2^(L'+Eps)).
func IntervalLPrimeEps(rnd io.Reader) *saferith.Int { return bound(rnd, params.LPrime+params.Eps) }

// IntervalLN draws a value in (-2^L * N, 2^L * N): a blinding factor
// for a Pedersen exponent modulo an unknown-order group.
func IntervalLN(rnd io.Reader) *saferith.Int { return bound(rnd, params.L+params.BitsPaillier) }

// IntervalLEpsN draws a value in (-2^(L+Eps) * N, 2^(L+Eps) * N).
func IntervalLEpsN(rnd io.Reader) *saferith.Int {
	return bound(rnd, params.L+params.Eps+params.BitsPaillier)
}

// IntervalLEpsRootN draws a value in (-2^(L+Eps) * sqrt(N), 2^(L+Eps) *
// sqrt(N)): the range the fac proof blinds a Paillier prime factor with,
// sqrt(N) being approximated by 2^BitsBlumPrime since each factor is
// BitsBlumPrime bits wide.
func IntervalLEpsRootN(rnd io.Reader) *saferith.Int {
	return bound(rnd, params.L+params.Eps+params.BitsBlumPrime)
}

// IntervalLN2 draws a value in (-2^L * N^2, 2^L * N^2).
func IntervalLN2(rnd io.Reader) *saferith.Int {
	return bound(rnd, params.L+2*params.BitsPaillier)
}

// IntervalLEpsN2 draws a value in (-2^(L+Eps) * N^2, 2^(L+Eps) * N^2).
func IntervalLEpsN2(rnd io.Reader) *saferith.Int {
	return bound(rnd, params.L+params.Eps+2*params.BitsPaillier)
}

// UnitModN draws a uniformly random element of (Z/NZ)*.
func UnitModN(rnd io.Reader, n *saferith.Modulus) *saferith.Nat {
	for {
		buf := make([]byte, (n.BitLen()+7)/8+8)
		if _, err := io.ReadFull(rnd, buf); err != nil {
			panic(err)
		}
		x := new(saferith.Nat).SetBytes(buf)
		x.Mod(x, n)
		if x.IsUnit(n) == 1 {
			return x
		}
	}
}

// Paillier samples two safe Blum primes P, Q suitable for a Paillier
// modulus N = PQ. pl parallelizes the candidate search across workers,
// exactly as the teacher's sample.Paillier does.
func Paillier(rnd io.Reader, pl *pool.Pool) (*saferith.Nat, *saferith.Nat) {
	find := func() *saferith.Nat {
		r, _ := pl.Search(func() interface{} {
			if n, ok := tryBlumPrime(rnd); ok {
				return n
			}
			return nil
		}).(*saferith.Nat)
		return r
	}
	p := find()
	q := find()
	for p.Big().Cmp(q.Big()) == 0 {
		q = find()
	}
	return p, q
}

func tryBlumPrime(rnd io.Reader) (*saferith.Nat, bool) {
	p, err := rand.Prime(rnd, params.BitsBlumPrime)
	if err != nil {
		panic(err)
	}
	if new(big.Int).Mod(p, big.NewInt(4)).Int64() != 3 {
		return nil, false
	}
	q := new(big.Int).Rsh(p, 1)
	if !q.ProbablyPrime(20) {
		return nil, false
	}
	return new(saferith.Nat).SetBytes(p.Bytes()), true
}

// Pedersen samples Pedersen parameters (s, t) = (h^lambda, h) style
// generators modulo a Paillier-style N whose factorization (via phi) is
// known, returning the discrete-log witness lambda with s = t^lambda.
func Pedersen(rnd io.Reader, phi *saferith.Nat, n *saferith.Modulus) (s, t *saferith.Nat, lambda *saferith.Nat) {
	phiMod := saferith.ModulusFromNat(phi)
	lambda = new(saferith.Nat).SetBytes(randBytes(rnd, (phi.TrueLen()+7)/8))
	lambda.Mod(lambda, phiMod)

	tau := UnitModN(rnd, n)
	t = new(saferith.Nat).ModMul(tau, tau, n)
	s = new(saferith.Nat).Exp(t, lambda, n)
	return
}

func randBytes(rnd io.Reader, n int) []byte {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		panic(err)
	}
	return buf
}
