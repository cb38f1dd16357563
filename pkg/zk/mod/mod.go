// Package zkmod implements the proof that a Paillier modulus N is the
// product of two distinct Blum primes (P, Q, both ≡ 3 mod 4): the
// check every signer runs over every other signer's Paillier key during
// keygen, since a malformed N would let its owner forge the range
// proofs that protect the MtA share exchange in signing.
package zkmod

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/internal/params"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/pool"
)

// Public is N, the modulus under test.
type Public struct {
	N *saferith.Modulus
}

// Private is the factorization witness: P, Q such that N = P·Q, and
// Phi = (P-1)(Q-1).
type Private struct {
	P, Q, Phi *saferith.Nat
}

// Response is one of the params.StatParam independent rounds of the
// protocol: X is a 4th root of (-1)^A · W^B · Y (mod N), and Z is an
// N-th root of Y (mod N), for the challenge Y derived from the
// transcript.
type Response struct {
	A, B bool
	X    *saferith.Nat
	Z    *saferith.Nat
}

// Proof that N factors into two distinct Blum primes.
type Proof struct {
	// W is a unit mod N with Jacobi symbol -1, fixed for every round.
	W         *saferith.Nat
	Responses []Response
}

// NewProof constructs a proof that N = P·Q for Blum primes P, Q.
func NewProof(h *hash.Hash, private Private, public Public, pl *pool.Pool) *Proof {
	n := public.N.Nat().Big()
	p := private.P.Big()
	q := private.Q.Big()
	phi := private.Phi.Big()

	w := sampleNonResidue(rand.Reader, n)
	ys := challengeYs(h, public.N, w)

	nInvPhi := new(big.Int).ModInverse(n, phi)

	results := pl.Parallelize(len(ys), func(i int) interface{} {
		y := ys[i]
		a, b, x := fourthRoot(y, p, q, n, w)
		z := new(big.Int).Exp(y, nInvPhi, n)
		return Response{
			A: a,
			B: b,
			X: new(saferith.Nat).SetBytes(x.Bytes()),
			Z: new(saferith.Nat).SetBytes(z.Bytes()),
		}
	})

	responses := make([]Response, len(results))
	for i, r := range results {
		responses[i] = r.(Response)
	}

	return &Proof{
		W:         new(saferith.Nat).SetBytes(w.Bytes()),
		Responses: responses,
	}
}

// Verify checks the proof against the public modulus.
func (p *Proof) Verify(public Public, h *hash.Hash, pl *pool.Pool) bool {
	if p == nil || p.W == nil || len(p.Responses) != params.StatParam {
		return false
	}

	n := public.N.Nat().Big()
	w := p.W.Big()

	if n.Bit(0) == 0 {
		return false
	}
	if big.Jacobi(w, n) != -1 {
		return false
	}

	ys := challengeYs(h, public.N, w)

	four := big.NewInt(4)
	results := pl.Parallelize(len(ys), func(i int) interface{} {
		y := ys[i]
		resp := p.Responses[i]
		if resp.X == nil || resp.Z == nil {
			return false
		}
		x := resp.X.Big()
		z := resp.Z.Big()

		zn := new(big.Int).Exp(z, n, n)
		if zn.Cmp(y) != 0 {
			return false
		}

		yPrime := new(big.Int).Set(y)
		if resp.A {
			yPrime.Neg(yPrime)
			yPrime.Mod(yPrime, n)
		}
		if resp.B {
			yPrime.Mul(yPrime, w)
			yPrime.Mod(yPrime, n)
		}

		x4 := new(big.Int).Exp(x, four, n)
		return x4.Cmp(yPrime) == 0
	})

	for _, r := range results {
		if !r.(bool) {
			return false
		}
	}
	return true
}

// fourthRoot finds a, b ∈ {0,1} and x such that x⁴ ≡ (-1)ᵃ·Wᵇ·y (mod N),
// using the known factorization (p, q) to pick the unique combination
// under which the adjusted y becomes a fourth power.
func fourthRoot(y, p, q, n, w *big.Int) (bool, bool, *big.Int) {
	for _, a := range [2]bool{false, true} {
		for _, b := range [2]bool{false, true} {
			yPrime := new(big.Int).Set(y)
			if a {
				yPrime.Neg(yPrime)
				yPrime.Mod(yPrime, n)
			}
			if b {
				yPrime.Mul(yPrime, w)
				yPrime.Mod(yPrime, n)
			}
			if isQuadraticResidue(yPrime, p, q) {
				xp := fourthRootModBlumPrime(yPrime, p)
				xq := fourthRootModBlumPrime(yPrime, q)
				return a, b, crt(xp, xq, p, q, n)
			}
		}
	}
	// N is not a valid Blum modulus; return a value that will fail
	// Verify rather than panicking.
	return false, false, big.NewInt(0)
}

func isQuadraticResidue(y, p, q *big.Int) bool {
	yp := new(big.Int).Mod(y, p)
	yq := new(big.Int).Mod(y, q)
	return big.Jacobi(yp, p) == 1 && big.Jacobi(yq, q) == 1
}

// fourthRootModBlumPrime returns x with x⁴ ≡ a (mod p), for a prime p ≡
// 3 (mod 4) and a known to be a QR mod p. Squaring is a bijection on
// the QR subgroup of a Blum prime's units, so the ordinary sqrt,
// sign-corrected to land back in the QR subgroup, can be applied twice.
func fourthRootModBlumPrime(a, p *big.Int) *big.Int {
	s := sqrtModBlumPrime(a, p)
	if big.Jacobi(s, p) != 1 {
		s.Sub(p, s)
	}
	return sqrtModBlumPrime(s, p)
}

func sqrtModBlumPrime(a, p *big.Int) *big.Int {
	e := new(big.Int).Rsh(new(big.Int).Add(p, big.NewInt(1)), 2)
	return new(big.Int).Exp(a, e, p)
}

func crt(xp, xq, p, q, n *big.Int) *big.Int {
	pInv := new(big.Int).ModInverse(p, q)
	h := new(big.Int).Sub(xq, xp)
	h.Mul(h, pInv)
	h.Mod(h, q)
	x := new(big.Int).Mul(h, p)
	x.Add(x, xp)
	return x.Mod(x, n)
}

func sampleNonResidue(rnd io.Reader, n *big.Int) *big.Int {
	for {
		w, err := rand.Int(rnd, n)
		if err != nil {
			panic(err)
		}
		if w.Sign() == 0 {
			continue
		}
		if big.Jacobi(w, n) == -1 {
			return w
		}
	}
}

func (r Response) MarshalJSON() ([]byte, error) {
	xb, e := r.X.MarshalBinary()
	if e != nil {
		return nil, e
	}
	zb, e := r.Z.MarshalBinary()
	if e != nil {
		return nil, e
	}
	return json.Marshal(map[string]interface{}{
		"A": r.A,
		"B": r.B,
		"X": xb,
		"Z": zb,
	})
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var tmp struct {
		A bool
		B bool
		X []byte
		Z []byte
	}
	if e := json.Unmarshal(data, &tmp); e != nil {
		return e
	}
	r.A = tmp.A
	r.B = tmp.B
	r.X = new(saferith.Nat).SetBytes(tmp.X)
	r.Z = new(saferith.Nat).SetBytes(tmp.Z)
	return nil
}

func (p Proof) MarshalJSON() ([]byte, error) {
	wb, e := p.W.MarshalBinary()
	if e != nil {
		return nil, e
	}
	return json.Marshal(map[string]interface{}{
		"W":         wb,
		"Responses": p.Responses,
	})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var tmp struct {
		W         []byte
		Responses []Response
	}
	if e := json.Unmarshal(data, &tmp); e != nil {
		return e
	}
	p.W = new(saferith.Nat).SetBytes(tmp.W)
	p.Responses = tmp.Responses
	return nil
}

// challengeYs derives params.StatParam independent challenges in Z_N
// from the Fiat-Shamir transcript of (N, W).
func challengeYs(h *hash.Hash, n *saferith.Modulus, w *big.Int) []*big.Int {
	hh := h.Clone()
	_ = hh.WriteAny(n, new(saferith.Nat).SetBytes(w.Bytes()))
	digest := hh.Digest()

	nBig := n.Nat().Big()
	byteLen := (nBig.BitLen()+7)/8 + 8

	ys := make([]*big.Int, params.StatParam)
	for i := range ys {
		buf := make([]byte, byteLen)
		if _, err := io.ReadFull(digest, buf); err != nil {
			panic(err)
		}
		y := new(big.Int).SetBytes(buf)
		ys[i] = y.Mod(y, nBig)
	}
	return ys
}
