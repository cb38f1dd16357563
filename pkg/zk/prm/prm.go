// Package zkprm implements the proof that a party's Pedersen parameters
// (N, s, t) are well-formed: s = t^λ (mod N) for a λ the prover knows.
// Every range proof in pkg/zk treats the owner of (N, s, t) as a
// verifier using an "auxiliary" commitment group whose discrete-log
// relation between s and t must be unknown to anyone but that owner;
// this proof is what lets every other party check that relation was
// set up honestly, via params.StatParam repetitions of a Schnorr proof
// of knowledge of λ mod φ(N).
package zkprm

import (
	"crypto/rand"
	"encoding/json"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/internal/params"
	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/shardsign/tss-core/pkg/math/arith"
	"github.com/shardsign/tss-core/pkg/pedersen"
	"github.com/shardsign/tss-core/pkg/pool"
)

// Public is the Pedersen parameters under test.
type Public struct {
	Aux *pedersen.Parameters
}

// Private is the discrete-log witness: λ with s = t^λ (mod N), along
// with the factorization of N needed to reduce exponents mod φ(N).
type Private struct {
	Lambda *saferith.Nat
	Phi    *saferith.Nat
	P, Q   *saferith.Nat
}

// Proof that s = t^λ (mod N) for a λ known to the prover, as
// params.StatParam independent Schnorr-style rounds with binary
// challenges.
type Proof struct {
	As []*saferith.Nat
	Zs []*saferith.Nat
}

// NewProof constructs a proof of knowledge of the Pedersen discrete log.
func NewProof(private Private, h *hash.Hash, public Public, pl *pool.Pool) *Proof {
	n := arith.ModulusFromFactors(private.P, private.Q)
	phiMod := saferith.ModulusFromNat(private.Phi)

	type round struct {
		a *saferith.Nat
		A *saferith.Nat
	}

	rounds := pl.Parallelize(params.StatParam, func(int) interface{} {
		a := sampleExponent(private.Phi)
		A := n.Exp(public.Aux.T(), a)
		return round{a: a, A: A}
	})

	as := make([]*saferith.Nat, params.StatParam)
	bigAs := make([]*saferith.Nat, params.StatParam)
	for i, r := range rounds {
		rd := r.(round)
		as[i] = rd.a
		bigAs[i] = rd.A
	}

	es := challengeBits(h, public, bigAs)

	zs := make([]*saferith.Nat, params.StatParam)
	for i := range zs {
		if es[i] {
			zs[i] = new(saferith.Nat).ModAdd(as[i], private.Lambda, phiMod)
		} else {
			zs[i] = new(saferith.Nat).SetNat(as[i])
		}
	}

	return &Proof{As: bigAs, Zs: zs}
}

// Verify checks the proof against the public Pedersen parameters.
func (p *Proof) Verify(public Public, h *hash.Hash, pl *pool.Pool) bool {
	if p == nil || len(p.As) != params.StatParam || len(p.Zs) != params.StatParam {
		return false
	}

	n := public.Aux.NArith()
	es := challengeBits(h, public, p.As)

	results := pl.Parallelize(params.StatParam, func(i int) interface{} {
		A := p.As[i]
		z := p.Zs[i]
		if A == nil || z == nil {
			return false
		}

		lhs := n.Exp(public.Aux.T(), z)

		rhs := A
		if es[i] {
			rhs = new(saferith.Nat).ModMul(A, public.Aux.S(), n.Modulus)
		}
		return lhs.Eq(rhs) == 1
	})

	for _, r := range results {
		if !r.(bool) {
			return false
		}
	}
	return true
}

func sampleExponent(phi *saferith.Nat) *saferith.Nat {
	phiMod := saferith.ModulusFromNat(phi)
	buf := make([]byte, (phi.TrueLen()+7)/8+8)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic(err)
	}
	x := new(saferith.Nat).SetBytes(buf)
	x.Mod(x, phiMod)
	return x
}

// challengeBits derives params.StatParam independent binary challenges
// from the Fiat-Shamir transcript of (Aux, A_1, ..., A_m).
func challengeBits(h *hash.Hash, public Public, as []*saferith.Nat) []bool {
	hh := h.Clone()
	args := make([]interface{}, 0, len(as)+1)
	args = append(args, public.Aux)
	for _, a := range as {
		args = append(args, a)
	}
	_ = hh.WriteAny(args...)

	buf := make([]byte, (params.StatParam+7)/8)
	if _, err := io.ReadFull(hh.Digest(), buf); err != nil {
		panic(err)
	}

	bits := make([]bool, params.StatParam)
	for i := range bits {
		bits[i] = buf[i/8]&(1<<uint(i%8)) != 0
	}
	return bits
}

func (p Proof) MarshalJSON() ([]byte, error) {
	asBytes := make([][]byte, len(p.As))
	for i, a := range p.As {
		b, e := a.MarshalBinary()
		if e != nil {
			return nil, e
		}
		asBytes[i] = b
	}
	zsBytes := make([][]byte, len(p.Zs))
	for i, z := range p.Zs {
		b, e := z.MarshalBinary()
		if e != nil {
			return nil, e
		}
		zsBytes[i] = b
	}
	return json.Marshal(map[string]interface{}{
		"As": asBytes,
		"Zs": zsBytes,
	})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var tmp struct {
		As [][]byte
		Zs [][]byte
	}
	if e := json.Unmarshal(data, &tmp); e != nil {
		return e
	}
	as := make([]*saferith.Nat, len(tmp.As))
	for i, b := range tmp.As {
		as[i] = new(saferith.Nat).SetBytes(b)
	}
	zs := make([]*saferith.Nat, len(tmp.Zs))
	for i, b := range tmp.Zs {
		zs[i] = new(saferith.Nat).SetBytes(b)
	}
	p.As = as
	p.Zs = zs
	return nil
}
