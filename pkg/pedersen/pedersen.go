// Package pedersen implements the Pedersen commitment parameters (N, s,
// t) used as the "auxiliary" RSA-group commitment every range proof in
// pkg/zk relies on: Commit(x, y) = s^x * t^y (mod N), binding under the
// strong-RSA assumption and hiding given a random discrete-log witness
// between s and t.
package pedersen

import (
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/shardsign/tss-core/pkg/math/arith"
)

var (
	ErrSEqualT  = errors.New("pedersen: S cannot equal T")
	ErrNotValidModN = errors.New("pedersen: S and T must be valid units mod N")
)

// Parameters holds N along with generators (s, t) of an order-phi(N)
// subgroup, with s = t^lambda for some secret lambda only the original
// generator of N knows.
type Parameters struct {
	n    *arith.Modulus
	s, t *saferith.Nat
}

// New wraps (n, s, t) into a Parameters value. It assumes s and t have
// already been validated by the caller (e.g. via ValidateParameters
// when received from a remote party).
func New(n *arith.Modulus, s, t *saferith.Nat) *Parameters {
	return &Parameters{n: n, s: s, t: t}
}

// ValidateParameters checks that S and T are distinct units mod N, the
// minimal soundness condition for an untrusted peer's auxiliary
// parameters (spec §4.4, "prm").
func ValidateParameters(n *saferith.Modulus, s, t *saferith.Nat) error {
	if n == nil || s == nil || t == nil {
		return errors.New("pedersen: nil parameter")
	}
	if s.Eq(t) == 1 {
		return ErrSEqualT
	}
	if !arith.IsValidNatModN(n, s) || !arith.IsValidNatModN(n, t) {
		return ErrNotValidModN
	}
	return nil
}

// N returns the underlying RSA-style modulus.
func (p *Parameters) N() *arith.Modulus { return p.n }

// NArith is an alias for N, matching the accessor name the fac proof
// calls it by.
func (p *Parameters) NArith() *arith.Modulus { return p.n }

// S returns the s generator.
func (p *Parameters) S() *saferith.Nat { return p.s }

// T returns the t generator.
func (p *Parameters) T() *saferith.Nat { return p.t }

// Commit returns s^x * t^y (mod N), the blinding commitment every range
// proof in pkg/zk uses to bind a value without revealing it modulo an
// unknown-order group.
func (p *Parameters) Commit(x, y *saferith.Int) *saferith.Nat {
	sx := p.n.ExpI(p.s, x)
	ty := p.n.ExpI(p.t, y)
	sx.ModMul(sx, ty, p.n.Modulus)
	return sx
}

// Verify checks that s^a * t^b == S * T^e (mod N), the opening equation
// every proof using Commit as a blinding factor checks at verification
// time.
func (p *Parameters) Verify(a, b, e *saferith.Int, S, T *saferith.Nat) bool {
	sa := p.n.ExpI(p.s, a)
	tb := p.n.ExpI(p.t, b)
	lhs := sa.ModMul(sa, tb, p.n.Modulus)

	te := p.n.ExpI(T, e)
	rhs := new(saferith.Nat).ModMul(S, te, p.n.Modulus)

	return lhs.Eq(rhs) == 1
}

// WriteTo implements io.WriterTo so Parameters can be absorbed into a
// hash transcript.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, part := range [][]byte{p.n.Bytes(), p.s.Bytes(), p.t.Bytes()} {
		n, err := w.Write(part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Parameters) Domain() string { return "Pedersen Parameters" }

// MarshalBinary encodes N, S, T with length prefixes.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	nBytes := p.n.Bytes()
	sBytes := p.s.Bytes()
	tBytes := p.t.Bytes()

	out := make([]byte, 0, 12+len(nBytes)+len(sBytes)+len(tBytes))
	out = appendLenPrefixed(out, nBytes)
	out = appendLenPrefixed(out, sBytes)
	out = appendLenPrefixed(out, tBytes)
	return out, nil
}

func (p *Parameters) UnmarshalBinary(data []byte) error {
	nBytes, rest, err := readLenPrefixed(data)
	if err != nil {
		return err
	}
	sBytes, rest, err := readLenPrefixed(rest)
	if err != nil {
		return err
	}
	tBytes, _, err := readLenPrefixed(rest)
	if err != nil {
		return err
	}

	n := saferith.ModulusFromBytes(nBytes)
	p.n = arith.ModulusFromN(n)
	p.s = new(saferith.Nat).SetBytes(sBytes)
	p.t = new(saferith.Nat).SetBytes(tBytes)
	return nil
}

func appendLenPrefixed(out []byte, data []byte) []byte {
	var lenBuf [4]byte
	lenBuf[0] = byte(len(data) >> 24)
	lenBuf[1] = byte(len(data) >> 16)
	lenBuf[2] = byte(len(data) >> 8)
	lenBuf[3] = byte(len(data))
	out = append(out, lenBuf[:]...)
	return append(out, data...)
}

func readLenPrefixed(data []byte) (value, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, errors.New("pedersen: truncated encoding")
	}
	n := int(data[0])<<24 | int(data[1])<<16 | int(data[2])<<8 | int(data[3])
	if len(data) < 4+n {
		return nil, nil, errors.New("pedersen: truncated encoding")
	}
	return data[4 : 4+n], data[4+n:], nil
}
