// Package params centralizes the numeric constants that size every
// protocol in this module: bit-lengths and statistical security
// parameters.
package params

const (
	// SecBits is the statistical security parameter used throughout the
	// zero-knowledge proof library and the OT extension (κ in spec §4.7).
	SecBits = 256

	// StatParam is the "stat" slack used to blind Paillier plaintexts
	// during ECDSA-2P and ECDSA-MP signing (2^stat above the group order).
	StatParam = 80

	// Eps / L / LPrime are the range-proof bit widths shared by the
	// affg/enc/logstar/dec proofs: L is the bit-size of a plaintext that
	// should equal a scalar, LPrime the bit-size of a plaintext that may
	// be as large as a product of two scalars, and Eps the epsilon slack
	// added to both so the soundness error is negligible.
	L      = 256
	LPrime = 1024
	Eps    = 128

	// BitsPaillier is the bit-length of a Paillier modulus N = P·Q.
	BitsPaillier = 2048
	// BitsBlumPrime is the bit-length of each of the two Blum primes
	// making up a Paillier modulus (BitsPaillier / 2).
	BitsBlumPrime = BitsPaillier / 2

	// BytesPaillier / BytesCiphertext are the corresponding byte lengths.
	BytesPaillier   = BitsPaillier / 8
	BytesCiphertext = 2 * BytesPaillier

	// OTWidth is θ = |q| + κ, the extended-OT payload width used by the
	// n-party multiplicative-to-additive conversion (spec §4.7).
	OTWidth = 256 + SecBits

	// OTBaseCount is the number of base OTs that are extended.
	OTBaseCount = SecBits

	// MinSidBits is the minimum number of bits a session ID must carry.
	MinSidBits = 128

	// MinWeakAgreeBits is 128 bits (spec §4.3). No code in this module
	// reads it: pkg/agree's weak variants do not check their bit length
	// against it.
	MinWeakAgreeBits = 128
)
