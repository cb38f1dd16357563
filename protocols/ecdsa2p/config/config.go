// Package config holds the result of an ecdsa2p DKG: the material two
// parties need to sign under a jointly-generated ECDSA public key
// without either one ever holding the full private key.
package config

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pedersen"
)

// Config is one party's share of a 2-party ECDSA key. Unlike
// protocols/cmp/config.Config, there is no threshold and no VSS
// polynomial: the secret key is the sum x = x_self + x_other, known in
// full to neither party.
//
// Exactly one of the two parties is the "Paillier holder" (P1 in
// spec terms): that party's Paillier secret key is set, and CKey is
// the encryption of its own ECDSA share under that key. Both parties
// keep their own Pedersen auxiliary parameters so the other can verify
// range proofs against them; both also generate a Paillier keypair
// during DKG purely to produce those parameters, a deliberate
// deviation from a design that gives only one party a Paillier key
// (see DESIGN.md).
type Config struct {
	Group curve.Curve
	// Self is this party's ID, Other is its counterparty's.
	Self, Other party.ID
	// ECDSA is this party's additive share of the secret key.
	ECDSA curve.Scalar
	// Public is the joint public key Q = x_self*G + x_other*G.
	Public curve.Point
	// PaillierHolder is the ID of the party whose Paillier secret key
	// encrypts the shared CKey ciphertext (P1 in spec terms).
	PaillierHolder party.ID
	// Paillier is this party's own Paillier secret key, generated
	// during DKG. Always set: see the deviation noted above.
	Paillier *paillier.SecretKey
	// PaillierPublic maps each party to its Paillier public key.
	PaillierPublic map[party.ID]*paillier.PublicKey
	// Pedersen maps each party to its own Pedersen auxiliary
	// parameters, used by the other party as the Aux of a range proof.
	Pedersen map[party.ID]*pedersen.Parameters
	// CKey is Enc_{PaillierHolder}(x_PaillierHolder): both parties
	// hold a copy, but only PaillierHolder can decrypt it.
	CKey *paillier.Ciphertext
}

// IsPaillierHolder reports whether id is the party whose Paillier key
// backs CKey.
func (c *Config) IsPaillierHolder(id party.ID) bool {
	return c.PaillierHolder == id
}

// Validate checks that the config is internally consistent: both
// parties present, self's share recorded, and CKey set.
func (c *Config) Validate() error {
	if c.Self == "" || c.Other == "" || c.Self == c.Other {
		return errors.New("ecdsa2p/config: Self and Other must be distinct, non-empty party IDs")
	}
	if c.ECDSA == nil || c.Public == nil || c.CKey == nil {
		return errors.New("ecdsa2p/config: missing key material")
	}
	if c.Paillier == nil {
		return errors.New("ecdsa2p/config: missing own Paillier secret key")
	}
	for _, id := range []party.ID{c.Self, c.Other} {
		if c.PaillierPublic[id] == nil || c.Pedersen[id] == nil {
			return errors.New("ecdsa2p/config: missing public material for a party")
		}
	}
	return nil
}

// WriteTo implements io.WriterTo, so Sign can bind a signing session's
// hash transcript to this exact config, the way protocols/cmp/config
// binds a session to its own Config.
func (c *Config) WriteTo(w io.Writer) (total int64, err error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var n int64
	for _, id := range []party.ID{c.Self, c.Other} {
		n, err = id.WriteTo(w)
		total += n
		if err != nil {
			return
		}
	}
	n, err = c.Public.WriteTo(w)
	total += n
	if err != nil {
		return
	}
	return
}

// Domain implements hash.WriterToWithDomain.
func (c *Config) Domain() string {
	return "ecdsa2p Config"
}

func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"Self":           c.Self,
		"Other":          c.Other,
		"ECDSA":          c.ECDSA,
		"Public":         c.Public,
		"PaillierHolder": c.PaillierHolder,
		"Paillier":       c.Paillier,
		"PaillierPublic": c.PaillierPublic,
		"Pedersen":       c.Pedersen,
		"CKey":           c.CKey,
	})
}

// EmptyConfig returns a Config with curve-dependent fields ready to be
// the target of json.Unmarshal.
func EmptyConfig(group curve.Curve) *Config {
	return &Config{
		Group:  group,
		ECDSA:  group.NewScalar(),
		Public: group.NewPoint(),
	}
}
