package keygen

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shardsign/tss-core/internal/jsontools"
	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/internal/types"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/polynomial"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/party"
	zkfac "github.com/shardsign/tss-core/pkg/zk/fac"
	zkmod "github.com/shardsign/tss-core/pkg/zk/mod"
	zkprm "github.com/shardsign/tss-core/pkg/zk/prm"
	"github.com/shardsign/tss-core/protocols/cmp/config"
)

var _ round.Round = (*Kround4)(nil)

type Kround4 struct {
	*Kround3

	// RID = ⊕ⱼ ridⱼ, the final session RID.
	RID types.RID
	// ChainKey = ⊕ⱼ cⱼ, used by BIP-32 derivation.
	ChainKey types.RID

	// ShareFrom[j] = encryption of fⱼ(i) sent to us by party j.
	ShareFrom map[party.ID]*paillier.Ciphertext
}

type Broadcast4 struct {
	round.NormalBroadcastContent
	// Mod proves Nᵢ is a product of two Blum primes.
	Mod *zkmod.Proof
	// Prm proves (Nᵢ, sᵢ, tᵢ) are well-formed Pedersen parameters.
	Prm *zkprm.Proof
}

type Message4 struct {
	round.NormalBroadcastContent
	// Share = Encᵢ(fⱼ(i)), the encryption of our share of Pⱼ's polynomial.
	Share *paillier.Ciphertext
	// Fac proves the factors of Nⱼ are large enough.
	Fac *zkfac.Proof
}

// RoundNumber implements round.Content.
func (Broadcast4) RoundNumber() round.Number { return 4 }

// RoundNumber implements round.Content.
func (Message4) RoundNumber() round.Number { return 4 }

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - verify Mⱼ proves Nⱼ is a Blum modulus.
// - verify Pⱼ proves (Nⱼ, sⱼ, tⱼ) are valid Pedersen parameters.
func (r *Kround4) StoreBroadcastMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*Broadcast4)
	if !ok || body == nil {
		fmt.Println("kr4.storebroadcastmessage: invalid content")
		return round.ErrInvalidContent
	}
	if body.Mod == nil || body.Prm == nil {
		fmt.Println("kr4.storebroadcastmessage: nil field(s) detected")
		return round.ErrNilFields
	}

	if !body.Mod.Verify(zkmod.Public{N: r.PaillierPublic[from].N()}, r.HashForID(from), r.Pool) {
		fmt.Println("kr4.storebroadcastmessage: mod proof failed")
		return errors.New("failed to validate mod proof")
	}

	if !body.Prm.Verify(zkprm.Public{Aux: r.Pedersen[from]}, r.HashForID(from), r.Pool) {
		fmt.Println("kr4.storebroadcastmessage: prm proof failed")
		return errors.New("failed to validate prm proof")
	}

	return nil
}

// VerifyMessage implements round.Round.
//
// - verify the fac proof showing Nⱼ's factors are appropriately large.
func (r *Kround4) VerifyMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*Message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Share == nil || body.Fac == nil {
		return round.ErrNilFields
	}
	if !r.PaillierPublic[r.SelfID()].ValidateCiphertexts(body.Share) {
		return errors.New("invalid ciphertext for received share")
	}

	fac := zkfac.Public{
		N:   r.PaillierPublic[from].N(),
		Aux: r.Pedersen[r.SelfID()],
	}
	if !body.Fac.Verify(fac, r.HashForID(from)) {
		return errors.New("failed to validate fac proof")
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *Kround4) StoreMessage(msg round.Message) error {
	from := msg.From
	body, ok := msg.Content.(*Message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	r.ShareFrom[from] = body.Share
	return nil
}

// Finalize implements round.Round
//
// - decrypt and verify every share we received against the sender's Fⱼ(X)
// - compute our final secret ECDSA share as the sum of all fⱼ(i)
// - compute every party's public share as Σⱼ Fⱼ(X) evaluated at their ID
// - prove knowledge of our final secret share, using the randomness
//   committed to in round 1, so the challenge binds the whole session.
func (r *Kround4) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	selfID := r.SelfID()
	group := r.Group()

	// Decrypt and check shares received from every other party against
	// their committed VSS polynomial.
	for _, j := range r.OtherPartyIDs() {
		ct := r.ShareFrom[j]
		if ct == nil {
			return r, nil, fmt.Errorf("missing share from %s", j)
		}
		dec, err := r.PaillierSecret.Dec(ct)
		if err != nil {
			return r, nil, fmt.Errorf("failed to decrypt share from %s: %w", j, err)
		}
		share := group.NewScalar().SetInt(dec)
		r.ShareReceived[j] = share

		expected := r.VSSPolynomials[j].EvaluateFor(selfID)
		if !share.ActOnBase().Equal(expected) {
			return r, nil, fmt.Errorf("share from %s is inconsistent with its VSS polynomial", j)
		}
	}

	// ECDSAᵢ = Σⱼ fⱼ(i)
	ecdsaSecret := group.NewScalar()
	for _, j := range r.PartyIDs() {
		ecdsaSecret = ecdsaSecret.Add(r.ShareReceived[j])
	}

	// F(X) = Σⱼ Fⱼ(X); evaluating at party k's ID gives k's public share.
	polys := make([]*polynomial.Exponent, 0, len(r.PartyIDs()))
	for _, j := range r.PartyIDs() {
		polys = append(polys, r.VSSPolynomials[j])
	}
	combined, err := polynomial.Sum(polys)
	if err != nil {
		return r, nil, fmt.Errorf("failed to combine VSS polynomials: %w", err)
	}

	if r.PreviousSecretECDSA != nil {
		ecdsaSecret = ecdsaSecret.Add(r.PreviousSecretECDSA)
	}

	publicShares := make(map[party.ID]curve.Point, len(r.PartyIDs()))
	for _, j := range r.PartyIDs() {
		share := combined.EvaluateFor(j)
		if prev, ok := r.PreviousPublicSharesECDSA[j]; ok && prev != nil {
			share = share.Add(prev)
		}
		publicShares[j] = share
	}

	publicInfo := make(map[party.ID]*config.Public, len(r.PartyIDs()))
	for _, j := range r.PartyIDs() {
		publicInfo[j] = &config.Public{
			ECDSA:    publicShares[j],
			ElGamal:  r.ElGamalPublic[j],
			Paillier: r.PaillierPublic[j],
			Pedersen: r.Pedersen[j],
		}
	}

	updatedConfig := &config.Config{
		Group:     group,
		ID:        selfID,
		Threshold: r.Threshold(),
		ECDSA:     ecdsaSecret,
		ElGamal:   r.ElGamalSecret,
		Paillier:  r.PaillierSecret,
		RID:       r.RID,
		ChainKey:  r.ChainKey,
		Public:    publicInfo,
	}

	schnorrResponse := r.SchnorrRand.Prove(group, r.HashForID(selfID), updatedConfig.Public[selfID].ECDSA, ecdsaSecret)

	out = r.BroadcastMessage(out, &Broadcast5{SchnorrResponse: schnorrResponse})

	return &Kround5{
		Kround4:       r,
		UpdatedConfig: updatedConfig,
	}, out, nil
}

// PreviousRound implements round.Round.
func (r *Kround4) PreviousRound() round.Round { return r.Kround3 }

// MessageContent implements round.Round.
func (Kround4) MessageContent() round.Content { return &Message4{} }

// BroadcastContent implements round.BroadcastRound.
func (Kround4) BroadcastContent() round.BroadcastContent { return &Broadcast4{} }

// Number implements round.Round.
func (Kround4) Number() round.Number { return 4 }

func (r Kround4) MarshalJSON() ([]byte, error) {
	shareFrom := make(map[party.ID][]byte)
	for id, ct := range r.ShareFrom {
		b, e := ct.MarshalBinary()
		if e != nil {
			return nil, e
		}
		shareFrom[id] = b
	}

	mr4, e := json.Marshal(map[string]interface{}{
		"RID":       r.RID,
		"ChainKey":  r.ChainKey,
		"ShareFrom": shareFrom,
	})
	if e != nil {
		fmt.Println(e)
		return nil, e
	}
	r3, e := json.Marshal(r.Kround3)
	if e != nil {
		fmt.Println(e)
		return nil, e
	}
	return jsontools.JoinJSON(mr4, r3)
}

func (r *Kround4) UnmarshalJSON(j []byte) error {
	var tmp map[string]json.RawMessage
	if err := json.Unmarshal(j, &tmp); err != nil {
		fmt.Println("kr4 unmarshal failed @ tmp:", err)
		return err
	}

	var r3 *Kround3
	if err := json.Unmarshal(j, &r3); err != nil {
		fmt.Println("kr4 unmarshal failed @ r3:", err)
		return err
	}
	r.Kround3 = r3

	var rid types.RID
	if err := json.Unmarshal(tmp["RID"], &rid); err != nil {
		fmt.Println("kr4 unmarshal failed @ rid:", err)
		return err
	}
	r.RID = rid

	var chainKey types.RID
	if err := json.Unmarshal(tmp["ChainKey"], &chainKey); err != nil {
		fmt.Println("kr4 unmarshal failed @ chainkey:", err)
		return err
	}
	r.ChainKey = chainKey

	shareFromBytes := make(map[party.ID][]byte)
	if err := json.Unmarshal(tmp["ShareFrom"], &shareFromBytes); err != nil {
		fmt.Println("kr4 unmarshal failed @ sharefrom:", err)
		return err
	}
	shareFrom := make(map[party.ID]*paillier.Ciphertext)
	for id, b := range shareFromBytes {
		ct := &paillier.Ciphertext{}
		if err := ct.UnmarshalBinary(b); err != nil {
			fmt.Println("kr4 unmarshal failed @ sharefrom range:", err)
			return err
		}
		shareFrom[id] = ct
	}
	r.ShareFrom = shareFrom

	return nil
}

func (b Broadcast4) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"Mod": b.Mod,
		"Prm": b.Prm,
	})
}

func (b *Broadcast4) UnmarshalJSON(j []byte) error {
	var tmp map[string]json.RawMessage
	if e := json.Unmarshal(j, &tmp); e != nil {
		fmt.Println("Broadcast4 unmarshal failed @ tmp:", e)
		return e
	}

	var mod *zkmod.Proof
	if e := json.Unmarshal(tmp["Mod"], &mod); e != nil {
		fmt.Println("Broadcast4 unmarshal failed @ mod:", e)
		return e
	}

	var prm *zkprm.Proof
	if e := json.Unmarshal(tmp["Prm"], &prm); e != nil {
		fmt.Println("Broadcast4 unmarshal failed @ prm:", e)
		return e
	}

	b.Mod = mod
	b.Prm = prm
	return nil
}

func (m Message4) MarshalJSON() ([]byte, error) {
	shareBytes, e := m.Share.MarshalBinary()
	if e != nil {
		return nil, e
	}
	return json.Marshal(map[string]interface{}{
		"Share": shareBytes,
		"Fac":   m.Fac,
	})
}

func (m *Message4) UnmarshalJSON(j []byte) error {
	var tmp map[string]json.RawMessage
	if e := json.Unmarshal(j, &tmp); e != nil {
		fmt.Println("Message4 unmarshal failed @ tmp:", e)
		return e
	}

	var shareBytes []byte
	if e := json.Unmarshal(tmp["Share"], &shareBytes); e != nil {
		fmt.Println("Message4 unmarshal failed @ share:", e)
		return e
	}
	share := &paillier.Ciphertext{}
	if e := share.UnmarshalBinary(shareBytes); e != nil {
		fmt.Println("Message4 unmarshal failed @ share:", e)
		return e
	}

	var fac *zkfac.Proof
	if e := json.Unmarshal(tmp["Fac"], &fac); e != nil {
		fmt.Println("Message4 unmarshal failed @ fac:", e)
		return e
	}

	m.Share = share
	m.Fac = fac
	return nil
}
