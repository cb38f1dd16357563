package sign

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/shardsign/tss-core/internal/jsontools"
	"github.com/shardsign/tss-core/internal/round"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/paillier"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pedersen"
	zkenc "github.com/shardsign/tss-core/pkg/zk/enc"
)

var _ round.Round = (*Sround1)(nil)

type Sround1 struct {
	*round.Helper

	PublicKey curve.Point

	SecretECDSA    curve.Scalar
	SecretPaillier *paillier.SecretKey
	Paillier       map[party.ID]*paillier.PublicKey
	Pedersen       map[party.ID]*pedersen.Parameters
	ECDSA          map[party.ID]curve.Point

	Message []byte
}

// VerifyMessage implements round.Round.
func (Sround1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (Sround1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample káµ¢, Î³áµ¢ <- ð”½,
// - Î“áµ¢ = [Î³áµ¢]â‹…G
// - Gáµ¢ = Encáµ¢(Î³áµ¢;Î½áµ¢)
// - Káµ¢ = Encáµ¢(káµ¢;Ïáµ¢)
//
// NOTE
// The protocol instructs us to broadcast Káµ¢ and Gáµ¢, but the protocol we implement
// cannot handle identify aborts since we are in a point to point model.
// We do as described in [LN18].
//
// In the next round, we send a hash of all the {Kâ±¼,Gâ±¼}â±¼.
// In two rounds, we compare the hashes received and if they are different then we abort.
func (r *Sround1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	// Î³áµ¢ <- ð”½,
	// Î“áµ¢ = [Î³áµ¢]â‹…G
	GammaShare, BigGammaShare := sample.ScalarPointPair(rand.Reader, r.Group())
	// Gáµ¢ = Encáµ¢(Î³áµ¢;Î½áµ¢)
	G, GNonce := r.Paillier[r.SelfID()].Enc(curve.MakeInt(GammaShare))

	// káµ¢ <- ð”½,
	KShare := sample.Scalar(rand.Reader, r.Group())
	// Káµ¢ = Encáµ¢(káµ¢;Ïáµ¢)
	K, KNonce := r.Paillier[r.SelfID()].Enc(curve.MakeInt(KShare))

	otherIDs := r.OtherPartyIDs()
	broadcastMsg := broadcast2{K: K, G: G}
	out = r.BroadcastMessage(out, &broadcastMsg)
	errors := r.Pool.Parallelize(len(otherIDs), func(i int) interface{} {
		j := otherIDs[i]
		proof := zkenc.NewProof(r.Group(), r.HashForID(r.SelfID()), zkenc.Public{
			K:      K,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zkenc.Private{
			K:   curve.MakeInt(KShare),
			Rho: KNonce,
		})

		out = r.SendMessage(out, &message2{
			ProofEnc: proof,
		}, j)
		return nil
	})
	for _, err := range errors {
		if err != nil {
			return r, nil, err.(error)
		}
	}

	return &Sround2{
		Sround1:       r,
		K:             map[party.ID]*paillier.Ciphertext{r.SelfID(): K},
		G:             map[party.ID]*paillier.Ciphertext{r.SelfID(): G},
		BigGammaShare: map[party.ID]curve.Point{r.SelfID(): BigGammaShare},
		GammaShare:    curve.MakeInt(GammaShare),
		KShare:        KShare,
		KNonce:        KNonce,
		GNonce:        GNonce,
	}, out, nil
}

// MessageContent implements round.Round.
func (Sround1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (Sround1) Number() round.Number { return 1 }

func (r *Sround1) MarshalJSON() ([]byte, error) {
	h, e := r.Helper.MarshalJSON()
	if e != nil {
		fmt.Println("sr1 marshal failed @ helper:", e)
		return nil, e
	}
	publicKeyBytes, e := r.PublicKey.MarshalBinary()
	if e != nil {
		return nil, e
	}
	secretEcdsaBytes, e := r.SecretECDSA.MarshalBinary()
	if e != nil {
		return nil, e
	}
	ecdsaBytes := make(map[party.ID][]byte, len(r.ECDSA))
	for id, pt := range r.ECDSA {
		b, e := pt.MarshalBinary()
		if e != nil {
			return nil, e
		}
		ecdsaBytes[id] = b
	}

	r1, e := json.Marshal(map[string]interface{}{
		"PublicKey":      publicKeyBytes,
		"SecretECDSA":    secretEcdsaBytes,
		"SecretPaillier": r.SecretPaillier,
		"Paillier":       r.Paillier,
		"Pedersen":       r.Pedersen,
		"ECDSA":          ecdsaBytes,
		"Message":        r.Message,
	})
	if e != nil {
		fmt.Println("sr1 marshal failed @ r1:", e)
		return nil, e
	}
	return jsontools.JoinJSON(r1, h)
}

func (r *Sround1) UnmarshalJSON(j []byte) error {
	var tmp map[string]json.RawMessage
	if err := json.Unmarshal(j, &tmp); err != nil {
		fmt.Println("sr1 unmarshal failed @ tmp:", err)
		return err
	}

	group := curve.Secp256k1{}

	var publicKeyBytes []byte
	if err := json.Unmarshal(tmp["PublicKey"], &publicKeyBytes); err != nil {
		fmt.Println("sr1 unmarshal failed @ publickey:", err)
		return err
	}
	publickey := group.NewPoint()
	if err := publickey.UnmarshalBinary(publicKeyBytes); err != nil {
		fmt.Println("sr1 unmarshal failed @ publickey:", err)
		return err
	}

	var secretEcdsaBytes []byte
	if err := json.Unmarshal(tmp["SecretECDSA"], &secretEcdsaBytes); err != nil {
		fmt.Println("sr1 unmarshal failed @ secretEcdsa:", err)
		return err
	}
	secretEcdsa := group.NewScalar()
	if err := secretEcdsa.UnmarshalBinary(secretEcdsaBytes); err != nil {
		fmt.Println("sr1 unmarshal failed @ secretEcdsa:", err)
		return err
	}

	var pailliersecret *paillier.SecretKey
	if err := json.Unmarshal(tmp["SecretPaillier"], &pailliersecret); err != nil {
		fmt.Println("sr1 unmarshal failed @ pailliersecret:", err)
		return err
	}

	pailliers := make(map[party.ID]*paillier.PublicKey)
	if err := json.Unmarshal(tmp["Paillier"], &pailliers); err != nil {
		fmt.Println("sr1 unmarshal failed @ pailliers:", err)
		return err
	}

	pedersens := make(map[party.ID]*pedersen.Parameters)
	if err := json.Unmarshal(tmp["Pedersen"], &pedersens); err != nil {
		fmt.Println("sr1 unmarshal failed @ pedersens:", err)
		return err
	}

	ecdsas := make(map[party.ID]curve.Point)
	ecdsaBytes := make(map[party.ID][]byte)
	if err := json.Unmarshal(tmp["ECDSA"], &ecdsaBytes); err != nil {
		fmt.Println("sr1 unmarshal failed @ ecdsaBytes:", err)
		return err
	}
	for k, b := range ecdsaBytes {
		pt := group.NewPoint()
		if err := pt.UnmarshalBinary(b); err != nil {
			fmt.Println("sr1 unmarshal failed @ ecdsaBytes range:", err)
			return err
		}
		ecdsas[k] = pt
	}

	var message []byte
	if err := json.Unmarshal(tmp["Message"], &message); err != nil {
		fmt.Println("sr1 unmarshal failed @ message:", err)
		return err
	}

	var h *round.Helper
	if err := json.Unmarshal(j, &h); err != nil {
		fmt.Println("kr1 unmarshal failed @ h:", err)
		return err
	}
	r.Helper = h
	r.Info = h.Info
	r.Pool = h.Pool
	r.OtherPartyIDsSlice = h.OtherPartyIDsSlice
	r.PartyIDsSlice = h.PartyIDsSlice
	r.Ssid = h.Ssid

	r.PublicKey = publickey
	r.SecretECDSA = secretEcdsa
	r.SecretPaillier = pailliersecret
	r.Paillier = pailliers
	r.Pedersen = pedersens
	r.ECDSA = ecdsas
	r.Message = message
	return nil
}
