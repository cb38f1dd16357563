package ecdsa2p_test

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardsign/tss-core/internal/simulate"
	"github.com/shardsign/tss-core/pkg/ecdsa"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pool"
	"github.com/shardsign/tss-core/pkg/protocol"
	"github.com/shardsign/tss-core/protocols/ecdsa2p"
)

func TestKeygenProducesMatchingPublicKey(t *testing.T) {
	group := curve.Secp256k1{}
	alice, bob := party.ID("alice"), party.ID("bob")
	pl := pool.NewPool(0)

	starts := map[party.ID]protocol.StartFunc{
		alice: ecdsa2p.Keygen(group, alice, bob, pl),
		bob:   ecdsa2p.Keygen(group, bob, alice, pl),
	}

	handlers, err := simulate.Run(starts, []byte("ecdsa2p-keygen-test"), 10)
	require.NoError(t, err)
	require.Len(t, handlers, 2)

	configs := keygenConfigs(t, handlers)

	aliceCfg, bobCfg := configs[alice], configs[bob]
	assert.True(t, aliceCfg.Public.Equal(bobCfg.Public))
	assert.NotEqual(t, aliceCfg.PaillierHolder, party.ID(""))
	assert.Equal(t, aliceCfg.PaillierHolder, bobCfg.PaillierHolder)
	assert.True(t, aliceCfg.IsPaillierHolder(aliceCfg.PaillierHolder))

	want := group.NewScalar().Set(aliceCfg.ECDSA).Add(bobCfg.ECDSA).ActOnBase()
	assert.True(t, want.Equal(aliceCfg.Public))
}

func TestSignProducesVerifiableSignature(t *testing.T) {
	group := curve.Secp256k1{}
	alice, bob := party.ID("alice"), party.ID("bob")
	pl := pool.NewPool(0)

	keygenStarts := map[party.ID]protocol.StartFunc{
		alice: ecdsa2p.Keygen(group, alice, bob, pl),
		bob:   ecdsa2p.Keygen(group, bob, alice, pl),
	}
	keygenHandlers, err := simulate.Run(keygenStarts, []byte("ecdsa2p-sign-test-keygen"), 10)
	require.NoError(t, err)
	configs := keygenConfigs(t, keygenHandlers)

	digest := sha256.Sum256([]byte("transfer 1 BTC to bob"))

	signStarts := map[party.ID]protocol.StartFunc{
		alice: ecdsa2p.Sign(configs[alice], digest[:], pl),
		bob:   ecdsa2p.Sign(configs[bob], digest[:], pl),
	}
	signHandlers, err := simulate.Run(signStarts, []byte("ecdsa2p-sign-test-sign"), 10)
	require.NoError(t, err)
	require.Len(t, signHandlers, 2)

	var signatures []*ecdsa.Signature
	for _, id := range []party.ID{alice, bob} {
		h, ok := signHandlers[id]
		require.True(t, ok)
		result, err := h.Result()
		require.NoError(t, err)
		sig, ok := result.(*ecdsa.Signature)
		require.True(t, ok)
		assert.True(t, sig.Verify(configs[id].Public, digest[:]))
		signatures = append(signatures, sig)
	}

	require.Len(t, signatures, 2)
	assert.True(t, signatures[0].R.Equal(signatures[1].R))
	assert.True(t, signatures[0].S.Equal(signatures[1].S))
}

func keygenConfigs(t *testing.T, handlers map[party.ID]*protocol.MultiHandler) map[party.ID]*ecdsa2p.Config {
	t.Helper()
	configs := make(map[party.ID]*ecdsa2p.Config, len(handlers))
	for id, h := range handlers {
		result, err := h.Result()
		require.NoError(t, err)
		cfg, ok := result.(*ecdsa2p.Config)
		require.True(t, ok)
		configs[id] = cfg
	}
	return configs
}
