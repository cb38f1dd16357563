package simulate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shardsign/tss-core/internal/simulate"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/pool"
	"github.com/shardsign/tss-core/pkg/protocol"
	"github.com/shardsign/tss-core/protocols/cmp"
	"github.com/shardsign/tss-core/protocols/cmp/config"
)

func TestRunDrivesCMPKeygenToCompletion(t *testing.T) {
	group := curve.Secp256k1{}
	ids := []party.ID{"a", "b", "c"}
	threshold := 1
	pl := pool.NewPool(0)

	starts := make(map[party.ID]protocol.StartFunc, len(ids))
	for _, id := range ids {
		starts[id] = cmp.Keygen(group, id, ids, threshold, pl)
	}

	handlers, err := simulate.Run(starts, []byte("simulate-test"), 20)
	require.NoError(t, err)
	require.Len(t, handlers, len(ids))

	var publicKey curve.Point
	for _, id := range ids {
		h, ok := handlers[id]
		require.True(t, ok)
		result, err := h.Result()
		require.NoError(t, err)
		cfg, ok := result.(*config.Config)
		require.True(t, ok)
		assert.Equal(t, id, cfg.ID)

		if publicKey == nil {
			publicKey = cfg.PublicPoint()
		} else {
			assert.True(t, publicKey.Equal(cfg.PublicPoint()))
		}
	}
}
