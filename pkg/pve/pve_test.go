package pve

import (
	"testing"

	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptVerifyDecrypt(t *testing.T) {
	group := curve.Secp256k1{}

	recipientPriv, err := randomScalar(group)
	require.NoError(t, err)
	recipientPub := recipientPriv.ActOnBase()

	x, err := randomScalar(group)
	require.NoError(t, err)
	X := x.ActOnBase()

	ct, err := Encrypt(group, recipientPub, "test-label", x)
	require.NoError(t, err)

	require.NoError(t, Verify(group, recipientPub, X, "test-label", ct))

	got, err := Decrypt(group, recipientPriv, "test-label", ct)
	require.NoError(t, err)
	assert.True(t, x.Equal(got))
}

func TestVerifyRejectsWrongLabel(t *testing.T) {
	group := curve.Secp256k1{}

	recipientPriv, err := randomScalar(group)
	require.NoError(t, err)
	recipientPub := recipientPriv.ActOnBase()

	x, err := randomScalar(group)
	require.NoError(t, err)
	X := x.ActOnBase()

	ct, err := Encrypt(group, recipientPub, "test-label", x)
	require.NoError(t, err)

	assert.Error(t, Verify(group, recipientPub, X, "wrong-label", ct))
}

func TestVerifyRejectsWrongPoint(t *testing.T) {
	group := curve.Secp256k1{}

	recipientPriv, err := randomScalar(group)
	require.NoError(t, err)
	recipientPub := recipientPriv.ActOnBase()

	x, err := randomScalar(group)
	require.NoError(t, err)

	other, err := randomScalar(group)
	require.NoError(t, err)
	wrongX := other.ActOnBase()

	ct, err := Encrypt(group, recipientPub, "test-label", x)
	require.NoError(t, err)

	assert.Error(t, Verify(group, recipientPub, wrongX, "test-label", ct))
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	group := curve.Secp256k1{}

	recipientPriv, err := randomScalar(group)
	require.NoError(t, err)
	recipientPub := recipientPriv.ActOnBase()

	wrongPriv, err := randomScalar(group)
	require.NoError(t, err)

	x, err := randomScalar(group)
	require.NoError(t, err)

	ct, err := Encrypt(group, recipientPub, "test-label", x)
	require.NoError(t, err)

	_, err = Decrypt(group, wrongPriv, "test-label", ct)
	assert.Error(t, err)
}
