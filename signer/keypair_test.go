// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/detachsign/pkg/keycrypt"
	"github.com/stretchr/testify/require"
)

// TestKeyPairKinds checks the capabilities of each kind of key pair.
func TestKeyPairKinds(t *testing.T) {
	t.Parallel()

	plain := testKey(0x20)
	privKey, err := plain.PrivKey()
	require.NoError(t, err)

	encrypted, err := EncryptPrivKey(
		privKey, []byte("pass"), keycrypt.FastParams,
	)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		key        *KeyPair
		hasPriv    bool
		encrypted  bool
		locked     bool
		privKeyErr error
	}{{
		name:    "plain",
		key:     plain,
		hasPriv: true,
	}, {
		name:       "public only",
		key:        NewPubKeyPair(plain.PubKey()),
		privKeyErr: ErrMissingSigningKey,
	}, {
		name:       "encrypted",
		key:        NewEncryptedKeyPair(plain.PubKey(), encrypted),
		hasPriv:    true,
		encrypted:  true,
		locked:     true,
		privKeyErr: ErrKeyLocked,
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.hasPriv, tc.key.HasPrivKey())
			require.Equal(t, tc.encrypted, tc.key.IsEncrypted())
			require.Equal(t, tc.locked, tc.key.Locked())
			require.True(t, tc.key.Compressed())
			require.True(t, tc.key.Path().IsNone())

			_, err := tc.key.PrivKey()
			require.ErrorIs(t, err, tc.privKeyErr)
		})
	}
}

// TestKeyPairUnlock checks unlocking and locking an encrypted key pair.
func TestKeyPairUnlock(t *testing.T) {
	t.Parallel()

	passphrase := []byte("correct horse")
	owner := testKey(0x21)
	privKey, err := owner.PrivKey()
	require.NoError(t, err)

	encrypted, err := EncryptPrivKey(
		privKey, passphrase, keycrypt.FastParams,
	)
	require.NoError(t, err)

	// Arrange: A locked key pair.
	key := NewEncryptedKeyPair(owner.PubKey(), encrypted)

	// Act: Unlock it with the wrong and then the right passphrase.
	err = key.Unlock([]byte("wrong"))
	require.ErrorIs(t, err, keycrypt.ErrInvalidPassphrase)
	require.True(t, key.Locked())

	err = key.Unlock(passphrase)
	require.NoError(t, err)

	// Assert: The private key is available until the pair is locked
	// again.
	require.False(t, key.Locked())
	unlocked, err := key.PrivKey()
	require.NoError(t, err)
	require.Equal(t, privKey.Serialize(), unlocked.Serialize())

	key.Lock()
	require.True(t, key.Locked())
	_, err = key.PrivKey()
	require.ErrorIs(t, err, ErrKeyLocked)

	// Locking a plain key pair does nothing.
	owner.Lock()
	_, err = owner.PrivKey()
	require.NoError(t, err)
}

// TestKeyPairUnlockMismatch checks that ciphertext of another key is
// refused.
func TestKeyPairUnlockMismatch(t *testing.T) {
	t.Parallel()

	passphrase := []byte("pass")
	otherPriv, err := testKey(0x22).PrivKey()
	require.NoError(t, err)

	encrypted, err := EncryptPrivKey(
		otherPriv, passphrase, keycrypt.FastParams,
	)
	require.NoError(t, err)

	key := NewEncryptedKeyPair(testKey(0x23).PubKey(), encrypted)

	err = key.Unlock(passphrase)
	require.ErrorIs(t, err, ErrKeyMismatch)
	require.True(t, key.Locked())
}

// TestKeyPairSerialization checks that the public key keeps the format the
// key was given in.
func TestKeyPairSerialization(t *testing.T) {
	t.Parallel()

	privKey, _ := btcec.PrivKeyFromBytes([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	})

	// WIF keys honor their compression flag.
	for _, compress := range []bool{true, false} {
		wif, err := btcutil.NewWIF(
			privKey, &chaincfg.RegressionNetParams, compress,
		)
		require.NoError(t, err)

		key := NewKeyPairFromWIF(wif)
		require.Equal(t, compress, key.Compressed())
		require.Equal(
			t, wif.SerializePubKey(), key.SerializedPubKey(),
		)
	}

	// Parsed public keys keep their serialization.
	uncompressed := privKey.PubKey().SerializeUncompressed()
	key, err := ParsePubKeyPair(uncompressed)
	require.NoError(t, err)
	require.False(t, key.Compressed())
	require.Equal(t, uncompressed, key.SerializedPubKey())

	_, err = ParsePubKeyPair([]byte{0x02, 0x01})
	require.Error(t, err)
}
