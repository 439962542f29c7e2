// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

const (
	// bip32Seed is the seed of BIP32 test vector 1.
	bip32Seed = "000102030405060708090a0b0c0d0e0f"

	// bip32ChildXPub is the m/0' public key of BIP32 test vector 1.
	bip32ChildXPub = "xpub68Gmy5EdvgibQVfPdqkBBCHxA5htiqg55crXYuXoQRKf" +
		"DBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv5ski8PX9rL2dZXvgGDnw"

	// bip32Fingerprint is the fingerprint 3442193e of the test vector
	// master key, read as little endian.
	bip32Fingerprint = 0x3e194234
)

// testRoot returns the master key of BIP32 test vector 1.
func testRoot(t *testing.T) *hdkeychain.ExtendedKey {
	t.Helper()

	seed, err := hex.DecodeString(bip32Seed)
	require.NoError(t, err)

	root, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)

	return root
}

// TestParseDerivationPath checks parsing and formatting of textual paths.
func TestParseDerivationPath(t *testing.T) {
	t.Parallel()

	const h = hdkeychain.HardenedKeyStart

	testCases := []struct {
		name      string
		path      string
		expected  []uint32
		formatted string
		expectErr bool
	}{{
		name:      "master",
		path:      "m",
		expected:  []uint32{},
		formatted: "m",
	}, {
		name:      "bip84",
		path:      "m/84'/0'/0'/0/5",
		expected:  []uint32{h + 84, h, h, 0, 5},
		formatted: "m/84'/0'/0'/0/5",
	}, {
		name:      "h marks hardened",
		path:      "m/48h/1h/0h/2h",
		expected:  []uint32{h + 48, h + 1, h, h + 2},
		formatted: "m/48'/1'/0'/2'",
	}, {
		name:      "surrounding space",
		path:      " m/1/2 ",
		expected:  []uint32{1, 2},
		formatted: "m/1/2",
	}, {
		name:      "missing m",
		path:      "84'/0'",
		expectErr: true,
	}, {
		name:      "empty element",
		path:      "m//1",
		expectErr: true,
	}, {
		name:      "not a number",
		path:      "m/x",
		expectErr: true,
	}, {
		name:      "index too large",
		path:      "m/2147483648",
		expectErr: true,
	}, {
		name:      "negative",
		path:      "m/-1",
		expectErr: true,
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path, err := ParseDerivationPath(tc.path)
			if tc.expectErr {
				require.ErrorIs(t, err, ErrInvalidDerivationPath)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, path.Path)
			require.Zero(t, path.MasterKeyFingerprint)
			require.Equal(t, tc.formatted, path.String())
		})
	}
}

// TestDeriveKeyPair checks derivation from private and public roots.
func TestDeriveKeyPair(t *testing.T) {
	t.Parallel()

	root := testRoot(t)

	fingerprint, err := MasterKeyFingerprint(root)
	require.NoError(t, err)
	require.EqualValues(t, bip32Fingerprint, fingerprint)

	// A private root yields a signing key at the known child.
	path := []uint32{hdkeychain.HardenedKeyStart}
	key, err := DeriveKeyPair(root, path)
	require.NoError(t, err)
	require.True(t, key.HasPrivKey())

	child, err := hdkeychain.NewKeyFromString(bip32ChildXPub)
	require.NoError(t, err)
	childPub, err := child.ECPubKey()
	require.NoError(t, err)
	require.True(t, childPub.IsEqual(key.PubKey()))

	derivation, err := key.Path().UnwrapOrErr(ErrInvalidDerivationPath)
	require.NoError(t, err)
	require.Equal(t, path, derivation.Path)
	require.EqualValues(t, bip32Fingerprint, derivation.MasterKeyFingerprint)

	// The path is copied so later changes by the caller don't leak in.
	path[0] = 1
	derivation, err = key.Path().UnwrapOrErr(ErrInvalidDerivationPath)
	require.NoError(t, err)
	require.Equal(
		t, []uint32{hdkeychain.HardenedKeyStart}, derivation.Path,
	)

	// A public root yields a public-only key and can't derive hardened
	// children.
	pubRoot, err := root.Neuter()
	require.NoError(t, err)

	pubKey, err := DeriveKeyPair(pubRoot, []uint32{0, 1})
	require.NoError(t, err)
	require.False(t, pubKey.HasPrivKey())

	privKey, err := DeriveKeyPair(root, []uint32{0, 1})
	require.NoError(t, err)
	require.True(t, privKey.PubKey().IsEqual(pubKey.PubKey()))

	_, err = DeriveKeyPair(
		pubRoot, []uint32{hdkeychain.HardenedKeyStart},
	)
	require.ErrorIs(t, err, hdkeychain.ErrDeriveHardFromPublic)
}

// TestKeyPathRecord checks storing and looking up paths by script.
func TestKeyPathRecord(t *testing.T) {
	t.Parallel()

	record := NewKeyPathRecord()
	require.Zero(t, record.Len())

	script := []byte{0x00, 0x14, 0x01}
	require.True(t, record.Lookup(script).IsNone())

	path := DerivationPath{MasterKeyFingerprint: 1, Path: []uint32{1, 2}}
	record.Put(script, path)

	// Changing the caller's copy must not alter the record.
	path.Path[0] = 9

	recorded, err := record.Lookup(script).UnwrapOrErr(
		ErrInvalidDerivationPath,
	)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, recorded.Path)

	// A later put replaces the entry.
	record.Put(script, DerivationPath{Path: []uint32{3}})
	recorded, err = record.Lookup(script).UnwrapOrErr(
		ErrInvalidDerivationPath,
	)
	require.NoError(t, err)
	require.Equal(t, []uint32{3}, recorded.Path)
	require.Equal(t, 1, record.Len())
}
