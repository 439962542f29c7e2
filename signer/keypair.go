// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/detachsign/pkg/keycrypt"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrKeyMismatch is returned when decrypted private material does not belong
// to the public key of the key pair.
var ErrKeyMismatch = errors.New("private key does not match public key")

// KeyPair is a secp256k1 key pair supplied by the caller. It may carry a
// private key, only the public half, or a private key encrypted under a
// passphrase. An encrypted key is locked until Unlock is called.
type KeyPair struct {
	pubKey *btcec.PublicKey

	// privKey is nil for public-only and locked key pairs.
	privKey *btcec.PrivateKey

	// encPrivKey holds the keycrypt ciphertext of the private key for
	// encrypted key pairs.
	encPrivKey []byte

	// compressed selects the public key serialization used in scripts.
	compressed bool

	path fn.Option[DerivationPath]
}

// NewKeyPair returns a key pair for privKey that uses the compressed public
// key.
func NewKeyPair(privKey *btcec.PrivateKey) *KeyPair {
	return &KeyPair{
		pubKey:     privKey.PubKey(),
		privKey:    privKey,
		compressed: true,
	}
}

// NewKeyPairFromWIF returns a key pair for the private key in wif, honoring
// its compression flag.
func NewKeyPairFromWIF(wif *btcutil.WIF) *KeyPair {
	return &KeyPair{
		pubKey:     wif.PrivKey.PubKey(),
		privKey:    wif.PrivKey,
		compressed: wif.CompressPubKey,
	}
}

// NewPubKeyPair returns a public-only key pair. It identifies a signature
// slot but cannot sign.
func NewPubKeyPair(pubKey *btcec.PublicKey) *KeyPair {
	return &KeyPair{
		pubKey:     pubKey,
		compressed: true,
	}
}

// ParsePubKeyPair parses a serialized public key into a public-only key
// pair, keeping the serialization format it was given in.
func ParsePubKeyPair(serialized []byte) (*KeyPair, error) {
	pubKey, err := btcec.ParsePubKey(serialized)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		pubKey:     pubKey,
		compressed: len(serialized) == btcec.PubKeyBytesLenCompressed,
	}, nil
}

// NewEncryptedKeyPair returns a locked key pair whose private key is the
// keycrypt ciphertext encPrivKey.
func NewEncryptedKeyPair(pubKey *btcec.PublicKey,
	encPrivKey []byte) *KeyPair {

	return &KeyPair{
		pubKey:     pubKey,
		encPrivKey: append([]byte(nil), encPrivKey...),
		compressed: true,
	}
}

// EncryptPrivKey encrypts privKey under passphrase in the format accepted by
// NewEncryptedKeyPair.
func EncryptPrivKey(privKey *btcec.PrivateKey, passphrase []byte,
	params keycrypt.Params) ([]byte, error) {

	return keycrypt.Encrypt(privKey.Serialize(), passphrase, params)
}

// WithPath attaches the derivation path of the key and returns the key pair.
func (k *KeyPair) WithPath(path DerivationPath) *KeyPair {
	k.path = fn.Some(path.clone())
	return k
}

// PubKey returns the public key.
func (k *KeyPair) PubKey() *btcec.PublicKey {
	return k.pubKey
}

// SerializedPubKey returns the public key in the serialization used in
// scripts.
func (k *KeyPair) SerializedPubKey() []byte {
	if k.compressed {
		return k.pubKey.SerializeCompressed()
	}

	return k.pubKey.SerializeUncompressed()
}

// Compressed reports whether scripts use the compressed public key.
func (k *KeyPair) Compressed() bool {
	return k.compressed
}

// Path returns the derivation path of the key if it is known.
func (k *KeyPair) Path() fn.Option[DerivationPath] {
	return k.path
}

// HasPrivKey reports whether the key pair carries private material, either
// in the clear or encrypted.
func (k *KeyPair) HasPrivKey() bool {
	return k.privKey != nil || k.encPrivKey != nil
}

// IsEncrypted reports whether the private material is encrypted.
func (k *KeyPair) IsEncrypted() bool {
	return k.encPrivKey != nil
}

// Locked reports whether the key pair holds encrypted private material that
// is not currently unlocked.
func (k *KeyPair) Locked() bool {
	return k.encPrivKey != nil && k.privKey == nil
}

// PrivKey returns the private key. ErrKeyLocked is returned for a locked key
// pair and ErrMissingSigningKey for a public-only one.
func (k *KeyPair) PrivKey() (*btcec.PrivateKey, error) {
	switch {
	case k.privKey != nil:
		return k.privKey, nil

	case k.encPrivKey != nil:
		return nil, ErrKeyLocked

	default:
		return nil, ErrMissingSigningKey
	}
}

// Unlock decrypts the private key with passphrase. It is a no-op for key
// pairs that are not encrypted.
func (k *KeyPair) Unlock(passphrase []byte) error {
	if !k.Locked() {
		return nil
	}

	plaintext, err := keycrypt.Decrypt(k.encPrivKey, passphrase)
	if err != nil {
		return err
	}

	privKey, pubKey := btcec.PrivKeyFromBytes(plaintext)
	for i := range plaintext {
		plaintext[i] = 0
	}

	if !pubKey.IsEqual(k.pubKey) {
		privKey.Zero()
		return fmt.Errorf("%w: %x", ErrKeyMismatch,
			k.pubKey.SerializeCompressed())
	}

	k.privKey = privKey

	return nil
}

// Lock zeroes and forgets the decrypted private key of an encrypted key
// pair. Key pairs created from a plain private key are not affected.
func (k *KeyPair) Lock() {
	if k.encPrivKey == nil || k.privKey == nil {
		return
	}

	k.privKey.Zero()
	k.privKey = nil
}
