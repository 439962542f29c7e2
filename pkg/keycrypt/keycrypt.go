// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keycrypt encrypts private key material under a passphrase with
// snacl. The ciphertext is the marshalled snacl secret key parameters
// followed by the sealed payload, so it can be opened without any other
// state.
package keycrypt

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcwallet/snacl"
)

const (
	// paramsLen is the length of marshalled snacl parameters: salt,
	// passphrase digest and the three scrypt costs as uint64s.
	paramsLen = snacl.KeySize + sha256.Size + 3*8

	// maxN caps the scrypt cost accepted from a ciphertext.
	maxN = 1 << 20
)

var (
	// ErrInvalidPassphrase is returned when the ciphertext cannot be
	// opened with the given passphrase.
	ErrInvalidPassphrase = snacl.ErrInvalidPassword

	// ErrMalformedCiphertext is returned when the ciphertext is truncated,
	// corrupted or carries invalid scrypt parameters.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Params are the scrypt cost parameters used to derive the encryption key.
type Params struct {
	// N is the CPU/memory cost. It must be a power of two greater than 1.
	N int

	// R is the block size.
	R int

	// P is the parallelization factor.
	P int
}

var (
	// DefaultParams are the scrypt parameters used for keys that are
	// stored or exchanged.
	DefaultParams = Params{N: 262144, R: 8, P: 1}

	// FastParams are cheap scrypt parameters meant for tests only.
	FastParams = Params{N: 16, R: 8, P: 1}
)

// validate checks that the parameters are accepted by scrypt and fall within
// the bounds we are willing to decrypt with.
func (p Params) validate() error {
	if p.N <= 1 || p.N > maxN || p.N&(p.N-1) != 0 {
		return fmt.Errorf("%w: scrypt N=%d", ErrMalformedCiphertext,
			p.N)
	}
	if p.R <= 0 || p.P <= 0 || uint64(p.R)*uint64(p.P) >= 1<<30 {
		return fmt.Errorf("%w: scrypt r=%d p=%d",
			ErrMalformedCiphertext, p.R, p.P)
	}

	return nil
}

// Encrypt seals plaintext under passphrase using the given scrypt
// parameters.
func Encrypt(plaintext, passphrase []byte, params Params) ([]byte, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	secretKey, err := snacl.NewSecretKey(
		&passphrase, params.N, params.R, params.P,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to derive key: %w", err)
	}
	defer secretKey.Zero()

	sealed, err := secretKey.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("unable to encrypt: %w", err)
	}

	return append(secretKey.Marshal(), sealed...), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func Decrypt(ciphertext, passphrase []byte) ([]byte, error) {
	if len(ciphertext) < paramsLen {
		return nil, ErrMalformedCiphertext
	}

	var secretKey snacl.SecretKey
	if err := secretKey.Unmarshal(ciphertext[:paramsLen]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	params := Params{
		N: secretKey.Parameters.N,
		R: secretKey.Parameters.R,
		P: secretKey.Parameters.P,
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	// The passphrase digest is checked here, so a failure to open the box
	// afterwards means the payload itself is damaged.
	if err := secretKey.DeriveKey(&passphrase); err != nil {
		return nil, err
	}
	defer secretKey.Zero()

	plaintext, err := secretKey.Decrypt(ciphertext[paramsLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	return plaintext, nil
}
