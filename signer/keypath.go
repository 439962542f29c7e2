// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrInvalidDerivationPath is returned when a textual derivation path cannot
// be parsed.
var ErrInvalidDerivationPath = errors.New("invalid derivation path")

// DerivationPath locates a key within a BIP32 tree.
type DerivationPath struct {
	// MasterKeyFingerprint is the fingerprint of the root the path starts
	// at, encoded the way BIP174 stores it.
	MasterKeyFingerprint uint32

	// Path is the list of child indexes from the root to the key. Hardened
	// indexes include hdkeychain.HardenedKeyStart.
	Path []uint32
}

// String returns the path in the usual m/84'/0'/0'/0/1 notation.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range p.Path {
		b.WriteByte('/')
		if idx >= hdkeychain.HardenedKeyStart {
			b.WriteString(strconv.FormatUint(
				uint64(idx-hdkeychain.HardenedKeyStart), 10,
			))
			b.WriteByte('\'')

			continue
		}
		b.WriteString(strconv.FormatUint(uint64(idx), 10))
	}

	return b.String()
}

// clone returns a deep copy of the path.
func (p DerivationPath) clone() DerivationPath {
	return DerivationPath{
		MasterKeyFingerprint: p.MasterKeyFingerprint,
		Path:                 append([]uint32(nil), p.Path...),
	}
}

// ParseDerivationPath parses a path such as m/48'/0'/0'/2'/0/1. Both ' and h
// mark hardened indexes. The fingerprint of the result is left zero.
func ParseDerivationPath(s string) (DerivationPath, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return DerivationPath{}, fmt.Errorf("%w: %q must start with m",
			ErrInvalidDerivationPath, s)
	}

	path := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") ||
			strings.HasSuffix(part, "h")
		if hardened {
			part = part[:len(part)-1]
		}

		idx, err := strconv.ParseUint(part, 10, 32)
		if err != nil || idx >= hdkeychain.HardenedKeyStart {
			return DerivationPath{}, fmt.Errorf("%w: bad index %q "+
				"in %q", ErrInvalidDerivationPath, part, s)
		}

		if hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		path = append(path, uint32(idx))
	}

	return DerivationPath{Path: path}, nil
}

// MasterKeyFingerprint returns the BIP32 fingerprint of the given root key
// in the little endian form BIP174 uses.
func MasterKeyFingerprint(root *hdkeychain.ExtendedKey) (uint32, error) {
	pubKey, err := root.ECPubKey()
	if err != nil {
		return 0, err
	}

	fingerprint := btcutil.Hash160(pubKey.SerializeCompressed())[:4]

	return binary.LittleEndian.Uint32(fingerprint), nil
}

// DeriveKeyPair derives the key at path below root and returns it as a key
// pair that remembers where it came from. The root is treated as the master
// key when computing the fingerprint. A public root yields a public-only key
// pair.
func DeriveKeyPair(root *hdkeychain.ExtendedKey,
	path []uint32) (*KeyPair, error) {

	fingerprint, err := MasterKeyFingerprint(root)
	if err != nil {
		return nil, err
	}

	key := root
	for _, idx := range path {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("unable to derive child %d: %w",
				idx, err)
		}
	}

	derivation := DerivationPath{
		MasterKeyFingerprint: fingerprint,
		Path:                 append([]uint32(nil), path...),
	}

	if !key.IsPrivate() {
		pubKey, err := key.ECPubKey()
		if err != nil {
			return nil, err
		}

		return NewPubKeyPair(pubKey).WithPath(derivation), nil
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return NewKeyPair(privKey).WithPath(derivation), nil
}

// KeyPathRecord maps output scripts to the derivation path of the key used
// to sign them, so co-signers working on copies of the same transaction can
// pick matching keys without exchanging private material.
//
// NOTE: The record is not safe for concurrent use. It lives for the duration
// of a single signing call.
type KeyPathRecord struct {
	paths map[string]DerivationPath
}

// NewKeyPathRecord returns an empty record.
func NewKeyPathRecord() *KeyPathRecord {
	return &KeyPathRecord{
		paths: make(map[string]DerivationPath),
	}
}

// Put records path for pkScript, replacing any earlier entry.
func (r *KeyPathRecord) Put(pkScript []byte, path DerivationPath) {
	r.paths[string(pkScript)] = path.clone()
}

// Lookup returns the path recorded for pkScript, if any.
func (r *KeyPathRecord) Lookup(pkScript []byte) fn.Option[DerivationPath] {
	path, ok := r.paths[string(pkScript)]
	if !ok {
		return fn.None[DerivationPath]()
	}

	return fn.Some(path.clone())
}

// Len returns the number of recorded scripts.
func (r *KeyPathRecord) Len() int {
	return len(r.paths)
}
