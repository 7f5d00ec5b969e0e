// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package crypto is the signing primitive collaborator: it produces and
// verifies a signature pair over a message given a secret/public key. The
// signature scheme itself is not mandated; this is the simplest correct
// implementation of the contract, grounded on
// original_source/core/crypto_identity.py's hand-rolled secp256k1 ECDSA,
// using a real curve implementation instead of reimplementing point math.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	pkgerrors "github.com/pkg/errors"
)

// PublicKey is the sender/receiver identity: an elliptic-curve point,
// serialised as the two big-integer coordinates the wire format
// expects ("a 2-element array of big integers").
type PublicKey struct {
	X, Y *big.Int
}

// Signature is the (r, s) pair produced by ECDSA over secp256k1.
type Signature struct {
	R, S *big.Int
}

// KeyPair is a generated identity: a private scalar and its public point.
type KeyPair struct {
	Private *big.Int
	Public  PublicKey
}

func curve() elliptic.Curve {
	return btcec.S256()
}

// GenerateKeyPair draws a fresh secp256k1 key pair.
func GenerateKeyPair() (KeyPair, error) {
	priv, x, y, err := elliptic.GenerateKey(curve(), rand.Reader)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "crypto: generate key pair")
	}
	return KeyPair{
		Private: new(big.Int).SetBytes(priv),
		Public:  PublicKey{X: x, Y: y},
	}, nil
}

// Digest returns the SHA-256 digest of msg, hex encoded. It is the digest
// primitive shared by transaction ids, block hashes, the Merkle tree and
// address derivation — original_source uses hashlib.sha256 throughout, so
// we follow suit rather than introducing a different hash family.
func Digest(msg string) string {
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])
}

// AddressFromPublicKey derives the "0x" + 4 hex chars address:
// the last 16 bits of the digest of the public key's decimal-string
// concatenation.
func AddressFromPublicKey(pk PublicKey) string {
	raw := pk.X.String() + pk.Y.String()
	digest := Digest(raw)
	return "0x" + digest[len(digest)-4:]
}

// Sign produces a signature over msg using kp's private key. ECDSA itself is delegated to
// crypto/ecdsa running over the secp256k1 curve; the (r,s) pair is what the
// wire format and the rest of the system deal with.
func Sign(msg string, kp KeyPair) (Signature, error) {
	priv := new(ecdsa.PrivateKey)
	priv.PublicKey.Curve = curve()
	priv.D = kp.Private
	priv.PublicKey.X, priv.PublicKey.Y = kp.Public.X, kp.Public.Y

	hash := sha256.Sum256([]byte(msg))
	r, s, err := ecdsa.Sign(rand.Reader, priv, hash[:])
	if err != nil {
		return Signature{}, pkgerrors.Wrap(err, "crypto: sign")
	}
	return Signature{R: r, S: s}, nil
}

// Verify reports whether signature is a valid ECDSA signature over msg
// under pk. It never panics on malformed input (e.g. nil coordinates) —
// a forged or malformed signature must verify false, not crash the caller,
// since block/tx validation treats verification failure as a routine drop.
func Verify(msg string, sig Signature, pk PublicKey) bool {
	if sig.R == nil || sig.S == nil || pk.X == nil || pk.Y == nil {
		return false
	}
	pub := &ecdsa.PublicKey{Curve: curve(), X: pk.X, Y: pk.Y}
	if !pub.Curve.IsOnCurve(pk.X, pk.Y) {
		return false
	}
	hash := sha256.Sum256([]byte(msg))
	return ecdsa.Verify(pub, hash[:], sig.R, sig.S)
}

// PublicKeyFromInts reconstructs a PublicKey from the two big-integer
// strings/numbers the wire format carries.
func PublicKeyFromInts(x, y *big.Int) PublicKey {
	return PublicKey{X: x, Y: y}
}

func (pk PublicKey) String() string {
	return fmt.Sprintf("(%s,%s)", pk.X.String(), pk.Y.String())
}
