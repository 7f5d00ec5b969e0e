// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"os"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// encryptedKeyFile is the on-disk JSON representation of a passphrase
// protected node identity, in the spirit of geth/klaytn's accounts/keystore
// package (referenced, but not shipped, by klaytn's cmd/utils/nodecmd).
type encryptedKeyFile struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"ciphertext"`
}

const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// SaveEncryptedKey writes kp.Private to path, encrypted with a key derived
// from passphrase via scrypt.
func SaveEncryptedKey(path string, kp KeyPair, passphrase string) error {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return pkgerrors.Wrap(err, "keystore: salt")
	}
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return pkgerrors.Wrap(err, "keystore: derive key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return pkgerrors.Wrap(err, "keystore: cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return pkgerrors.Wrap(err, "keystore: gcm")
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return pkgerrors.Wrap(err, "keystore: nonce")
	}
	plaintext := kp.Private.Bytes()
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := encryptedKeyFile{
		Salt:       hex.EncodeToString(salt),
		Nonce:      hex.EncodeToString(nonce),
		CipherText: hex.EncodeToString(ciphertext),
	}
	data, err := json.Marshal(out)
	if err != nil {
		return pkgerrors.Wrap(err, "keystore: marshal")
	}
	return os.WriteFile(path, data, 0600)
}

// LoadEncryptedKey decrypts the private scalar stored at path and rebuilds
// the full key pair (the public point is recomputed by scalar multiplying
// the curve base point, never stored).
func LoadEncryptedKey(path string, passphrase string) (KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: read")
	}
	var in encryptedKeyFile
	if err := json.Unmarshal(data, &in); err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: unmarshal")
	}
	salt, err := hex.DecodeString(in.Salt)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: salt decode")
	}
	nonce, err := hex.DecodeString(in.Nonce)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: nonce decode")
	}
	ciphertext, err := hex.DecodeString(in.CipherText)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: ciphertext decode")
	}

	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: derive key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: gcm")
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return KeyPair{}, pkgerrors.Wrap(err, "keystore: wrong passphrase or corrupt key file")
	}

	priv := new(big.Int).SetBytes(plaintext)
	x, y := curve().ScalarBaseMult(priv.Bytes())
	return KeyPair{Private: priv, Public: PublicKey{X: x, Y: y}}, nil
}
