// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package types is the data model of the node: Transaction, Block, Chain.
package types

import (
	"fmt"
	"math/big"

	"github.com/petrochain/node/crypto"
)

// Transaction is immutable after construction.
type Transaction struct {
	SenderPK     crypto.PublicKey
	SenderAddr   string
	ReceiverAddr string
	Payload      string
	Signature    crypto.Signature
	TxID         string
}

// CanonicalMessage is the message that gets signed and hashed into the
// txid: "{sender_addr}:{receiver_addr}:{payload}".
func CanonicalMessage(senderAddr, receiverAddr, payload string) string {
	return fmt.Sprintf("%s:%s:%s", senderAddr, receiverAddr, payload)
}

// NewSignedTransaction builds and signs a transaction with the sender's
// key pair. Used for locally originated transactions.
func NewSignedTransaction(sender crypto.KeyPair, receiverAddr, payload string) (*Transaction, error) {
	senderAddr := crypto.AddressFromPublicKey(sender.Public)
	msg := CanonicalMessage(senderAddr, receiverAddr, payload)

	sig, err := crypto.Sign(msg, sender)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		SenderPK:     sender.Public,
		SenderAddr:   senderAddr,
		ReceiverAddr: receiverAddr,
		Payload:      payload,
		Signature:    sig,
		TxID:         crypto.Digest(msg),
	}, nil
}

// NewTransactionFromWire reconstructs a transaction received over gossip or
// sync, where the signature and txid arrive pre-computed and must be
// verified rather than recomputed from a local private key.
func NewTransactionFromWire(senderPK crypto.PublicKey, receiverAddr, payload string, sig crypto.Signature, txid string) *Transaction {
	return &Transaction{
		SenderPK:     senderPK,
		SenderAddr:   crypto.AddressFromPublicKey(senderPK),
		ReceiverAddr: receiverAddr,
		Payload:      payload,
		Signature:    sig,
		TxID:         txid,
	}
}

// Message reconstructs the canonical signed message for this transaction.
func (tx *Transaction) Message() string {
	return CanonicalMessage(tx.SenderAddr, tx.ReceiverAddr, tx.Payload)
}

// Verify checks the transaction's signature against its own message and
// sender public key.
func (tx *Transaction) Verify() bool {
	return crypto.Verify(tx.Message(), tx.Signature, tx.SenderPK)
}

// Wire is the JSON-serialisable form of a Transaction.
type Wire struct {
	SenderPK     [2]*big.Int `json:"sender_pk"`
	ReceiverAddr string      `json:"receiver_addr"`
	Data         string      `json:"data"`
	Signature    [2]*big.Int `json:"signature"`
	TxID         string      `json:"txid"`
}

// ToWire converts tx to its wire representation.
func (tx *Transaction) ToWire() Wire {
	return Wire{
		SenderPK:     [2]*big.Int{tx.SenderPK.X, tx.SenderPK.Y},
		ReceiverAddr: tx.ReceiverAddr,
		Data:         tx.Payload,
		Signature:    [2]*big.Int{tx.Signature.R, tx.Signature.S},
		TxID:         tx.TxID,
	}
}

// FromWire reconstructs a Transaction from its wire representation.
func FromWire(w Wire) *Transaction {
	pk := crypto.PublicKeyFromInts(w.SenderPK[0], w.SenderPK[1])
	sig := crypto.Signature{R: w.Signature[0], S: w.Signature[1]}
	return NewTransactionFromWire(pk, w.ReceiverAddr, w.Data, sig, w.TxID)
}
