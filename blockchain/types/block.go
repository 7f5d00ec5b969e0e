// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package types

import (
	"fmt"
	"strconv"

	"github.com/petrochain/node/blockchain/merkle"
	"github.com/petrochain/node/crypto"
)

// GenesisPrevHash is the literal previous-block hash of the genesis block.
const GenesisPrevHash = "0"

// Block is immutable after construction. Hash is a pure function
// of PrevHash, Merkle and Timestamp — transactions are bound only via the
// Merkle root.
type Block struct {
	PrevHash     string
	Transactions []*Transaction
	Timestamp    float64
	Merkle       string
	Hash         string
}

// NewBlock constructs a block linking onto prevHash over the given
// transactions, stamped with the given unix timestamp (seconds, as a
// float to match the wire format).
func NewBlock(prevHash string, txs []*Transaction, timestamp float64) *Block {
	txids := make([]string, len(txs))
	for i, tx := range txs {
		txids[i] = tx.TxID
	}
	root := merkle.Root(txids)

	b := &Block{
		PrevHash:     prevHash,
		Transactions: txs,
		Timestamp:    timestamp,
		Merkle:       root,
	}
	b.Hash = b.ComputeHash()
	return b
}

// NewGenesisBlock returns the distinguished first block of a chain.
func NewGenesisBlock(timestamp float64) *Block {
	return NewBlock(GenesisPrevHash, nil, timestamp)
}

// ComputeHash is the pure function prev_hash || merkle || timestamp ->
// digest.
func (b *Block) ComputeHash() string {
	merkleField := b.Merkle
	if merkleField == merkle.NullRoot {
		merkleField = "None"
	}
	blockString := fmt.Sprintf("%s%s%s", b.PrevHash, merkleField, formatTimestamp(b.Timestamp))
	return crypto.Digest(blockString)
}

func formatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}

// IsGenesis reports whether b is a genesis block.
func (b *Block) IsGenesis() bool {
	return b.PrevHash == GenesisPrevHash && len(b.Transactions) == 0
}

// WireBlock is the JSON-serialisable form of a Block.
type WireBlock struct {
	PrevHash     string   `json:"prev_hash"`
	Timestamp    float64  `json:"timestamp"`
	Merkle       *string  `json:"merkle"`
	Hash         string   `json:"hash"`
	Transactions []Wire   `json:"transactions"`
}

// ToWire converts b to its wire representation.
func (b *Block) ToWire() WireBlock {
	wireTxs := make([]Wire, len(b.Transactions))
	for i, tx := range b.Transactions {
		wireTxs[i] = tx.ToWire()
	}
	var merklePtr *string
	if b.Merkle != merkle.NullRoot {
		m := b.Merkle
		merklePtr = &m
	}
	return WireBlock{
		PrevHash:     b.PrevHash,
		Timestamp:    b.Timestamp,
		Merkle:       merklePtr,
		Hash:         b.Hash,
		Transactions: wireTxs,
	}
}

// BlockFromWire reconstructs a Block from its wire representation,
// preserving the hash/merkle carried on the wire rather than recomputing
// them. Neither this function nor consensus.ValidateBlock checks that the
// carried hash and merkle root match the block's other fields.
func BlockFromWire(w WireBlock) *Block {
	txs := make([]*Transaction, len(w.Transactions))
	for i, wt := range w.Transactions {
		txs[i] = FromWire(wt)
	}
	merkleField := merkle.NullRoot
	if w.Merkle != nil {
		merkleField = *w.Merkle
	}
	return &Block{
		PrevHash:     w.PrevHash,
		Transactions: txs,
		Timestamp:    w.Timestamp,
		Merkle:       merkleField,
		Hash:         w.Hash,
	}
}
