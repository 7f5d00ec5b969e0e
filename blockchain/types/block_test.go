// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package types

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/petrochain/node/crypto"
	"github.com/stretchr/testify/require"
)

func mustKeyPair(t *testing.T) crypto.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func mustTx(t *testing.T, payload string) *Transaction {
	t.Helper()
	kp := mustKeyPair(t)
	receiver := crypto.AddressFromPublicKey(mustKeyPair(t).Public)
	tx, err := NewSignedTransaction(kp, receiver, payload)
	require.NoError(t, err)
	return tx
}

// TestBlockHashIsPureFunctionOfFields checks that the hash depends only
// on prev_hash, merkle root and timestamp.
func TestBlockHashIsPureFunctionOfFields(t *testing.T) {
	txs := []*Transaction{mustTx(t, "a"), mustTx(t, "b")}
	b1 := NewBlock("prevhash123", txs, 1700000000.5)
	b2 := NewBlock("prevhash123", txs, 1700000000.5)

	require.Equal(t, b1.Merkle, b2.Merkle)
	require.Equal(t, b1.Hash, b2.Hash)
	require.Equal(t, b1.ComputeHash(), b1.Hash)
}

func TestBlockHashChangesWithAnyField(t *testing.T) {
	txs := []*Transaction{mustTx(t, "a")}
	base := NewBlock("prev", txs, 1700000000)

	withDifferentTimestamp := NewBlock("prev", txs, 1700000001)
	require.NotEqual(t, base.Hash, withDifferentTimestamp.Hash)

	withDifferentPrev := NewBlock("prev2", txs, 1700000000)
	require.NotEqual(t, base.Hash, withDifferentPrev.Hash)
}

func TestGenesisBlockHasFixedPrevHashAndNoTransactions(t *testing.T) {
	g := NewGenesisBlock(1700000000)
	require.True(t, g.IsGenesis())
	require.Equal(t, GenesisPrevHash, g.PrevHash)
	require.Empty(t, g.Transactions)
}

func TestBlockWireRoundTrip(t *testing.T) {
	txs := []*Transaction{mustTx(t, "100 barrels delivered")}
	b := NewBlock("prev", txs, 1700000000.25)

	wire := b.ToWire()
	back := BlockFromWire(wire)

	require.Equal(t, b.Hash, back.Hash)
	require.Equal(t, b.PrevHash, back.PrevHash)
	require.Equal(t, b.Merkle, back.Merkle)
	require.Len(t, back.Transactions, 1)
	require.True(t, back.Transactions[0].Verify())
}

func TestEmptyBlockMerkleIsNullSentinel(t *testing.T) {
	b := NewBlock("prev", nil, 1700000000)
	require.Equal(t, "", b.Merkle)
}

// TestMultiTxBlockWireRoundTripPreservesFieldOrder guards against a wire
// codec that silently reorders or drops transactions, which a plain
// require.Equal on the top-level struct can miss once fields diverge;
// spew.Sdump gives a readable diff of the whole nested structure on
// failure instead of a single opaque pointer mismatch.
func TestMultiTxBlockWireRoundTripPreservesFieldOrder(t *testing.T) {
	txs := []*Transaction{mustTx(t, "a"), mustTx(t, "b"), mustTx(t, "c")}
	b := NewBlock("prev", txs, 1700000000)

	back := BlockFromWire(b.ToWire())
	require.Len(t, back.Transactions, len(txs))
	for i, tx := range txs {
		if tx.TxID != back.Transactions[i].TxID {
			t.Fatalf("transaction order not preserved across wire round-trip\nwant: %s\ngot: %s",
				spew.Sdump(txs), spew.Sdump(back.Transactions))
		}
	}
}
