// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package types

import (
	"testing"

	"github.com/petrochain/node/crypto"
	"github.com/stretchr/testify/require"
)

func TestNewSignedTransactionVerifies(t *testing.T) {
	sender := mustKeyPair(t)
	receiver := crypto.AddressFromPublicKey(mustKeyPair(t).Public)

	tx, err := NewSignedTransaction(sender, receiver, "100 barrels delivered")
	require.NoError(t, err)
	require.True(t, tx.Verify())
	require.Equal(t, crypto.AddressFromPublicKey(sender.Public), tx.SenderAddr)
}

func TestIdenticalTransactionsShareATxID(t *testing.T) {
	// Same sender/receiver/payload deliberately yields the same txid — an
	// acknowledged dedup-by-content behaviour.
	sender := mustKeyPair(t)
	receiver := "0xbeef"

	tx1, err := NewSignedTransaction(sender, receiver, "identical payload")
	require.NoError(t, err)
	tx2, err := NewSignedTransaction(sender, receiver, "identical payload")
	require.NoError(t, err)

	require.Equal(t, tx1.TxID, tx2.TxID)
}

// TestForgedSignatureFailsVerify checks that a transaction whose signature
// was produced over its own message by a different key pair fails
// verification.
func TestForgedSignatureFailsVerify(t *testing.T) {
	sender := mustKeyPair(t)
	impostor := mustKeyPair(t)
	receiver := "0xbeef"

	tx, err := NewSignedTransaction(sender, receiver, "1000 barrels extracted")
	require.NoError(t, err)

	forgedSig, err := crypto.Sign(tx.Message(), impostor)
	require.NoError(t, err)
	tx.Signature = forgedSig

	require.False(t, tx.Verify())
}

func TestTransactionWireRoundTrip(t *testing.T) {
	sender := mustKeyPair(t)
	tx, err := NewSignedTransaction(sender, "0xbeef", "Pipeline shipment #1: 500 barrels")
	require.NoError(t, err)

	back := FromWire(tx.ToWire())
	require.Equal(t, tx.TxID, back.TxID)
	require.True(t, back.Verify())
}
