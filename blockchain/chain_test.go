// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/crypto"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewChainWithGenesisIsValid(t *testing.T) {
	c := NewChainWithGenesis(fixedClock(time.Unix(1700000000, 0)))
	require.Equal(t, 1, c.Height())
	require.True(t, c.Valid())
	require.True(t, c.Tip().IsGenesis())
}

func TestAppendExtendsChainAndPreservesLinkage(t *testing.T) {
	c := NewChainWithGenesis(fixedClock(time.Unix(1700000000, 0)))
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	tx, err := types.NewSignedTransaction(kp, "0xbeef", "50 barrels")
	require.NoError(t, err)

	next := types.NewBlock(c.Tip().Hash, []*types.Transaction{tx}, 1700000005)
	c.Append(next)

	require.Equal(t, 2, c.Height())
	require.True(t, c.Valid())
	require.Equal(t, next, c.Tip())
}

// TestValidRejectsBrokenLinkage checks that a chain with a broken
// prev_hash link is rejected.
func TestValidRejectsBrokenLinkage(t *testing.T) {
	c := NewChainWithGenesis(fixedClock(time.Unix(1700000000, 0)))
	bogus := types.NewBlock("not-the-real-prev-hash", nil, 1700000005)
	c.Append(bogus)

	require.False(t, c.Valid())
}

func TestReplaceSwapsOutTheWholeChain(t *testing.T) {
	c := NewChainWithGenesis(fixedClock(time.Unix(1700000000, 0)))
	fork := []*types.Block{
		types.NewGenesisBlock(1700000000),
		types.NewBlock(c.Tip().Hash, nil, 1700000010),
	}
	c.Replace(fork)

	require.Equal(t, 2, c.Height())
	require.True(t, c.Valid())
}
