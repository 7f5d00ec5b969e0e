// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"testing"

	"github.com/petrochain/node/blockchain/types"
	"github.com/stretchr/testify/require"
)

func TestBlockIndexPutAndGet(t *testing.T) {
	idx := NewBlockIndex()
	b := types.NewGenesisBlock(1700000000)

	require.False(t, idx.Has(b.Hash))
	idx.Put(b)
	require.True(t, idx.Has(b.Hash))

	got, ok := idx.Get(b.Hash)
	require.True(t, ok)
	require.Equal(t, b.Hash, got.Hash)
}

func TestAncestorChainWalksBackToGenesis(t *testing.T) {
	idx := NewBlockIndex()
	genesis := types.NewGenesisBlock(1700000000)
	b1 := types.NewBlock(genesis.Hash, nil, 1700000010)
	b2 := types.NewBlock(b1.Hash, nil, 1700000020)
	idx.Put(genesis)
	idx.Put(b1)
	idx.Put(b2)

	chain := idx.AncestorChain(b2)
	require.Len(t, chain, 3)
	require.Equal(t, genesis.Hash, chain[0].Hash)
	require.Equal(t, b1.Hash, chain[1].Hash)
	require.Equal(t, b2.Hash, chain[2].Hash)
}

func TestAncestorChainStopsAtFirstUnknownAncestor(t *testing.T) {
	idx := NewBlockIndex()
	orphan := types.NewBlock("some-hash-never-indexed", nil, 1700000010)
	idx.Put(orphan)

	chain := idx.AncestorChain(orphan)
	require.Len(t, chain, 1)
	require.Equal(t, orphan.Hash, chain[0].Hash)
}
