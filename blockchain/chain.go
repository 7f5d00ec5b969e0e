// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package blockchain owns the active Chain and its flat-file persistence,
// mirroring core/blockchain.py's role (create_genesis/add_block/save/load)
// and klaytn's storage/database conventions in spirit (a thin manager
// in front of an on-disk store), simplified to a single-JSON-file format.
package blockchain

import (
	"time"

	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/log"
)

var logger = log.NewModuleLogger(log.Blockchain)

// Chain is a non-empty ordered sequence of blocks starting at genesis
//.
type Chain struct {
	Blocks []*types.Block
}

// NewChainWithGenesis returns a fresh chain containing only a genesis
// block, stamped at clock().
func NewChainWithGenesis(clock func() time.Time) *Chain {
	g := types.NewGenesisBlock(toUnixFloat(clock()))
	return &Chain{Blocks: []*types.Block{g}}
}

// Tip returns the current chain tip.
func (c *Chain) Tip() *types.Block {
	return c.Blocks[len(c.Blocks)-1]
}

// Height is the number of blocks in the chain, including genesis.
func (c *Chain) Height() int {
	return len(c.Blocks)
}

// Append adds b to the end of the chain. Callers are responsible for
// verifying b.PrevHash == c.Tip().Hash first.
func (c *Chain) Append(b *types.Block) {
	c.Blocks = append(c.Blocks, b)
}

// Replace swaps the entire chain, used when a strictly longer fork wins
//.
func (c *Chain) Replace(blocks []*types.Block) {
	c.Blocks = blocks
}

// Valid checks that every block's prev_hash links to its predecessor's
// hash, across the whole chain.
func (c *Chain) Valid() bool {
	for i := 1; i < len(c.Blocks); i++ {
		if c.Blocks[i].PrevHash != c.Blocks[i-1].Hash {
			return false
		}
	}
	return len(c.Blocks) > 0 && c.Blocks[0].IsGenesis()
}

func toUnixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
