// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"sync"

	"github.com/petrochain/node/blockchain/types"
)

// BlockIndex is an append-only hash -> Block map of every block the node
// has ever seen, whether it ended up on the active chain, a losing fork,
// or nowhere. Entries are never evicted.
type BlockIndex struct {
	mu     sync.RWMutex
	blocks map[string]*types.Block
}

// NewBlockIndex returns an empty index.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{blocks: make(map[string]*types.Block)}
}

// Put records b under its own hash, replacing any block already stored
// under that hash.
func (idx *BlockIndex) Put(b *types.Block) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.blocks[b.Hash] = b
}

// Get looks up a block by hash.
func (idx *BlockIndex) Get(hash string) (*types.Block, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	b, ok := idx.blocks[hash]
	return b, ok
}

// Has reports whether hash is a known block.
func (idx *BlockIndex) Has(hash string) bool {
	_, ok := idx.Get(hash)
	return ok
}

// AncestorChain walks backwards from tip through PrevHash links, using
// only blocks already present in the index, and returns the resulting
// chain in ascending (genesis-first) order. Walking stops at
// types.GenesisPrevHash or at the first ancestor the index doesn't know
// about — callers decide whether a truncated walk is still usable.
func (idx *BlockIndex) AncestorChain(tip *types.Block) []*types.Block {
	chain := []*types.Block{tip}
	ph := tip.PrevHash
	for ph != types.GenesisPrevHash {
		parent, ok := idx.Get(ph)
		if !ok {
			break
		}
		chain = append([]*types.Block{parent}, chain...)
		ph = parent.PrevHash
	}
	return chain
}
