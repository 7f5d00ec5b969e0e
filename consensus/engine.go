// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"sync"
	"time"

	"github.com/petrochain/node/blockchain"
	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/log"
	"github.com/petrochain/node/mining"
	"github.com/petrochain/node/txpool"
)

var logger = log.NewModuleLogger(log.Consensus)

// BroadcastFunc gossips a block (locally mined or newly applied from the
// pending queue) to peers.
// The engine is deliberately ignorant of p2p wire details; node wires a
// concrete implementation in at construction time.
type BroadcastFunc func(b *types.Block)

// Engine is the node's consensus core: it owns the active Chain, the
// block index, the pending queue, the mempool and the mining timer, and
// drives the mining loop and pending-queue processor,
// grounded on network/node.py's Node.
type Engine struct {
	cfg   Config
	clock func() time.Time

	mu    sync.Mutex // serializes all writes to chain (single-writer)
	chain *blockchain.Chain
	store *blockchain.Store

	Index   *BlockIndex
	Pending *PendingQueue
	Pool    *txpool.Pool
	Miner   *mining.Miner
	Metrics *Metrics

	Broadcast BroadcastFunc

	syncingMu sync.Mutex
	syncing   bool
}

// NewEngine wires an Engine from its collaborators. chain must already
// contain at least a genesis block (see blockchain.NewChainWithGenesis
// or Store.Load).
func NewEngine(cfg Config, chain *blockchain.Chain, store *blockchain.Store, pool *txpool.Pool, miner *mining.Miner) *Engine {
	e := &Engine{
		cfg:     cfg,
		clock:   time.Now,
		chain:   chain,
		store:   store,
		Index:   NewBlockIndex(),
		Pending: NewPendingQueue(),
		Pool:    pool,
		Miner:   miner,
		Metrics: NewMetrics(nil),
		syncing: true,
	}
	for _, b := range chain.Blocks {
		e.Index.Put(b)
	}
	e.Metrics.ChainHeight.Update(int64(chain.Height()))
	return e
}

// Syncing reports whether initial chain sync is still in progress. The
// mining loop must not start until this is false.
func (e *Engine) Syncing() bool {
	e.syncingMu.Lock()
	defer e.syncingMu.Unlock()
	return e.syncing
}

// SetSyncing flips the syncing flag, e.g. once initial sync completes.
func (e *Engine) SetSyncing(v bool) {
	e.syncingMu.Lock()
	defer e.syncingMu.Unlock()
	e.syncing = v
}

// Tip returns the current chain tip under the chain lock.
func (e *Engine) Tip() *types.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.Tip()
}

// Height returns the current chain height under the chain lock.
func (e *Engine) Height() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.Height()
}

// Chain returns a snapshot of the active chain's blocks.
func (e *Engine) Chain() []*types.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*types.Block, len(e.chain.Blocks))
	copy(out, e.chain.Blocks)
	return out
}

// ReplaceChain atomically swaps the active chain, used by initial sync
// and by gossip-driven CHAIN_RESPONSE handling, when a peer's chain is
// strictly longer than ours.
func (e *Engine) ReplaceChain(blocks []*types.Block) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(blocks) <= len(e.chain.Blocks) {
		return false
	}
	e.chain.Replace(blocks)
	for _, b := range blocks {
		e.Index.Put(b)
	}
	e.persistLocked()
	e.Metrics.ChainHeight.Update(int64(e.chain.Height()))
	return true
}

func (e *Engine) persistLocked() {
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.chain); err != nil {
		logger.Error("failed to persist chain", "err", err)
	}
}

// HandleTransaction verifies tx and admits it to the mempool. It mirrors
// node.py's _handle_tx: invalid signatures are rejected outright,
// duplicates/full-pool are silently dropped by Pool.Add.
func (e *Engine) HandleTransaction(tx *types.Transaction) bool {
	if !tx.Verify() {
		logger.Warn("rejected transaction with invalid signature", "txid", tx.TxID)
		return false
	}
	added := e.Pool.Add(tx)
	logger.Debug("transaction received", "txid", tx.TxID, "added", added, "pool_size", e.Pool.Size())
	return added
}

// HandleBlock validates an inbound block, records it in the
// index and pending queue, and aborts the current mining round if the
// block would extend a chain longer than our own.
func (e *Engine) HandleBlock(b *types.Block) error {
	tipHash := e.Tip().Hash
	if err := ValidateBlock(b, e.clock(), e.Index, tipHash); err != nil {
		e.Metrics.BlocksRejected.Inc(1)
		return err
	}

	e.Index.Put(b)
	e.Pending.Enqueue(b)
	logger.Debug("block queued", "hash", b.Hash, "pending", e.Pending.Len())

	candidateLen := len(e.Index.AncestorChain(b))
	if candidateLen > e.Height() {
		logger.Debug("longer candidate chain observed, aborting mining", "candidate_len", candidateLen)
		e.Miner.Abort()
	}
	return nil
}
