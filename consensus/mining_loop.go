// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"time"

	"github.com/petrochain/node/blockchain/types"
)

// ProcessPendingQueue applies as many queued blocks as currently fit
// onto the active chain:
//   - a block whose prev_hash is the current tip directly extends the
//     chain
//   - a block whose prev_hash is merely a KNOWN block may be the tip of
//     a fork; if walking its ancestry yields a chain strictly longer
//     than ours, we switch to it (ties are broken by first-seen: a fork
//     only EQUAL in length never displaces the incumbent)
//   - anything else (an unknown parent) is left in the queue, e.g.
//     waiting on a block that hasn't arrived yet
//
// Returns true if at least one block was applied.
func (e *Engine) ProcessPendingQueue() bool {
	processed := false

	for _, b := range e.Pending.Snapshot() {
		tipHash := e.Tip().Hash

		if b.PrevHash == tipHash {
			e.mu.Lock()
			e.chain.Append(b)
			e.persistLocked()
			e.Metrics.ChainHeight.Update(int64(e.chain.Height()))
			e.mu.Unlock()

			e.Pending.Remove(b.Hash)
			logger.Info("block appended", "hash", b.Hash, "height", e.Height())
			if e.Broadcast != nil {
				e.Broadcast(b)
			}
			processed = true
			continue
		}

		if e.Index.Has(b.PrevHash) {
			fork := e.Index.AncestorChain(b)
			if len(fork) > e.Height() {
				if e.ReplaceChain(fork) {
					e.Pending.Remove(b.Hash)
					e.Metrics.ForksAdopted.Inc(1)
					logger.Info("switched to longer fork", "hash", b.Hash, "height", len(fork))
					if e.Broadcast != nil {
						e.Broadcast(b)
					}
					processed = true
				}
			}
		}
	}

	if processed && e.Pending.Len() == 0 {
		e.Miner.Abort()
	}
	return processed
}

// RunMiningLoop drives the main mining cycle until stop is closed.
// It does not start mining until Syncing() is false. The
// generator is asked for a payload every time a locally-originated
// transaction would be needed elsewhere (node wiring); the loop itself
// only consumes whatever is already sitting in the mempool.
func (e *Engine) RunMiningLoop(stop <-chan struct{}) {
	for e.Syncing() {
		select {
		case <-stop:
			return
		case <-time.After(500 * time.Millisecond):
		}
	}

	logger.Info("mining loop started", "hash_power", e.Miner.HashPower)

	for {
		select {
		case <-stop:
			return
		default:
		}

		for e.Pending.Len() > 0 {
			e.ProcessPendingQueue()
			select {
			case <-stop:
				return
			case <-time.After(200 * time.Millisecond):
			}
		}

		if e.Pool.IsEmpty() {
			select {
			case <-stop:
				return
			case <-time.After(1 * time.Second):
			}
			continue
		}

		n := e.cfg.TxPerBlock
		if n <= 0 {
			n = TxPerBlock
		}
		txs := e.Pool.Take(n)
		if len(txs) == 0 {
			continue
		}
		logger.Info("starting mining round", "tx_count", len(txs), "pool_remaining", e.Pool.Size())

		mined := e.Miner.Mine()
		if mined {
			e.completeMiningRound(txs)
		} else {
			e.Pool.Return(txs)
			logger.Info("mining aborted, transactions returned to mempool")
		}
	}
}

// completeMiningRound builds the winning block against the CURRENT tip,
// re-read right here rather than at the moment mining started: another
// block may have been appended by the pending-queue processor while the
// miner was timing out, and building on a stale tip would immediately
// fork.
func (e *Engine) completeMiningRound(txs []*types.Transaction) {
	e.mu.Lock()
	prevHash := e.chain.Tip().Hash
	block := types.NewBlock(prevHash, txs, toUnixFloat(e.clock()))
	e.chain.Append(block)
	e.persistLocked()
	e.Metrics.ChainHeight.Update(int64(e.chain.Height()))
	e.mu.Unlock()

	e.Index.Put(block)
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.TxID
	}
	e.Pool.Remove(ids)
	e.Metrics.BlocksMined.Inc(1)

	logger.Info("block mined", "hash", block.Hash, "height", e.Height())
	if e.Broadcast != nil {
		e.Broadcast(block)
	}
}

func toUnixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
