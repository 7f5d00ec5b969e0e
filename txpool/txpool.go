// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package txpool implements the node's mempool:
// a bounded, FIFO, insertion-ordered pool of unconfirmed transactions,
// grounded on core/mempool.py's Mempool class.
package txpool

import (
	"sync"

	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/log"
)

var logger = log.NewModuleLogger(log.TxPool)

// DefaultMaxSize is the default pool capacity, matching the original's
// max_size=500 default.
const DefaultMaxSize = 500

// Pool is a thread-safe, FIFO, bounded transaction pool. A map keyed by
// txid does not preserve insertion order on its own, so order is tracked
// separately in orderedIDs (containers here favor explicit
// slices over relying on map iteration order, and Go map iteration order
// is unspecified anyway).
type Pool struct {
	mu         sync.Mutex
	byID       map[string]*types.Transaction
	orderedIDs []string
	maxSize    int
}

// New returns an empty pool bounded at maxSize. A non-positive maxSize
// falls back to DefaultMaxSize.
func New(maxSize int) *Pool {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Pool{
		byID:    make(map[string]*types.Transaction),
		maxSize: maxSize,
	}
}

// Add admits tx into the pool. It returns false, silently, for either a
// duplicate txid or a pool already at capacity — there is no
// fee-priority eviction, matching the original's behaviour.
func (p *Pool) Add(tx *types.Transaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byID[tx.TxID]; exists {
		return false
	}
	if len(p.byID) >= p.maxSize {
		return false
	}
	p.byID[tx.TxID] = tx
	p.orderedIDs = append(p.orderedIDs, tx.TxID)
	return true
}

// Take removes and returns up to n transactions in FIFO (insertion) order,
// for inclusion in a block about to be mined.
func (p *Pool) Take(n int) []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n > len(p.orderedIDs) {
		n = len(p.orderedIDs)
	}
	selected := make([]*types.Transaction, 0, n)
	for i := 0; i < n; i++ {
		id := p.orderedIDs[i]
		selected = append(selected, p.byID[id])
		delete(p.byID, id)
	}
	p.orderedIDs = p.orderedIDs[n:]
	return selected
}

// Peek returns a non-destructive, FIFO-ordered snapshot of the pool.
func (p *Pool) Peek() []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*types.Transaction, 0, len(p.orderedIDs))
	for _, id := range p.orderedIDs {
		out = append(out, p.byID[id])
	}
	return out
}

// Remove purges the given txids, e.g. after a block carrying them is
// committed. Unknown txids are ignored.
func (p *Pool) Remove(txids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(txids) == 0 {
		return
	}
	drop := make(map[string]bool, len(txids))
	for _, id := range txids {
		drop[id] = true
		delete(p.byID, id)
	}
	kept := p.orderedIDs[:0:0]
	for _, id := range p.orderedIDs {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	p.orderedIDs = kept
}

// Return reinserts txs at the back of the FIFO order, preserving their
// original relative order. Used when an armed mining round is aborted:
// transactions drafted for the abandoned block rejoin the pool behind
// anything already sitting there, even though those were added later.
func (p *Pool) Return(txs []*types.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, tx := range txs {
		if _, exists := p.byID[tx.TxID]; exists {
			continue
		}
		p.byID[tx.TxID] = tx
		p.orderedIDs = append(p.orderedIDs, tx.TxID)
	}
}

// Size reports the current pool occupancy.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.orderedIDs)
}

// IsEmpty reports whether the pool currently holds no transactions.
func (p *Pool) IsEmpty() bool {
	return p.Size() == 0
}
