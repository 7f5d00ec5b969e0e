// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"sync"

	"github.com/petrochain/node/blockchain/types"
)

// PendingQueue holds blocks that have been admitted (passed ValidateBlock)
// but not yet applied to the active chain, mirroring node.py's
// unbounded pending_queue list.
type PendingQueue struct {
	mu     sync.Mutex
	blocks []*types.Block
}

// NewPendingQueue returns an empty queue.
func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

// Enqueue appends b to the back of the queue.
func (q *PendingQueue) Enqueue(b *types.Block) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.blocks = append(q.blocks, b)
}

// Snapshot returns a shallow copy of the queue's current contents, safe
// to iterate without holding the queue's lock.
func (q *PendingQueue) Snapshot() []*types.Block {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*types.Block, len(q.blocks))
	copy(out, q.blocks)
	return out
}

// Remove drops the first queued block with the given hash, if present.
func (q *PendingQueue) Remove(hash string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, b := range q.blocks {
		if b.Hash == hash {
			q.blocks = append(q.blocks[:i], q.blocks[i+1:]...)
			return
		}
	}
}

// Len reports the number of blocks currently queued.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.blocks)
}
