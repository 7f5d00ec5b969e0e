// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"github.com/petrochain/node/blockchain/types"
)

// ChainFetcher asks one peer for its full chain and returns the blocks it
// reports, or an error if the peer was unreachable. Node wires this to
// p2p's CHAIN_REQUEST/CHAIN_RESPONSE exchange; the engine doesn't know
// about sockets.
type ChainFetcher func() ([]*types.Block, error)

// RunInitialSync fetches a peer's chain via fetch and adopts it if
// strictly longer than our own, then clears the syncing flag regardless
// of outcome — mirroring node.py's request_chain_sync, where a failed or
// unproductive sync still unblocks the mining loop. A nil fetch (no
// peers known) also just clears the flag.
func (e *Engine) RunInitialSync(fetch ChainFetcher) {
	defer e.SetSyncing(false)

	if fetch == nil {
		logger.Info("no peers to sync from, starting from local chain", "height", e.Height())
		return
	}

	blocks, err := fetch()
	if err != nil {
		logger.Warn("initial chain sync failed", "err", err)
		return
	}

	if e.ReplaceChain(blocks) {
		logger.Info("synced chain from peer", "height", e.Height())
	} else {
		logger.Info("peer chain was not longer than ours, keeping local chain", "height", e.Height())
	}
}
