// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package consensus orchestrates the mempool, mining timer, pending
// queue, block index and active chain into the node's consensus engine
//, grounded on network/node.py's Node class.
package consensus

import "time"

// TxPerBlock is the number of transactions drawn from the mempool for
// each mining round.
const TxPerBlock = 5

// TimestampSkewTolerance bounds how far a received block's timestamp may
// drift from the local clock before it is rejected.
const TimestampSkewTolerance = 1 * time.Hour

// Config holds the parameters an Engine needs beyond its collaborators.
type Config struct {
	HashPower    float64
	Interarrival float64
	TxPerBlock   int
}

// DefaultConfig mirrors pow_miner.py's constructor defaults.
func DefaultConfig() Config {
	return Config{
		HashPower:    20.0,
		Interarrival: 15.0,
		TxPerBlock:   TxPerBlock,
	}
}
