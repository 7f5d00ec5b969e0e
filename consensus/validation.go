// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"fmt"
	"math"
	"time"

	"github.com/petrochain/node/blockchain/types"
)

// ValidateBlock checks block admissibility:
//  1. timestamp within TimestampSkewTolerance of now
//  2. every transaction's signature verifies
//  3. prev_hash is either the current tip or already known in the index
//     (a genesis block is exempt from this check)
func ValidateBlock(b *types.Block, now time.Time, index *BlockIndex, tipHash string) error {
	if err := validateTimestamp(b, now); err != nil {
		return err
	}
	if err := validateTransactionSignatures(b); err != nil {
		return err
	}
	if b.PrevHash != tipHash && !index.Has(b.PrevHash) && !b.IsGenesis() {
		return errBlockf("prev_hash %q is neither the chain tip nor a known block", b.PrevHash)
	}
	return nil
}

func validateTimestamp(b *types.Block, now time.Time) error {
	nowSeconds := float64(now.UnixNano()) / 1e9
	if math.Abs(b.Timestamp-nowSeconds) > TimestampSkewTolerance.Seconds() {
		return errBlockf("timestamp %.0f out of range of now=%.0f", b.Timestamp, nowSeconds)
	}
	return nil
}

func validateTransactionSignatures(b *types.Block) error {
	for _, tx := range b.Transactions {
		if !tx.Verify() {
			return errBlockf("transaction %s has an invalid signature", tx.TxID)
		}
	}
	return nil
}

func errBlockf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
