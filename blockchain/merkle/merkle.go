// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package merkle is the summariser: a single root digest over an ordered
// list of transaction ids, plus inclusion proofs. Ported from the
// original core/merkle.py's odd-tail duplication rule.
package merkle

import "github.com/petrochain/node/crypto"

// NullRoot is the sentinel root for an empty transaction list.
const NullRoot = ""

// HashPair hashes the textual concatenation of two hex digests, the
// building block of every level reduction.
func HashPair(a, b string) string {
	return crypto.Digest(a + b)
}

// Root computes the Merkle root over txids. An empty slice returns
// NullRoot. A single-element slice is
// still reduced once, pairing the leaf with itself — the root is
// never the bare leaf digest, even when there is only one transaction.
func Root(txids []string) string {
	if len(txids) == 0 {
		return NullRoot
	}
	level := append([]string(nil), txids...)
	for {
		level = reduceLevel(level)
		if len(level) == 1 {
			return level[0]
		}
	}
}

func reduceLevel(level []string) []string {
	next := make([]string, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		left := level[i]
		right := left
		if i+1 < len(level) {
			right = level[i+1]
		}
		next = append(next, HashPair(left, right))
	}
	return next
}

// Proof is one inclusion proof: sibling digests encountered on the path
// from a leaf to the root, together with a parity bit (true if the sibling
// sits to the right of the running hash at that level) so a verifier can
// recompute the root unambiguously.
type Proof struct {
	Siblings []string
	RightOf  []bool
}

// InclusionProof returns the proof for the leaf at index, using the same
// odd-duplication rule as Root, including the single-leaf case, where the
// "sibling" is the leaf itself.
func InclusionProof(txids []string, index int) Proof {
	var proof Proof
	level := append([]string(nil), txids...)
	idx := index
	for {
		pairIdx := idx + 1
		rightOf := false
		if idx%2 == 0 {
			if pairIdx >= len(level) {
				pairIdx = idx
			}
		} else {
			pairIdx = idx - 1
			rightOf = true
		}
		proof.Siblings = append(proof.Siblings, level[pairIdx])
		proof.RightOf = append(proof.RightOf, rightOf)
		level = reduceLevel(level)
		idx /= 2
		if len(level) == 1 {
			return proof
		}
	}
}

// VerifyProof recomputes the root from leaf and proof and compares it to
// root.
func VerifyProof(leaf string, proof Proof, root string) bool {
	current := leaf
	for i, sibling := range proof.Siblings {
		if proof.RightOf[i] {
			current = HashPair(sibling, current)
		} else {
			current = HashPair(current, sibling)
		}
	}
	return current == root
}
