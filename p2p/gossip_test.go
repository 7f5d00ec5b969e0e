// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkSeenDetectsDuplicates(t *testing.T) {
	g := NewGossiper("127.0.0.1")

	require.False(t, g.MarkSeen("msg-1"))
	require.True(t, g.MarkSeen("msg-1"))
	require.False(t, g.MarkSeen("msg-2"))
}

func TestNextIDIsMonotonicallyUnique(t *testing.T) {
	g := NewGossiper("127.0.0.1")

	first := g.NextID(1700000000)
	second := g.NextID(1700000000)
	require.NotEqual(t, first, second)
}
