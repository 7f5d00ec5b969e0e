// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeerSetAddCapsAtMaxPeers(t *testing.T) {
	s := NewPeerSet()
	var many []PeerAddr
	for i := 0; i < MaxPeers+5; i++ {
		many = append(many, PeerAddr{Host: "127.0.0.1", Port: 9000 + i})
	}

	s.Add(many)
	require.Len(t, s.All(), MaxPeers)
}

func TestPeerSetFailureCounting(t *testing.T) {
	s := NewPeerSet()
	p := PeerAddr{Host: "127.0.0.1", Port: 9100}
	s.Add([]PeerAddr{p})

	require.Equal(t, 1, s.RecordFailure(p))
	require.Equal(t, 2, s.RecordFailure(p))
	s.RecordSuccess(p)
	require.Equal(t, 1, s.RecordFailure(p))
}

func TestPeerSetRemove(t *testing.T) {
	s := NewPeerSet()
	p := PeerAddr{Host: "127.0.0.1", Port: 9200}
	s.Add([]PeerAddr{p})
	require.Len(t, s.All(), 1)

	s.Remove(p)
	require.Len(t, s.All(), 0)
}
