// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"fmt"
	"sync"
)

// MaxPeers bounds how many peers a node keeps from the seed's registration
// response, matching node.py's set(list(all_peers)[:4]).
const MaxPeers = 4

// PeerSet is a thread-safe bag of known peer (host, port) addresses, plus
// consecutive-liveness-failure counters per peer.
type PeerSet struct {
	mu       sync.Mutex
	peers    map[string]PeerAddr
	failures map[string]int
}

// NewPeerSet returns an empty peer set.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		peers:    make(map[string]PeerAddr),
		failures: make(map[string]int),
	}
}

func key(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// Add admits peer addresses up to MaxPeers, ignoring any past that.
func (s *PeerSet) Add(peers []PeerAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range peers {
		if len(s.peers) >= MaxPeers {
			return
		}
		s.peers[key(p.Host, p.Port)] = p
	}
}

// All returns a snapshot of currently known peers.
func (s *PeerSet) All() []PeerAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PeerAddr, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p)
	}
	return out
}

// RecordSuccess resets a peer's consecutive-failure counter.
func (s *PeerSet) RecordSuccess(p PeerAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key(p.Host, p.Port)] = 0
}

// RecordFailure increments a peer's consecutive-failure counter and
// returns the new count.
func (s *PeerSet) RecordFailure(p PeerAddr) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(p.Host, p.Port)
	s.failures[k]++
	return s.failures[k]
}

// Remove drops a peer, e.g. once it's been declared dead.
func (s *PeerSet) Remove(p PeerAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(p.Host, p.Port)
	delete(s.peers, k)
	delete(s.failures, k)
}
