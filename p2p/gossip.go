// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/atomic"
)

// defaultSeenCacheSize bounds the gossip dedup set when the caller
// doesn't size it explicitly. The original Python node used an
// unbounded set(); an ARC cache gives us the same "have I seen this
// message id" check without growing forever across a long-lived node's
// uptime.
const defaultSeenCacheSize = 4096

// Gossiper tracks which envelope ids this node has already processed or
// originated, and assigns monotonically increasing ids to messages it
// originates itself.
type Gossiper struct {
	seen    *lru.ARCCache
	counter *atomic.Int64
	host    string
}

// NewGossiper returns a Gossiper for a node identified by host, used as
// part of the ids it mints for its own outbound messages, with a
// dedup cache sized for defaultSeenCacheSize entries.
func NewGossiper(host string) *Gossiper {
	g, err := NewGossiperWithCacheSize(host, defaultSeenCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which defaultSeenCacheSize never is
	}
	return g
}

// NewGossiperWithCacheSize is NewGossiper with an explicit dedup cache
// size, used by node.New to honor Config.GossipCacheSize. A non-positive
// cacheSize falls back to defaultSeenCacheSize.
func NewGossiperWithCacheSize(host string, cacheSize int) (*Gossiper, error) {
	if cacheSize <= 0 {
		cacheSize = defaultSeenCacheSize
	}
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Gossiper{seen: cache, host: host, counter: atomic.NewInt64(0)}, nil
}

// NextID mints a fresh, locally-unique envelope id combining a
// timestamp, this node's host and a monotonic counter, mirroring
// node.py's f"{time.time()}:{self.host}:{self.msg_counter}".
func (g *Gossiper) NextID(nowUnix float64) string {
	n := g.counter.Inc()
	return fmt.Sprintf("%f:%s:%d", nowUnix, g.host, n)
}

// MarkSeen records id as seen and reports whether it was already known.
func (g *Gossiper) MarkSeen(id string) (alreadySeen bool) {
	if _, ok := g.seen.Get(id); ok {
		return true
	}
	g.seen.Add(id, struct{}{})
	return false
}
