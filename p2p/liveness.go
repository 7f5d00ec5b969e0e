// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import "time"

// LivenessInterval is how often peers are probed, matching node.py's
// liveness_loop sleep(13).
const LivenessInterval = 13 * time.Second

// DeadNodeThreshold is the number of consecutive liveness failures
// before a peer is reported dead and dropped.
const DeadNodeThreshold = 3

// RunLivenessLoop probes every known peer every LivenessInterval until
// stop is closed. A peer failing DeadNodeThreshold consecutive probes is
// reported to every seed and removed from peers.
func RunLivenessLoop(selfHost string, selfPort int, peers *PeerSet, seedList []PeerAddr, stop <-chan struct{}) {
	ticker := time.NewTicker(LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, peer := range peers.All() {
				if Ping(selfHost, selfPort, peer) {
					peers.RecordSuccess(peer)
					continue
				}
				fails := peers.RecordFailure(peer)
				logger.Warn("liveness check failed", "peer", peer, "consecutive_failures", fails)
				if fails >= DeadNodeThreshold {
					logger.Warn("peer declared dead", "peer", peer)
					for _, seed := range seedList {
						ReportDeadNode(seed, peer, selfHost)
					}
					peers.Remove(peer)
				}
			}
		}
	}
}
