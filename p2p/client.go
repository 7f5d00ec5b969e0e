// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/petrochain/node/blockchain/types"
)

// Timeouts for the node's various outbound connections.
const (
	GossipTimeout   = 3 * time.Second
	SyncTimeout     = 10 * time.Second
	RegisterTimeout = 5 * time.Second
	LivenessTimeout = 3 * time.Second
)

func dial(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	conn.SetDeadline(time.Now().Add(timeout))
	return conn, nil
}

func addrString(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// roundTrip writes req to addr, then reads and unmarshals the peer's
// response into resp. If resp is nil, the response body is discarded —
// used for fire-and-forget sends like gossip.
func roundTrip(host string, port int, timeout time.Duration, req interface{}, resp interface{}) error {
	conn, err := dial(addrString(host, port), timeout)
	if err != nil {
		return pkgerrors.Wrapf(err, "p2p: dial %s:%d", host, port)
	}
	defer conn.Close()

	body, err := json.Marshal(req)
	if err != nil {
		return pkgerrors.Wrap(err, "p2p: marshal request")
	}
	if _, err := conn.Write(body); err != nil {
		return pkgerrors.Wrapf(err, "p2p: write to %s:%d", host, port)
	}

	if resp == nil {
		return nil
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return pkgerrors.Wrapf(err, "p2p: read from %s:%d", host, port)
	}
	if len(raw) == 0 {
		return pkgerrors.Errorf("p2p: empty response from %s:%d", host, port)
	}
	return json.Unmarshal(raw, resp)
}

// RegisterWithSeed registers self with every seed in seedList and merges
// all returned peer addresses, up to MaxPeers, per node.py's
// register_with_seed.
func RegisterWithSeed(selfHost string, selfPort int, seedList []PeerAddr) []PeerAddr {
	var all []PeerAddr
	seen := make(map[string]bool)
	for _, seed := range seedList {
		var pairs []PeerPair
		req := RegisterRequest{Host: selfHost, Port: selfPort}
		if err := roundTrip(seed.Host, seed.Port, RegisterTimeout, req, &pairs); err != nil {
			logger.Warn("seed unreachable", "seed", seed, "err", err)
			continue
		}
		for _, pair := range pairs {
			host, _ := pair[0].(string)
			portF, _ := pair[1].(float64)
			port := int(portF)
			if host == selfHost && port == selfPort {
				continue
			}
			k := addrString(host, port)
			if seen[k] {
				continue
			}
			seen[k] = true
			all = append(all, PeerAddr{Host: host, Port: port})
			if len(all) >= MaxPeers {
				return all
			}
		}
	}
	return all
}

// SendGossip delivers an already-built envelope to peer, best-effort —
// a failed send is logged and swallowed, matching node.py's gossip()
// (which silently passes on any exception).
func SendGossip(peer PeerAddr, envelope Envelope) {
	if err := roundTrip(peer.Host, peer.Port, GossipTimeout, envelope, nil); err != nil {
		logger.Debug("gossip send failed", "peer", peer, "err", err)
	}
}

// RequestChain asks peer for its full chain, for initial sync.
func RequestChain(peer PeerAddr) ([]types.WireBlock, error) {
	var resp ChainResponse
	req := ChainRequest{Type: TypeChainRequest}
	if err := roundTrip(peer.Host, peer.Port, SyncTimeout, req, &resp); err != nil {
		return nil, err
	}
	return resp.Chain, nil
}

// Ping sends a LIVENESS probe to peer and reports whether it answered
// within LivenessTimeout.
func Ping(selfHost string, selfPort int, peer PeerAddr) bool {
	ping := LivenessPing{Type: TypeLiveness, IP: selfHost, Port: selfPort, Time: float64(time.Now().Unix())}
	var pong AlivePong
	err := roundTrip(peer.Host, peer.Port, LivenessTimeout, ping, &pong)
	return err == nil
}

// ReportDeadNode tells seed that peer has failed enough liveness checks
// to be considered dead, using the raw non-JSON wire format:
// "Dead Node:<host>:<port>:<time>:<reporter>".
func ReportDeadNode(seed PeerAddr, dead PeerAddr, reporterHost string) {
	conn, err := dial(addrString(seed.Host, seed.Port), LivenessTimeout)
	if err != nil {
		logger.Debug("dead-node report failed", "seed", seed, "err", err)
		return
	}
	defer conn.Close()

	msg := fmt.Sprintf("%s:%s:%d:%f:%s", deadNodePrefix, dead.Host, dead.Port, float64(time.Now().Unix()), reporterHost)
	if _, err := conn.Write([]byte(msg)); err != nil {
		logger.Debug("dead-node report write failed", "seed", seed, "err", err)
	}
}
