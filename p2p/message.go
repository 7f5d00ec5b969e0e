// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package p2p implements the node's wire protocol: JSON over
// TCP, one request/response per connection, grounded on
// network/node.py's socket handling.
package p2p

import (
	"encoding/json"

	"github.com/petrochain/node/blockchain/types"
)

// Message type discriminators for the gossip envelope.
const (
	TypeTX            = "TX"
	TypeBlock         = "BLOCK"
	TypeLiveness      = "LIVENESS"
	TypeAlive         = "ALIVE"
	TypeChainRequest  = "CHAIN_REQUEST"
	TypeChainResponse = "CHAIN_RESPONSE"
)

// PeerAddr is a (host, port) pair, the unit peers are tracked and
// gossiped by.
type PeerAddr struct {
	Host string `json:"-"`
	Port int    `json:"-"`
}

// RegisterRequest is what a node sends a seed on startup.
type RegisterRequest struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// PeerPair is the wire form of a PeerAddr: a 2-element [host, port]
// array, matching the Python seed server's list(peers) JSON encoding.
type PeerPair [2]interface{}

// Envelope wraps gossiped TX/BLOCK payloads with routing metadata.
// Data is left as raw JSON so the handler can decode it according to
// Type without a two-pass unmarshal.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	IP        string          `json:"ip"`
	Port      int             `json:"port"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Chain     []types.WireBlock `json:"chain,omitempty"`
}

// LivenessPing is the payload of a LIVENESS probe.
type LivenessPing struct {
	Type string  `json:"type"`
	IP   string  `json:"ip"`
	Port int     `json:"port"`
	Time float64 `json:"time"`
}

// AlivePong is the reply to a LIVENESS probe.
type AlivePong struct {
	Type string `json:"type"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// ChainRequest asks a peer for its full chain.
type ChainRequest struct {
	Type string `json:"type"`
}

// ChainResponse carries a peer's full chain.
type ChainResponse struct {
	Type  string            `json:"type"`
	Chain []types.WireBlock `json:"chain"`
}

// TxEnvelopeData is the Data payload of a TX envelope.
type TxEnvelopeData = types.Wire

// BlockEnvelopeData is the Data payload of a BLOCK envelope.
type BlockEnvelopeData = types.WireBlock

// deadNodePrefix is the raw (non-JSON) liveness-failure report format
// sent to seeds: "Dead Node:<host>:<port>:<time>:<reporter>".
const deadNodePrefix = "Dead Node"
