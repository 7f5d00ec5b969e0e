// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/petrochain/node/blockchain/types"
)

// Engine is the subset of consensus.Engine the p2p layer drives. Kept as
// an interface here so p2p never imports consensus (node wires the two
// together), matching klaytn's preference for narrow interfaces at
// package boundaries.
type Engine interface {
	HandleTransaction(tx *types.Transaction) bool
	HandleBlock(b *types.Block) error
	Chain() []*types.Block
	ReplaceChain(blocks []*types.Block) bool
}

// Server is the node's inbound TCP listener, handling one JSON
// request/response per connection, grounded on
// network/node.py's start_server/handle_message.
type Server struct {
	Host string
	Port int

	// MaxMsgSize bounds an inbound frame before it's even handed to the
	// JSON decoder. Zero means unlimited.
	MaxMsgSize int64

	Engine Engine
	Gossip *Gossiper
	Peers  *PeerSet
	ln     net.Listener
}

// Listen binds the server's TCP socket. Separate from Serve so callers
// can learn the bound address (useful in tests using port 0) before the
// accept loop starts.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", addrString(s.Host, s.Port))
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the server's bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until stop is closed or the listener errors.
func (s *Server) Serve(stop <-chan struct{}) error {
	go func() {
		<-stop
		s.ln.Close()
	}()

	logger.Info("listening", "host", s.Host, "port", s.Port)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
				return err
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	raw, err := readJSONMessage(conn, s.MaxMsgSize)
	if err != nil || len(raw) == 0 {
		return
	}

	var head struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return
	}

	switch head.Type {
	case TypeLiveness:
		s.replyAlive(conn)
		return
	case TypeChainRequest:
		s.replyChain(conn)
		return
	case TypeAlive:
		return
	}

	if head.ID == "" {
		return
	}
	if s.Gossip.MarkSeen(head.ID) {
		return
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.Type {
	case TypeTX:
		s.handleTx(env)
	case TypeBlock:
		s.handleBlock(env)
	case TypeChainResponse:
		s.handleChainResponse(env)
		return // chain responses are never re-gossiped
	default:
		return
	}

	s.regossip(env)
}

func (s *Server) replyAlive(conn net.Conn) {
	pong := AlivePong{Type: TypeAlive, IP: s.Host, Port: s.Port}
	body, _ := json.Marshal(pong)
	conn.Write(body)
}

func (s *Server) replyChain(conn net.Conn) {
	blocks := s.Engine.Chain()
	wire := make([]types.WireBlock, len(blocks))
	for i, b := range blocks {
		wire[i] = b.ToWire()
	}
	resp := ChainResponse{Type: TypeChainResponse, Chain: wire}
	body, _ := json.Marshal(resp)
	conn.Write(body)
}

func (s *Server) handleTx(env Envelope) {
	var wire types.Wire
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		logger.Debug("malformed TX envelope", "err", err)
		return
	}
	tx := types.FromWire(wire)
	s.Engine.HandleTransaction(tx)
}

func (s *Server) handleBlock(env Envelope) {
	var wire types.WireBlock
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		logger.Debug("malformed BLOCK envelope", "err", err)
		return
	}
	b := types.BlockFromWire(wire)
	if err := s.Engine.HandleBlock(b); err != nil {
		logger.Debug("block rejected", "hash", b.Hash, "err", err)
	}
}

func (s *Server) handleChainResponse(env Envelope) {
	blocks := make([]*types.Block, len(env.Chain))
	for i, w := range env.Chain {
		blocks[i] = types.BlockFromWire(w)
	}
	s.Engine.ReplaceChain(blocks)
}

// regossip forwards an already-deduplicated envelope to every known peer
// except the one named by the envelope's ip/port, per node.py's
// gossip(message, sender). Forwarding does not rewrite those fields, so
// they name the originating node, not necessarily the immediate sender.
func (s *Server) regossip(env Envelope) {
	sender := PeerAddr{Host: env.IP, Port: env.Port}
	for _, peer := range s.Peers.All() {
		if peer == sender {
			continue
		}
		go SendGossip(peer, env)
	}
}

// readJSONMessage reads from conn until the accumulated bytes form valid
// JSON, or the peer closes the connection, mirroring node.py's
// handle_message chunk-then-try-json.loads loop — this lets a sender
// write a single request and keep the socket open to await our
// response, rather than having to half-close after writing. maxSize
// bounds the accumulated buffer; zero means unlimited.
func readJSONMessage(conn net.Conn, maxSize int64) ([]byte, error) {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 65536)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if maxSize > 0 && int64(len(buf)) > maxSize {
				return nil, fmt.Errorf("p2p: message exceeds max size %d bytes", maxSize)
			}
			if json.Valid(buf) {
				return buf, nil
			}
		}
		if err != nil {
			if len(buf) > 0 && json.Valid(buf) {
				return buf, nil
			}
			return buf, err
		}
	}
}
