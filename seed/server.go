// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package seed implements the minimal bootstrap/discovery server,
// grounded on network/seed.py.
package seed

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/petrochain/node/log"
)

var logger = log.NewModuleLogger(log.Seed)

// peerRecord is one registered node, tagged with a server-local id for
// diagnostics (the wire format itself only ever needs host/port).
type peerRecord struct {
	ID         string
	Host       string
	Port       int
	Registered time.Time
}

// Server is a minimal peer registry: nodes send their (host, port) as a
// JSON object over a plain TCP connection and
// get back the full known peer list, mirroring seed.py's global `peers`
// set and handle_client.
type Server struct {
	Host string
	Port int

	mu    sync.Mutex
	peers map[string]peerRecord
	ln    net.Listener
}

// New returns a seed server bound to host:port once Listen is called.
func New(host string, port int) *Server {
	return &Server{Host: host, Port: port, peers: make(map[string]peerRecord)}
}

func key(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// Listen binds the server's TCP socket.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.Host, s.Port))
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the server's bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve accepts connections until stop is closed.
func (s *Server) Serve(stop <-chan struct{}) error {
	go func() {
		<-stop
		s.ln.Close()
	}()

	logger.Info("seed server listening", "host", s.Host, "port", s.Port)
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
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}
	data := string(buf[:n])

	if strings.HasPrefix(data, "Dead Node") {
		logger.Warn("dead node report", "report", data)
		return
	}

	var reg struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}
	if err := json.Unmarshal([]byte(data), &reg); err != nil {
		return
	}

	s.register(reg.Host, reg.Port)

	resp := s.peerPairs()
	body, err := json.Marshal(resp)
	if err != nil {
		return
	}
	conn.Write(body)
}

func (s *Server) register(host string, port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := uuid.NewV4()
	idStr := ""
	if err == nil {
		idStr = id.String()
	}
	s.peers[key(host, port)] = peerRecord{ID: idStr, Host: host, Port: port, Registered: time.Now()}
}

// peerPairs returns every registered peer as a [host, port] pair, the
// wire shape seed.py's list(peers) JSON-encodes to.
func (s *Server) peerPairs() [][2]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]interface{}, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, [2]interface{}{p.Host, p.Port})
	}
	return out
}

// Peers returns a snapshot of currently registered peers, for
// diagnostics and tests.
func (s *Server) Peers() []peerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]peerRecord, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p)
	}
	return out
}
