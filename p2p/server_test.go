// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/crypto"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	chain       []*types.Block
	txs         []*types.Transaction
	blocks      []*types.Block
	replaced    [][]*types.Block
}

func (f *fakeEngine) HandleTransaction(tx *types.Transaction) bool {
	f.txs = append(f.txs, tx)
	return true
}

func (f *fakeEngine) HandleBlock(b *types.Block) error {
	f.blocks = append(f.blocks, b)
	return nil
}

func (f *fakeEngine) Chain() []*types.Block { return f.chain }

func (f *fakeEngine) ReplaceChain(blocks []*types.Block) bool {
	f.replaced = append(f.replaced, blocks)
	return true
}

func startTestServer(t *testing.T, engine Engine) (*Server, func()) {
	t.Helper()
	srv := &Server{Host: "127.0.0.1", Port: 0, Engine: engine, Gossip: NewGossiper("127.0.0.1"), Peers: NewPeerSet()}
	require.NoError(t, srv.Listen())
	stop := make(chan struct{})
	go srv.Serve(stop)
	return srv, func() { close(stop) }
}

func dialAndWrite(t *testing.T, addr string, v interface{}) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	body, err := json.Marshal(v)
	require.NoError(t, err)
	_, err = conn.Write(body)
	require.NoError(t, err)
	return conn
}

func TestServerRespondsAliveToLiveness(t *testing.T) {
	srv, stop := startTestServer(t, &fakeEngine{})
	defer stop()

	conn := dialAndWrite(t, srv.Addr().String(), LivenessPing{Type: TypeLiveness, IP: "127.0.0.1", Port: 1234})
	defer conn.Close()

	raw, err := readJSONMessage(conn, 0)
	require.NoError(t, err)
	var pong AlivePong
	require.NoError(t, json.Unmarshal(raw, &pong))
	require.Equal(t, TypeAlive, pong.Type)
}

func TestServerRespondsToChainRequest(t *testing.T) {
	genesis := types.NewGenesisBlock(1700000000)
	engine := &fakeEngine{chain: []*types.Block{genesis}}
	srv, stop := startTestServer(t, engine)
	defer stop()

	conn := dialAndWrite(t, srv.Addr().String(), ChainRequest{Type: TypeChainRequest})
	defer conn.Close()

	raw, err := readJSONMessage(conn, 0)
	require.NoError(t, err)
	var resp ChainResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Len(t, resp.Chain, 1)
	require.Equal(t, genesis.Hash, resp.Chain[0].Hash)
}

func TestServerHandlesGossipedTransaction(t *testing.T) {
	engine := &fakeEngine{}
	srv, stop := startTestServer(t, engine)
	defer stop()

	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	tx, err := types.NewSignedTransaction(kp, "0xbeef", "100 barrels")
	require.NoError(t, err)

	data, err := json.Marshal(tx.ToWire())
	require.NoError(t, err)
	env := Envelope{ID: "tx-1", Type: TypeTX, IP: "10.0.0.5", Port: 9999, Data: data}

	conn := dialAndWrite(t, srv.Addr().String(), env)
	conn.Close()

	require.Eventually(t, func() bool { return len(engine.txs) == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, tx.TxID, engine.txs[0].TxID)
}

func TestServerHandlesGossipedBlock(t *testing.T) {
	engine := &fakeEngine{}
	srv, stop := startTestServer(t, engine)
	defer stop()

	b := types.NewGenesisBlock(1700000000)
	data, err := json.Marshal(b.ToWire())
	require.NoError(t, err)
	env := Envelope{ID: "block-1", Type: TypeBlock, IP: "10.0.0.5", Port: 9999, Data: data}

	conn := dialAndWrite(t, srv.Addr().String(), env)
	conn.Close()

	require.Eventually(t, func() bool { return len(engine.blocks) == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, b.Hash, engine.blocks[0].Hash)
}

func TestServerDropsDuplicateGossipByID(t *testing.T) {
	engine := &fakeEngine{}
	srv, stop := startTestServer(t, engine)
	defer stop()

	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	tx, err := types.NewSignedTransaction(kp, "0xbeef", "dup")
	require.NoError(t, err)
	data, err := json.Marshal(tx.ToWire())
	require.NoError(t, err)
	env := Envelope{ID: "same-id", Type: TypeTX, IP: "10.0.0.5", Port: 9999, Data: data}

	c1 := dialAndWrite(t, srv.Addr().String(), env)
	c1.Close()
	require.Eventually(t, func() bool { return len(engine.txs) == 1 }, time.Second, 10*time.Millisecond)

	c2 := dialAndWrite(t, srv.Addr().String(), env)
	c2.Close()
	time.Sleep(50 * time.Millisecond)
	require.Len(t, engine.txs, 1, "duplicate envelope id must not be processed twice")
}
