// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package node

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/units"
	uuid "github.com/hashicorp/go-uuid"
	"github.com/rjeczalik/notify"

	"github.com/petrochain/node/blockchain"
	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/consensus"
	"github.com/petrochain/node/crypto"
	"github.com/petrochain/node/log"
	"github.com/petrochain/node/mining"
	"github.com/petrochain/node/p2p"
	"github.com/petrochain/node/txpool"
)

var logger = log.NewModuleLogger(log.Node)

const memoryLogInterval = 5 * time.Minute

// Node is the fully wired protocol stack for one petrochain participant:
// the consensus Engine plus the transport (p2p.Server, p2p.Gossiper,
// p2p.PeerSet) and background loops (mining, liveness, tx generation)
// that drive it, mirroring node/cn.CN's role as a top-level
// service object.
type Node struct {
	Cfg      Config
	ID       string
	Identity crypto.KeyPair

	Engine *consensus.Engine
	Server *p2p.Server
	Peers  *p2p.PeerSet
	Gossip *p2p.Gossiper

	PayloadGen txpool.PayloadGenerator

	stop chan struct{}
}

// New validates cfg, loads or creates the node's on-disk state (chain
// file, identity key) under cfg.DataDir, and wires every collaborator
// together. It does not yet bind a socket or start any loop — call
// Start for that.
func New(cfg Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}

	identity, err := loadOrCreateIdentity(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	var maxMsgSize int64
	if cfg.MaxMsgSize != "" {
		parsed, err := units.ParseBase2Bytes(cfg.MaxMsgSize)
		if err != nil {
			return nil, err
		}
		maxMsgSize = int64(parsed)
	}

	clock := time.Now
	store := blockchain.NewStore(filepath.Join(cfg.DataDir, "chain.json"))
	chain := store.Load(clock)

	pool := txpool.New(txpool.DefaultMaxSize)
	miner, err := mining.NewMiner(cfg.HashPower, cfg.Interarrival)
	if err != nil {
		return nil, err
	}

	engineCfg := consensus.Config{
		HashPower:    cfg.HashPower,
		Interarrival: cfg.Interarrival,
		TxPerBlock:   consensus.TxPerBlock,
	}
	engine := consensus.NewEngine(engineCfg, chain, store, pool, miner)

	peers := p2p.NewPeerSet()
	peers.Add(cfg.SeedPeerAddrs())
	gossip, err := p2p.NewGossiperWithCacheSize(cfg.Host, cfg.GossipCacheSize)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Cfg:        cfg,
		ID:         id,
		Identity:   identity,
		Engine:     engine,
		Peers:      peers,
		Gossip:     gossip,
		PayloadGen: txpool.SupplyChainGenerator{},
		stop:       make(chan struct{}),
	}

	server := &p2p.Server{Host: cfg.Host, Port: cfg.Port, MaxMsgSize: maxMsgSize, Engine: engine, Gossip: gossip, Peers: peers}
	n.Server = server
	engine.Broadcast = n.broadcast

	return n, nil
}

// loadOrCreateIdentity loads the node's signing key pair from
// <dataDir>/identity.key, generating and persisting a fresh one if
// absent. The key file is still AES-GCM encrypted at rest, just with an
// empty default passphrase; an operator who wants a real passphrase
// calls crypto.SaveEncryptedKey/LoadEncryptedKey directly against a
// path of their choosing instead of going through New.
func loadOrCreateIdentity(dataDir string) (crypto.KeyPair, error) {
	path := filepath.Join(dataDir, "identity.key")
	if kp, err := crypto.LoadEncryptedKey(path, ""); err == nil {
		return kp, nil
	}
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return crypto.KeyPair{}, err
	}
	if err := crypto.SaveEncryptedKey(path, kp, ""); err != nil {
		return crypto.KeyPair{}, err
	}
	return kp, nil
}

// broadcast is engine's BroadcastFunc: it gossips a locally-produced or
// newly-adopted block to every known peer, minting a fresh envelope id.
func (n *Node) broadcast(b *types.Block) {
	data, err := json.Marshal(b.ToWire())
	if err != nil {
		logger.Error("failed to marshal block for gossip", "hash", b.Hash, "err", err)
		return
	}
	env := p2p.Envelope{
		ID:        n.Gossip.NextID(float64(time.Now().Unix())),
		Type:      p2p.TypeBlock,
		IP:        n.Cfg.Host,
		Port:      n.Cfg.Port,
		Timestamp: float64(time.Now().Unix()),
		Data:      data,
	}
	n.Gossip.MarkSeen(env.ID)
	n.gossipToAllPeers(env)
}

// gossipTx mints an envelope for a locally-originated transaction and
// gossips it, mirroring node.py's broadcast_transaction.
func (n *Node) gossipTx(tx *types.Transaction) {
	data, err := json.Marshal(tx.ToWire())
	if err != nil {
		logger.Error("failed to marshal transaction for gossip", "txid", tx.TxID, "err", err)
		return
	}
	env := p2p.Envelope{
		ID:        n.Gossip.NextID(float64(time.Now().Unix())),
		Type:      p2p.TypeTX,
		IP:        n.Cfg.Host,
		Port:      n.Cfg.Port,
		Timestamp: float64(time.Now().Unix()),
		Data:      data,
	}
	n.Gossip.MarkSeen(env.ID)
	n.gossipToAllPeers(env)
}

func (n *Node) gossipToAllPeers(env p2p.Envelope) {
	for _, peer := range n.Peers.All() {
		go p2p.SendGossip(peer, env)
	}
}

// Start binds the server socket, registers with the configured seeds,
// runs initial chain sync, then launches the mining loop, liveness
// loop, periodic tx generator and config-file watcher as background
// goroutines and seeds the mempool with SeedTxCount local transactions.
// It returns once all of that is done (initial sync runs synchronously);
// the background loops keep running until Stop is called.
func (n *Node) Start() error {
	if err := n.Server.Listen(); err != nil {
		return err
	}

	discovered := p2p.RegisterWithSeed(n.Cfg.Host, n.Cfg.Port, n.Cfg.SeedPeerAddrs())
	n.Peers.Add(discovered)
	logger.Info("registered with seeds", "discovered_peers", len(discovered))

	go n.Server.Serve(n.stop)

	n.Engine.RunInitialSync(n.chainFetcher())

	go n.Engine.RunMiningLoop(n.stop)
	go p2p.RunLivenessLoop(n.Cfg.Host, n.Cfg.Port, n.Peers, n.Cfg.SeedPeerAddrs(), n.stop)
	go n.runTxGenerator()
	go n.runMemoryLog()
	go n.watchConfigFile()

	if _, err := txpool.SeedInitialTransactions(n.Engine.Pool, n.Identity, n.Cfg.SeedTxCount, nil, n.PayloadGen); err != nil {
		logger.Warn("failed to seed initial transactions", "err", err)
	}

	logger.Info("node started", "id", n.ID, "host", n.Cfg.Host, "port", n.Cfg.Port)
	return nil
}

// Stop signals every background loop to exit. It does not block for
// them to finish — callers that need a clean shutdown should give the
// loops a moment before exiting the process.
func (n *Node) Stop() {
	close(n.stop)
}

// chainFetcher asks one known peer (the first in PeerSet.All's snapshot,
// whose order is not defined) for its chain, for initial sync. Returns
// nil if no peer is known.
func (n *Node) chainFetcher() consensus.ChainFetcher {
	peers := n.Peers.All()
	if len(peers) == 0 {
		return nil
	}
	peer := peers[0]
	return func() ([]*types.Block, error) {
		wire, err := p2p.RequestChain(peer)
		if err != nil {
			return nil, err
		}
		blocks := make([]*types.Block, len(wire))
		for i, w := range wire {
			blocks[i] = types.BlockFromWire(w)
		}
		return blocks, nil
	}
}

func (n *Node) runTxGenerator() {
	interval := n.Cfg.TxGenInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			tx, err := txpool.GenerateLocalTx(n.Identity, "", n.PayloadGen)
			if err != nil {
				logger.Warn("local tx generation failed", "err", err)
				continue
			}
			if n.Engine.HandleTransaction(tx) {
				n.gossipTx(tx)
			}
		}
	}
}

func (n *Node) runMemoryLog() {
	ticker := time.NewTicker(memoryLogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			n.Engine.Metrics.LogBlockIndexMemory(n.Engine.Index)
		}
	}
}

// watchConfigFile reloads the seed list from <DataDir>/config.toml (the
// file `pnode init` scaffolds) whenever it's edited on disk, using
// rjeczalik/notify in place of a polling loop, so an operator can add a
// seed without restarting the node. A config file passed with --config
// elsewhere is not watched; if <DataDir>/config.toml does not exist the
// loop returns immediately.
func (n *Node) watchConfigFile() {
	path := filepath.Join(n.Cfg.DataDir, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return
	}

	events := make(chan notify.EventInfo, 1)
	if err := notify.Watch(path, events, notify.Write); err != nil {
		logger.Warn("could not watch config file for seed-list edits", "path", path, "err", err)
		return
	}
	defer notify.Stop(events)

	for {
		select {
		case <-n.stop:
			return
		case <-events:
			reloaded, err := LoadConfigFile(path)
			if err != nil {
				logger.Warn("config file reload failed", "err", err)
				continue
			}
			n.Peers.Add(reloaded.SeedPeerAddrs())
			logger.Info("reloaded seed list from config file", "seeds", len(reloaded.SeedList))
		}
	}
}
