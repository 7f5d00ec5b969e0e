// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package node wires the signing, mempool, mining and chain-storage
// collaborators and the p2p/seed transport into a runnable process:
// configuration, component construction and the startup/shutdown
// lifecycle, mirroring gxp/config.go + node/node.go's role as a
// top-level "protocol stack" assembled once at boot and driven by
// cmd/pnode's CLI.
package node

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/naoina/toml"
	"github.com/pbnjay/memory"
	pkgerrors "github.com/pkg/errors"

	"github.com/petrochain/node/p2p"
)

// tomlSettings mirrors cmd/ranger/config.go's Config: TOML keys use the
// exact Go field names, with no case-folding or renaming.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is a single node's complete configuration, plus the two
// supplemented runtime knobs.
type Config struct {
	Host string
	Port int

	SeedList []SeedAddr `toml:",omitempty"`

	HashPower    float64
	Interarrival float64

	SeedTxCount   int
	TxGenInterval time.Duration

	DataDir string

	// MaxMsgSize bounds an inbound gossip/sync frame, expressed as a
	// human string (e.g. "4MiB") parsed with alecthomas/units in
	// node.New.
	MaxMsgSize string `toml:",omitempty"`

	// GossipCacheSize overrides the default gossip dedup LRU size. Zero
	// means "size it from system memory" (see DefaultConfig).
	GossipCacheSize int `toml:",omitempty"`

	MetricsAddr string `toml:",omitempty"`
}

// SeedAddr is the TOML-friendly form of a p2p.PeerAddr (PeerAddr itself
// carries `json:"-"` tags since it is never JSON-marshaled directly on
// the wire, only embedded in typed envelopes — see p2p/message.go).
type SeedAddr struct {
	Host string
	Port int
}

func (s SeedAddr) asPeerAddr() p2p.PeerAddr {
	return p2p.PeerAddr{Host: s.Host, Port: s.Port}
}

// SeedPeerAddrs converts cfg's configured seed list to p2p.PeerAddr.
func (cfg Config) SeedPeerAddrs() []p2p.PeerAddr {
	out := make([]p2p.PeerAddr, len(cfg.SeedList))
	for i, s := range cfg.SeedList {
		out[i] = s.asPeerAddr()
	}
	return out
}

// gossipCacheFloor and gossipCacheCeiling bound the memory-derived
// default dedup cache size so a constrained host still gets a useful
// cache and a huge host doesn't get an unreasonably large one.
const (
	gossipCacheFloor   = 1024
	gossipCacheCeiling = 65536
)

// DefaultConfig mirrors pow_miner.py's Miner defaults for hash_power and
// interarrival, and sizes the gossip dedup cache relative to total
// system memory: one entry per 64KiB of RAM, clamped to a sane range,
// rather than a single constant that's either wasteful on a big host or
// tight on a small one.
func DefaultConfig() Config {
	total := memory.TotalMemory()
	cacheSize := int(total / (64 * 1024))
	if cacheSize < gossipCacheFloor {
		cacheSize = gossipCacheFloor
	}
	if cacheSize > gossipCacheCeiling {
		cacheSize = gossipCacheCeiling
	}

	return Config{
		Host:            "0.0.0.0",
		Port:            9000,
		HashPower:       20.0,
		Interarrival:    15.0,
		SeedTxCount:     5,
		TxGenInterval:   10 * time.Second,
		DataDir:         "./petrochain-data",
		MaxMsgSize:      "4MiB",
		GossipCacheSize: cacheSize,
	}
}

// Validate rejects an unusable configuration: a node with hash_power
// outside (0,100] or a non-positive interarrival is a configuration
// error, fatal at construction — the caller (cmd/pnode) is expected to
// log.Crit on a non-nil return, which exits the process before any
// component starts.
func (cfg Config) Validate() error {
	if !(cfg.HashPower > 0 && cfg.HashPower <= 100) {
		return pkgerrors.Errorf("node: hash_power %v must be in (0, 100]", cfg.HashPower)
	}
	if cfg.Interarrival <= 0 {
		return pkgerrors.Errorf("node: interarrival %v must be positive", cfg.Interarrival)
	}
	if cfg.Port <= 0 {
		return pkgerrors.Errorf("node: port %d must be positive", cfg.Port)
	}
	return nil
}

// LoadConfigFile reads and decodes a TOML config file, per cmd/ranger's
// loadConfig.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, pkgerrors.Wrap(err, "node: open config file")
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		if _, ok := err.(*toml.LineError); ok {
			return cfg, pkgerrors.Wrap(err, path)
		}
		return cfg, pkgerrors.Wrap(err, "node: decode config file")
	}
	return cfg, nil
}

// SaveConfigFile writes cfg to path as TOML, per cmd/ranger's dumpConfig.
func SaveConfigFile(path string, cfg Config) error {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return pkgerrors.Wrap(err, "node: marshal config")
	}
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(err, "node: create config file")
	}
	defer f.Close()
	if _, err := f.Write(out); err != nil {
		return pkgerrors.Wrap(err, "node: write config file")
	}
	return nil
}
