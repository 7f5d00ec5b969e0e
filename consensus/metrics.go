// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"github.com/fjl/memsize"
	metrics "github.com/rcrowley/go-metrics"
)

// Metrics are this node's consensus-level counters/gauges, registered
// against go-metrics' DefaultRegistry, the way rcrowley/go-metrics is
// wired throughout klaytn's subsystems.
type Metrics struct {
	BlocksMined    metrics.Counter
	BlocksAdopted  metrics.Counter
	BlocksRejected metrics.Counter
	ForksAdopted   metrics.Counter
	ChainHeight    metrics.Gauge
}

// NewMetrics registers and returns a fresh set of consensus metrics under
// reg. Passing nil uses metrics.DefaultRegistry.
func NewMetrics(reg metrics.Registry) *Metrics {
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	return &Metrics{
		BlocksMined:    metrics.GetOrRegisterCounter("consensus/blocks_mined", reg),
		BlocksAdopted:  metrics.GetOrRegisterCounter("consensus/blocks_adopted", reg),
		BlocksRejected: metrics.GetOrRegisterCounter("consensus/blocks_rejected", reg),
		ForksAdopted:   metrics.GetOrRegisterCounter("consensus/forks_adopted", reg),
		ChainHeight:    metrics.GetOrRegisterGauge("consensus/chain_height", reg),
	}
}

// LogBlockIndexMemory scans idx's retained heap size and logs it,
// mirroring klaytn's occasional fjl/memsize diagnostics line. The
// block index is append-only and never evicted,
// so this is the one structure in the node worth watching for unbounded
// growth over a long-running session.
func (m *Metrics) LogBlockIndexMemory(idx *BlockIndex) {
	idx.mu.RLock()
	sizes := memsize.Scan(idx.blocks)
	count := len(idx.blocks)
	idx.mu.RUnlock()

	logger.Info("block index memory usage", "blocks", count, "bytes", sizes.Total, "report", sizes.Report())
}
