// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Command pnode is the CLI entrypoint for a single petrochain
// participant, mirroring cmd/kcn/main.go's app/nodeFlags/rpcFlags
// structure scaled down to this node's much smaller surface.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/petrochain/node/log"
	"github.com/petrochain/node/node"
)

var logger = log.NewModuleLogger(log.CmdPNode)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "data directory for the chain file and node identity",
		Value: "./petrochain-data",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file (see pnode init)",
	}
	hostFlag = cli.StringFlag{
		Name:  "host",
		Usage: "address to bind the p2p server to",
	}
	portFlag = cli.IntFlag{
		Name:  "port",
		Usage: "port to bind the p2p server to",
	}
	hashPowerFlag = cli.Float64Flag{
		Name:  "hashpower",
		Usage: "this node's share of network hash power, in (0, 100]",
	}
	interarrivalFlag = cli.Float64Flag{
		Name:  "interarrival",
		Usage: "mean seconds between blocks at hashpower=100",
	}
	seedFlag = cli.StringSliceFlag{
		Name:  "seed",
		Usage: "seed server address host:port (repeatable)",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "address to serve /metrics on, e.g. :9100 (empty disables it)",
	}

	nodeFlags = []cli.Flag{
		dataDirFlag,
		configFlag,
		hostFlag,
		portFlag,
		hashPowerFlag,
		interarrivalFlag,
		seedFlag,
		metricsAddrFlag,
	}
)

func loadNodeConfig(ctx *cli.Context) (node.Config, error) {
	var cfg node.Config
	var err error

	if file := ctx.GlobalString(configFlag.Name); file != "" {
		cfg, err = node.LoadConfigFile(file)
		if err != nil {
			return node.Config{}, err
		}
	} else {
		cfg = node.DefaultConfig()
	}

	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(hostFlag.Name) {
		cfg.Host = ctx.GlobalString(hostFlag.Name)
	}
	if ctx.GlobalIsSet(portFlag.Name) {
		cfg.Port = ctx.GlobalInt(portFlag.Name)
	}
	if ctx.GlobalIsSet(hashPowerFlag.Name) {
		cfg.HashPower = ctx.GlobalFloat64(hashPowerFlag.Name)
	}
	if ctx.GlobalIsSet(interarrivalFlag.Name) {
		cfg.Interarrival = ctx.GlobalFloat64(interarrivalFlag.Name)
	}
	if ctx.GlobalIsSet(metricsAddrFlag.Name) {
		cfg.MetricsAddr = ctx.GlobalString(metricsAddrFlag.Name)
	}
	for _, s := range ctx.GlobalStringSlice(seedFlag.Name) {
		addr, err := parseSeedAddr(s)
		if err != nil {
			return node.Config{}, err
		}
		cfg.SeedList = append(cfg.SeedList, addr)
	}

	return cfg, nil
}

func parseSeedAddr(s string) (node.SeedAddr, error) {
	var host string
	var port int
	if _, err := fmt.Sscanf(s, "%[^:]:%d", &host, &port); err != nil {
		return node.SeedAddr{}, fmt.Errorf("invalid seed address %q: %w", s, err)
	}
	return node.SeedAddr{Host: host, Port: port}, nil
}

func runNode(ctx *cli.Context) error {
	cfg, err := loadNodeConfig(ctx)
	if err != nil {
		logger.Crit("invalid configuration", "err", err)
		return err
	}

	n, err := node.New(cfg)
	if err != nil {
		logger.Crit("failed to construct node", "err", err)
		return err
	}

	if cfg.MetricsAddr != "" {
		go servePrometheus(cfg.MetricsAddr)
	}

	if err := n.Start(); err != nil {
		logger.Crit("failed to start node", "err", err)
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	n.Stop()
	time.Sleep(500 * time.Millisecond)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "pnode"
	app.Usage = "petrochain permissioned-network node"
	app.Flags = nodeFlags
	app.Action = runNode
	app.Commands = []cli.Command{initCommand}
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
