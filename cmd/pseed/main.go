// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Command pseed runs the minimal peer bootstrap/discovery server, the
// petrochain counterpart to cmd/ranger: a small always-on process every
// participating node registers with on startup.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v1"

	"github.com/petrochain/node/log"
	"github.com/petrochain/node/seed"
)

var logger = log.NewModuleLogger(log.CmdPSeed)

var (
	hostFlag = cli.StringFlag{
		Name:  "host",
		Usage: "address to bind the seed server to",
		Value: "0.0.0.0",
	}
	portFlag = cli.IntFlag{
		Name:  "port",
		Usage: "port to bind the seed server to",
		Value: 8000,
	}
)

func run(ctx *cli.Context) error {
	host := ctx.GlobalString(hostFlag.Name)
	port := ctx.GlobalInt(portFlag.Name)

	s := seed.New(host, port)
	if err := s.Listen(); err != nil {
		return err
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(stop) }()

	select {
	case <-sig:
		logger.Info("seed server shutting down")
		close(stop)
		return nil
	case err := <-errCh:
		return err
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "pseed"
	app.Usage = "petrochain bootstrap/discovery server"
	app.Flags = []cli.Flag{hostFlag, portFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
