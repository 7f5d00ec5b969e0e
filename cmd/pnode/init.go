// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package main

import (
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/otiai10/curr"
	"gopkg.in/urfave/cli.v1"
)

var initCommand = cli.Command{
	Name:      "init",
	Usage:     "scaffold a data directory with a default config.toml",
	ArgsUsage: "<datadir>",
	Action:    initDataDir,
}

// templateDir locates node/templates relative to this source file using
// otiai10/curr, so `go install`-ed binaries and `go run` from anywhere
// still find the shipped template.
func templateDir() (string, error) {
	dir, err := curr.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "..", "..", "node", "templates"), nil
}

func initDataDir(ctx *cli.Context) error {
	target := ctx.Args().First()
	if target == "" {
		target = ctx.GlobalString(dataDirFlag.Name)
	}

	src, err := templateDir()
	if err != nil {
		return err
	}

	if err := copy.Copy(src, target); err != nil {
		return err
	}
	logger.Info("scaffolded data directory", "path", target)
	return nil
}
