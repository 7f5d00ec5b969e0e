// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package p2p

import "github.com/petrochain/node/log"

var logger = log.NewModuleLogger(log.P2P)
