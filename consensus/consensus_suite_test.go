// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package consensus

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConsensusProperties(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Consensus Behavioural Properties Suite")
}
