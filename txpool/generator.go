// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package txpool

import (
	"fmt"
	"math/rand"

	"github.com/petrochain/node/blockchain/types"
	"github.com/petrochain/node/crypto"
)

// PayloadGenerator produces transaction payload strings. It is a
// pluggable collaborator: a node is free to swap in a
// different generator, the pool itself only knows how to store and
// order signed transactions.
type PayloadGenerator interface {
	Generate() string
}

// supplyChainTemplates are the parameterised petroleum supply-chain events,
// ported from core/mempool.py's _SUPPLY_CHAIN_TEMPLATES/_random_tx_data.
var supplyChainTemplates = []string{
	"Exploration permit issued for Block-%d in %s",
	"Seismic survey completed at %s: %dk barrels estimated",
	"Well #%d spudded at %s",
	"Well #%d production started: %d bbl/day",
	"Crude extraction report: %d barrels extracted at %s",
	"Pipeline shipment #%d: %d barrels from %s to %s",
	"Tanker MT-%d loaded: %d barrels crude, departing %s",
	"Tanker MT-%d arrived at %s: %d barrels unloaded",
	"Pipeline integrity check #%d: status PASS",
	"Storage tank T-%d filled to %d%% capacity at %s",
	"Refinery %s intake: %d barrels crude (grade %s)",
	"Refinery %s output: %s - %d barrels",
	"Quality certificate QC-%d issued for %s batch",
	"Fuel delivery %d liters of %s to %s",
	"Export clearance XP-%d: %d barrels to %s",
	"Invoice INV-%d: %d bbl @ $%.2f/bbl from %s to %s",
	"Payment confirmed: $%d for INV-%d",
	"Letter of credit LC-%d opened for $%d",
	"Royalty payment: $%d to government for Q%d",
	"Carbon offset purchase: %d tonnes CO2 credit",
}

var (
	fields     = []string{"Ghawar", "Prudhoe Bay", "Cantarell", "North Sea", "Permian Basin"}
	refineries = []string{"RefineCo Alpha", "PetroRefine Beta", "Gulf Refinery", "Delta Refinery"}
	ports      = []string{"Port Rashid", "Ras Tanura", "Rotterdam", "Houston Ship Channel"}
	products   = []string{"Gasoline-95", "Diesel B5", "Jet-A1", "Heavy Fuel Oil", "Naphtha"}
	grades     = []string{"Brent", "WTI", "Dubai", "Arab Light"}
	hubs       = []string{"Cushing Hub", "Fujairah Hub", "ARA Hub"}
	stations   = []string{"PetroGas Sta-7", "QuickFuel Sta-12", "EnergyMart Sta-3"}
	sellers    = []string{"UpstreamCo", "OilMajor", "Aramco LLC"}
	buyers     = []string{"RefineGroup", "FuelTrader", "GovOilDesk"}
	dests      = []string{"China", "India", "EU", "Japan"}
)

func pick(xs []string) string {
	return xs[rand.Intn(len(xs))]
}

// SupplyChainGenerator is the default PayloadGenerator, producing a
// realistic-looking petroleum supply-chain event string for every call,
// matching the variety of the original's template set.
type SupplyChainGenerator struct{}

// Generate returns one randomly chosen, randomly filled supply-chain
// event description. The specific formatting per template mirrors the
// original's named placeholders closely enough to preserve the flavour
// of the dataset without depending on its exact field set.
func (SupplyChainGenerator) Generate() string {
	switch rand.Intn(20) {
	case 0:
		return fmt.Sprintf(supplyChainTemplates[0], rand.Intn(99)+1, pick(fields))
	case 1:
		return fmt.Sprintf(supplyChainTemplates[1], pick(fields), rand.Intn(50000-100)+100)
	case 2:
		return fmt.Sprintf(supplyChainTemplates[2], rand.Intn(900)+100, pick(fields))
	case 3:
		return fmt.Sprintf(supplyChainTemplates[3], rand.Intn(900)+100, rand.Intn(50000-100)+100)
	case 4:
		return fmt.Sprintf(supplyChainTemplates[4], rand.Intn(50000-100)+100, pick(fields))
	case 5:
		return fmt.Sprintf(supplyChainTemplates[5], rand.Intn(9000)+1000, rand.Intn(50000-100)+100, pick(fields), pick(refineries))
	case 6:
		return fmt.Sprintf(supplyChainTemplates[6], rand.Intn(900)+100, rand.Intn(50000-100)+100, pick(ports))
	case 7:
		return fmt.Sprintf(supplyChainTemplates[7], rand.Intn(900)+100, pick(ports), rand.Intn(50000-100)+100)
	case 8:
		return fmt.Sprintf(supplyChainTemplates[8], rand.Intn(900)+100)
	case 9:
		return fmt.Sprintf(supplyChainTemplates[9], rand.Intn(20)+1, rand.Intn(95-20)+20, pick(hubs))
	case 10:
		return fmt.Sprintf(supplyChainTemplates[10], pick(refineries), rand.Intn(50000-100)+100, pick(grades))
	case 11:
		return fmt.Sprintf(supplyChainTemplates[11], pick(refineries), pick(products), rand.Intn(50000-100)+100)
	case 12:
		return fmt.Sprintf(supplyChainTemplates[12], rand.Intn(900)+100, pick(products))
	case 13:
		return fmt.Sprintf(supplyChainTemplates[13], rand.Intn(50000-100)+100, pick(products), pick(stations))
	case 14:
		return fmt.Sprintf(supplyChainTemplates[14], rand.Intn(9000)+1000, rand.Intn(50000-100)+100, pick(dests))
	case 15:
		return fmt.Sprintf(supplyChainTemplates[15], rand.Intn(90000)+10000, rand.Intn(50000-100)+100,
			60+rand.Float64()*(110-60), pick(sellers), pick(buyers))
	case 16:
		return fmt.Sprintf(supplyChainTemplates[16], rand.Intn(5000000-10000)+10000, rand.Intn(90000)+10000)
	case 17:
		return fmt.Sprintf(supplyChainTemplates[17], rand.Intn(9000)+1000, rand.Intn(5000000-10000)+10000)
	case 18:
		return fmt.Sprintf(supplyChainTemplates[18], rand.Intn(5000000-10000)+10000, rand.Intn(4)+1)
	default:
		return fmt.Sprintf(supplyChainTemplates[19], rand.Intn(5000-50)+50)
	}
}

// GenerateLocalTx creates and signs one transaction using sender's
// keypair, with a freshly generated throw-away receiver address unless
// receiverAddr is given.
func GenerateLocalTx(sender crypto.KeyPair, receiverAddr string, gen PayloadGenerator) (*types.Transaction, error) {
	if receiverAddr == "" {
		throwaway, err := crypto.GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		receiverAddr = crypto.AddressFromPublicKey(throwaway.Public)
	}
	payload := gen.Generate()
	return types.NewSignedTransaction(sender, receiverAddr, payload)
}

// SeedInitialTransactions populates a pool with count locally-generated
// transactions at node startup, optionally directing some at known peer
// addresses in
// round-robin fashion.
func SeedInitialTransactions(pool *Pool, sender crypto.KeyPair, count int, partnerAddresses []string, gen PayloadGenerator) ([]*types.Transaction, error) {
	seeded := make([]*types.Transaction, 0, count)
	for i := 0; i < count; i++ {
		var addr string
		if len(partnerAddresses) > 0 {
			addr = partnerAddresses[i%len(partnerAddresses)]
		}
		tx, err := GenerateLocalTx(sender, addr, gen)
		if err != nil {
			return seeded, err
		}
		pool.Add(tx)
		seeded = append(seeded, tx)
		logger.Debug("seeded tx", "txid", tx.TxID, "payload", tx.Payload)
	}
	return seeded, nil
}
