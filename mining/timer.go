// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

// Package mining implements the per-node stochastic proof-of-work timer
//, grounded on mining/pow_miner.py's Miner.
package mining

import (
	"math/rand"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/petrochain/node/log"
)

var logger = log.NewModuleLogger(log.Mining)

// State is a mining round's position in the IDLE -> ARMED -> {MINED,
// ABORTED} state machine.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateMined
	StateAborted
)

// Outcome records why the most recently armed round ended.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeMined    Outcome = "mined"
	OutcomeAborted  Outcome = "aborted"
)

// pollInterval bounds how often an armed round re-checks for an abort
// signal, matching the original's 100ms threading.Event poll.
const pollInterval = 100 * time.Millisecond

// Miner draws an exponential wait time for each mining round and blocks
// until either that time elapses (a block is "found") or Abort is
// called from another goroutine (a longer chain arrived over the
// network). Sampler, Now and Sleep are overridable for deterministic
// tests; left nil they default to a real exponential draw and wall
// clock.
type Miner struct {
	HashPower    float64
	Interarrival float64

	Sampler func(lambda float64) float64
	Now     func() time.Time
	Sleep   func(time.Duration)

	mu             sync.Mutex
	abortRequested bool
	state          State
	lastLambda     float64
	lastTau        float64
	lastOutcome    Outcome
}

// NewMiner validates parameters and returns a Miner in state IDLE.
func NewMiner(hashPower, interarrival float64) (*Miner, error) {
	if !(hashPower > 0 && hashPower <= 100) {
		return nil, pkgerrors.New("mining: hash_power must be in (0, 100]")
	}
	if interarrival <= 0 {
		return nil, pkgerrors.New("mining: interarrival must be positive")
	}
	return &Miner{HashPower: hashPower, Interarrival: interarrival}, nil
}

// Lambda is this node's share of the network-wide mining rate:
// (hash_power * mean_Tk) / 100, where mean_Tk = 1 / interarrival.
func (m *Miner) Lambda() float64 {
	meanTk := 1.0 / m.Interarrival
	return (m.HashPower * meanTk) / 100.0
}

func (m *Miner) sampleWaitTime(lambda float64) float64 {
	if m.Sampler != nil {
		return m.Sampler(lambda)
	}
	return rand.ExpFloat64() / lambda
}

// Mine arms a new round: draws tau ~ Exponential(lambda) and blocks until
// either tau elapses (returns true, state MINED) or Abort is called
// (returns false, state ABORTED). Any abort signalled
// against a PREVIOUS round is discarded here: the flag is cleared at the
// START of this round, not the end of the last one.
func (m *Miner) Mine() bool {
	m.mu.Lock()
	m.abortRequested = false
	m.state = StateArmed
	lambda := m.Lambda()
	tau := m.sampleWaitTime(lambda)
	m.lastLambda = lambda
	m.lastTau = tau
	m.mu.Unlock()

	logger.Debug("mining round armed", "lambda", lambda, "tau", tau, "hash_power", m.HashPower)

	now := m.Now
	if now == nil {
		now = time.Now
	}
	sleep := m.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	deadline := now().Add(time.Duration(tau * float64(time.Second)))
	for {
		if m.isAborted() {
			m.finish(StateAborted, OutcomeAborted)
			logger.Debug("mining round aborted")
			return false
		}
		remaining := deadline.Sub(now())
		if remaining <= 0 {
			m.finish(StateMined, OutcomeMined)
			logger.Debug("mining round found a block", "tau", tau)
			return true
		}
		wait := pollInterval
		if remaining < wait {
			wait = remaining
		}
		sleep(wait)
	}
}

func (m *Miner) isAborted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.abortRequested
}

func (m *Miner) finish(state State, outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.lastOutcome = outcome
}

// Abort signals the current round to stop at the next poll. Safe to call
// from any goroutine, any number of times (idempotent).
func (m *Miner) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortRequested = true
}

// State returns the miner's current position in the state machine.
func (m *Miner) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastLambda, LastTau and LastOutcome expose the diagnostics of the most
// recently armed round, for metrics and tests.
func (m *Miner) LastLambda() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLambda
}

func (m *Miner) LastTau() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTau
}

func (m *Miner) LastOutcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOutcome
}
