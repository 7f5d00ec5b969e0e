// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package mining

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMinerValidatesHashPowerRange(t *testing.T) {
	_, err := NewMiner(0, 15)
	require.Error(t, err)

	_, err = NewMiner(101, 15)
	require.Error(t, err)

	_, err = NewMiner(100, 15)
	require.NoError(t, err)
}

func TestNewMinerValidatesInterarrival(t *testing.T) {
	_, err := NewMiner(20, 0)
	require.Error(t, err)

	_, err = NewMiner(20, -5)
	require.Error(t, err)
}

// TestLambdaArithmetic: lambda = hash_power *
// (1/interarrival) / 100.
func TestLambdaArithmetic(t *testing.T) {
	m, err := NewMiner(20, 15)
	require.NoError(t, err)

	meanTk := 1.0 / 15.0
	want := 20.0 * meanTk / 100.0
	require.InDelta(t, want, m.Lambda(), 1e-12)
}

// TestLambdaIsProportionalToHashPower: doubling a
// node's hash power doubles its lambda, interarrival held fixed.
func TestLambdaIsProportionalToHashPower(t *testing.T) {
	low, err := NewMiner(10, 15)
	require.NoError(t, err)
	high, err := NewMiner(20, 15)
	require.NoError(t, err)

	require.InDelta(t, low.Lambda()*2, high.Lambda(), 1e-12)
}

// fakeClock is a manually-advanced clock for deterministic Mine() tests:
// Sleep() advances the clock by the requested duration instead of
// actually blocking.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }
func (f *fakeClock) Sleep(d time.Duration) {
	f.now = f.now.Add(d)
}

// TestMineReturnsTrueWhenTauElapses: with no
// abort signalled, a round always ends MINED once tau seconds have
// passed on the clock.
func TestMineReturnsTrueWhenTauElapses(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m, err := NewMiner(20, 15)
	require.NoError(t, err)
	m.Sampler = func(lambda float64) float64 { return 0.37 }
	m.Now = clock.Now
	m.Sleep = clock.Sleep

	mined := m.Mine()
	require.True(t, mined)
	require.Equal(t, StateMined, m.State())
	require.Equal(t, OutcomeMined, m.LastOutcome())
	require.InDelta(t, 0.37, m.LastTau(), 1e-9)
}

func TestMineReturnsFalseWhenAborted(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m, err := NewMiner(20, 15)
	require.NoError(t, err)
	// A long tau so the poll loop runs at least once before the
	// synthetic abort below fires.
	m.Sampler = func(lambda float64) float64 { return 3600 }
	m.Now = clock.Now
	m.Sleep = func(d time.Duration) {
		m.Abort()
		clock.Sleep(d)
	}

	mined := m.Mine()
	require.False(t, mined)
	require.Equal(t, StateAborted, m.State())
	require.Equal(t, OutcomeAborted, m.LastOutcome())
}

// TestAbortIsIdempotent covers repeated Abort calls, with no round armed,
// not causing a panic.
func TestAbortIsIdempotent(t *testing.T) {
	m, err := NewMiner(20, 15)
	require.NoError(t, err)

	m.Abort()
	m.Abort()
	m.Abort()
}

// TestAbortFromPreviousRoundDoesNotLeakIntoNextRound implements
// the abort flag is cleared at the START of Mine, not the
// end of the previous call, so a stale Abort() from a round that already
// finished MINED must not affect the next round.
func TestAbortFromPreviousRoundDoesNotLeakIntoNextRound(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m, err := NewMiner(20, 15)
	require.NoError(t, err)
	m.Sampler = func(lambda float64) float64 { return 1.0 }
	m.Now = clock.Now
	m.Sleep = clock.Sleep

	require.True(t, m.Mine())

	m.Abort() // stale signal, arrives after the round already finished

	second := m.Mine()
	require.True(t, second, "a stale abort from a finished round must not abort the next round")
}

// TestAbortedRoundDrawsFreshTauNextTime: after an
// aborted round, the following Mine() call draws a brand new tau rather
// than reusing or resuming the old one.
func TestAbortedRoundDrawsFreshTauNextTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m, err := NewMiner(20, 15)
	require.NoError(t, err)

	draws := []float64{3600, 0.5}
	call := 0
	m.Sampler = func(lambda float64) float64 {
		v := draws[call]
		call++
		return v
	}
	m.Now = clock.Now
	aborted := false
	m.Sleep = func(d time.Duration) {
		if !aborted {
			m.Abort()
			aborted = true
		}
		clock.Sleep(d)
	}

	require.False(t, m.Mine())
	require.Equal(t, 3600.0, m.LastTau())

	mined := m.Mine()
	require.True(t, mined)
	require.Equal(t, 0.5, m.LastTau())
	require.Equal(t, 2, call)
}
