// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync/atomic"
	"time"

	"github.com/escrownet/vepower/vepower"
)

// Clock reports the current epoch. Lifecycle transitions consult it to
// decide which part of a timeline is already settled history.
type Clock interface {
	CurrentEpoch() vepower.Epoch
}

// SystemClock derives the epoch from wall time, counting fixed-length
// epochs from a genesis timestamp. Epoch 0 is reserved; the first epoch
// after genesis is 1.
type SystemClock struct {
	genesis  int64
	duration int64
}

// NewSystemClock creates a wall clock with the given genesis time and
// epoch duration.
func NewSystemClock(genesis time.Time, epochDuration time.Duration) *SystemClock {
	return &SystemClock{
		genesis:  genesis.Unix(),
		duration: int64(epochDuration / time.Second),
	}
}

func (c *SystemClock) CurrentEpoch() vepower.Epoch {
	now := time.Now().Unix()
	if now < c.genesis {
		return 0
	}
	return vepower.Epoch((now-c.genesis)/c.duration) + 1
}

// ManualClock is a settable clock for tests and offline processing.
type ManualClock struct {
	epoch atomic.Uint32
}

// NewManualClock creates a manual clock set to epoch.
func NewManualClock(epoch vepower.Epoch) *ManualClock {
	c := &ManualClock{}
	c.epoch.Store(uint32(epoch))
	return c
}

func (c *ManualClock) CurrentEpoch() vepower.Epoch {
	return vepower.Epoch(c.epoch.Load())
}

// SetEpoch moves the clock to epoch.
func (c *ManualClock) SetEpoch(epoch vepower.Epoch) {
	c.epoch.Store(uint32(epoch))
}
