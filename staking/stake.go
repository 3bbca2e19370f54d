// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the stake lifecycle on top of the power
// timelines. Stakes carry a fixed amount locked for a whole number of
// epochs; every lifecycle transition rewrites the owner and global
// timelines so that historical power remains reproducible.
package staking

import (
	"github.com/escrownet/vepower/vepower"
)

// Stake is the stored record of a single locked position.
type Stake struct {
	Owner        vepower.Address
	Amount       uint64
	InitialEpoch vepower.Epoch
	LockUpEpochs uint8
}

// IsEmpty returns whether the record is unoccupied storage.
func (s *Stake) IsEmpty() bool {
	return s.Owner.IsZero() && s.Amount == 0 && s.InitialEpoch == 0 && s.LockUpEpochs == 0
}

// EndEpoch returns the first epoch at which the stake carries no power.
func (s *Stake) EndEpoch() vepower.Epoch {
	return s.InitialEpoch + vepower.Epoch(s.LockUpEpochs)
}

// RemainingAt returns the lock-up epochs still ahead of epoch, zero once
// the stake has run out or has not started granting yet.
func (s *Stake) RemainingAt(epoch vepower.Epoch) uint8 {
	if epoch < s.InitialEpoch {
		return s.LockUpEpochs
	}
	end := s.EndEpoch()
	if epoch >= end {
		return 0
	}
	return uint8(end - epoch)
}
