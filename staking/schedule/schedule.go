// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package schedule computes voting power from stake amount and remaining
// lock-up duration. The power of a stake starts at amount times the tier
// multiplier of its lock and steps down at every period boundary until it
// reaches zero when the lock ends. The whole decay schedule of a stake is
// generated by one canonical walk over the power function, so the deltas of
// any stake always sum to exactly zero.
package schedule

import (
	"github.com/pkg/errors"

	"github.com/escrownet/vepower/vepower"
)

// MultiplierScale is the percent base of the multiplier tiers. Amount units
// are multiples of it, which keeps every power computation exact.
const MultiplierScale = 100

// Cliff is one power change of a stake: the grant at its initial epoch or a
// decay step at a later period boundary.
type Cliff struct {
	Epoch vepower.Epoch
	Delta vepower.Power
}

// Schedule evaluates a validated multiplier config.
type Schedule struct {
	cfg Config
}

// New creates a schedule from the config.
func New(cfg Config) (*Schedule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "schedule config")
	}
	return &Schedule{cfg: cfg}, nil
}

// Config returns the active config.
func (s *Schedule) Config() Config {
	return s.cfg
}

// multiplier returns the tier multiplier for the remaining lock-up, in percent.
func (s *Schedule) multiplier(remainingLockUp uint8) uint16 {
	if remainingLockUp == 0 {
		return 0
	}
	tier := (int(remainingLockUp) + int(s.cfg.EpochsInPeriod) - 1) / int(s.cfg.EpochsInPeriod)
	if tier > len(s.cfg.Multipliers) {
		tier = len(s.cfg.Multipliers)
	}
	return s.cfg.Multipliers[tier-1]
}

// InitialPower returns amount times the tier multiplier of the remaining
// lock-up. Amounts are unit-quantized, so the division is exact.
func (s *Schedule) InitialPower(amount uint64, remainingLockUp uint8) vepower.Power {
	// amounts are multiples of the unit, which is a multiple of the scale,
	// so dividing first is exact and cannot overflow
	return vepower.Power(amount / MultiplierScale * uint64(s.multiplier(remainingLockUp)))
}

// EpochsToNextCliff returns the distance from the given remaining lock-up to
// the next epoch at which the stake's power changes: the boundary of the cap
// tier, the next period boundary, or the final epoch if the lock ends first.
func (s *Schedule) EpochsToNextCliff(remainingLockUp uint8) uint8 {
	if remainingLockUp == 0 {
		return 0
	}
	capStart := uint8(len(s.cfg.Multipliers)-1) * s.cfg.EpochsInPeriod
	if remainingLockUp > capStart {
		return remainingLockUp - capStart
	}
	if step := remainingLockUp % s.cfg.EpochsInPeriod; step != 0 {
		return step
	}
	return s.cfg.EpochsInPeriod
}

// DecreaseStep returns the magnitude of the next downward cliff and its
// epoch distance, for a stake of the given amount and remaining lock-up.
func (s *Schedule) DecreaseStep(amount uint64, remainingLockUp uint8) (vepower.Power, uint8) {
	step := s.EpochsToNextCliff(remainingLockUp)
	if step == 0 {
		return 0, 0
	}
	before := s.InitialPower(amount, remainingLockUp)
	after := s.InitialPower(amount, remainingLockUp-step)
	return before - after, step
}

// Cliffs generates the full power change schedule of a stake: the positive
// grant at initialEpoch followed by every decay step down to zero power at
// initialEpoch+lockUpEpochs. The deltas always sum to zero.
func (s *Schedule) Cliffs(amount uint64, initialEpoch vepower.Epoch, lockUpEpochs uint8) []Cliff {
	if amount == 0 || lockUpEpochs == 0 {
		return nil
	}
	power := s.InitialPower(amount, lockUpEpochs)
	cliffs := []Cliff{{Epoch: initialEpoch, Delta: power}}

	epoch := initialEpoch
	remaining := lockUpEpochs
	for remaining > 0 {
		step := s.EpochsToNextCliff(remaining)
		epoch += vepower.Epoch(step)
		remaining -= step
		next := s.InitialPower(amount, remaining)
		if next != power {
			cliffs = append(cliffs, Cliff{Epoch: epoch, Delta: next - power})
			power = next
		}
	}
	return cliffs
}

// ValidateAmount checks that amount is a positive, unit-quantized value not
// exceeding the maximum.
func (s *Schedule) ValidateAmount(amount uint64) bool {
	return amount > 0 && amount <= s.cfg.MaxAmount && amount%s.cfg.AmountUnit == 0
}

// ValidateLockUp checks that the lock duration is within protocol bounds.
func (s *Schedule) ValidateLockUp(lockUpEpochs uint8) bool {
	return lockUpEpochs >= s.cfg.MinLockUpEpochs && lockUpEpochs <= s.cfg.MaxLockUpEpochs
}
