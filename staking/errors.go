// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/pkg/errors"

var (
	// ErrStakeNotFound is returned when no stake exists under the given id.
	ErrStakeNotFound = errors.New("stake not found")

	// ErrNotStakeOwner is returned when the caller does not own the stake.
	ErrNotStakeOwner = errors.New("caller is not the stake owner")

	// ErrInvalidAmount is returned when an amount is zero, not a multiple of
	// the configured unit, or above the configured maximum.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidLockUpPeriod is returned when a lock-up period falls outside
	// the configured bounds.
	ErrInvalidLockUpPeriod = errors.New("invalid lock-up period")

	// ErrLockUpPeriodMismatch is returned when two stakes to be merged do not
	// end in compatible epochs.
	ErrLockUpPeriodMismatch = errors.New("lock-up period mismatch")

	// ErrNothingToIncrease is returned when an increase call changes neither
	// the amount nor the lock-up period.
	ErrNothingToIncrease = errors.New("nothing to increase")

	// ErrWithdrawalBeforeLockUpEnd is returned when a withdrawal is attempted
	// while the stake is still locked.
	ErrWithdrawalBeforeLockUpEnd = errors.New("withdrawal before lock-up end")
)
