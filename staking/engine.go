// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/escrownet/vepower/kv"
	"github.com/escrownet/vepower/log"
	"github.com/escrownet/vepower/metrics"
	"github.com/escrownet/vepower/staking/power"
	"github.com/escrownet/vepower/staking/schedule"
	"github.com/escrownet/vepower/state"
	"github.com/escrownet/vepower/storage"
	"github.com/escrownet/vepower/vepower"
)

var logger = log.WithContext("pkg", "staking")

// SetLogger swaps the package logger, used by tests to silence output.
func SetLogger(l log.Logger) {
	logger = l
}

var (
	metricLifecycleOps       = metrics.LazyLoadCounterVec("stake_lifecycle_ops_total", []string{"op"})
	metricCheckpointAdvances = metrics.LazyLoadCounter("power_checkpoint_advances_total")
	metricStakedAmount       = metrics.LazyLoadGauge("staked_amount_total")
)

// Engine orchestrates the stake lifecycle over a persistent store. Every
// mutating call is one atomic transition: validation failures and storage
// errors leave no partial writes behind.
type Engine struct {
	mu      sync.RWMutex
	store   kv.GetPutter
	state   *state.State
	sched   *schedule.Schedule
	clock   Clock
	vault   Vault
	receipt Receipt

	stakes *store
	power  *power.Service
}

// NewEngine opens the engine over the given store. The vault and receipt
// collaborators are notified of principal and ownership movements but live
// outside the transition boundary.
func NewEngine(kvStore kv.GetPutter, sched *schedule.Schedule, clock Clock, vault Vault, receipt Receipt) *Engine {
	st := state.New(kvStore)
	sctx := storage.NewContext(st)
	return &Engine{
		store:   kvStore,
		state:   st,
		sched:   sched,
		clock:   clock,
		vault:   vault,
		receipt: receipt,
		stakes:  newStore(sctx),
		power:   power.New(sctx),
	}
}

// Schedule returns the multiplier schedule the engine was built with.
func (e *Engine) Schedule() *schedule.Schedule {
	return e.sched
}

// runTransition executes fn against the journaled state and commits on
// success. Any error discards every write fn made.
func (e *Engine) runTransition(fn func() error) error {
	cp := e.state.NewCheckpoint()
	if err := fn(); err != nil {
		e.state.RevertTo(cp)
		return err
	}
	if err := e.state.Commit(e.store); err != nil {
		e.state.RevertTo(cp)
		return err
	}
	return nil
}

// CreateStake locks amount for lockUpEpochs epochs and grants power from the
// next epoch on. It returns the id of the new stake.
func (e *Engine) CreateStake(owner vepower.Address, amount uint64, lockUpEpochs uint8) (vepower.StakeID, error) {
	logger.Debug("creating stake", "owner", owner, "amount", amount, "lockUpEpochs", lockUpEpochs)

	if owner.IsZero() {
		return 0, errors.Wrap(ErrNotStakeOwner, "zero owner")
	}
	if !e.sched.ValidateAmount(amount) {
		return 0, ErrInvalidAmount
	}
	if !e.sched.ValidateLockUp(lockUpEpochs) {
		return 0, ErrInvalidLockUpPeriod
	}

	if err := e.vault.Lock(owner, amount); err != nil {
		return 0, errors.Wrap(err, "lock principal")
	}

	e.mu.Lock()
	var id vepower.StakeID
	err := e.runTransition(func() error {
		initial := e.clock.CurrentEpoch() + 1
		cliffs := e.sched.Cliffs(amount, initial, lockUpEpochs)
		if err := e.power.Apply(owner, cliffs); err != nil {
			return err
		}
		if err := e.power.Apply(power.GlobalScope, cliffs); err != nil {
			return err
		}

		var err error
		if id, err = e.stakes.nextStakeID(); err != nil {
			return err
		}
		if err := e.stakes.setStake(id, &Stake{
			Owner:        owner,
			Amount:       amount,
			InitialEpoch: initial,
			LockUpEpochs: lockUpEpochs,
		}); err != nil {
			return err
		}
		return e.stakes.addOwnerID(owner, id)
	})
	e.mu.Unlock()
	if err != nil {
		if rerr := e.vault.Release(owner, amount); rerr != nil {
			logger.Error("failed to unwind principal lock", "owner", owner, "err", rerr)
		}
		logger.Info("create stake failed", "owner", owner, "err", err)
		return 0, err
	}

	if err := e.receipt.Mint(owner, id); err != nil {
		return 0, errors.Wrap(err, "mint receipt")
	}
	metricLifecycleOps().AddWithLabel(1, map[string]string{"op": "create"})
	metricStakedAmount().Add(int64(amount))
	logger.Info("created stake", "id", id, "owner", owner)
	return id, nil
}

// SplitStake divides a stake into two with the same lock terms, the first
// carrying splitAmount. Power timelines are untouched since power is linear
// in amount.
func (e *Engine) SplitStake(caller vepower.Address, id vepower.StakeID, splitAmount uint64) (vepower.StakeID, vepower.StakeID, error) {
	logger.Debug("splitting stake", "id", id, "splitAmount", splitAmount)

	e.mu.Lock()
	var id1, id2 vepower.StakeID
	var owner vepower.Address
	err := e.runTransition(func() error {
		stake, err := e.ownedStake(caller, id)
		if err != nil {
			return err
		}
		if splitAmount == 0 || splitAmount >= stake.Amount || splitAmount%e.sched.Config().AmountUnit != 0 {
			return ErrInvalidAmount
		}
		owner = stake.Owner

		e.stakes.deleteStake(id)
		if err := e.stakes.removeOwnerID(stake.Owner, id); err != nil {
			return err
		}
		halves := []uint64{splitAmount, stake.Amount - splitAmount}
		ids := []*vepower.StakeID{&id1, &id2}
		for i, amount := range halves {
			newID, err := e.stakes.nextStakeID()
			if err != nil {
				return err
			}
			part := *stake
			part.Amount = amount
			if err := e.stakes.setStake(newID, &part); err != nil {
				return err
			}
			if err := e.stakes.addOwnerID(stake.Owner, newID); err != nil {
				return err
			}
			*ids[i] = newID
		}
		return nil
	})
	e.mu.Unlock()
	if err != nil {
		logger.Info("split stake failed", "id", id, "err", err)
		return 0, 0, err
	}

	if err := e.receipt.Burn(id); err != nil {
		return 0, 0, errors.Wrap(err, "burn receipt")
	}
	for _, newID := range []vepower.StakeID{id1, id2} {
		if err := e.receipt.Mint(owner, newID); err != nil {
			return 0, 0, errors.Wrap(err, "mint receipt")
		}
	}
	metricLifecycleOps().AddWithLabel(1, map[string]string{"op": "split"})
	logger.Info("split stake", "id", id, "id1", id1, "id2", id2)
	return id1, id2, nil
}

// MergeStakes folds the second stake into the first. The combined stake
// starts at the next epoch with the first stake's remaining lock-up, so the
// first must not end before the second.
func (e *Engine) MergeStakes(caller vepower.Address, id1, id2 vepower.StakeID) (vepower.StakeID, error) {
	logger.Debug("merging stakes", "id1", id1, "id2", id2)

	if id1 == id2 {
		return 0, errors.New("cannot merge a stake with itself")
	}

	e.mu.Lock()
	var newID vepower.StakeID
	var owner vepower.Address
	err := e.runTransition(func() error {
		s1, err := e.ownedStake(caller, id1)
		if err != nil {
			return err
		}
		s2, err := e.ownedStake(caller, id2)
		if err != nil {
			return err
		}
		owner = s1.Owner

		boundary := e.clock.CurrentEpoch() + 1
		rem1 := s1.RemainingAt(boundary)
		rem2 := s2.RemainingAt(boundary)
		if rem1 == 0 || rem1 < rem2 {
			return ErrLockUpPeriodMismatch
		}
		combined := s1.Amount + s2.Amount
		if combined > e.sched.Config().MaxAmount {
			return ErrInvalidAmount
		}

		for _, s := range []*Stake{s1, s2} {
			cliffs := e.sched.Cliffs(s.Amount, s.InitialEpoch, s.LockUpEpochs)
			if err := e.power.Retire(s.Owner, cliffs, boundary); err != nil {
				return err
			}
			if err := e.power.Retire(power.GlobalScope, cliffs, boundary); err != nil {
				return err
			}
		}
		merged := e.sched.Cliffs(combined, boundary, rem1)
		if err := e.power.Apply(owner, merged); err != nil {
			return err
		}
		if err := e.power.Apply(power.GlobalScope, merged); err != nil {
			return err
		}

		for _, id := range []vepower.StakeID{id1, id2} {
			e.stakes.deleteStake(id)
			if err := e.stakes.removeOwnerID(owner, id); err != nil {
				return err
			}
		}
		if newID, err = e.stakes.nextStakeID(); err != nil {
			return err
		}
		if err := e.stakes.setStake(newID, &Stake{
			Owner:        owner,
			Amount:       combined,
			InitialEpoch: boundary,
			LockUpEpochs: rem1,
		}); err != nil {
			return err
		}
		return e.stakes.addOwnerID(owner, newID)
	})
	e.mu.Unlock()
	if err != nil {
		logger.Info("merge stakes failed", "id1", id1, "id2", id2, "err", err)
		return 0, err
	}

	for _, id := range []vepower.StakeID{id1, id2} {
		if err := e.receipt.Burn(id); err != nil {
			return 0, errors.Wrap(err, "burn receipt")
		}
	}
	if err := e.receipt.Mint(owner, newID); err != nil {
		return 0, errors.Wrap(err, "mint receipt")
	}
	metricLifecycleOps().AddWithLabel(1, map[string]string{"op": "merge"})
	logger.Info("merged stakes", "id1", id1, "id2", id2, "newID", newID)
	return newID, nil
}

// IncreaseStake adds principal, lock-up epochs, or both to a stake. The
// stake is re-issued from the next epoch with the extended terms.
func (e *Engine) IncreaseStake(caller vepower.Address, id vepower.StakeID, addAmount uint64, addEpochs uint8) (vepower.StakeID, error) {
	logger.Debug("increasing stake", "id", id, "addAmount", addAmount, "addEpochs", addEpochs)

	if addAmount == 0 && addEpochs == 0 {
		return 0, ErrNothingToIncrease
	}
	if addAmount > 0 {
		if err := e.vault.Lock(caller, addAmount); err != nil {
			return 0, errors.Wrap(err, "lock principal")
		}
	}

	var owner vepower.Address

	e.mu.Lock()
	var newID vepower.StakeID
	err := e.runTransition(func() error {
		stake, err := e.ownedStake(caller, id)
		if err != nil {
			return err
		}
		owner = stake.Owner

		cfg := e.sched.Config()
		combined := stake.Amount + addAmount
		if addAmount > 0 && (addAmount%cfg.AmountUnit != 0 || combined > cfg.MaxAmount) {
			return ErrInvalidAmount
		}

		boundary := e.clock.CurrentEpoch() + 1
		newLockUp := int(stake.RemainingAt(boundary)) + int(addEpochs)
		if newLockUp < int(cfg.MinLockUpEpochs) || newLockUp > int(cfg.MaxLockUpEpochs) {
			return ErrInvalidLockUpPeriod
		}

		old := e.sched.Cliffs(stake.Amount, stake.InitialEpoch, stake.LockUpEpochs)
		if err := e.power.Retire(owner, old, boundary); err != nil {
			return err
		}
		if err := e.power.Retire(power.GlobalScope, old, boundary); err != nil {
			return err
		}
		fresh := e.sched.Cliffs(combined, boundary, uint8(newLockUp))
		if err := e.power.Apply(owner, fresh); err != nil {
			return err
		}
		if err := e.power.Apply(power.GlobalScope, fresh); err != nil {
			return err
		}

		e.stakes.deleteStake(id)
		if err := e.stakes.removeOwnerID(owner, id); err != nil {
			return err
		}
		if newID, err = e.stakes.nextStakeID(); err != nil {
			return err
		}
		if err := e.stakes.setStake(newID, &Stake{
			Owner:        owner,
			Amount:       combined,
			InitialEpoch: boundary,
			LockUpEpochs: uint8(newLockUp),
		}); err != nil {
			return err
		}
		return e.stakes.addOwnerID(owner, newID)
	})
	e.mu.Unlock()
	if err != nil {
		if addAmount > 0 {
			if rerr := e.vault.Release(caller, addAmount); rerr != nil {
				logger.Error("failed to unwind principal lock", "owner", caller, "err", rerr)
			}
		}
		logger.Info("increase stake failed", "id", id, "err", err)
		return 0, err
	}

	if err := e.receipt.Burn(id); err != nil {
		return 0, errors.Wrap(err, "burn receipt")
	}
	if err := e.receipt.Mint(owner, newID); err != nil {
		return 0, errors.Wrap(err, "mint receipt")
	}
	metricLifecycleOps().AddWithLabel(1, map[string]string{"op": "increase"})
	metricStakedAmount().Add(int64(addAmount))
	logger.Info("increased stake", "id", id, "newID", newID)
	return newID, nil
}

// WithdrawStake deletes a fully decayed stake and returns its principal to
// the owner. The timeline needs no correction since the power is already
// zero.
func (e *Engine) WithdrawStake(caller vepower.Address, id vepower.StakeID) error {
	logger.Debug("withdrawing stake", "id", id)

	var owner vepower.Address
	var amount uint64

	e.mu.Lock()
	err := e.runTransition(func() error {
		stake, err := e.ownedStake(caller, id)
		if err != nil {
			return err
		}
		if e.clock.CurrentEpoch() < stake.EndEpoch() {
			return ErrWithdrawalBeforeLockUpEnd
		}
		owner = stake.Owner
		amount = stake.Amount

		e.stakes.deleteStake(id)
		return e.stakes.removeOwnerID(owner, id)
	})
	e.mu.Unlock()
	if err != nil {
		logger.Info("withdraw stake failed", "id", id, "err", err)
		return err
	}

	if err := e.vault.Release(owner, amount); err != nil {
		return errors.Wrap(err, "release principal")
	}
	if err := e.receipt.Burn(id); err != nil {
		return errors.Wrap(err, "burn receipt")
	}
	metricLifecycleOps().AddWithLabel(1, map[string]string{"op": "withdraw"})
	metricStakedAmount().Add(-int64(amount))
	logger.Info("withdrew stake", "id", id, "owner", owner, "amount", amount)
	return nil
}

// TransferStake is the ownership-change hook invoked by the receipt
// component. It moves every not-yet-realized power change from the sender's
// timeline to the receiver's; the global timeline is unaffected. Mint and
// burn counterparties (the zero address) and fully decayed locks need no
// timeline work.
func (e *Engine) TransferStake(from, to vepower.Address, id vepower.StakeID) error {
	if from.IsZero() || to.IsZero() {
		return nil
	}
	logger.Debug("transferring stake", "id", id, "from", from, "to", to)

	e.mu.Lock()
	err := e.runTransition(func() error {
		stake, err := e.stakes.getStake(id)
		if err != nil {
			return err
		}
		if stake == nil {
			return ErrStakeNotFound
		}
		if stake.Owner != from {
			return ErrNotStakeOwner
		}

		current := e.clock.CurrentEpoch()
		if stake.EndEpoch() > current {
			boundary := current + 1
			cliffs := e.sched.Cliffs(stake.Amount, stake.InitialEpoch, stake.LockUpEpochs)
			if err := e.power.Retire(from, cliffs, boundary); err != nil {
				return err
			}
			if err := e.power.Adopt(to, cliffs, boundary); err != nil {
				return err
			}
		}

		moved := *stake
		moved.Owner = to
		if err := e.stakes.setStake(id, &moved); err != nil {
			return err
		}
		if err := e.stakes.removeOwnerID(from, id); err != nil {
			return err
		}
		return e.stakes.addOwnerID(to, id)
	})
	e.mu.Unlock()
	if err != nil {
		logger.Info("transfer stake failed", "id", id, "err", err)
		return err
	}

	metricLifecycleOps().AddWithLabel(1, map[string]string{"op": "transfer"})
	logger.Info("transferred stake", "id", id, "from", from, "to", to)
	return nil
}

// AdvanceCheckpoint materializes the staker's timeline up to target. It is
// permissionless maintenance: anyone may pay for the work.
func (e *Engine) AdvanceCheckpoint(staker vepower.Address, target vepower.Epoch) (*power.Checkpoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var cp *power.Checkpoint
	err := e.runTransition(func() error {
		var err error
		cp, err = e.power.AdvanceCheckpoint(staker, target, e.clock.CurrentEpoch())
		return err
	})
	if err != nil {
		return nil, err
	}
	metricCheckpointAdvances().Add(1)
	logger.Info("advanced checkpoint", "staker", staker, "epoch", cp.Epoch, "index", cp.Index)
	return cp, nil
}

// AdvanceGlobalCheckpoint materializes the global timeline up to target.
func (e *Engine) AdvanceGlobalCheckpoint(target vepower.Epoch) (*power.Checkpoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var cp *power.Checkpoint
	err := e.runTransition(func() error {
		var err error
		cp, err = e.power.AdvanceGlobalCheckpoint(target, e.clock.CurrentEpoch())
		return err
	})
	if err != nil {
		return nil, err
	}
	metricCheckpointAdvances().Add(1)
	logger.Info("advanced global checkpoint", "epoch", cp.Epoch, "index", cp.Index)
	return cp, nil
}

// StakerPower returns the voting power of staker at epoch.
func (e *Engine) StakerPower(staker vepower.Address, epoch vepower.Epoch) (vepower.Power, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.PowerAt(staker, epoch)
}

// TotalPowerAt returns the protocol-wide voting power at epoch.
func (e *Engine) TotalPowerAt(epoch vepower.Epoch) (vepower.Power, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.TotalPowerAt(epoch)
}

// GetStake returns the stake stored under id, or ErrStakeNotFound.
func (e *Engine) GetStake(id vepower.StakeID) (*Stake, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stake, err := e.stakes.getStake(id)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return nil, ErrStakeNotFound
	}
	return stake, nil
}

// StakeIDs lists the ids of all stakes currently owned by owner.
func (e *Engine) StakeIDs(owner vepower.Address) ([]vepower.StakeID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stakes.ownerIDs(owner)
}

// StakedAmount sums the principal of all stakes currently owned by owner.
func (e *Engine) StakedAmount(owner vepower.Address) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids, err := e.stakes.ownerIDs(owner)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, id := range ids {
		stake, err := e.stakes.getStake(id)
		if err != nil {
			return 0, err
		}
		if stake != nil {
			total += stake.Amount
		}
	}
	return total, nil
}

func (e *Engine) ownedStake(caller vepower.Address, id vepower.StakeID) (*Stake, error) {
	stake, err := e.stakes.getStake(id)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return nil, ErrStakeNotFound
	}
	if stake.Owner != caller {
		return nil, ErrNotStakeOwner
	}
	return stake, nil
}
