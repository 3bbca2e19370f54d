// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package power maintains the time-bucketed voting power timelines, one per
// staker plus one global aggregate. Lifecycle operations write signed deltas
// into sparse per-scope epoch series; queries either read materialized
// cumulative values below the scope's checkpoint or sum the outstanding raw
// deltas on demand.
package power

import (
	"github.com/pkg/errors"

	"github.com/escrownet/vepower/staking/schedule"
	"github.com/escrownet/vepower/storage"
	"github.com/escrownet/vepower/vepower"
)

var (
	slotEpochs      = storage.NameToSlot("power-change-epochs")
	slotDeltas      = storage.NameToSlot("power-changes")
	slotCheckpoints = storage.NameToSlot("power-checkpoints")
)

// Service manages the power change series of all scopes.
type Service struct {
	epochs      *storage.Mapping[vepower.Address, []vepower.Epoch]
	deltas      *storage.Mapping[deltaKey, vepower.Power]
	checkpoints *storage.Mapping[vepower.Address, *Checkpoint]
}

// New creates the service over the given storage context.
func New(sctx *storage.Context) *Service {
	return &Service{
		epochs:      storage.NewMapping[vepower.Address, []vepower.Epoch](sctx, slotEpochs),
		deltas:      storage.NewMapping[deltaKey, vepower.Power](sctx, slotDeltas),
		checkpoints: storage.NewMapping[vepower.Address, *Checkpoint](sctx, slotCheckpoints),
	}
}

// ChangeEpochs returns the scope's recorded power change epochs.
func (s *Service) ChangeEpochs(scope vepower.Address) ([]vepower.Epoch, error) {
	epochs, err := s.epochs.Get(scope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get power change epochs")
	}
	return epochs, nil
}

// DeltaAt returns the stored power change of the scope at the given epoch:
// a raw delta beyond the scope's checkpoint, a running cumulative value at or
// before it, and zero if no entry exists.
func (s *Service) DeltaAt(scope vepower.Address, epoch vepower.Epoch) (vepower.Power, error) {
	d, err := s.deltas.Get(deltaKey{scope: scope, epoch: epoch})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get power change")
	}
	return d, nil
}

// GetCheckpoint returns the scope's checkpoint, zero if none was recorded.
func (s *Service) GetCheckpoint(scope vepower.Address) (*Checkpoint, error) {
	cp, err := s.checkpoints.Get(scope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint")
	}
	return cp, nil
}

// Apply records every cliff of a schedule on the scope's timeline.
func (s *Service) Apply(scope vepower.Address, cliffs []schedule.Cliff) error {
	t, err := s.openTimeline(scope)
	if err != nil {
		return err
	}
	for _, c := range cliffs {
		if err := t.updateDelta(c.Epoch, c.Delta); err != nil {
			return err
		}
	}
	return t.save()
}

// Retire removes a stake's not-yet-realized contribution from the scope.
// Cliffs at or after the boundary epoch are subtracted, and the realized
// power level carried by earlier cliffs is cancelled with one adjusting
// delta at the boundary. Because a full schedule sums to zero, the patch
// sums to zero as well.
func (s *Service) Retire(scope vepower.Address, cliffs []schedule.Cliff, boundary vepower.Epoch) error {
	return s.patch(scope, cliffs, boundary, -1)
}

// Adopt is the inverse of Retire: it grants a stake's not-yet-realized
// contribution to the scope, including the adjusting delta at the boundary.
func (s *Service) Adopt(scope vepower.Address, cliffs []schedule.Cliff, boundary vepower.Epoch) error {
	return s.patch(scope, cliffs, boundary, 1)
}

func (s *Service) patch(scope vepower.Address, cliffs []schedule.Cliff, boundary vepower.Epoch, sign vepower.Power) error {
	t, err := s.openTimeline(scope)
	if err != nil {
		return err
	}
	var realized vepower.Power
	for _, c := range cliffs {
		if c.Epoch < boundary {
			realized += c.Delta
			continue
		}
		if err := t.updateDelta(c.Epoch, sign*c.Delta); err != nil {
			return err
		}
	}
	if err := t.updateDelta(boundary, sign*realized); err != nil {
		return err
	}
	return t.save()
}

// PowerAt returns the scope's voting power at the given epoch. Epoch zero and
// epochs preceding the first recorded change yield zero. At or before the
// scope's checkpoint the stored cumulative value is returned directly;
// beyond it the outstanding raw deltas are summed on the fly, without
// persisting anything.
func (s *Service) PowerAt(scope vepower.Address, epoch vepower.Epoch) (vepower.Power, error) {
	if epoch == 0 {
		return 0, nil
	}
	epochs, err := s.ChangeEpochs(scope)
	if err != nil {
		return 0, err
	}
	if len(epochs) == 0 || epoch < epochs[0] {
		return 0, nil
	}
	cp, err := s.GetCheckpoint(scope)
	if err != nil {
		return 0, err
	}

	if !cp.IsZero() && epoch <= cp.Epoch {
		i, _ := findNearestIndex(epochs, epoch, 0, int(cp.Index)+1)
		return s.DeltaAt(scope, epochs[i])
	}

	var sum vepower.Power
	start := 0
	if !cp.IsZero() {
		sum, err = s.DeltaAt(scope, cp.Epoch)
		if err != nil {
			return 0, err
		}
		start = int(cp.Index) + 1
	}
	j, ok := findNearestIndex(epochs, epoch, start, len(epochs))
	if !ok {
		return sum, nil
	}
	for i := start; i <= j; i++ {
		d, err := s.DeltaAt(scope, epochs[i])
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return sum, nil
}

// TotalPowerAt returns the protocol-wide voting power at the given epoch.
func (s *Service) TotalPowerAt(epoch vepower.Epoch) (vepower.Power, error) {
	return s.PowerAt(GlobalScope, epoch)
}

// AdvanceCheckpoint materializes the scope's raw deltas up to the target
// epoch into running cumulative values and moves the checkpoint forward.
// The target must have fully elapsed (target < current) and must uncover at
// least one not-yet-materialized entry, otherwise ErrNotYetElapsed or
// ErrAlreadyCalculated is returned.
func (s *Service) AdvanceCheckpoint(scope vepower.Address, target, current vepower.Epoch) (*Checkpoint, error) {
	if target >= current {
		return nil, ErrNotYetElapsed
	}
	cp, err := s.GetCheckpoint(scope)
	if err != nil {
		return nil, err
	}
	if !cp.IsZero() && target <= cp.Epoch {
		return nil, ErrAlreadyCalculated
	}
	epochs, err := s.ChangeEpochs(scope)
	if err != nil {
		return nil, err
	}

	var running vepower.Power
	start := 0
	if !cp.IsZero() {
		running, err = s.DeltaAt(scope, cp.Epoch)
		if err != nil {
			return nil, err
		}
		start = int(cp.Index) + 1
	}

	i := start
	for ; i < len(epochs) && epochs[i] <= target; i++ {
		d, err := s.DeltaAt(scope, epochs[i])
		if err != nil {
			return nil, err
		}
		running, err = vepower.AddPower(running, d)
		if err != nil {
			return nil, err
		}
		if err := s.deltas.Set(deltaKey{scope: scope, epoch: epochs[i]}, running); err != nil {
			return nil, errors.Wrap(err, "failed to set power change")
		}
	}
	if i == start {
		// every entry at or before target is materialized already
		return nil, ErrAlreadyCalculated
	}

	next := &Checkpoint{Epoch: epochs[i-1], Index: uint64(i - 1)}
	if err := s.checkpoints.Set(scope, next); err != nil {
		return nil, errors.Wrap(err, "failed to set checkpoint")
	}
	return next, nil
}

// AdvanceGlobalCheckpoint advances the global aggregate's checkpoint.
func (s *Service) AdvanceGlobalCheckpoint(target, current vepower.Epoch) (*Checkpoint, error) {
	return s.AdvanceCheckpoint(GlobalScope, target, current)
}
