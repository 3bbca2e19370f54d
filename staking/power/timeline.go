// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package power

import (
	"github.com/pkg/errors"

	"github.com/escrownet/vepower/vepower"
)

// timeline is one scope's power change series opened for mutation. The epoch
// index is loaded once, patched in memory and written back on save; delta
// slots are updated as they change.
type timeline struct {
	svc    *Service
	scope  vepower.Address
	epochs []vepower.Epoch
	dirty  bool

	// search hint, valid while updates arrive in ascending epoch order
	hint int
	last vepower.Epoch
}

func (s *Service) openTimeline(scope vepower.Address) (*timeline, error) {
	epochs, err := s.epochs.Get(scope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get power change epochs")
	}
	return &timeline{svc: s, scope: scope, epochs: epochs}, nil
}

// updateDelta adds delta to the power change stored at epoch. An entry whose
// delta returns to zero is dropped from both the store and the index; a new
// non-zero entry is inserted in sorted position.
func (t *timeline) updateDelta(epoch vepower.Epoch, delta vepower.Power) error {
	if delta == 0 {
		return nil
	}
	if epoch < t.last {
		t.hint = 0
	}
	t.last = epoch

	i, found := findIndex(t.epochs, epoch, t.hint)
	t.hint = i

	key := deltaKey{scope: t.scope, epoch: epoch}
	stored, err := t.svc.deltas.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get power change")
	}
	sum, err := vepower.AddPower(stored, delta)
	if err != nil {
		return err
	}

	switch {
	case sum == 0 && found:
		t.svc.deltas.Delete(key)
		t.epochs = removeEpoch(t.epochs, i)
		t.dirty = true
	case sum != 0 && !found:
		t.epochs = insertEpoch(t.epochs, i, epoch)
		t.dirty = true
		fallthrough
	default:
		if err := t.svc.deltas.Set(key, sum); err != nil {
			return errors.Wrap(err, "failed to set power change")
		}
	}
	return nil
}

func (t *timeline) save() error {
	if !t.dirty {
		return nil
	}
	if len(t.epochs) == 0 {
		t.svc.epochs.Delete(t.scope)
		return nil
	}
	if err := t.svc.epochs.Set(t.scope, t.epochs); err != nil {
		return errors.Wrap(err, "failed to set power change epochs")
	}
	return nil
}
