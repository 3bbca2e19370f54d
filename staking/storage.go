// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/escrownet/vepower/storage"
	"github.com/escrownet/vepower/vepower"
)

var (
	slotStakes      = storage.NameToSlot("stakes")
	slotOwnerStakes = storage.NameToSlot("owner-stakes")
	slotLastStakeID = storage.NameToSlot("last-stake-id")
)

type idKey vepower.StakeID

func (k idKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

type store struct {
	stakes      *storage.Mapping[idKey, *Stake]
	ownerStakes *storage.Mapping[vepower.Address, []vepower.StakeID]
	lastStakeID *storage.Uint64
}

func newStore(sctx *storage.Context) *store {
	return &store{
		stakes:      storage.NewMapping[idKey, *Stake](sctx, slotStakes),
		ownerStakes: storage.NewMapping[vepower.Address, []vepower.StakeID](sctx, slotOwnerStakes),
		lastStakeID: storage.NewUint64(sctx, slotLastStakeID),
	}
}

// nextStakeID advances the id counter and returns the fresh id. Ids start at 1
// so the zero id can mark absence.
func (s *store) nextStakeID() (vepower.StakeID, error) {
	if err := s.lastStakeID.Add(1); err != nil {
		return 0, err
	}
	id, err := s.lastStakeID.Get()
	if err != nil {
		return 0, err
	}
	return vepower.StakeID(id), nil
}

func (s *store) getStake(id vepower.StakeID) (*Stake, error) {
	stake, err := s.stakes.Get(idKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "get stake")
	}
	if stake.IsEmpty() {
		return nil, nil
	}
	return stake, nil
}

func (s *store) setStake(id vepower.StakeID, stake *Stake) error {
	return s.stakes.Set(idKey(id), stake)
}

func (s *store) deleteStake(id vepower.StakeID) {
	s.stakes.Delete(idKey(id))
}

func (s *store) ownerIDs(owner vepower.Address) ([]vepower.StakeID, error) {
	ids, err := s.ownerStakes.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "get owner stakes")
	}
	return ids, nil
}

func (s *store) addOwnerID(owner vepower.Address, id vepower.StakeID) error {
	ids, err := s.ownerIDs(owner)
	if err != nil {
		return err
	}
	return s.ownerStakes.Set(owner, append(ids, id))
}

func (s *store) removeOwnerID(owner vepower.Address, id vepower.StakeID) error {
	ids, err := s.ownerIDs(owner)
	if err != nil {
		return err
	}
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			if len(ids) == 0 {
				s.ownerStakes.Delete(owner)
				return nil
			}
			return s.ownerStakes.Set(owner, ids)
		}
	}
	return nil
}
