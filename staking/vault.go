// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/escrownet/vepower/vepower"
)

// Vault is the custodian of the principal asset. The engine debits it when
// a stake is created or increased and credits it back on withdrawal.
type Vault interface {
	// Lock debits amount from owner into custody.
	Lock(owner vepower.Address, amount uint64) error

	// Release credits amount from custody back to owner.
	Release(owner vepower.Address, amount uint64) error
}

// MemVault is an in-memory Vault keeping per-owner custody balances. It
// stands in for the external asset in tests and single-node deployments.
type MemVault struct {
	mu     sync.Mutex
	locked map[vepower.Address]uint64
}

func NewMemVault() *MemVault {
	return &MemVault{locked: make(map[vepower.Address]uint64)}
}

func (v *MemVault) Lock(owner vepower.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.locked[owner] += amount
	return nil
}

func (v *MemVault) Release(owner vepower.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locked[owner] < amount {
		return errors.New("insufficient custody balance")
	}
	v.locked[owner] -= amount
	if v.locked[owner] == 0 {
		delete(v.locked, owner)
	}
	return nil
}

// Locked returns the custody balance held for owner.
func (v *MemVault) Locked(owner vepower.Address) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.locked[owner]
}
