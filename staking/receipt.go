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

// Receipt tracks stake ownership on behalf of the engine. The engine mints
// a receipt for every stake it creates and burns the receipt of every stake
// it consumes.
type Receipt interface {
	Mint(owner vepower.Address, id vepower.StakeID) error
	Burn(id vepower.StakeID) error
}

// TransferCallback is invoked on every ownership change, with the zero
// address standing for mint and burn counterparties.
type TransferCallback func(from, to vepower.Address, id vepower.StakeID) error

// Registry is an in-memory Receipt implementation. Ownership transfers go
// through Transfer, which notifies the engine so unrealized power follows
// the receipt.
type Registry struct {
	mu         sync.Mutex
	owners     map[vepower.StakeID]vepower.Address
	onTransfer TransferCallback
}

func NewRegistry() *Registry {
	return &Registry{owners: make(map[vepower.StakeID]vepower.Address)}
}

// SetTransferCallback wires the engine's transfer hook. Must be called
// before any ownership change.
func (r *Registry) SetTransferCallback(cb TransferCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTransfer = cb
}

// OwnerOf returns the current owner of id.
func (r *Registry) OwnerOf(id vepower.StakeID) (vepower.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[id]
	return owner, ok
}

func (r *Registry) Mint(owner vepower.Address, id vepower.StakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; ok {
		return errors.New("receipt already minted")
	}
	r.owners[id] = owner
	return r.notify(vepower.Address{}, owner, id)
}

func (r *Registry) Burn(id vepower.StakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[id]
	if !ok {
		return errors.New("receipt not minted")
	}
	delete(r.owners, id)
	return r.notify(owner, vepower.Address{}, id)
}

// Transfer moves the receipt from its current owner to another address and
// notifies the engine.
func (r *Registry) Transfer(from, to vepower.Address, id vepower.StakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[id]
	if !ok {
		return errors.New("receipt not minted")
	}
	if owner != from {
		return errors.Wrap(ErrNotStakeOwner, "transfer receipt")
	}
	if to.IsZero() {
		return errors.New("transfer to the zero address")
	}
	r.owners[id] = to
	return r.notify(from, to, id)
}

func (r *Registry) notify(from, to vepower.Address, id vepower.StakeID) error {
	if r.onTransfer == nil {
		return nil
	}
	return r.onTransfer(from, to, id)
}
