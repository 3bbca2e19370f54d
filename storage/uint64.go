// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/escrownet/vepower/vepower"
)

// Uint64 is a wrapper for storage and retrieval of a single uint64 slot,
// similar to storing a counter in a smart contract.
type Uint64 struct {
	context *Context
	pos     vepower.Bytes32
}

// NewUint64 creates a uint64 slot at pos.
func NewUint64(context *Context, pos vepower.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

// Get returns the stored value, zero if the slot is empty.
func (u *Uint64) Get() (uint64, error) {
	raw, err := u.context.state.Get(u.pos)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	var value uint64
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return 0, err
	}
	return value, nil
}

// Set stores the value.
func (u *Uint64) Set(value uint64) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	u.context.state.Set(u.pos, raw)
	return nil
}

// Add adds value to the stored value.
func (u *Uint64) Add(value uint64) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored + value)
}
