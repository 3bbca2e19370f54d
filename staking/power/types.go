// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package power

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/escrownet/vepower/vepower"
)

// Errors of the temporal taxonomy, surfaced by checkpoint maintenance.
var (
	// ErrAlreadyCalculated is returned when everything at or before the
	// target epoch has already been materialized.
	ErrAlreadyCalculated = errors.New("power already calculated")
	// ErrNotYetElapsed is returned when the target epoch has not fully
	// elapsed yet.
	ErrNotYetElapsed = errors.New("epoch not yet elapsed")
)

// GlobalScope aggregates power changes of all stakers. It is reserved and can
// never collide with a staker address, which is derived from account keys.
var GlobalScope = vepower.Address{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// Checkpoint marks how far a scope's timeline has been materialized into
// cumulative values. Index is the position of Epoch within the scope's
// power change epochs; entries at or before it hold running sums, entries
// after it hold raw deltas.
type Checkpoint struct {
	Epoch vepower.Epoch
	Index uint64
}

// IsZero reports whether no checkpoint has been recorded yet.
func (c *Checkpoint) IsZero() bool {
	return c == nil || c.Epoch == 0
}

// deltaKey addresses one power change slot: scope plus epoch.
type deltaKey struct {
	scope vepower.Address
	epoch vepower.Epoch
}

func (k deltaKey) Bytes() []byte {
	b := make([]byte, vepower.AddressLength+4)
	copy(b, k.scope[:])
	binary.BigEndian.PutUint32(b[vepower.AddressLength:], uint32(k.epoch))
	return b
}
