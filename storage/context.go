// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/escrownet/vepower/state"
	"github.com/escrownet/vepower/vepower"
)

// Context binds typed slots to a state instance.
type Context struct {
	state *state.State
}

// NewContext creates a storage context over the given state.
func NewContext(state *state.State) *Context {
	return &Context{state: state}
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}

// NameToSlot derives a storage slot key from a human-readable name.
func NameToSlot(name string) vepower.Bytes32 {
	return vepower.BytesToBytes32([]byte(name))
}
