// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/escrownet/vepower/vepower"
)

// Key is anything usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Values are RLP encoded; the slot of an entry is derived by hashing the key
// with the mapping's base position.
type Mapping[K Key, V any] struct {
	context *Context
	basePos vepower.Bytes32
}

// NewMapping creates a mapping rooted at pos.
func NewMapping[K Key, V any](context *Context, pos vepower.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) slot(key K) vepower.Bytes32 {
	return vepower.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value stored for key, or the zero value if absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.context.state.Get(m.slot(key))
	if err != nil {
		return value, err
	}
	if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	if len(raw) == 0 {
		return value, nil
	}
	err = rlp.DecodeBytes(raw, &value)
	return value, err
}

// Set stores the value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.context.state.Set(m.slot(key), raw)
	return nil
}

// Delete removes the entry for key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.Set(m.slot(key), nil)
}

// Has returns whether an entry exists for key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.state.Get(m.slot(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}
