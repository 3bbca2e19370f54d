// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/escrownet/vepower/kv"
	"github.com/escrownet/vepower/stackedmap"
	"github.com/escrownet/vepower/vepower"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State is the mutable view over the engine's persistent storage.
// All writes are journaled in a stacked map, so a transition can be
// checkpointed and reverted as a whole; nothing reaches the backing
// store until Commit.
type State struct {
	store kv.Getter
	sm    *stackedmap.StackedMap
}

// New create state object with the given backing store.
func New(store kv.Getter) *State {
	state := State{store: store}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.storeGetter(key)
	})
	// base level, holds writes of committed-but-unflushed transitions
	state.sm.Push()
	return &state
}

// storeGetter implements stackedmap.MapGetter.
func (s *State) storeGetter(key interface{}) (value interface{}, exist bool, err error) {
	k, ok := key.(vepower.Bytes32)
	if !ok {
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
	raw, err := s.store.Get(k.Bytes())
	if err != nil {
		if s.store.IsNotFound(err) {
			return []byte(nil), true, nil
		}
		return nil, false, &Error{err}
	}
	return raw, true, nil
}

// Get returns the raw value stored at key. A missing entry yields an
// empty slice and no error.
func (s *State) Get(key vepower.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(key)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Set journals the raw value for key. An empty value marks the entry
// for deletion on commit.
func (s *State) Set(key vepower.Bytes32, val []byte) {
	s.sm.Put(key, val)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts state to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit writes all journaled changes into the given store in one batch
// and resets the journal. Empty values are deleted from the store.
func (s *State) Commit(store kv.Putter) error {
	batch := store.NewBatch()
	for _, entry := range s.sm.Journal() {
		key := entry.Key.(vepower.Bytes32)
		val := entry.Value.([]byte)
		if len(val) == 0 {
			if err := batch.Delete(key.Bytes()); err != nil {
				return &Error{err}
			}
			continue
		}
		if err := batch.Put(key.Bytes(), val); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	// all levels flushed, start over
	s.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return s.storeGetter(key)
	})
	s.sm.Push()
	return nil
}
