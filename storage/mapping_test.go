// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrownet/vepower/lvldb"
	"github.com/escrownet/vepower/state"
	"github.com/escrownet/vepower/vepower"
)

type strKey string

func (k strKey) Bytes() []byte { return []byte(k) }

type record struct {
	Amount uint64
	Epoch  vepower.Epoch
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(state.New(db))
}

func TestMapping_StructValues(t *testing.T) {
	sctx := newTestContext(t)
	m := NewMapping[strKey, *record](sctx, NameToSlot("records"))

	// missing key yields a zero value
	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, &record{}, v)

	require.NoError(t, m.Set("a", &record{Amount: 7, Epoch: 42}))
	v, err = m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, &record{Amount: 7, Epoch: 42}, v)

	has, err := m.Has("a")
	require.NoError(t, err)
	assert.True(t, has)

	m.Delete("a")
	has, err = m.Has("a")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMapping_SliceValues(t *testing.T) {
	sctx := newTestContext(t)
	m := NewMapping[strKey, []vepower.Epoch](sctx, NameToSlot("epochs"))

	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, m.Set("a", []vepower.Epoch{1, 2, 3}))
	v, err = m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []vepower.Epoch{1, 2, 3}, v)
}

func TestMapping_SignedValues(t *testing.T) {
	sctx := newTestContext(t)
	m := NewMapping[strKey, vepower.Power](sctx, NameToSlot("powers"))

	require.NoError(t, m.Set("neg", vepower.Power(-115)))
	require.NoError(t, m.Set("pos", vepower.Power(130)))

	v, err := m.Get("neg")
	require.NoError(t, err)
	assert.Equal(t, vepower.Power(-115), v)
	v, err = m.Get("pos")
	require.NoError(t, err)
	assert.Equal(t, vepower.Power(130), v)
}

func TestMapping_DistinctSlots(t *testing.T) {
	sctx := newTestContext(t)
	m1 := NewMapping[strKey, []vepower.Epoch](sctx, NameToSlot("one"))
	m2 := NewMapping[strKey, []vepower.Epoch](sctx, NameToSlot("two"))

	require.NoError(t, m1.Set("a", []vepower.Epoch{1}))
	v, err := m2.Get("a")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestUint64(t *testing.T) {
	sctx := newTestContext(t)
	u := NewUint64(sctx, NameToSlot("counter"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	require.NoError(t, u.Set(41))
	require.NoError(t, u.Add(1))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}
