// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package power

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/vepower/vepower"
)

func epochs(es ...vepower.Epoch) []vepower.Epoch { return es }

func TestFindIndex(t *testing.T) {
	es := epochs(10, 20, 30, 40)

	i, found := findIndex(es, 20, 0)
	assert.True(t, found)
	assert.Equal(t, 1, i)

	i, found = findIndex(es, 25, 0)
	assert.False(t, found)
	assert.Equal(t, 2, i)

	i, found = findIndex(es, 5, 0)
	assert.False(t, found)
	assert.Equal(t, 0, i)

	i, found = findIndex(es, 50, 0)
	assert.False(t, found)
	assert.Equal(t, 4, i)

	// search window starts past the match
	i, found = findIndex(es, 10, 2)
	assert.False(t, found)
	assert.Equal(t, 2, i)

	i, found = findIndex(nil, 10, 0)
	assert.False(t, found)
	assert.Equal(t, 0, i)
}

func TestFindNearestIndex(t *testing.T) {
	es := epochs(10, 20, 30, 40)

	i, ok := findNearestIndex(es, 25, 0, len(es))
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = findNearestIndex(es, 30, 0, len(es))
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok = findNearestIndex(es, 100, 0, len(es))
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	_, ok = findNearestIndex(es, 5, 0, len(es))
	assert.False(t, ok)

	// bounded window
	i, ok = findNearestIndex(es, 100, 0, 2)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = findNearestIndex(es, 15, 1, len(es))
	assert.False(t, ok)

	_, ok = findNearestIndex(es, 20, 2, 2)
	assert.False(t, ok)
}

func TestInsertRemoveEpoch(t *testing.T) {
	es := epochs(10, 30)

	es = insertEpoch(es, 1, 20)
	assert.Equal(t, epochs(10, 20, 30), es)

	es = insertEpoch(es, 0, 5)
	assert.Equal(t, epochs(5, 10, 20, 30), es)

	es = insertEpoch(es, 4, 40)
	assert.Equal(t, epochs(5, 10, 20, 30, 40), es)

	es = removeEpoch(es, 0)
	assert.Equal(t, epochs(10, 20, 30, 40), es)

	es = removeEpoch(es, 3)
	assert.Equal(t, epochs(10, 20, 30), es)

	es = removeEpoch(es, 1)
	assert.Equal(t, epochs(10, 30), es)
}
