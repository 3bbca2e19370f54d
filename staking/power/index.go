// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package power

import (
	"sort"

	"github.com/escrownet/vepower/vepower"
)

// findIndex returns the position of epoch within epochs, searching from low
// onward. If the epoch is not present, it returns the insertion point and
// false.
func findIndex(epochs []vepower.Epoch, epoch vepower.Epoch, low int) (int, bool) {
	if low < 0 {
		low = 0
	}
	i := low + sort.Search(len(epochs)-low, func(i int) bool {
		return epochs[low+i] >= epoch
	})
	if i < len(epochs) && epochs[i] == epoch {
		return i, true
	}
	return i, false
}

// findNearestIndex returns the index of the greatest epoch <= the given one
// within [low, high). It returns false if no such epoch exists.
func findNearestIndex(epochs []vepower.Epoch, epoch vepower.Epoch, low, high int) (int, bool) {
	if low < 0 {
		low = 0
	}
	if high > len(epochs) {
		high = len(epochs)
	}
	if low >= high {
		return 0, false
	}
	i, found := findIndex(epochs[:high], epoch, low)
	if found {
		return i, true
	}
	if i == low {
		return 0, false
	}
	return i - 1, true
}

// insertEpoch inserts epoch at position i, keeping the sequence sorted.
func insertEpoch(epochs []vepower.Epoch, i int, epoch vepower.Epoch) []vepower.Epoch {
	epochs = append(epochs, 0)
	copy(epochs[i+1:], epochs[i:])
	epochs[i] = epoch
	return epochs
}

// removeEpoch removes the entry at position i.
func removeEpoch(epochs []vepower.Epoch, i int) []vepower.Epoch {
	copy(epochs[i:], epochs[i+1:])
	return epochs[:len(epochs)-1]
}
