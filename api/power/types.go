// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package power

import "github.com/escrownet/vepower/vepower"

// PowerResult is the response of a point-in-time power query.
type PowerResult struct {
	Epoch vepower.Epoch `json:"epoch"`
	Power int64         `json:"power"`
}
