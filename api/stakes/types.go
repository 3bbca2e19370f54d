// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/escrownet/vepower/staking"
	"github.com/escrownet/vepower/vepower"
)

// Stake is the JSON shape of a stored stake.
type Stake struct {
	ID           vepower.StakeID `json:"id"`
	Owner        string          `json:"owner"`
	Amount       uint64          `json:"amount"`
	InitialEpoch vepower.Epoch   `json:"initialEpoch"`
	LockUpEpochs uint8           `json:"lockUpEpochs"`
	EndEpoch     vepower.Epoch   `json:"endEpoch"`
}

// OwnerStakes lists an owner's stakes and total principal.
type OwnerStakes struct {
	Owner        string            `json:"owner"`
	StakeIDs     []vepower.StakeID `json:"stakeIds"`
	StakedAmount uint64            `json:"stakedAmount"`
}

func convertStake(id vepower.StakeID, stake *staking.Stake) *Stake {
	return &Stake{
		ID:           id,
		Owner:        stake.Owner.String(),
		Amount:       stake.Amount,
		InitialEpoch: stake.InitialEpoch,
		LockUpEpochs: stake.LockUpEpochs,
		EndEpoch:     stake.EndEpoch(),
	}
}
