// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vepower

import (
	"io"
	"math"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Epoch is a discrete time bucket of the epoch clock.
type Epoch uint32

// StakeID identifies a stake record. IDs are assigned sequentially and never reused.
type StakeID uint64

// Power is a signed voting power value. Deltas recorded on a power timeline
// are negative for decay cliffs, so the type must carry sign through storage.
type Power int64

// EncodeRLP implements rlp.Encoder. RLP has no signed integer kind, so the
// value is zigzag-mapped onto uint64 first.
func (p Power) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, zigzag(int64(p)))
}

// DecodeRLP implements rlp.Decoder.
func (p *Power) DecodeRLP(s *rlp.Stream) error {
	u, err := s.Uint64()
	if err != nil {
		return errors.Wrap(err, "decode power")
	}
	*p = Power(unzigzag(u))
	return nil
}

func zigzag(i int64) uint64 {
	return uint64(i<<1) ^ uint64(i>>63)
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AddPower adds two power values with overflow checks.
func AddPower(a, b Power) (Power, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, errors.New("power overflow")
	}
	return sum, nil
}

// MaxPower is the largest representable power value.
const MaxPower = Power(math.MaxInt64)
