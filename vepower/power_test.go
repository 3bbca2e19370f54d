// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package vepower

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerRLP_Signed(t *testing.T) {
	for _, p := range []Power{0, 1, -1, 115, -115, math.MaxInt64, math.MinInt64} {
		raw, err := rlp.EncodeToBytes(p)
		require.NoError(t, err)

		var got Power
		require.NoError(t, rlp.DecodeBytes(raw, &got))
		assert.Equal(t, p, got)
	}
}

func TestAddPower(t *testing.T) {
	sum, err := AddPower(130, -15)
	require.NoError(t, err)
	assert.Equal(t, Power(115), sum)

	_, err = AddPower(MaxPower, 1)
	assert.Error(t, err)
	_, err = AddPower(Power(math.MinInt64), -1)
	assert.Error(t, err)

	sum, err = AddPower(MaxPower, -MaxPower)
	require.NoError(t, err)
	assert.Equal(t, Power(0), sum)
}

func TestParseAddress(t *testing.T) {
	addr := BytesToAddress([]byte("staker"))

	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, *parsed)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)
	_, err = ParseAddress("zz" + addr.String()[2:])
	assert.Error(t, err)

	noPrefix := addr.String()[2:]
	parsed, err = ParseAddress(noPrefix)
	require.NoError(t, err)
	assert.Equal(t, addr, *parsed)
}

func TestBytesToAddress(t *testing.T) {
	long := make([]byte, 30)
	long[29] = 0xff
	assert.Equal(t, byte(0xff), BytesToAddress(long)[AddressLength-1])

	short := BytesToAddress([]byte{0x01})
	assert.Equal(t, byte(0x01), short[AddressLength-1])
	assert.Equal(t, byte(0x00), short[0])
	assert.False(t, short.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestBlake2b(t *testing.T) {
	h1 := Blake2b([]byte("a"), []byte("b"))
	h2 := Blake2b([]byte("a"), []byte("b"))
	h3 := Blake2b([]byte("ab"))

	assert.Equal(t, h1, h2)
	assert.Equal(t, h1, h3)
	assert.False(t, h1.IsZero())
	assert.NotEqual(t, h1, Blake2b([]byte("c")))
}
