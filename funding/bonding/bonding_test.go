// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonding

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 8.4 USD per PLMC, decimals aware from 10 to 6 decimals
var plmcPrice = fixed.MustParse("0.00084")

func TestMaxMultiplier(t *testing.T) {
	tests := []struct {
		investor plmc.InvestorType
		projects uint32
		expected uint8
	}{
		{plmc.Retail, 0, 1},
		{plmc.Retail, 2, 1},
		{plmc.Retail, 3, 2},
		{plmc.Retail, 5, 4},
		{plmc.Retail, 9, 4},
		{plmc.Retail, 10, 7},
		{plmc.Retail, 24, 7},
		{plmc.Retail, 25, 10},
		{plmc.Retail, 1000, 10},
		{plmc.Professional, 0, 10},
		{plmc.Institutional, 0, 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MaxMultiplierFor(tt.investor, tt.projects), "%s %d", tt.investor, tt.projects)
	}
}

func TestValidateMode(t *testing.T) {
	assert.NoError(t, ValidateMode(Classic(1), plmc.Retail, 0))
	assert.ErrorIs(t, ValidateMode(Classic(2), plmc.Retail, 0), reverts.ErrForbiddenMultiplier)
	assert.ErrorIs(t, ValidateMode(Classic(0), plmc.Institutional, 0), reverts.ErrForbiddenMultiplier)
	assert.NoError(t, ValidateMode(Classic(25), plmc.Institutional, 0))
	assert.ErrorIs(t, ValidateMode(Classic(11), plmc.Professional, 0), reverts.ErrForbiddenMultiplier)
	assert.NoError(t, ValidateMode(OTM(), plmc.Retail, 0))
	assert.ErrorIs(t, ValidateMode(Mode{OTM: true, Multiplier: 3}, plmc.Retail, 0), reverts.ErrForbiddenMultiplier)
}

func TestBond(t *testing.T) {
	ticket := plmc.USD(8400)

	bond, err := Bond(ticket, Classic(1), plmcPrice)
	require.NoError(t, err)
	assert.Equal(t, 0, plmc.PLMC(1000).Cmp(bond), bond.String())

	bond, err = Bond(ticket, Classic(4), plmcPrice)
	require.NoError(t, err)
	assert.Equal(t, 0, plmc.PLMC(250).Cmp(bond), bond.String())

	_, err = Bond(ticket, Classic(0), plmcPrice)
	assert.ErrorIs(t, err, reverts.ErrBadMath)

	_, err = Bond(ticket, Classic(1), fixed.Zero)
	assert.ErrorIs(t, err, reverts.ErrBadMath)
}

func TestUSDToNativeRoundsUp(t *testing.T) {
	price := fixed.FromUint64(3)
	native, err := USDToNative(big.NewInt(3), price)
	require.NoError(t, err)
	// ceil(1/3) × 3 is just above one
	assert.Equal(t, int64(1), native.Int64())

	usd, err := NativeToUSD(native, price)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, usd.Int64(), int64(3))
}

func TestRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	one := big.NewInt(1)
	for range 200 {
		var x uint64
		f.Fuzz(&x)
		usd := new(big.Int).SetUint64(x % 1_000_000_000_000_000)

		native, err := USDToNative(usd, plmcPrice)
		require.NoError(t, err)
		back, err := NativeToUSD(native, plmcPrice)
		require.NoError(t, err)

		diff := new(big.Int).Sub(back, usd)
		diff.Abs(diff)
		assert.LessOrEqual(t, diff.Cmp(one), 0, "usd %s back %s", usd, back)
	}
}

func TestOTMFee(t *testing.T) {
	bond := plmc.PLMC(1000) // 8400 USD
	fee, err := OTMFee(bond, plmcPrice, fixed.One)
	require.NoError(t, err)
	// 7.5% of 8400 USD paid in a 1 USD stable coin
	assert.Equal(t, 0, plmc.USD(630).Cmp(fee), fee.String())
}

func TestTicketSize(t *testing.T) {
	ts := TicketSize{Min: plmc.USD(100), Max: plmc.USD(1000)}
	assert.NoError(t, ts.Validate(plmc.USD(100), plmc.USD(0)))
	assert.ErrorIs(t, ts.Validate(plmc.USD(99), plmc.USD(0)), reverts.ErrTooLow)
	assert.ErrorIs(t, ts.Validate(plmc.USD(500), plmc.USD(600)), reverts.ErrTooHigh)
	assert.NoError(t, ts.Validate(plmc.USD(400), plmc.USD(600)))

	unbounded := TicketSize{Min: plmc.USD(1)}
	assert.NoError(t, unbounded.Validate(plmc.USD(1_000_000_000), plmc.USD(1_000_000_000)))
}

func TestVesting(t *testing.T) {
	assert.Equal(t, uint32(1), VestingDuration(1))
	// 2.167 weeks
	assert.Equal(t, uint32(109216), VestingDuration(2))
	assert.Equal(t, uint32(24*2167*7*7200/1000), VestingDuration(25))

	info := NewVestingInfo(big.NewInt(1_092_160), 2)
	assert.Equal(t, int64(10), info.AmountPerBlock.Int64())
	assert.Equal(t, uint32(109216), info.Duration)

	tiny := NewVestingInfo(big.NewInt(5), 3)
	assert.Equal(t, int64(1), tiny.AmountPerBlock.Int64())

	instant := NewVestingInfo(big.NewInt(5), 1)
	assert.Equal(t, int64(5), instant.AmountPerBlock.Int64())
}
