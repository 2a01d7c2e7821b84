// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/plmc"
)

func TestStatic(t *testing.T) {
	o, err := NewStatic(map[plmc.Asset]string{
		plmc.Native: "8.4",
		plmc.USDT:   "1",
		plmc.DOT:    "7",
	})
	require.NoError(t, err)

	p, ok := o.DecimalsAwarePrice(plmc.Native, plmc.USDDecimals, plmc.PLMCDecimals)
	assert.True(t, ok)
	assert.Equal(t, "0.00084", p.String())

	p, ok = o.DecimalsAwarePrice(plmc.USDT, plmc.USDDecimals, plmc.USDT.Decimals())
	assert.True(t, ok)
	assert.Equal(t, "1", p.String())

	_, ok = o.DecimalsAwarePrice(plmc.USDC, plmc.USDDecimals, plmc.USDC.Decimals())
	assert.False(t, ok)

	o.Set(plmc.USDC, fixed.MustParse("0.99"))
	p, ok = o.DecimalsAwarePrice(plmc.USDC, plmc.USDDecimals, plmc.USDC.Decimals())
	assert.True(t, ok)
	assert.Equal(t, "0.99", p.String())

	_, err = NewStatic(map[plmc.Asset]string{plmc.DOT: "seven"})
	assert.Error(t, err)
}
