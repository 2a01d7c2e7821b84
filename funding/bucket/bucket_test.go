// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bucket

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBucket() *Bucket {
	// 1000 tokens at 10 USD, steps of 100 tokens and 1 USD
	return New(big.NewInt(1000), fixed.FromUint64(10))
}

func TestNew(t *testing.T) {
	b := newBucket()
	assert.Equal(t, int64(1000), b.AmountLeft.Int64())
	assert.Equal(t, int64(100), b.DeltaAmount.Int64())
	assert.Equal(t, "10", b.CurrentPrice.String())
	assert.Equal(t, "1", b.DeltaPrice.String())
}

func TestFillWithinFirstStep(t *testing.T) {
	b := newBucket()
	fill, err := b.Fill(big.NewInt(400))
	require.NoError(t, err)

	assert.Len(t, fill.Tranches, 1)
	assert.Equal(t, "10", fill.WeightedPrice.String())
	assert.Equal(t, int64(600), b.AmountLeft.Int64())
	assert.Equal(t, "10", b.CurrentPrice.String())
}

func TestFillSpanningSteps(t *testing.T) {
	b := newBucket()
	_, err := b.Fill(big.NewInt(950))
	require.NoError(t, err)

	// 50 at 10, 100 at 11, 50 at 12
	fill, err := b.Fill(big.NewInt(200))
	require.NoError(t, err)
	require.Len(t, fill.Tranches, 3)
	assert.Equal(t, "10", fill.Tranches[0].Price.String())
	assert.Equal(t, int64(50), fill.Tranches[0].Amount.Int64())
	assert.Equal(t, "11", fill.Tranches[1].Price.String())
	assert.Equal(t, int64(100), fill.Tranches[1].Amount.Int64())
	assert.Equal(t, "12", fill.Tranches[2].Price.String())
	assert.Equal(t, int64(50), fill.Tranches[2].Amount.Int64())

	// (500 + 1100 + 600) / 200
	assert.Equal(t, "11", fill.WeightedPrice.String())
	assert.Equal(t, "12", b.CurrentPrice.String())
	assert.Equal(t, int64(50), b.AmountLeft.Int64())
}

func TestFillExactStepAdvances(t *testing.T) {
	b := newBucket()
	_, err := b.Fill(big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "11", b.CurrentPrice.String())
	assert.Equal(t, int64(100), b.AmountLeft.Int64())
}

func TestFillRejectsZero(t *testing.T) {
	b := newBucket()
	_, err := b.Fill(big.NewInt(0))
	assert.ErrorIs(t, err, reverts.ErrTooLow)
	assert.Equal(t, int64(1000), b.AmountLeft.Int64())
}

func TestWeightedAveragePrice(t *testing.T) {
	b := newBucket()
	wap, err := b.WeightedAveragePrice(nil)
	require.NoError(t, err)
	assert.Equal(t, "10", wap.String())

	fill, err := b.Fill(big.NewInt(1150))
	require.NoError(t, err)

	// the whole fill averages to its own weighted price
	wap, err = b.WeightedAveragePrice(fill.Tranches)
	require.NoError(t, err)
	assert.Equal(t, 0, fill.WeightedPrice.Cmp(wap))

	// top 1000 tokens: 50 at 12, 100 at 11, 850 at 10
	wap, err = b.WeightedAveragePrice([]Tranche{
		{Amount: big.NewInt(50), Price: fixed.FromUint64(12)},
		{Amount: big.NewInt(100), Price: fixed.FromUint64(11)},
		{Amount: big.NewInt(850), Price: fixed.FromUint64(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, "10.2", wap.String())

	// empty tranches do not move the average
	wap, err = b.WeightedAveragePrice([]Tranche{
		{Amount: big.NewInt(0), Price: fixed.FromUint64(99)},
		{Amount: big.NewInt(10), Price: fixed.FromUint64(11)},
	})
	require.NoError(t, err)
	assert.Equal(t, "11", wap.String())
}

func TestPriceIsMonotonic(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 50 {
		b := newBucket()
		last := b.CurrentPrice
		var amounts []uint16
		f.NumElements(1, 30).Fuzz(&amounts)
		for _, a := range amounts {
			amount := big.NewInt(int64(a%500) + 1)
			fill, err := b.Fill(amount)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, b.CurrentPrice.Cmp(last), 0)
			total := new(big.Int)
			for i, tr := range fill.Tranches {
				total.Add(total, tr.Amount)
				if i > 0 {
					assert.Equal(t, 1, tr.Price.Cmp(fill.Tranches[i-1].Price))
				}
			}
			assert.Equal(t, 0, amount.Cmp(total))
			last = b.CurrentPrice
		}
	}
}
