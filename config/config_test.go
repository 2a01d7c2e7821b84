// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

const sample = `
durations:
  evaluation: 10
  community: 20
limits:
  settlements_per_block: 8
min_usd_per_evaluation: "250.5"
evaluation_success_threshold: "0.2"
fee_brackets:
  - fee: "0.1"
    limit: "1000"
  - fee: "0.05"
treasuries:
  protocol: "0x0000000000000000000000000000000000000000000000000000000000000001"
prices:
  plmc: "0.37"
  USDT: "1.001"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	p, err := c.Params()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), p.MaxSettlementsPerBlock)
	assert.Equal(t, funding.DefaultParams().MaxBidsPerUser, p.MaxBidsPerUser)
	assert.Equal(t, "250500000", p.MinUSDPerEvaluation.String())
	assert.Equal(t, fixed.Percent(20), p.EvaluationSuccessThreshold)
	require.Len(t, p.FeeBrackets, 2)
	assert.Equal(t, plmc.USD(1000), p.FeeBrackets[0].Limit)
	assert.Nil(t, p.FeeBrackets[1].Limit)
	assert.Equal(t, plmc.BytesToAddress([]byte{1}), p.ProtocolTreasury)
	assert.Equal(t, funding.DefaultParams().BondTreasury, p.BondTreasury)

	o, err := c.Oracle()
	require.NoError(t, err)
	price, ok := o.Price(plmc.Native)
	require.True(t, ok)
	assert.Equal(t, "0.37", price.String())
	// defaults not overridden by the file stay
	price, ok = o.Price(plmc.DOT)
	require.True(t, ok)
	assert.Equal(t, "5", price.String())
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unbounded middle bracket", "fee_brackets: [{fee: \"0.1\"}, {fee: \"0.05\"}]"},
		{"ratio above one", "evaluation_success_threshold: \"1.5\""},
		{"bad treasury", "treasuries: {bond: \"xyz\"}"},
		{"negative amount", "min_usd_per_evaluation: \"-1\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = c.Params()
			assert.Error(t, err)
		})
	}

	c, err := Parse([]byte("prices: {BTC: \"1\"}"))
	require.NoError(t, err)
	_, err = c.Oracle()
	assert.Error(t, err)

	c, err = Parse([]byte("prices: {USDT: \"0\"}"))
	require.NoError(t, err)
	_, err = c.Oracle()
	assert.Error(t, err)

	_, err = Parse([]byte("limits: [1, 2]"))
	assert.Error(t, err)
}

func TestApplyDurations(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	state := storage.New(db)

	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, c.ApplyDurations(state))

	stored, err := storage.NewValue[uint32](state, funding.EvaluationRoundDuration.Slot()).Get()
	require.NoError(t, err)
	assert.Equal(t, uint32(10), stored)
	stored, err = storage.NewValue[uint32](state, funding.AuctionOpeningDuration.Slot()).Get()
	require.NoError(t, err)
	assert.Zero(t, stored)
}

func TestVerifier(t *testing.T) {
	c := Default()
	v, err := c.Verifier()
	require.NoError(t, err)
	assert.Nil(t, v)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	c.Credentials = Credentials{Issuer: "kyc", PublicKey: "0x" + hex.EncodeToString(pub)}
	v, err = c.Verifier()
	require.NoError(t, err)
	require.NotNil(t, v)

	investor := plmc.Investor{
		Account: plmc.BytesToAddress([]byte("alice")),
		DID:     "did:alice",
		Type:    plmc.Retail,
		Policy:  "QmPolicy",
	}
	now := time.Now()
	token, err := credentials.Issue(priv, "kyc", investor, now.Add(time.Hour))
	require.NoError(t, err)
	got, err := v.Verify(token, now)
	require.NoError(t, err)
	assert.Equal(t, investor, got)

	c.Credentials.PublicKey = "zz"
	_, err = c.Verifier()
	assert.Error(t, err)
}
