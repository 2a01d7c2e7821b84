// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))

	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("1x" + addr.String()[2:])
	assert.EqualError(t, err, "invalid prefix")
}

func TestDeriveAccount(t *testing.T) {
	id := ProjectID(7)
	assert.Equal(t, id.Escrow(), ProjectID(7).Escrow())
	assert.NotEqual(t, id.Escrow(), ProjectID(8).Escrow())
	assert.NotEqual(t, id.Escrow(), id.BondingEscrow())
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256().String())
}

func TestDID(t *testing.T) {
	assert.NoError(t, DID("did:plmc:alice").Validate())
	assert.Error(t, DID("").Validate())

	long := make([]byte, MaxDIDLength+1)
	assert.Error(t, DID(long).Validate())
}

func TestInvestorType(t *testing.T) {
	for _, typ := range []InvestorType{Retail, Professional, Institutional} {
		parsed, err := ParseInvestorType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	_, err := ParseInvestorType("whale")
	assert.Error(t, err)
}

func TestAssets(t *testing.T) {
	ct := ContributionToken(3)
	assert.Equal(t, Asset("CT-3"), ct)
	assert.True(t, ct.IsContributionToken())
	assert.False(t, ct.IsFundingAsset())
	assert.True(t, USDT.IsFundingAsset())
	assert.False(t, Native.IsFundingAsset())

	a, err := ParseFundingAsset("usdc")
	require.NoError(t, err)
	assert.Equal(t, USDC, a)
	_, err = ParseFundingAsset("plmc")
	assert.Error(t, err)
}

func TestReceivingAccount(t *testing.T) {
	eth, err := ParseReceivingAccount("0x00112233445566778899aabbccddeeff00112233")
	require.NoError(t, err)
	assert.Equal(t, EthereumAccount, eth.Type)
	assert.NoError(t, eth.Validate())

	dot := PolkadotReceiver(BytesToAddress([]byte("bob")))
	assert.Equal(t, PolkadotAccount, dot.Type)
	assert.NoError(t, dot.Validate())

	bad := ReceivingAccount{Type: EthereumAccount, Key: dot.Key}
	assert.Error(t, bad.Validate())
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "1000000", USD(1).String())
	assert.Equal(t, "10000000000", PLMC(1).String())
	assert.Equal(t, uint32(14400), Days(2))
}
