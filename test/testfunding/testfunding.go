// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testfunding builds an in-memory funding service for tests of the outer layers.
package testfunding

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/oracle"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
	"github.com/polimec/polimec-node/xcm"
)

// Policy is the policy every test investor is whitelisted for.
const Policy = "QmPolicy"

// Env is a funding service over a memory database.
type Env struct {
	Funding *funding.Funding
	Ledger  *ledger.Store
	Oracle  *oracle.Static
	Router  *xcm.Router
	Issuer  plmc.Investor
}

// New creates the environment at block 1.
func New(t *testing.T) *Env {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	state := storage.New(db)
	o, err := oracle.NewStatic(map[plmc.Asset]string{plmc.Native: "1", plmc.USDT: "1"})
	require.NoError(t, err)

	env := &Env{
		Ledger: ledger.NewStore(state),
		Oracle: o,
		Router: xcm.NewRouter(),
	}
	env.Funding, err = funding.New(state, funding.DefaultParams(), env.Ledger, env.Oracle, env.Router)
	require.NoError(t, err)
	require.NoError(t, env.Funding.SetBlock(1))
	env.Issuer = env.Investor(t, "issuer", plmc.Institutional)
	_, err = env.Funding.Commit()
	require.NoError(t, err)
	return env
}

// Investor returns a credentialed account funded with PLMC and USDT. The caller commits.
func (e *Env) Investor(t *testing.T, name string, typ plmc.InvestorType) plmc.Investor {
	inv := plmc.Investor{
		Account: plmc.BytesToAddress([]byte(name)),
		DID:     plmc.DID("did:" + name),
		Type:    typ,
		Policy:  Policy,
	}
	require.NoError(t, e.Ledger.Mint(plmc.Native, inv.Account, plmc.PLMC(1_000_000)))
	require.NoError(t, e.Ledger.Mint(plmc.USDT, inv.Account, plmc.Units(1_000_000, 6)))
	return inv
}

// Tokens returns n whole contribution tokens of the metadata returned by Metadata.
func Tokens(n int64) *big.Int {
	return plmc.Units(n, 6)
}

// Metadata describes a 50k token fundraise at 1 USD, half of it auctioned.
func Metadata() *project.Metadata {
	professional := bonding.TicketSize{Min: plmc.USD(5000)}
	contributing := bonding.TicketSize{Min: plmc.USD(1)}
	return &project.Metadata{
		Token:                            project.TokenInformation{Name: "Test", Symbol: "TST", Decimals: 6},
		MainnetTokenMaxSupply:            Tokens(1_000_000),
		TotalAllocationSize:              Tokens(50_000),
		AuctionRoundAllocationPercentage: fixed.Percent(50),
		MinimumPrice:                     fixed.One,
		BiddingTicketSizes: project.TicketSizes{
			Retail:        bonding.TicketSize{Min: plmc.USD(10)},
			Professional:  professional,
			Institutional: professional,
		},
		ContributingTicketSizes:   project.TicketSizes{Retail: contributing, Professional: contributing, Institutional: contributing},
		ParticipationCurrencies:   []plmc.Asset{plmc.USDT},
		FundingDestinationAccount: plmc.BytesToAddress([]byte("destination")),
		ParticipantsAccountType:   plmc.PolkadotAccount,
		PolicyIPFSCid:             Policy,
	}
}
