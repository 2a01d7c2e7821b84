// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/oracle"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
	"github.com/polimec/polimec-node/xcm"
)

const testPolicy = "QmPolicy"

var destination = plmc.BytesToAddress([]byte("destination"))

func tokens(n int64) *big.Int {
	return plmc.Units(n, 6)
}

func testMetadata() *project.Metadata {
	professional := bonding.TicketSize{Min: plmc.USD(5000)}
	contributing := bonding.TicketSize{Min: plmc.USD(1)}
	return &project.Metadata{
		Token:                            project.TokenInformation{Name: "Test", Symbol: "TST", Decimals: 6},
		MainnetTokenMaxSupply:            tokens(1_000_000),
		TotalAllocationSize:              tokens(50_000),
		AuctionRoundAllocationPercentage: fixed.Percent(50),
		MinimumPrice:                     fixed.One,
		BiddingTicketSizes: project.TicketSizes{
			Retail:        bonding.TicketSize{Min: plmc.USD(10)},
			Professional:  professional,
			Institutional: professional,
		},
		ContributingTicketSizes:   project.TicketSizes{Retail: contributing, Professional: contributing, Institutional: contributing},
		ParticipationCurrencies:   []plmc.Asset{plmc.USDT},
		FundingDestinationAccount: destination,
		ParticipantsAccountType:   plmc.PolkadotAccount,
		PolicyIPFSCid:             testPolicy,
	}
}

type harness struct {
	f      *Funding
	ledger *ledger.Store
	oracle *oracle.Static
	router *xcm.Router
	issuer plmc.Investor
	events []Event
}

func newHarness(t *testing.T, modify ...func(p *Params)) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	state := storage.New(db)
	params := DefaultParams()
	for _, m := range modify {
		m(params)
	}
	o, err := oracle.NewStatic(map[plmc.Asset]string{plmc.Native: "1", plmc.USDT: "1"})
	require.NoError(t, err)

	h := &harness{
		ledger: ledger.NewStore(state),
		oracle: o,
		router: xcm.NewRouter(),
	}
	h.f, err = New(state, params, h.ledger, h.oracle, h.router)
	require.NoError(t, err)
	require.NoError(t, h.f.SetBlock(1))
	h.issuer = h.investor(t, "issuer", plmc.Institutional)
	return h
}

// investor returns a credentialed account funded with PLMC and USDT.
func (h *harness) investor(t *testing.T, name string, typ plmc.InvestorType) plmc.Investor {
	inv := plmc.Investor{
		Account: plmc.BytesToAddress([]byte(name)),
		DID:     plmc.DID("did:" + name),
		Type:    typ,
		Policy:  testPolicy,
	}
	require.NoError(t, h.ledger.Mint(plmc.Native, inv.Account, plmc.PLMC(1_000_000)))
	require.NoError(t, h.ledger.Mint(plmc.USDT, inv.Account, tokens(1_000_000)))
	return inv
}

func (h *harness) balance(t *testing.T, asset plmc.Asset, account plmc.Address) *big.Int {
	b, err := h.ledger.Balance(asset, account)
	require.NoError(t, err)
	return b
}

func (h *harness) details(t *testing.T, id plmc.ProjectID) *project.Details {
	d, err := h.f.Details(id)
	require.NoError(t, err)
	return d
}

// createProject registers a project of the harness issuer and starts its evaluation.
func (h *harness) createProject(t *testing.T, metadata *project.Metadata) plmc.ProjectID {
	id, err := h.f.CreateProject(h.issuer, metadata)
	require.NoError(t, err)
	require.NoError(t, h.f.StartEvaluation(h.issuer.Account, id))
	return id
}

// housekeep finalizes block and commits it.
func (h *harness) housekeep(t *testing.T, block uint32) {
	require.NoError(t, h.f.Housekeep(block))
	events, err := h.f.Commit()
	require.NoError(t, err)
	h.events = append(h.events, events...)
}

// jumpTo housekeeps every block with scheduled updates before block, then block itself.
func (h *harness) jumpTo(t *testing.T, block uint32) {
	for {
		next, ok, err := h.f.scheduler.Next()
		require.NoError(t, err)
		if !ok || next >= block {
			break
		}
		h.housekeep(t, next)
	}
	h.housekeep(t, block)
}

// advanceTo housekeeps scheduled blocks until the project reaches the status.
func (h *harness) advanceTo(t *testing.T, id plmc.ProjectID, kind project.StatusKind) {
	for range 16 {
		if h.details(t, id).Status.Kind == kind {
			return
		}
		next, ok, err := h.f.scheduler.Next()
		require.NoError(t, err)
		require.True(t, ok, "nothing scheduled, project %v stuck in %v", id, h.details(t, id).Status)
		h.housekeep(t, next)
	}
	t.Fatalf("project %v did not reach %v", id, kind)
}

func (h *harness) eventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range h.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	h *harness

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(h *harness) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), h: h}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Evaluate(inv plmc.Investor, id plmc.ProjectID, usd *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		_, err := st.h.f.Evaluate(inv, id, usd, OwnReceiver(inv.Account))
		if err != nil {
			t.Fatalf("failed to evaluate %v with %s usd: %v", id, usd, err)
		}
		t.Logf("%s evaluated %s usd", inv.DID, usd)
	})
}

func (st *TestSequence) Bid(inv plmc.Investor, id plmc.ProjectID, amount *big.Int) *TestSequence {
	return st.BidWithMode(inv, id, amount, bonding.Classic(1))
}

func (st *TestSequence) BidWithMode(inv plmc.Investor, id plmc.ProjectID, amount *big.Int, mode bonding.Mode) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		bids, err := st.h.f.Bid(inv, BidParams{
			Project:      id,
			CTAmount:     amount,
			Mode:         mode,
			FundingAsset: plmc.USDT,
			Receiver:     OwnReceiver(inv.Account),
		})
		if err != nil {
			t.Fatalf("failed to bid %s on %v: %v", amount, id, err)
		}
		t.Logf("%s bid %s tokens in %d tranches", inv.DID, amount, len(bids))
	})
}

func (st *TestSequence) Contribute(inv plmc.Investor, id plmc.ProjectID, amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		_, err := st.h.f.Contribute(inv, ContributeParams{
			Project:      id,
			CTAmount:     amount,
			Mode:         bonding.Classic(1),
			FundingAsset: plmc.USDT,
			Receiver:     OwnReceiver(inv.Account),
		})
		if err != nil {
			t.Fatalf("failed to contribute %s to %v: %v", amount, id, err)
		}
		t.Logf("%s contributed %s tokens", inv.DID, amount)
	})
}

func (st *TestSequence) AdvanceTo(id plmc.ProjectID, kind project.StatusKind) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.h.advanceTo(t, id, kind)
		t.Logf("project %v reached %v at block %d", id, kind, st.h.f.Block())
	})
}

func (st *TestSequence) MarkSettled(id plmc.ProjectID) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.h.f.MarkProjectAsSettled(id); err != nil {
			t.Fatalf("failed to mark %v settled: %v", id, err)
		}
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type ProjectAssertions struct {
	f  *Funding
	id plmc.ProjectID

	status    *project.Status
	remaining *big.Int
	reached   *big.Int
	wap       *fixed.U128
	outcome   *project.OutcomeKind
}

func AssertProject(f *Funding, id plmc.ProjectID) *ProjectAssertions {
	return &ProjectAssertions{f: f, id: id}
}

func (pa *ProjectAssertions) Status(expected project.Status) *ProjectAssertions {
	pa.status = &expected
	return pa
}

func (pa *ProjectAssertions) Remaining(expected *big.Int) *ProjectAssertions {
	pa.remaining = expected
	return pa
}

func (pa *ProjectAssertions) Reached(expected *big.Int) *ProjectAssertions {
	pa.reached = expected
	return pa
}

func (pa *ProjectAssertions) WAP(expected fixed.U128) *ProjectAssertions {
	pa.wap = &expected
	return pa
}

func (pa *ProjectAssertions) EvaluatorsOutcome(expected project.OutcomeKind) *ProjectAssertions {
	pa.outcome = &expected
	return pa
}

func (pa *ProjectAssertions) Assert(t *testing.T) {
	details, err := pa.f.Details(pa.id)
	require.NoError(t, err, "failed to get project %v", pa.id)

	if pa.status != nil {
		assert.Equal(t, *pa.status, details.Status, "project %v status mismatch", pa.id)
	}
	if pa.remaining != nil {
		assert.Equal(t, pa.remaining.String(), details.RemainingContributionTokens.String(), "project %v remaining mismatch", pa.id)
	}
	if pa.reached != nil {
		assert.Equal(t, pa.reached.String(), details.FundingAmountReached.String(), "project %v funding reached mismatch", pa.id)
	}
	if pa.wap != nil {
		wap, err := details.WAP()
		assert.NoError(t, err)
		assert.Equal(t, pa.wap.String(), wap.String(), "project %v weighted average price mismatch", pa.id)
	}
	if pa.outcome != nil {
		assert.Equal(t, *pa.outcome, details.Evaluation.EvaluatorsOutcome.Kind, "project %v evaluators outcome mismatch", pa.id)
	}
}
