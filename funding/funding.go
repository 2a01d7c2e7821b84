// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package funding runs the fundraising life cycle of projects: evaluation, auction, community
// contributions, settlement and token migration.
package funding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/bucket"
	"github.com/polimec/polimec-node/funding/migration"
	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/scheduler"
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/metrics"
	"github.com/polimec/polimec-node/oracle"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
	"github.com/polimec/polimec-node/xcm"
)

var (
	logger = log.WithContext("pkg", "funding")

	metricParticipations     = metrics.LazyLoadCounterVec("funding_participations_count", []string{"kind"})
	metricTransitions        = metrics.LazyLoadCounterVec("funding_transitions_count", []string{"status"})
	metricSettlementFailures = metrics.LazyLoadCounter("funding_settlement_failures_count")
	metricTransitionFailures = metrics.LazyLoadCounter("funding_transition_failures_count")
	metricScheduledEntries   = metrics.LazyLoadGauge("funding_scheduled_entries")
	metricHousekeeping       = metrics.LazyLoadHistogram("funding_housekeeping_duration_ms", metrics.BucketHousekeeping)

	slotCurrentBlock = storage.Slot("current-block")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Funding implements the fundraising operations over a state.
// It is not safe for concurrent use.
type Funding struct {
	state   *storage.State
	params  *Params
	ledger  ledger.Ledger
	oracle  oracle.PriceOracle
	channel xcm.Channel

	projects       *project.Repository
	participations *participation.Repository
	migrations     *migration.Repository
	scheduler      *scheduler.Scheduler

	currentBlock *storage.Value[uint32]
	block        uint32

	feed    event.Feed
	pending []Event
}

// New creates the service. The channel may be nil when pallet migrations are not used.
func New(state *storage.State, params *Params, l ledger.Ledger, o oracle.PriceOracle, channel xcm.Channel) (*Funding, error) {
	// debug overrides for testing
	for _, d := range durations {
		d.Override(state)
	}

	f := &Funding{
		state:   state,
		params:  params,
		ledger:  l,
		oracle:  o,
		channel: channel,

		projects:       project.NewRepository(state),
		participations: participation.NewRepository(state),
		migrations:     migration.NewRepository(state),
		scheduler:      scheduler.New(state, params.MaxProjectsToUpdatePerBlock),

		currentBlock: storage.NewValue[uint32](state, slotCurrentBlock),
	}
	block, err := f.currentBlock.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current block")
	}
	f.block = block
	return f, nil
}

// Block returns the block calls are applied in.
func (f *Funding) Block() uint32 {
	return f.block
}

// SetBlock moves the service to a new block.
func (f *Funding) SetBlock(block uint32) error {
	f.block = block
	return errors.Wrap(f.currentBlock.Set(block), "failed to set current block")
}

func (f *Funding) Params() *Params {
	return f.params
}

// transact runs fn atomically. Events emitted by a failing fn are dropped with its writes.
func (f *Funding) transact(fn func() error) error {
	mark := len(f.pending)
	if err := f.state.Transact(fn); err != nil {
		f.pending = f.pending[:mark]
		return err
	}
	return nil
}

// Commit flushes the state and publishes the events of the committed calls.
func (f *Funding) Commit() ([]Event, error) {
	if err := f.state.Commit(); err != nil {
		return nil, err
	}
	events := f.pending
	f.pending = nil
	for _, e := range events {
		f.feed.Send(e)
	}
	return events, nil
}

// Events returns the events not yet committed.
func (f *Funding) Events() []Event {
	return f.pending
}

// SubscribeEvents delivers committed events to ch.
func (f *Funding) SubscribeEvents(ch chan<- Event) event.Subscription {
	return f.feed.Subscribe(ch)
}

//
// Getters - no state change
//

func (f *Funding) Metadata(id plmc.ProjectID) (*project.Metadata, error) {
	return f.projects.Metadata(id)
}

func (f *Funding) Details(id plmc.ProjectID) (*project.Details, error) {
	return f.projects.Details(id)
}

func (f *Funding) Bucket(id plmc.ProjectID) (*bucket.Bucket, error) {
	return f.projects.Bucket(id)
}

func (f *Funding) Evaluations(id plmc.ProjectID) ([]*participation.Evaluation, error) {
	return f.participations.Evaluations(id)
}

func (f *Funding) Bids(id plmc.ProjectID) ([]*participation.Bid, error) {
	return f.participations.Bids(id)
}

func (f *Funding) Contributions(id plmc.ProjectID) ([]*participation.Contribution, error) {
	return f.participations.Contributions(id)
}

func (f *Funding) UserMigrations(id plmc.ProjectID, participant plmc.Address) (*migration.UserMigrations, error) {
	return f.migrations.User(id, participant)
}

func (f *Funding) Unmigrated(id plmc.ProjectID) (uint32, error) {
	return f.migrations.Unmigrated(id)
}

// ScheduledUpdate returns the next scheduled transition of the project.
func (f *Funding) ScheduledUpdate(id plmc.ProjectID) (scheduler.Entry, uint32, bool, error) {
	return f.scheduler.Find(id)
}

//
// helpers
//

// load returns the metadata and details of an existing project.
func (f *Funding) load(id plmc.ProjectID) (*project.Metadata, *project.Details, error) {
	metadata, err := f.projects.Metadata(id)
	if err != nil {
		return nil, nil, err
	}
	details, err := f.projects.Details(id)
	if err != nil {
		return nil, nil, err
	}
	return metadata, details, nil
}

func (f *Funding) loadAsIssuer(issuer plmc.Address, id plmc.ProjectID) (*project.Metadata, *project.Details, error) {
	metadata, details, err := f.load(id)
	if err != nil {
		return nil, nil, err
	}
	if details.Issuer != issuer {
		return nil, nil, reverts.ErrNotIssuer
	}
	return metadata, details, nil
}

// price returns the decimals aware USD price of an asset.
func (f *Funding) price(asset plmc.Asset) (fixed.U128, error) {
	p, ok := f.oracle.DecimalsAwarePrice(asset, plmc.USDDecimals, asset.Decimals())
	if !ok || p.IsZero() {
		return fixed.Zero, reverts.ErrPriceNotAvailable
	}
	return p, nil
}

func (f *Funding) schedule(target uint32, id plmc.ProjectID, update scheduler.UpdateType) error {
	block, err := f.scheduler.Add(target, scheduler.Entry{Project: id, Update: update})
	if err != nil {
		return err
	}
	if block != target {
		logger.Debug("update slot congested", "project", id, "update", update, "target", target, "placed", block)
	}
	metricScheduledEntries().Add(1)
	return nil
}

func (f *Funding) unschedule(id plmc.ProjectID) error {
	if _, _, err := f.scheduler.Remove(id); err != nil {
		return err
	}
	metricScheduledEntries().Add(-1)
	return nil
}

// fundsError maps a ledger shortage of the participant to a revert.
func fundsError(err error) error {
	if errors.Is(err, ledger.ErrInsufficientBalance) || errors.Is(err, ledger.ErrInsufficientHeld) {
		return reverts.ErrParticipantNotEnoughFunds
	}
	return err
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
