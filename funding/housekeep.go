// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"time"

	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/scheduler"
)

// Housekeep finalizes block: the transitions scheduled for it are applied in order, each
// in its own transaction, then a batch of participations is settled. A failed transition is
// queued again for the next block.
func (f *Funding) Housekeep(block uint32) error {
	start := time.Now()
	defer func() {
		metricHousekeeping().Observe(time.Since(start).Milliseconds())
	}()

	if err := f.SetBlock(block); err != nil {
		return err
	}
	entries, err := f.scheduler.Pop(block)
	if err != nil {
		return errors.Wrap(err, "failed to pop scheduled updates")
	}
	for _, entry := range entries {
		metricScheduledEntries().Add(-1)
		if err := f.transact(func() error { return f.apply(entry) }); err != nil {
			if err := f.transitionFailed(block, entry, err); err != nil {
				return err
			}
		}
	}
	f.settleBatch()

	if len(entries) > 0 {
		logger.Info("housekeeping done", "block", block, "updates", len(entries), "elapsed", time.Since(start))
	}
	return nil
}

// transitionFailed records a failed transition and retries it on the next block. A transition
// the project has already moved past is dropped.
func (f *Funding) transitionFailed(block uint32, entry scheduler.Entry, cause error) error {
	metricTransitionFailures().Add(1)
	ev := f.event(TransitionFailed, entry.Project)
	ev.Status = entry.Update.String()
	ev.Error = cause.Error()
	f.emit(ev)

	if errors.Is(cause, reverts.ErrIncorrectRound) {
		logger.Warn("stale scheduled update dropped", "project", entry.Project, "update", entry.Update, "block", block)
		return nil
	}
	logger.Error("scheduled update failed", "project", entry.Project, "update", entry.Update, "block", block, "err", cause)
	return errors.Wrap(f.schedule(block+1, entry.Project, entry.Update), "failed to reschedule update")
}

func (f *Funding) apply(entry scheduler.Entry) error {
	switch entry.Update {
	case scheduler.EvaluationEnd:
		return f.endEvaluation(entry.Project)
	case scheduler.AuctionOpeningStart:
		_, details, err := f.load(entry.Project)
		if err != nil {
			return err
		}
		return f.startAuctionOpening(entry.Project, details, false)
	case scheduler.AuctionClosingStart:
		return f.startAuctionClosing(entry.Project)
	case scheduler.CommunityFundingStart:
		return f.startCommunityFunding(entry.Project)
	case scheduler.FundingEnd:
		return f.endFunding(entry.Project)
	case scheduler.StartSettlement:
		return f.startSettlement(entry.Project)
	}
	return errors.Errorf("unknown update %v", entry.Update)
}
