// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
)

// transitionProject moves a project from current to next, opening a round of duration blocks
// starting now. A zero duration opens an unbounded round. Unless skipEndCheck is set, the
// current round must be over.
func (f *Funding) transitionProject(
	id plmc.ProjectID,
	details *project.Details,
	current project.StatusKind,
	next project.Status,
	duration uint32,
	skipEndCheck bool,
) error {
	if details.Status.Kind != current {
		return reverts.ErrIncorrectRound
	}
	if !skipEndCheck && !details.Round.Ended(f.block) {
		return reverts.ErrTooEarlyForRound
	}

	previous := details.Status
	details.Status = next
	details.Round = project.BlockRange{Start: f.block}
	if duration > 0 {
		details.Round.End = f.block + duration - 1
	}
	if err := f.projects.SetDetails(id, details); err != nil {
		return err
	}

	metricTransitions().AddWithLabel(1, map[string]string{"status": next.Kind.String()})
	logger.Info("project transitioned", "project", id, "from", previous, "to", next, "block", f.block)

	ev := f.event(ProjectPhaseChanged, id)
	ev.Status = next.String()
	f.emit(ev)
	return nil
}
