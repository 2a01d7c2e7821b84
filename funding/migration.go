// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"github.com/polimec/polimec-node/funding/migration"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/xcm"
)

// loadForMigration returns the details of a project settled with success.
func (f *Funding) loadForMigration(issuer plmc.Address, id plmc.ProjectID) (*project.Details, error) {
	_, details, err := f.loadAsIssuer(issuer, id)
	if err != nil {
		return nil, err
	}
	if details.Status.Kind != project.SettlementFinished || details.Status.Outcome != project.Success {
		return nil, reverts.ErrIncorrectRound
	}
	return details, nil
}

// StartOffchainMigration lets the issuer deliver the tokens and confirm each participant.
func (f *Funding) StartOffchainMigration(issuer plmc.Address, id plmc.ProjectID) error {
	return f.transact(func() error {
		details, err := f.loadForMigration(issuer, id)
		if err != nil {
			return err
		}
		details.Migration = project.MigrationType{Kind: project.MigrationOffchain}
		return f.transitionProject(id, details, project.SettlementFinished,
			project.StatusOf(project.CTMigrationStarted), 0, true)
	})
}

// ConfirmOffchainMigration records that the issuer delivered the tokens of the participant.
func (f *Funding) ConfirmOffchainMigration(issuer plmc.Address, id plmc.ProjectID, participant plmc.Address) error {
	return f.transact(func() error {
		_, details, err := f.loadAsIssuer(issuer, id)
		if err != nil {
			return err
		}
		if details.Status.Kind != project.CTMigrationStarted || details.Migration.Kind != project.MigrationOffchain {
			return reverts.ErrIncorrectRound
		}
		if err := f.migrations.ConfirmOffchain(id, participant); err != nil {
			return err
		}
		f.emit(f.event(MigrationConfirmed, id).withParticipant(participant))
		return nil
	})
}

// MarkProjectCTMigrationAsFinished closes the project once every participant migrated.
func (f *Funding) MarkProjectCTMigrationAsFinished(id plmc.ProjectID) error {
	return f.transact(func() error {
		_, details, err := f.load(id)
		if err != nil {
			return err
		}
		if details.Status.Kind != project.CTMigrationStarted {
			return reverts.ErrIncorrectRound
		}
		left, err := f.migrations.Unmigrated(id)
		if err != nil {
			return err
		}
		if left > 0 {
			return reverts.ErrMigrationsStillPending
		}
		return f.transitionProject(id, details, project.CTMigrationStarted,
			project.StatusOf(project.CTMigrationFinished), 0, true)
	})
}

// StartPalletMigration delivers the tokens to the receiver pallet of the project chain para.
// Migrations can be sent once the channel is open both ways and the readiness checks passed.
func (f *Funding) StartPalletMigration(issuer plmc.Address, id plmc.ProjectID, para uint32) error {
	return f.transact(func() error {
		details, err := f.loadForMigration(issuer, id)
		if err != nil {
			return err
		}
		if _, taken, err := f.projects.ParaProject(para); err != nil {
			return err
		} else if taken {
			return reverts.ErrWrongParaID
		}
		details.Migration = project.MigrationType{
			Kind:   project.MigrationPallet,
			Pallet: project.PalletMigrationInfo{ParaID: para},
		}
		if err := f.projects.SetParaProject(para, id); err != nil {
			return err
		}
		return f.transitionProject(id, details, project.SettlementFinished,
			project.StatusOf(project.CTMigrationStarted), 0, true)
	})
}

// loadPallet returns the project migrating to para.
func (f *Funding) loadPallet(para uint32) (plmc.ProjectID, *project.Details, error) {
	id, ok, err := f.projects.ParaProject(para)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, reverts.ErrWrongParaID
	}
	_, details, err := f.load(id)
	if err != nil {
		return 0, nil, err
	}
	if details.Status.Kind != project.CTMigrationStarted || details.Migration.Kind != project.MigrationPallet {
		return 0, nil, reverts.ErrIncorrectRound
	}
	return id, details, nil
}

// HandleChannelOpenRequest accepts the channel opened by the project chain and requests the
// channel back.
func (f *Funding) HandleChannelOpenRequest(para uint32) error {
	return f.transact(func() error {
		id, details, err := f.loadPallet(para)
		if err != nil {
			return err
		}
		channel := &details.Migration.Pallet.Channel
		if channel.ProjectToPolimec != project.ChannelClosed {
			return reverts.ErrIncorrectRound
		}
		channel.ProjectToPolimec = project.ChannelOpen
		channel.PolimecToProject = project.ChannelAwaitingAcceptance
		if err := f.projects.SetDetails(id, details); err != nil {
			return err
		}
		f.channelChanged(id, details)
		return nil
	})
}

// HandleChannelAccepted opens the channel towards the project chain and starts the readiness checks.
func (f *Funding) HandleChannelAccepted(para uint32) error {
	return f.transact(func() error {
		id, details, err := f.loadPallet(para)
		if err != nil {
			return err
		}
		channel := &details.Migration.Pallet.Channel
		if channel.PolimecToProject != project.ChannelAwaitingAcceptance {
			return reverts.ErrIncorrectRound
		}
		channel.PolimecToProject = project.ChannelOpen
		f.channelChanged(id, details)
		if channel.IsOpen() {
			if err := f.sendReadinessQueries(id, details); err != nil {
				return err
			}
		}
		return f.projects.SetDetails(id, details)
	})
}

func (f *Funding) channelChanged(id plmc.ProjectID, details *project.Details) {
	channel := details.Migration.Pallet.Channel
	logger.Info("migration channel changed", "project", id, "para", details.Migration.Pallet.ParaID,
		"inbound", channel.ProjectToPolimec, "outbound", channel.PolimecToProject)
	ev := f.event(ChannelStatusChanged, id)
	if channel.IsOpen() {
		ev.Status = "Open"
	} else {
		ev.Status = "Pending"
	}
	f.emit(ev)
}

func (f *Funding) sendReadinessQueries(id plmc.ProjectID, details *project.Details) error {
	if f.channel == nil {
		return reverts.ErrChannelNotReady
	}
	readiness := &details.Migration.Pallet.Readiness
	for _, q := range []struct {
		kind        migration.QueryKind
		instruction xcm.InstructionKind
		check       *project.Check
	}{
		{migration.HoldingQuery, xcm.ReportHolding, &readiness.Holding},
		{migration.PalletQuery, xcm.QueryPallet, &readiness.Pallet},
	} {
		queryID, err := f.migrations.NewQueryID()
		if err != nil {
			return err
		}
		if err := f.migrations.SetQuery(queryID, &migration.Query{Kind: q.kind, Project: id}); err != nil {
			return err
		}
		if err := f.channel.Send(xcm.ParaID(details.Migration.Pallet.ParaID), xcm.NewQuery(q.instruction, queryID)); err != nil {
			return err
		}
		*q.check = project.Check{QueryID: queryID, Outcome: project.CheckAwaitingResponse}
	}
	return nil
}

// HandleQueryResponse applies the answer of the project chain to a readiness or migration query.
// Answers to unknown or resolved queries are ignored.
func (f *Funding) HandleQueryResponse(queryID uint64, success bool) error {
	return f.transact(func() error {
		q, err := f.migrations.Query(queryID)
		if err != nil {
			return err
		}
		if q == nil {
			logger.Debug("unknown query response", "query", queryID)
			return nil
		}
		if q.Kind == migration.MigrationQuery {
			return f.resolveMigration(queryID, q, success)
		}

		_, details, err := f.load(q.Project)
		if err != nil {
			return err
		}
		readiness := &details.Migration.Pallet.Readiness
		check := &readiness.Holding
		if q.Kind == migration.PalletQuery {
			check = &readiness.Pallet
		}
		if check.QueryID != queryID || check.Outcome != project.CheckAwaitingResponse {
			return nil
		}
		check.Outcome = project.CheckFailed
		if success {
			check.Outcome = project.CheckPassed
		}
		f.migrations.RemoveQuery(queryID)
		if err := f.projects.SetDetails(q.Project, details); err != nil {
			return err
		}
		ev := f.event(ReadinessCheckChanged, q.Project)
		if readiness.Passed() {
			ev.Status = "Passed"
		} else if success {
			ev.Status = "Pending"
		} else {
			ev.Status = "Failed"
		}
		f.emit(ev)
		return nil
	})
}

// SendPalletMigrations sends the migrations of the participant to the project chain, in
// messages of at most MaxMigrationsPerXcm migrations answering to one query.
func (f *Funding) SendPalletMigrations(id plmc.ProjectID, participant plmc.Address) error {
	return f.transact(func() error {
		_, details, err := f.load(id)
		if err != nil {
			return err
		}
		if details.Status.Kind != project.CTMigrationStarted || details.Migration.Kind != project.MigrationPallet {
			return reverts.ErrIncorrectRound
		}
		pallet := details.Migration.Pallet
		if f.channel == nil || !pallet.Channel.IsOpen() || !pallet.Readiness.Passed() {
			return reverts.ErrChannelNotReady
		}
		user, err := f.migrations.User(id, participant)
		if err != nil {
			return err
		}
		queryID, err := f.migrations.NewQueryID()
		if err != nil {
			return err
		}
		if err := f.migrations.MarkSent(id, participant, queryID); err != nil {
			return err
		}
		batches := xcm.Batch(user.Migrations, int(f.params.MaxMigrationsPerXcm))
		for _, batch := range batches {
			call, err := migration.EncodeCall(id, batch)
			if err != nil {
				return err
			}
			if err := f.channel.Send(xcm.ParaID(pallet.ParaID), xcm.NewEnvelope(call, queryID)); err != nil {
				return err
			}
		}
		logger.Debug("migrations sent", "project", id, "participant", participant, "messages", len(batches), "query", queryID)
		ev := f.event(MigrationsSent, id).withParticipant(participant).withAmount(user.Total())
		ev.Status = migration.Status{Kind: migration.Sent, QueryID: queryID}.String()
		f.emit(ev)
		return nil
	})
}

// ConfirmPalletMigrations applies the answer to sent migrations. Repeated answers are ignored.
func (f *Funding) ConfirmPalletMigrations(queryID uint64, success bool) error {
	return f.transact(func() error {
		q, err := f.migrations.Query(queryID)
		if err != nil {
			return err
		}
		if q == nil || q.Kind != migration.MigrationQuery {
			return nil
		}
		return f.resolveMigration(queryID, q, success)
	})
}

func (f *Funding) resolveMigration(queryID uint64, q *migration.Query, success bool) error {
	applied, err := f.migrations.Resolve(q.Project, q.Participant, queryID, success)
	if err != nil || !applied {
		return err
	}
	kind := MigrationConfirmed
	if !success {
		kind = MigrationFailed
		logger.Warn("pallet migration failed", "project", q.Project, "participant", q.Participant, "query", queryID)
	}
	f.emit(f.event(kind, q.Project).withParticipant(q.Participant))
	return nil
}
