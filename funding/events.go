// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/plmc"
)

// EventKind names what happened.
type EventKind string

const (
	ProjectCreated        EventKind = "ProjectCreated"
	MetadataEdited        EventKind = "MetadataEdited"
	ProjectRemoved        EventKind = "ProjectRemoved"
	ProjectPhaseChanged   EventKind = "ProjectPhaseChanged"
	Evaluated             EventKind = "Evaluation"
	BidPlaced             EventKind = "Bid"
	Contributed           EventKind = "Contribution"
	BidResolved           EventKind = "BidResolved"
	ParticipationSettled  EventKind = "ParticipationSettled"
	SettlementFailed      EventKind = "SettlementFailed"
	TransitionFailed      EventKind = "TransitionFailed"
	MigrationConfirmed    EventKind = "MigrationConfirmed"
	MigrationsSent        EventKind = "MigrationsSent"
	MigrationFailed       EventKind = "MigrationFailed"
	ChannelStatusChanged  EventKind = "ChannelStatusChanged"
	ReadinessCheckChanged EventKind = "ReadinessCheckChanged"
)

// Event is emitted by funding operations and published once the block commits.
type Event struct {
	Kind        EventKind             `json:"kind"`
	Block       uint32                `json:"block"`
	Project     plmc.ProjectID        `json:"project"`
	Participant *plmc.Address         `json:"participant,omitempty"`
	Ref         *participation.Ref    `json:"ref,omitempty"`
	Status      string                `json:"status,omitempty"`
	Amount      *math.HexOrDecimal256 `json:"amount,omitempty"`
	Error       string                `json:"error,omitempty"`
}

func (e Event) withParticipant(addr plmc.Address) Event {
	e.Participant = &addr
	return e
}

func (e Event) withRef(kind participation.Kind, id uint32) Event {
	e.Ref = &participation.Ref{Kind: kind, ID: id}
	return e
}

func (e Event) withAmount(amount *big.Int) Event {
	e.Amount = (*math.HexOrDecimal256)(new(big.Int).Set(amount))
	return e
}

func (f *Funding) event(kind EventKind, id plmc.ProjectID) Event {
	return Event{Kind: kind, Block: f.block, Project: id}
}

func (f *Funding) emit(e Event) {
	f.pending = append(f.pending, e)
}
