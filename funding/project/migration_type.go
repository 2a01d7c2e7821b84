// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package project

// MigrationKind is how contribution tokens leave the chain.
type MigrationKind uint8

const (
	MigrationNotChosen MigrationKind = iota
	// MigrationOffchain is confirmed participant by participant by the issuer.
	MigrationOffchain
	// MigrationPallet is delivered to the project chain over a cross chain channel.
	MigrationPallet
)

func (k MigrationKind) String() string {
	switch k {
	case MigrationOffchain:
		return "Offchain"
	case MigrationPallet:
		return "Pallet"
	default:
		return "None"
	}
}

// ChannelState is the state of one direction of a cross chain channel.
type ChannelState uint8

const (
	ChannelClosed ChannelState = iota
	ChannelAwaitingAcceptance
	ChannelOpen
)

// ChannelStatus tracks both channel directions with the project chain.
type ChannelStatus struct {
	ProjectToPolimec ChannelState
	PolimecToProject ChannelState
}

// IsOpen reports whether messages can flow both ways.
func (c ChannelStatus) IsOpen() bool {
	return c.ProjectToPolimec == ChannelOpen && c.PolimecToProject == ChannelOpen
}

// CheckOutcome is the answer to a readiness query.
type CheckOutcome uint8

const (
	CheckNotQueried CheckOutcome = iota
	CheckAwaitingResponse
	CheckPassed
	CheckFailed
)

// Check is one readiness query sent to the project chain.
type Check struct {
	QueryID uint64
	Outcome CheckOutcome
}

// ReadinessCheck verifies the project chain holds the minted tokens and runs the receiver pallet.
type ReadinessCheck struct {
	Holding Check
	Pallet  Check
}

// Passed reports whether both checks passed.
func (r ReadinessCheck) Passed() bool {
	return r.Holding.Outcome == CheckPassed && r.Pallet.Outcome == CheckPassed
}

// PalletMigrationInfo is the cross chain state of a pallet migration.
type PalletMigrationInfo struct {
	ParaID    uint32
	Channel   ChannelStatus
	Readiness ReadinessCheck
}

// MigrationType is the chosen migration path of a project.
type MigrationType struct {
	Kind   MigrationKind
	Pallet PalletMigrationInfo
}
