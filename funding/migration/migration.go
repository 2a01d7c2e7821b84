// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package migration stores the contribution token migrations created at settlement and tracks
// their delivery to the participants.
package migration

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/plmc"
)

// StatusKind is the delivery state of the migrations of a participant.
type StatusKind uint8

const (
	NotStarted StatusKind = iota
	Sent
	Confirmed
	Failed
)

// Status is the delivery state. QueryID is set while Sent.
type Status struct {
	Kind    StatusKind
	QueryID uint64
}

func (s Status) String() string {
	switch s.Kind {
	case Sent:
		return fmt.Sprintf("Sent(%d)", s.QueryID)
	case Confirmed:
		return "Confirmed"
	case Failed:
		return "Failed"
	}
	return "NotStarted"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Origin is the participation a migration comes from.
type Origin struct {
	User              plmc.ReceivingAccount
	ParticipationType participation.Kind
	ID                uint32
}

// Info is what the migration delivers.
type Info struct {
	ContributionTokenAmount *big.Int
	VestingTime             uint32
}

// Migration is an amount of contribution tokens owed on the project chain.
type Migration struct {
	Origin Origin
	Info   Info
}

// UserMigrations are the migrations of one participant of a project.
type UserMigrations struct {
	Status     Status
	Migrations []Migration
}

// Total returns the contribution tokens of all migrations.
func (u *UserMigrations) Total() *big.Int {
	total := new(big.Int)
	for _, m := range u.Migrations {
		total.Add(total, m.Info.ContributionTokenAmount)
	}
	return total
}

// Call is the payload delivered to the receiver pallet of the project chain.
type Call struct {
	Project    plmc.ProjectID
	Migrations []Migration
}

// EncodeCall rlp encodes the migrations as a receiver pallet call.
func EncodeCall(project plmc.ProjectID, migrations []Migration) ([]byte, error) {
	return rlp.EncodeToBytes(&Call{Project: project, Migrations: migrations})
}

// DecodeCall is the inverse of EncodeCall.
func DecodeCall(b []byte) (*Call, error) {
	var c Call
	if err := rlp.DecodeBytes(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// QueryKind is what a cross chain query id answers.
type QueryKind uint8

const (
	HoldingQuery QueryKind = iota
	PalletQuery
	MigrationQuery
)

// Query is a pending cross chain query. Participant is set for migration queries.
type Query struct {
	Kind        QueryKind
	Project     plmc.ProjectID
	Participant plmc.Address
}
