// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package project

import "fmt"

// StatusKind is the round a project is in.
type StatusKind uint8

const (
	Application StatusKind = iota
	EvaluationRound
	AuctionInitializePeriod
	AuctionOpening
	AuctionClosing
	CommunityRound
	FundingSuccessful
	FundingFailed
	SettlementStarted
	SettlementFinished
	CTMigrationStarted
	CTMigrationFinished
)

var statusNames = [...]string{
	Application:             "Application",
	EvaluationRound:         "EvaluationRound",
	AuctionInitializePeriod: "AuctionInitializePeriod",
	AuctionOpening:          "AuctionRound(Opening)",
	AuctionClosing:          "AuctionRound(Closing)",
	CommunityRound:          "CommunityRound",
	FundingSuccessful:       "FundingSuccessful",
	FundingFailed:           "FundingFailed",
	SettlementStarted:       "SettlementStarted",
	SettlementFinished:      "SettlementFinished",
	CTMigrationStarted:      "CTMigrationStarted",
	CTMigrationFinished:     "CTMigrationFinished",
}

func (k StatusKind) String() string {
	if int(k) < len(statusNames) {
		return statusNames[k]
	}
	return "Unknown"
}

// FundingOutcome is the final result of a fundraise.
type FundingOutcome uint8

const (
	Success FundingOutcome = iota + 1
	Failure
)

func (o FundingOutcome) String() string {
	switch o {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "None"
	}
}

// Status is the project state machine position. RemainderStart is only set for
// CommunityRound, Outcome only for the settlement states.
type Status struct {
	Kind           StatusKind
	RemainderStart uint32
	Outcome        FundingOutcome
}

// StatusOf returns a status without parameters.
func StatusOf(kind StatusKind) Status {
	return Status{Kind: kind}
}

func CommunityRoundStatus(remainderStart uint32) Status {
	return Status{Kind: CommunityRound, RemainderStart: remainderStart}
}

func SettlementStartedStatus(outcome FundingOutcome) Status {
	return Status{Kind: SettlementStarted, Outcome: outcome}
}

func SettlementFinishedStatus(outcome FundingOutcome) Status {
	return Status{Kind: SettlementFinished, Outcome: outcome}
}

func (s Status) String() string {
	switch s.Kind {
	case CommunityRound:
		return fmt.Sprintf("CommunityRound(%d)", s.RemainderStart)
	case SettlementStarted, SettlementFinished:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Outcome)
	default:
		return s.Kind.String()
	}
}

// IsAuction reports whether bids are accepted in the status.
func (s Status) IsAuction() bool {
	return s.Kind == AuctionOpening || s.Kind == AuctionClosing
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
