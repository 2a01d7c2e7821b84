// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// project and metadata
var (
	ErrProjectNotFound         = New(Validation, "ProjectNotFound")
	ErrNotIssuer               = New(Validation, "NotIssuer")
	ErrProjectIsFrozen         = New(Validation, "ProjectIsFrozen")
	ErrHasActiveProject        = New(Validation, "HasActiveProject")
	ErrCidNotProvided          = New(Validation, "CidNotProvided")
	ErrPriceTooLow             = New(Validation, "PriceTooLow")
	ErrTicketSizeError         = New(Validation, "TicketSizeError")
	ErrParticipationCurrencies = New(Validation, "ParticipationCurrenciesError")
	ErrAllocationSizeError     = New(Validation, "AllocationSizeError")
	ErrAuctionRoundPercentage  = New(Validation, "AuctionRoundPercentageError")
	ErrFundingTargetTooLow     = New(Validation, "FundingTargetTooLow")
	ErrFundingTargetTooHigh    = New(Validation, "FundingTargetTooHigh")
	ErrBadDecimals             = New(Validation, "BadDecimals")
	ErrBadTokenomics           = New(Validation, "BadTokenomics")
)

// participation
var (
	ErrIncorrectRound               = New(Validation, "IncorrectRound")
	ErrPolicyMismatch               = New(Validation, "PolicyMismatch")
	ErrParticipationToOwnProject    = New(Validation, "ParticipationToOwnProject")
	ErrTooLow                       = New(Validation, "TooLow")
	ErrTooHigh                      = New(Validation, "TooHigh")
	ErrForbiddenMultiplier          = New(Validation, "ForbiddenMultiplier")
	ErrFundingAssetNotAccepted      = New(Validation, "FundingAssetNotAccepted")
	ErrTooManyUserParticipations    = New(Validation, "TooManyUserParticipations")
	ErrTooManyProjectParticipations = New(Validation, "TooManyProjectParticipations")
	ErrUserHasWinningBid            = New(Validation, "UserHasWinningBid")
	ErrProjectSoldOut               = New(Validation, "ProjectSoldOut")
	ErrWapNotSet                    = New(Validation, "WapNotSet")
	ErrUnsupportedReceiverAccount   = New(Validation, "UnsupportedReceiverAccountJunction")
	ErrBadReceiverAccountSignature  = New(Validation, "BadReceiverAccountSignature")
	ErrParticipationNotFound        = New(Validation, "ParticipationNotFound")
	ErrPriceNotAvailable            = New(Validation, "PriceNotAvailable")
)

// arithmetic
var (
	ErrBadMath = New(Arithmetic, "BadMath")
)

// resource
var (
	ErrParticipantNotEnoughFunds = New(Resource, "ParticipantNotEnoughFunds")
	ErrIssuerNotEnoughFunds      = New(Resource, "IssuerNotEnoughFunds")
	ErrTooManyMigrations         = New(Resource, "TooManyMigrations")
)

// scheduling
var (
	ErrTooEarlyForRound        = New(Scheduling, "TooEarlyForRound")
	ErrTooLateForRound         = New(Scheduling, "TooLateForRound")
	ErrProjectNotInUpdateStore = New(Scheduling, "ProjectNotInUpdateStore")
)

// settlement and migration
var (
	ErrSettlementNotStarted      = New(Settlement, "SettlementNotStarted")
	ErrSettlementNotComplete     = New(Settlement, "SettlementNotComplete")
	ErrMigrationAlreadyConfirmed = New(Settlement, "MigrationAlreadyConfirmed")
	ErrMigrationsStillPending    = New(Settlement, "MigrationsStillPending")
	ErrNoMigrationsFound         = New(Settlement, "NoMigrationsFound")
	ErrChannelNotReady           = New(Settlement, "ChannelNotReady")
	ErrWrongParaID               = New(Settlement, "WrongParaId")
	ErrMigrationNotSent          = New(Settlement, "MigrationNotSent")
	ErrMigrationAlreadySent      = New(Settlement, "MigrationAlreadySent")
)
