// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plmc

import (
	"encoding/binary"
	"errors"
	"strconv"
)

// ProjectID identifies a fundraising project.
type ProjectID uint32

func (id ProjectID) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(id))
}

func (id ProjectID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseProjectID parses a base 10 project id.
func ParseProjectID(s string) (ProjectID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return ProjectID(v), nil
}

// Escrow returns the account holding funding assets of the project until settlement.
func (id ProjectID) Escrow() Address {
	return DeriveAccount("pfund", id.Bytes())
}

// BondingEscrow holds the treasury provided bonds of OTM participations in the project.
func (id ProjectID) BondingEscrow() Address {
	return DeriveAccount("proxybnd", id.Bytes())
}

// FeeEscrow holds the OTM fees paid to the project until settlement.
func (id ProjectID) FeeEscrow() Address {
	return DeriveAccount("otmfee", id.Bytes())
}

// DID is a decentralized identifier of a verified participant.
type DID string

// MaxDIDLength is the maximum encoded DID length.
const MaxDIDLength = 57

func (d DID) Bytes() []byte {
	return []byte(d)
}

// Validate checks the DID is not empty and fits the maximum length.
func (d DID) Validate() error {
	if len(d) == 0 {
		return errors.New("empty did")
	}
	if len(d) > MaxDIDLength {
		return errors.New("did too long")
	}
	return nil
}

// InvestorType is the tier assigned to a participant by its credential.
type InvestorType uint8

const (
	Retail InvestorType = iota
	Professional
	Institutional
)

func (t InvestorType) String() string {
	switch t {
	case Retail:
		return "retail"
	case Professional:
		return "professional"
	case Institutional:
		return "institutional"
	default:
		return "unknown"
	}
}

// ParseInvestorType parses the lowercase tier name carried by credentials.
func ParseInvestorType(s string) (InvestorType, error) {
	switch s {
	case "retail":
		return Retail, nil
	case "professional":
		return Professional, nil
	case "institutional":
		return Institutional, nil
	}
	return 0, errors.New("unknown investor type")
}

// Investor is a verified caller of participation operations.
type Investor struct {
	Account Address
	DID     DID
	Type    InvestorType
	// Policy is the policy the credential issuer whitelisted for the investor.
	Policy string
}
