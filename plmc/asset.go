// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plmc

import (
	"errors"
	"strings"
)

// Asset identifies a fungible asset on the ledger.
type Asset string

const (
	Native Asset = "PLMC"
	USDT   Asset = "USDT"
	USDC   Asset = "USDC"
	DOT    Asset = "DOT"
)

const ctPrefix = "CT-"

// ContributionToken returns the asset minted for a project.
func ContributionToken(id ProjectID) Asset {
	return Asset(ctPrefix + id.String())
}

func (a Asset) Bytes() []byte {
	return []byte(a)
}

// IsContributionToken reports whether the asset is a project token.
func (a Asset) IsContributionToken() bool {
	return strings.HasPrefix(string(a), ctPrefix)
}

// IsFundingAsset reports whether the asset can be used to pay for tokens.
func (a Asset) IsFundingAsset() bool {
	return a == USDT || a == USDC || a == DOT
}

// Decimals returns the decimals of the asset, contribution tokens carry their own.
func (a Asset) Decimals() uint8 {
	switch a {
	case Native, DOT:
		return 10
	case USDT, USDC:
		return 6
	default:
		return 0
	}
}

// ParseFundingAsset parses a funding asset name.
func ParseFundingAsset(s string) (Asset, error) {
	a := Asset(strings.ToUpper(s))
	if !a.IsFundingAsset() {
		return "", errors.New("unsupported funding asset")
	}
	return a, nil
}
