// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonding

import (
	"fmt"

	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
)

const (
	// MaxMultiplier is the highest multiplier a participation can use.
	MaxMultiplier uint8 = 25
	// OTMMultiplier is the fixed multiplier of the OTM mode.
	OTMMultiplier uint8 = 5
)

// Mode is how a participation is collateralised.
type Mode struct {
	OTM        bool
	Multiplier uint8
}

// Classic bonds ticket/multiplier worth of PLMC from the participant.
func Classic(multiplier uint8) Mode {
	return Mode{Multiplier: multiplier}
}

// OTM pays a fee in the funding asset while the bond is provided by the treasury.
func OTM() Mode {
	return Mode{OTM: true, Multiplier: OTMMultiplier}
}

func (m Mode) String() string {
	if m.OTM {
		return "otm"
	}
	return fmt.Sprintf("classic(%d)", m.Multiplier)
}

// retailTiers maps the distinct projects a retail DID took part in to its maximum multiplier.
var retailTiers = []struct {
	minProjects uint32
	max         uint8
}{
	{25, 10},
	{10, 7},
	{5, 4},
	{3, 2},
	{0, 1},
}

// MaxMultiplierFor returns the highest classic multiplier allowed for the investor.
func MaxMultiplierFor(investor plmc.InvestorType, projectsParticipated uint32) uint8 {
	switch investor {
	case plmc.Professional:
		return 10
	case plmc.Institutional:
		return MaxMultiplier
	}
	for _, tier := range retailTiers {
		if projectsParticipated >= tier.minProjects {
			return tier.max
		}
	}
	return 1
}

// ValidateMode checks the mode is allowed for the investor.
func ValidateMode(mode Mode, investor plmc.InvestorType, projectsParticipated uint32) error {
	if mode.OTM {
		if mode.Multiplier != OTMMultiplier {
			return reverts.ErrForbiddenMultiplier
		}
		return nil
	}
	if mode.Multiplier < 1 || mode.Multiplier > MaxMultiplierFor(investor, projectsParticipated) {
		return reverts.ErrForbiddenMultiplier
	}
	return nil
}
