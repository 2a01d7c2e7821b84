// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger defines the balance capability funding relies on and a state backed implementation.
package ledger

import (
	"errors"
	"math/big"

	"github.com/polimec/polimec-node/plmc"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientHeld    = errors.New("insufficient held balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// HoldReason tags native tokens held for a purpose.
type HoldReason uint8

const (
	Evaluation HoldReason = iota
	Participation
)

func (r HoldReason) String() string {
	if r == Evaluation {
		return "evaluation"
	}
	return "participation"
}

func (r HoldReason) Bytes() []byte {
	return []byte{byte(r)}
}

// Schedule releases a held amount linearly from Start.
type Schedule struct {
	Reason   HoldReason
	Total    *big.Int
	PerBlock *big.Int
	Start    uint32
	Released *big.Int
}

// Vested returns the amount of the schedule unlocked at block now.
func (s *Schedule) Vested(now uint32) *big.Int {
	if now <= s.Start {
		return new(big.Int)
	}
	vested := new(big.Int).Mul(s.PerBlock, big.NewInt(int64(now-s.Start)))
	if vested.Cmp(s.Total) > 0 {
		vested.Set(s.Total)
	}
	return vested
}

// Ledger moves native and fungible balances. Holds apply to the native token only.
type Ledger interface {
	Balance(asset plmc.Asset, account plmc.Address) (*big.Int, error)
	HeldBalance(account plmc.Address, reason HoldReason) (*big.Int, error)

	Transfer(asset plmc.Asset, from, to plmc.Address, amount *big.Int) error
	Mint(asset plmc.Asset, to plmc.Address, amount *big.Int) error

	// Hold moves free native balance to held.
	Hold(account plmc.Address, amount *big.Int, reason HoldReason) error
	// Release moves held native balance back to free.
	Release(account plmc.Address, amount *big.Int, reason HoldReason) error
	// TransferOnHold moves held native balance of from to the free balance of to.
	TransferOnHold(from, to plmc.Address, amount *big.Int, reason HoldReason) error

	// AddReleaseSchedule keeps a held amount locked and releases it linearly.
	AddReleaseSchedule(account plmc.Address, schedule Schedule) error
}
