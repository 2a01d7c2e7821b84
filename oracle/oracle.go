// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle provides USD prices of assets.
package oracle

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/plmc"
)

// PriceOracle returns decimals aware USD prices: the price of one minimal asset unit in minimal
// USD units, given the decimals on both sides.
type PriceOracle interface {
	DecimalsAwarePrice(asset plmc.Asset, usdDecimals, assetDecimals uint8) (fixed.U128, bool)
}

// Static is an in memory oracle holding USD prices of whole asset units.
type Static struct {
	lock   sync.RWMutex
	prices map[plmc.Asset]fixed.U128
}

var _ PriceOracle = (*Static)(nil)

// NewStatic creates an oracle from decimal price strings.
func NewStatic(prices map[plmc.Asset]string) (*Static, error) {
	s := &Static{prices: make(map[plmc.Asset]fixed.U128, len(prices))}
	for asset, str := range prices {
		p, err := fixed.Parse(str)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid price of %s", asset)
		}
		s.prices[asset] = p
	}
	return s, nil
}

// Set updates the price of a whole asset unit.
func (s *Static) Set(asset plmc.Asset, price fixed.U128) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.prices[asset] = price
}

// Price returns the USD price of a whole asset unit.
func (s *Static) Price(asset plmc.Asset) (fixed.U128, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	p, ok := s.prices[asset]
	return p, ok
}

func (s *Static) DecimalsAwarePrice(asset plmc.Asset, usdDecimals, assetDecimals uint8) (fixed.U128, bool) {
	p, ok := s.Price(asset)
	if !ok || p.IsZero() {
		return fixed.Zero, false
	}
	aware, err := p.MulPow10(int(usdDecimals) - int(assetDecimals))
	if err != nil || aware.IsZero() {
		return fixed.Zero, false
	}
	return aware, true
}
