// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

var (
	logger = log.WithContext("pkg", "ledger")

	slotBalances  = storage.Slot("ledger-balances")
	slotHolds     = storage.Slot("ledger-holds")
	slotIssuance  = storage.Slot("ledger-issuance")
	slotSchedules = storage.Slot("ledger-schedules")
)

var _ Ledger = (*Store)(nil)

// Store is a Ledger persisted in the node state, so its writes follow the state transactions.
type Store struct {
	balances  *storage.Mapping[storage.Bytes, *big.Int]
	holds     *storage.Mapping[storage.Bytes, *big.Int]
	issuance  *storage.Mapping[plmc.Asset, *big.Int]
	schedules *storage.Mapping[plmc.Address, []*Schedule]
}

func NewStore(state *storage.State) *Store {
	return &Store{
		balances:  storage.NewMapping[storage.Bytes, *big.Int](state, slotBalances),
		holds:     storage.NewMapping[storage.Bytes, *big.Int](state, slotHolds),
		issuance:  storage.NewMapping[plmc.Asset, *big.Int](state, slotIssuance),
		schedules: storage.NewMapping[plmc.Address, []*Schedule](state, slotSchedules),
	}
}

func get[K storage.Key](m *storage.Mapping[K, *big.Int], key K) (*big.Int, error) {
	v, err := m.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func set[K storage.Key](m *storage.Mapping[K, *big.Int], key K, v *big.Int) error {
	if v.Sign() == 0 {
		m.Delete(key)
		return nil
	}
	return errors.Wrap(m.Set(key, v), "failed to set balance")
}

func add[K storage.Key](m *storage.Mapping[K, *big.Int], key K, delta *big.Int, short error) error {
	v, err := get(m, key)
	if err != nil {
		return err
	}
	v = new(big.Int).Add(v, delta)
	if v.Sign() < 0 {
		return short
	}
	return set(m, key, v)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s *Store) Balance(asset plmc.Asset, account plmc.Address) (*big.Int, error) {
	return get(s.balances, storage.Compose(asset, account))
}

func (s *Store) HeldBalance(account plmc.Address, reason HoldReason) (*big.Int, error) {
	return get(s.holds, storage.Compose(reason, account))
}

// TotalIssuance returns the minted supply of an asset.
func (s *Store) TotalIssuance(asset plmc.Asset) (*big.Int, error) {
	return get(s.issuance, asset)
}

func (s *Store) Transfer(asset plmc.Asset, from, to plmc.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	if err := add(s.balances, storage.Compose(asset, from), new(big.Int).Neg(amount), ErrInsufficientBalance); err != nil {
		return err
	}
	return add(s.balances, storage.Compose(asset, to), amount, nil)
}

func (s *Store) Mint(asset plmc.Asset, to plmc.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := add(s.issuance, asset, amount, nil); err != nil {
		return err
	}
	return add(s.balances, storage.Compose(asset, to), amount, nil)
}

func (s *Store) Hold(account plmc.Address, amount *big.Int, reason HoldReason) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := add(s.balances, storage.Compose(plmc.Native, account), new(big.Int).Neg(amount), ErrInsufficientBalance); err != nil {
		return err
	}
	return add(s.holds, storage.Compose(reason, account), amount, nil)
}

func (s *Store) Release(account plmc.Address, amount *big.Int, reason HoldReason) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := add(s.holds, storage.Compose(reason, account), new(big.Int).Neg(amount), ErrInsufficientHeld); err != nil {
		return err
	}
	return add(s.balances, storage.Compose(plmc.Native, account), amount, nil)
}

func (s *Store) TransferOnHold(from, to plmc.Address, amount *big.Int, reason HoldReason) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := add(s.holds, storage.Compose(reason, from), new(big.Int).Neg(amount), ErrInsufficientHeld); err != nil {
		return err
	}
	return add(s.balances, storage.Compose(plmc.Native, to), amount, nil)
}

func (s *Store) AddReleaseSchedule(account plmc.Address, schedule Schedule) error {
	if err := checkAmount(schedule.Total); err != nil {
		return err
	}
	if schedule.Total.Sign() == 0 {
		return nil
	}
	held, err := s.HeldBalance(account, schedule.Reason)
	if err != nil {
		return err
	}
	if held.Cmp(schedule.Total) < 0 {
		return ErrInsufficientHeld
	}
	list, err := s.Schedules(account)
	if err != nil {
		return err
	}
	schedule.Released = new(big.Int)
	list = append(list, &schedule)
	return errors.Wrap(s.schedules.Set(account, list), "failed to set release schedules")
}

// Schedules returns the release schedules of an account.
func (s *Store) Schedules(account plmc.Address) ([]*Schedule, error) {
	list, err := s.schedules.Get(account)
	return list, errors.Wrap(err, "failed to get release schedules")
}

// Vest releases everything the schedules of an account unlocked up to block now and returns the amount.
func (s *Store) Vest(account plmc.Address, now uint32) (*big.Int, error) {
	list, err := s.Schedules(account)
	if err != nil {
		return nil, err
	}
	var (
		total = new(big.Int)
		kept  []*Schedule
	)
	for _, sch := range list {
		vested := sch.Vested(now)
		amount := new(big.Int).Sub(vested, sch.Released)
		if amount.Sign() > 0 {
			if err := s.Release(account, amount, sch.Reason); err != nil {
				return nil, err
			}
			sch.Released = vested
			total.Add(total, amount)
		}
		if sch.Released.Cmp(sch.Total) < 0 {
			kept = append(kept, sch)
		}
	}
	if len(kept) == 0 {
		s.schedules.Delete(account)
	} else if err := s.schedules.Set(account, kept); err != nil {
		return nil, errors.Wrap(err, "failed to set release schedules")
	}
	if total.Sign() > 0 {
		logger.Debug("vested", "account", account, "amount", total)
	}
	return total, nil
}
