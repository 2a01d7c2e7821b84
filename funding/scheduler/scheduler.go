// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package scheduler keeps the block indexed queue of pending project transitions.
package scheduler

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

// UpdateType is the transition applied when an entry is due.
type UpdateType uint8

const (
	EvaluationEnd UpdateType = iota
	AuctionOpeningStart
	AuctionClosingStart
	CommunityFundingStart
	FundingEnd
	StartSettlement
)

func (u UpdateType) String() string {
	switch u {
	case EvaluationEnd:
		return "evaluation-end"
	case AuctionOpeningStart:
		return "auction-opening-start"
	case AuctionClosingStart:
		return "auction-closing-start"
	case CommunityFundingStart:
		return "community-funding-start"
	case FundingEnd:
		return "funding-end"
	case StartSettlement:
		return "start-settlement"
	default:
		return "unknown"
	}
}

// Entry is a scheduled transition.
type Entry struct {
	Project plmc.ProjectID
	Update  UpdateType
}

var (
	slotEntries = storage.Slot("projects-to-update")
	slotBlocks  = storage.Slot("projects-to-update-blocks")
)

// Scheduler is the ProjectsToUpdate queue. At most maxPerBlock entries share a block.
type Scheduler struct {
	entries     *storage.Mapping[storage.Uint32, []Entry]
	blocks      *storage.Value[[]uint32]
	maxPerBlock int
}

func New(state *storage.State, maxPerBlock uint32) *Scheduler {
	if maxPerBlock == 0 {
		maxPerBlock = 1
	}
	return &Scheduler{
		entries:     storage.NewMapping[storage.Uint32, []Entry](state, slotEntries),
		blocks:      storage.NewValue[[]uint32](state, slotBlocks),
		maxPerBlock: int(maxPerBlock),
	}
}

// Add appends the entry at target, or at the first later block with room.
// It returns the block the entry was placed at.
func (s *Scheduler) Add(target uint32, entry Entry) (uint32, error) {
	block := target
	for {
		list, err := s.entries.Get(storage.Uint32(block))
		if err != nil {
			return 0, errors.Wrap(err, "failed to get scheduled entries")
		}
		if len(list) < s.maxPerBlock {
			if len(list) == 0 {
				if err := s.trackBlock(block); err != nil {
					return 0, err
				}
			}
			if err := s.entries.Set(storage.Uint32(block), append(list, entry)); err != nil {
				return 0, errors.Wrap(err, "failed to set scheduled entries")
			}
			return block, nil
		}
		block++
	}
}

// Remove deletes the first scheduled entry of the project, scanning blocks in order.
func (s *Scheduler) Remove(project plmc.ProjectID) (Entry, uint32, error) {
	blocks, err := s.blocks.Get()
	if err != nil {
		return Entry{}, 0, errors.Wrap(err, "failed to get scheduled blocks")
	}
	for _, block := range blocks {
		list, err := s.entries.Get(storage.Uint32(block))
		if err != nil {
			return Entry{}, 0, errors.Wrap(err, "failed to get scheduled entries")
		}
		idx := slices.IndexFunc(list, func(e Entry) bool { return e.Project == project })
		if idx < 0 {
			continue
		}
		removed := list[idx]
		list = slices.Delete(list, idx, idx+1)
		if err := s.store(block, list); err != nil {
			return Entry{}, 0, err
		}
		return removed, block, nil
	}
	return Entry{}, 0, reverts.ErrProjectNotInUpdateStore
}

// Pop returns the entries due at block in insertion order and clears the block.
func (s *Scheduler) Pop(block uint32) ([]Entry, error) {
	list, err := s.entries.Get(storage.Uint32(block))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get scheduled entries")
	}
	if len(list) == 0 {
		return nil, nil
	}
	if err := s.store(block, nil); err != nil {
		return nil, err
	}
	return list, nil
}

// Entries returns the entries scheduled at block.
func (s *Scheduler) Entries(block uint32) ([]Entry, error) {
	return s.entries.Get(storage.Uint32(block))
}

// Find returns the first scheduled entry of the project.
func (s *Scheduler) Find(project plmc.ProjectID) (Entry, uint32, bool, error) {
	blocks, err := s.blocks.Get()
	if err != nil {
		return Entry{}, 0, false, errors.Wrap(err, "failed to get scheduled blocks")
	}
	for _, block := range blocks {
		list, err := s.entries.Get(storage.Uint32(block))
		if err != nil {
			return Entry{}, 0, false, err
		}
		for _, e := range list {
			if e.Project == project {
				return e, block, true, nil
			}
		}
	}
	return Entry{}, 0, false, nil
}

// Next returns the earliest block holding entries.
func (s *Scheduler) Next() (uint32, bool, error) {
	blocks, err := s.blocks.Get()
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to get scheduled blocks")
	}
	if len(blocks) == 0 {
		return 0, false, nil
	}
	return blocks[0], true, nil
}

// Len returns the number of scheduled entries.
func (s *Scheduler) Len() (int, error) {
	blocks, err := s.blocks.Get()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, block := range blocks {
		list, err := s.entries.Get(storage.Uint32(block))
		if err != nil {
			return 0, err
		}
		n += len(list)
	}
	return n, nil
}

func (s *Scheduler) store(block uint32, list []Entry) error {
	if len(list) > 0 {
		return s.entries.Set(storage.Uint32(block), list)
	}
	s.entries.Delete(storage.Uint32(block))
	blocks, err := s.blocks.Get()
	if err != nil {
		return err
	}
	if idx, found := slices.BinarySearch(blocks, block); found {
		return s.blocks.Set(slices.Delete(blocks, idx, idx+1))
	}
	return nil
}

func (s *Scheduler) trackBlock(block uint32) error {
	blocks, err := s.blocks.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get scheduled blocks")
	}
	idx, found := slices.BinarySearch(blocks, block)
	if found {
		return nil
	}
	return s.blocks.Set(slices.Insert(blocks, idx, block))
}
