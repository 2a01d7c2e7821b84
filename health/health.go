// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

const delayBuffer = 5 * time.Second

type BlockProduction struct {
	Block     uint32     `json:"block"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy         bool             `json:"healthy"`
	BlockProduction *BlockProduction `json:"blockProduction"`
	Running         bool             `json:"running"`
}

// Health tracks the liveness of the block loop.
type Health struct {
	lock          sync.RWMutex
	lastBlockAt   time.Time
	lastBlock     uint32
	running       bool
	blockInterval time.Duration
}

func New(blockInterval time.Duration) *Health {
	return &Health{blockInterval: blockInterval}
}

// NewBlock records that block was committed.
func (h *Health) NewBlock(block uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastBlockAt = time.Now()
	h.lastBlock = block
}

// Running records whether the block loop runs.
func (h *Health) Running(running bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.running = running
}

// Status reports healthy when the loop runs and the last block is at most maxTimeBetweenBlocks
// old. A zero maxTimeBetweenBlocks allows the block interval plus a buffer.
func (h *Health) Status(maxTimeBetweenBlocks time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if maxTimeBetweenBlocks == 0 {
		maxTimeBetweenBlocks = h.blockInterval + delayBuffer
	}
	production := &BlockProduction{Block: h.lastBlock}
	if !h.lastBlockAt.IsZero() {
		at := h.lastBlockAt
		production.Timestamp = &at
	}

	return &Status{
		Healthy:         h.running && !h.lastBlockAt.IsZero() && time.Since(h.lastBlockAt) <= maxTimeBetweenBlocks,
		BlockProduction: production,
		Running:         h.running,
	}
}
