// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node drives the funding engine block by block.
package node

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/health"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/metrics"
)

var (
	logger = log.WithContext("pkg", "node")

	metricBlocks      = metrics.LazyLoadCounter("node_blocks_count")
	metricCalls       = metrics.LazyLoadCounterVec("node_calls_count", []string{"result"})
	metricBlockNumber = metrics.LazyLoadGauge("node_block_number")
)

// ErrStopped is returned for calls submitted after the block loop exited.
var ErrStopped = errors.New("node stopped")

type call struct {
	fn   func(f *funding.Funding) error
	done chan error
}

// Node owns the funding service and serializes every access to it. Calls are applied as they
// come, a new block is housekept on each tick.
type Node struct {
	f        *funding.Funding
	interval time.Duration
	health   *health.Health

	calls   chan call
	stopped chan struct{}
}

// New creates a node producing a block every interval. The health tracker is optional.
func New(f *funding.Funding, interval time.Duration, h *health.Health) *Node {
	return &Node{
		f:        f,
		interval: interval,
		health:   h,
		calls:    make(chan call),
		stopped:  make(chan struct{}),
	}
}

// Call applies fn in the block loop and commits what it wrote. The error of fn is returned
// once applied.
func (n *Node) Call(ctx context.Context, fn func(f *funding.Funding) error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case n.calls <- c:
	case <-n.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubscribeEvents delivers the events of every committed call and block to ch.
func (n *Node) SubscribeEvents(ch chan<- funding.Event) event.Subscription {
	return n.f.SubscribeEvents(ch)
}

// Run loops until ctx is canceled or a block fails to commit.
func (n *Node) Run(ctx context.Context) error {
	defer close(n.stopped)
	if n.health != nil {
		n.health.Running(true)
		defer n.health.Running(false)
	}

	logger.Info("block loop started", "block", n.f.Block(), "interval", n.interval)
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("block loop stopped", "block", n.f.Block())
			return nil
		case c := <-n.calls:
			c.done <- n.apply(c.fn)
		case <-ticker.C:
			if err := n.nextBlock(); err != nil {
				return err
			}
		}
	}
}

func (n *Node) apply(fn func(f *funding.Funding) error) error {
	err := fn(n.f)
	if _, cerr := n.f.Commit(); cerr != nil {
		logger.Error("failed to commit call", "err", cerr)
		if err == nil {
			err = cerr
		}
	}
	if err != nil {
		metricCalls().AddWithLabel(1, map[string]string{"result": "error"})
	} else {
		metricCalls().AddWithLabel(1, map[string]string{"result": "ok"})
	}
	return err
}

func (n *Node) nextBlock() error {
	block := n.f.Block() + 1
	if err := n.f.Housekeep(block); err != nil {
		return errors.Wrapf(err, "failed to housekeep block %d", block)
	}
	events, err := n.f.Commit()
	if err != nil {
		return errors.Wrapf(err, "failed to commit block %d", block)
	}
	metricBlocks().Add(1)
	metricBlockNumber().Set(int64(block))
	if n.health != nil {
		n.health.NewBlock(block)
	}
	if len(events) > 0 {
		logger.Debug("block committed", "block", block, "events", len(events))
	}
	return nil
}
