// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xcm models the cross chain channel migrations are delivered through.
//
// Messages are opaque envelopes: an unpaid execution followed by a transact carrying an rlp
// encoded call, and an optional report of the transact status to a query id.
package xcm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrEmptyMessage  = errors.New("empty message")
)

// ParaID identifies a destination chain.
type ParaID uint32

func (id ParaID) String() string {
	return fmt.Sprintf("para-%d", id)
}

// InstructionKind is the kind of an instruction.
type InstructionKind uint8

const (
	UnpaidExecution InstructionKind = iota
	Transact
	ReportTransactStatus
	QueryPallet
	ReportHolding
)

// Instruction is one step of a message.
type Instruction struct {
	Kind    InstructionKind
	Call    []byte
	QueryID uint64
}

// Message is an ordered list of instructions.
type Message struct {
	Instructions []Instruction
}

// NewEnvelope wraps a call into an unpaid execution and transact message.
func NewEnvelope(call []byte, queryID uint64) Message {
	return Message{Instructions: []Instruction{
		{Kind: UnpaidExecution},
		{Kind: Transact, Call: call},
		{Kind: ReportTransactStatus, QueryID: queryID},
	}}
}

// NewQuery builds a message asking the destination to report back to queryID.
func NewQuery(kind InstructionKind, queryID uint64) Message {
	return Message{Instructions: []Instruction{
		{Kind: UnpaidExecution},
		{Kind: kind, QueryID: queryID},
	}}
}

// Call returns the call of the transact instruction.
func (m Message) Call() ([]byte, bool) {
	for _, ins := range m.Instructions {
		if ins.Kind == Transact {
			return ins.Call, true
		}
	}
	return nil, false
}

// QueryID returns the query id the message reports to.
func (m Message) QueryID() (uint64, bool) {
	for _, ins := range m.Instructions {
		if ins.Kind != UnpaidExecution && ins.Kind != Transact {
			return ins.QueryID, true
		}
	}
	return 0, false
}

func (m Message) Encode() ([]byte, error) {
	if len(m.Instructions) == 0 {
		return nil, ErrEmptyMessage
	}
	return rlp.EncodeToBytes(&m)
}

func Decode(b []byte) (Message, error) {
	var m Message
	if err := rlp.DecodeBytes(b, &m); err != nil {
		return Message{}, err
	}
	if len(m.Instructions) == 0 {
		return Message{}, ErrEmptyMessage
	}
	return m, nil
}

// Channel delivers messages to other chains.
type Channel interface {
	Send(dest ParaID, msg Message) error
}

// Batch splits items into chunks of at most max items.
func Batch[T any](items []T, max int) [][]T {
	if max <= 0 {
		max = 1
	}
	var out [][]T
	for len(items) > 0 {
		n := min(max, len(items))
		out = append(out, items[:n:n])
		items = items[n:]
	}
	return out
}
