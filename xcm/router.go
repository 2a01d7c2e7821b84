// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xcm

import (
	"sync"

	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/metrics"
)

var (
	logger = log.WithContext("pkg", "xcm")

	metricMessagesSent = metrics.LazyLoadCounterVec("xcm_messages_sent_count", []string{"dest"})
)

// Router is an in memory Channel keeping the encoded messages sent to each open destination.
type Router struct {
	lock sync.Mutex
	open map[ParaID]bool
	sent map[ParaID][][]byte
}

var _ Channel = (*Router)(nil)

func NewRouter() *Router {
	return &Router{
		open: make(map[ParaID]bool),
		sent: make(map[ParaID][][]byte),
	}
}

// Open marks a destination as reachable.
func (r *Router) Open(dest ParaID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.open[dest] = true
}

// Close marks a destination as unreachable.
func (r *Router) Close(dest ParaID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.open, dest)
}

func (r *Router) Send(dest ParaID, msg Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.open[dest] {
		return ErrChannelClosed
	}
	r.sent[dest] = append(r.sent[dest], raw)
	metricMessagesSent().AddWithLabel(1, map[string]string{"dest": dest.String()})
	logger.Debug("message sent", "dest", dest, "size", len(raw))
	return nil
}

// Sent returns the decoded messages sent to a destination.
func (r *Router) Sent(dest ParaID) ([]Message, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]Message, 0, len(r.sent[dest]))
	for _, raw := range r.sent[dest] {
		m, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
