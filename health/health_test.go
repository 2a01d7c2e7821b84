// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	h := New(time.Second)

	status := h.Status(0)
	assert.False(t, status.Healthy)
	assert.Nil(t, status.BlockProduction.Timestamp)

	h.Running(true)
	assert.False(t, h.Status(0).Healthy, "no block yet")

	h.NewBlock(7)
	status = h.Status(0)
	assert.True(t, status.Healthy)
	assert.Equal(t, uint32(7), status.BlockProduction.Block)
	assert.NotNil(t, status.BlockProduction.Timestamp)

	time.Sleep(5 * time.Millisecond)
	assert.False(t, h.Status(time.Millisecond).Healthy, "stale block")

	h.Running(false)
	assert.False(t, h.Status(0).Healthy)
}
