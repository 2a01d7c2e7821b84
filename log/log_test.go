// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(l slog.Level) *slog.LevelVar {
	var v slog.LevelVar
	v.Set(l)
	return &v
}

func TestWithContextFollowsDefault(t *testing.T) {
	logger := WithContext("pkg", "funding")

	var buf bytes.Buffer
	SetDefault(NewTerminalHandlerWithLevel(&buf, level(LevelInfo), false))
	t.Cleanup(func() { SetDefault(DiscardHandler()) })

	logger.With("project", 1).Info("performed housekeeping", "block", 10)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "performed housekeeping")
	assert.Contains(t, out, "pkg=funding")
	assert.Contains(t, out, "project=1")
	assert.Contains(t, out, "block=10")
	assert.NotContains(t, out, "hidden")
}

func TestLevelChangeReachesInstalledHandler(t *testing.T) {
	lvl := level(LevelWarn)
	logger := WithContext("pkg", "node")

	var buf bytes.Buffer
	SetDefault(NewTerminalHandlerWithLevel(&buf, lvl, false))
	t.Cleanup(func() { SetDefault(DiscardHandler()) })

	logger.Info("before")
	assert.Empty(t, buf.String())

	lvl.Set(LevelDebug)
	logger.Debug("after")
	assert.Contains(t, buf.String(), "after")

	lvl.Set(LevelError)
	buf.Reset()
	logger.With("project", 2).Warn("filtered")
	assert.Empty(t, buf.String())
}

func TestJSONHandler(t *testing.T) {
	lvl := level(LevelInfo)

	var buf bytes.Buffer
	SetDefault(JSONHandlerWithLevel(&buf, lvl))
	t.Cleanup(func() { SetDefault(DiscardHandler()) })

	WithContext("pkg", "funding").Info("bid placed", "usd", big.NewInt(1500))
	Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "info", rec["lvl"])
	assert.Equal(t, "bid placed", rec["msg"])
	assert.Equal(t, "funding", rec["pkg"])
	assert.Equal(t, "1500", rec["usd"])
	assert.Contains(t, rec, "t")

	lvl.Set(LevelDebug)
	buf.Reset()
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelInfo, FromVerbosity(3))
	assert.Equal(t, LevelTrace, FromVerbosity(5))
}
