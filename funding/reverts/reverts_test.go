// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected bool
	}{
		{"nil", nil, false},
		{"non error", "TooLow", false},
		{"standard error", errors.New("boom"), false},
		{"revert", ErrTooLow, true},
		{"wrapped revert", pkgerrors.Wrap(ErrTooLow, "evaluate"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRevertErr(tt.input))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Validation, KindOf(ErrIncorrectRound))
	assert.Equal(t, Arithmetic, KindOf(pkgerrors.Wrap(ErrBadMath, "bond")))
	assert.Equal(t, Scheduling, KindOf(ErrTooEarlyForRound))
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, "settlement", ErrMigrationsStillPending.Kind().String())
}

func TestSentinelIdentity(t *testing.T) {
	err := pkgerrors.Wrap(ErrMigrationsStillPending, "mark finished")
	assert.ErrorIs(t, err, ErrMigrationsStillPending)
	assert.NotErrorIs(t, err, ErrNoMigrationsFound)
	assert.Equal(t, "mark finished: MigrationsStillPending", err.Error())
}
