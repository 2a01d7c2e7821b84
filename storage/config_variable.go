// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/plmc"
)

// ConfigVariable is a uint32 parameter whose default can be overridden from the state.
type ConfigVariable struct {
	slot        plmc.Bytes32
	name        string
	value       uint32
	initialised bool
}

func NewConfigVariable(name string, defaultValue uint32) *ConfigVariable {
	return &ConfigVariable{
		slot:  Slot(name),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Get() uint32 {
	return c.value
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() plmc.Bytes32 {
	return c.slot
}

// Override loads a non zero value stored in the state once.
func (c *ConfigVariable) Override(state *State) {
	if c.initialised {
		return
	}
	stored, err := NewValue[uint32](state, c.slot).Get()
	if err != nil {
		log.Warn("failed to read config value", "slot", c.Name(), "error", err)
		return
	}

	c.initialised = true

	if stored != 0 {
		c.value = stored
		log.Debug("debug override found new config value", "slot", c.Name(), "value", c.Get())
	} else {
		log.Debug("using default config value", "slot", c.Name(), "value", c.Get())
	}
}

// Store persists an override that takes effect for variables loaded afterwards.
func (c *ConfigVariable) Store(state *State, value uint32) error {
	return NewValue[uint32](state, c.slot).Set(value)
}
