// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plmc

import (
	"encoding/hex"
	"errors"
	"strings"
)

// AccountType is the kind of account participants receive tokens on.
type AccountType uint8

const (
	// PolkadotAccount is a 32 bytes ed25519 public key account.
	PolkadotAccount AccountType = iota
	// EthereumAccount is a 20 bytes secp256k1 derived account.
	EthereumAccount
)

func (t AccountType) String() string {
	if t == EthereumAccount {
		return "ethereum"
	}
	return "polkadot"
}

// KeyLength returns the length of a receiving account key of this type.
func (t AccountType) KeyLength() int {
	if t == EthereumAccount {
		return 20
	}
	return 32
}

// ReceivingAccount is the destination chain account tokens migrate to.
type ReceivingAccount struct {
	Type AccountType
	Key  []byte
}

// Validate checks the key length matches the account type.
func (r ReceivingAccount) Validate() error {
	if len(r.Key) != r.Type.KeyLength() {
		return errors.New("invalid receiving account length")
	}
	return nil
}

func (r ReceivingAccount) String() string {
	return r.Type.String() + ":0x" + hex.EncodeToString(r.Key)
}

// ParseReceivingAccount parses a hex key and infers the type from its length.
func ParseReceivingAccount(s string) (ReceivingAccount, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	key, err := hex.DecodeString(s)
	if err != nil {
		return ReceivingAccount{}, err
	}
	switch len(key) {
	case 20:
		return ReceivingAccount{Type: EthereumAccount, Key: key}, nil
	case 32:
		return ReceivingAccount{Type: PolkadotAccount, Key: key}, nil
	}
	return ReceivingAccount{}, errors.New("invalid receiving account length")
}

// PolkadotReceiver returns the receiving account equal to a native account.
func PolkadotReceiver(addr Address) ReceivingAccount {
	return ReceivingAccount{Type: PolkadotAccount, Key: append([]byte(nil), addr[:]...)}
}
