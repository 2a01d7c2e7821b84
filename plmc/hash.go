// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plmc

import (
	"hash"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b hashes the concatenation of data. It derives storage slots and accounts.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	h, _ := blake2b.New256(nil)
	return digest(h, data)
}

// Keccak256 is the legacy keccak digest signed by ethereum wallets.
func Keccak256(data ...[]byte) Bytes32 {
	return digest(sha3.NewLegacyKeccak256(), data)
}

func digest(h hash.Hash, data [][]byte) (out Bytes32) {
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(out[:0])
	return
}
