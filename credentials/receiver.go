// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package credentials

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/polimec/polimec-node/plmc"
)

// ErrBadSignature is returned when a receiving account proof does not verify.
var ErrBadSignature = errors.New("bad receiving account signature")

// ReceiverMessage is the message a receiving account signs to prove it belongs to the
// participant funding the project.
func ReceiverMessage(participant plmc.Address, project plmc.ProjectID) []byte {
	return fmt.Appendf(nil, "Polimec account: %s - project id: %d", participant, project)
}

// VerifyReceiver checks the ownership proof of a receiving account. Ethereum accounts sign the
// keccak digest of the message with secp256k1, Polkadot accounts sign the message with ed25519.
func VerifyReceiver(account plmc.ReceivingAccount, participant plmc.Address, project plmc.ProjectID, sig []byte) error {
	if err := account.Validate(); err != nil {
		return err
	}
	msg := ReceiverMessage(participant, project)
	switch account.Type {
	case plmc.EthereumAccount:
		if len(sig) != crypto.SignatureLength {
			return ErrBadSignature
		}
		s := bytes.Clone(sig)
		if s[64] >= 27 {
			s[64] -= 27
		}
		digest := plmc.Keccak256(msg)
		pub, err := crypto.SigToPub(digest[:], s)
		if err != nil {
			return ErrBadSignature
		}
		if !bytes.Equal(crypto.PubkeyToAddress(*pub).Bytes(), account.Key) {
			return ErrBadSignature
		}
		return nil
	default:
		if len(sig) != ed25519.SignatureSize || !ed25519.Verify(ed25519.PublicKey(account.Key), msg, sig) {
			return ErrBadSignature
		}
		return nil
	}
}
