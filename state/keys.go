// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/token"
)

// StorePrefix prefixes every key written by the state.
const StorePrefix = "st."

type keyKind byte

const (
	genesisKind          keyKind = 'g'
	infoKind             keyKind = 'i'
	supplyKind           keyKind = 't'
	sequenceKind         keyKind = 'q'
	balanceKind          keyKind = 'b'
	allowanceKind        keyKind = 'a'
	stakeholderKind      keyKind = 'h'
	stakeholderCountKind keyKind = 'H'
	stakeCountKind       keyKind = 'n'
	stakeKind            keyKind = 's'
	nonceKind            keyKind = 'o'
)

func (k keyKind) String() string {
	switch k {
	case genesisKind:
		return "genesis"
	case infoKind:
		return "info"
	case supplyKind:
		return "supply"
	case sequenceKind:
		return "sequence"
	case balanceKind:
		return "balance"
	case allowanceKind:
		return "allowance"
	case stakeholderKind:
		return "stakeholder"
	case stakeholderCountKind:
		return "stakeholder-count"
	case stakeCountKind:
		return "stake-count"
	case stakeKind:
		return "stake"
	case nonceKind:
		return "nonce"
	}
	return "unknown"
}

// key identifies one record. Unused fields stay zero.
type key struct {
	kind keyKind
	a, b token.Address
	n    uint64
}

// encode returns the store key.
// Allowance slots are hashed from the (owner, spender) pair, stake slots keep
// owner and position readable so that one owner's stakes are contiguous.
func (k key) encode() []byte {
	buf := []byte{byte(k.kind)}
	switch k.kind {
	case balanceKind, stakeholderKind, stakeCountKind, nonceKind:
		buf = append(buf, k.a[:]...)
	case allowanceKind:
		buf = append(buf, crypto.Keccak256(k.a[:], k.b[:])...)
	case stakeKind:
		buf = append(buf, k.a[:]...)
		buf = binary.BigEndian.AppendUint64(buf, k.n)
	}
	return kv.Prefixed(StorePrefix, buf)
}
