// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/token"
)

// DevAccount is a funded or fundable account of the dev genesis.
type DevAccount struct {
	Address    token.Address
	PrivateKey *ecdsa.PrivateKey
}

// devKeys are well known keys, never use them outside of solo mode.
var devKeys = []string{
	"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
	"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
	"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
	"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
	"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
}

// DevAccounts returns the solo mode accounts. The first one owns the dev supply.
var DevAccounts = sync.OnceValue(func() []DevAccount {
	accs := make([]DevAccount, 0, len(devKeys))
	for _, hex := range devKeys {
		pk, err := crypto.HexToECDSA(hex)
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{
			Address:    token.Address(crypto.PubkeyToAddress(pk.PublicKey)),
			PrivateKey: pk,
		})
	}
	return accs
})

// DevSupply is the initial supply of the dev genesis, in base units.
const DevSupply = 5000000

// NewDevnet returns the genesis of solo mode, the IkmToken deployment.
func NewDevnet() *Genesis {
	return &Genesis{
		Info: token.Info{
			Name:     "IkmToken",
			Symbol:   "DVTK",
			Decimals: 18,
		},
		Owner:      DevAccounts()[0].Address,
		Supply:     uint256.NewInt(DevSupply),
		LaunchTime: 1526400000, // 'Wed May 16 2018 00:00:00 GMT+0800 (CST)'
	}
}
