// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/token"
)

// CustomGenesis is user customized genesis, as read from a yaml file.
//
//	name: IkmToken
//	symbol: DVTK
//	decimals: 18
//	initialSupply: "5000000"
//	owner: "0x..."
//	accounts:
//	  - address: "0x..."
//	    balance: "0x3e8"
type CustomGenesis struct {
	Name          string    `yaml:"name"`
	Symbol        string    `yaml:"symbol"`
	Decimals      uint8     `yaml:"decimals"`
	InitialSupply string    `yaml:"initialSupply"`
	Owner         string    `yaml:"owner"`
	LaunchTime    uint64    `yaml:"launchTime"`
	Accounts      []Account `yaml:"accounts"`
}

// Account is an extra allocation.
type Account struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// parseAmount accepts hex (0x prefixed) or decimal.
func parseAmount(s string) (*uint256.Int, error) {
	b, ok := math.ParseBig256(s)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.Errorf("amount %q overflows", s)
	}
	return v, nil
}

// Build converts the file form into a validated genesis.
func (c *CustomGenesis) Build() (*Genesis, error) {
	owner, err := token.ParseAddress(c.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	supply, err := parseAmount(c.InitialSupply)
	if err != nil {
		return nil, errors.Wrap(err, "initialSupply")
	}
	gen := &Genesis{
		Info: token.Info{
			Name:     c.Name,
			Symbol:   c.Symbol,
			Decimals: c.Decimals,
		},
		Owner:      owner,
		Supply:     supply,
		LaunchTime: c.LaunchTime,
	}
	for i, acc := range c.Accounts {
		addr, err := token.ParseAddress(acc.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "accounts[%d].address", i)
		}
		amount, err := parseAmount(acc.Balance)
		if err != nil {
			return nil, errors.Wrapf(err, "accounts[%d].balance", i)
		}
		gen.Allocs = append(gen.Allocs, Alloc{addr, amount})
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return gen, nil
}

// Parse decodes a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	var custom CustomGenesis
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return nil, errors.Wrap(err, "unmarshal genesis")
	}
	return custom.Build()
}

// Load reads a yaml genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}
