// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/token"
)

func TestDevnet(t *testing.T) {
	gen := NewDevnet()
	require.NoError(t, gen.Validate())
	assert.Equal(t, "IkmToken", gen.Info.Name)
	assert.Equal(t, "DVTK", gen.Info.Symbol)
	assert.Equal(t, uint8(18), gen.Info.Decimals)
	assert.Equal(t, uint256.NewInt(5000000), gen.Supply)
	assert.Equal(t, DevAccounts()[0].Address, gen.Owner)
	assert.Len(t, DevAccounts(), 5)
	assert.Equal(t, "0xf077b491b355e64048ce21e3a6fc4751eeea77fa", DevAccounts()[0].Address.String())

	assert.Equal(t, gen.ID(), NewDevnet().ID())
}

const sampleYAML = `
name: IkmToken
symbol: DVTK
decimals: 18
initialSupply: "5000000"
owner: "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"
launchTime: 1000
accounts:
  - address: "0x435933c8064b4ae76be665428e0307ef2ccfbd68"
    balance: "0x3e8"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	gen, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(5000000), gen.Supply)
	assert.Equal(t, uint64(1000), gen.LaunchTime)
	require.Len(t, gen.Allocs, 1)
	assert.Equal(t, token.MustParseAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68"), gen.Allocs[0].Address)
	assert.Equal(t, uint256.NewInt(1000), gen.Allocs[0].Amount)

	assert.NotEqual(t, NewDevnet().ID(), gen.ID())
	gen.Allocs = nil
	assert.Equal(t, NewDevnet().ID(), gen.ID(), "launch time is not identity")
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad owner", "name: a\nsymbol: b\ninitialSupply: '1'\nowner: '0x12'"},
		{"zero owner", "name: a\nsymbol: b\ninitialSupply: '1'\nowner: '0x0000000000000000000000000000000000000000'"},
		{"bad supply", "name: a\nsymbol: b\ninitialSupply: 'x'\nowner: '0xf077b491b355e64048ce21e3a6fc4751eeea77fa'"},
		{"empty info", "initialSupply: '1'\nowner: '0xf077b491b355e64048ce21e3a6fc4751eeea77fa'"},
		{"not yaml", "{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
