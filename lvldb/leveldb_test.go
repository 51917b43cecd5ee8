// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	diskdb, err := New(filepath.Join(t.TempDir(), "main.db"), Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	require.NoError(t, err)
	defer diskdb.Close()

	memdb, err := NewMem()
	require.NoError(t, err)
	defer memdb.Close()

	for _, db := range []*LevelDB{diskdb, memdb} {
		assert.NoError(t, db.Put(key, value))

		ret1, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, ret1)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBatchAndIterator(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	assert.NoError(t, batch.Put([]byte("a1"), []byte("1")))
	assert.NoError(t, batch.Put([]byte("a2"), []byte("2")))
	assert.NoError(t, batch.Put([]byte("b1"), []byte("3")))
	assert.Equal(t, 3, batch.Len())

	has, _ := db.Has([]byte("a1"))
	assert.False(t, has, "batch must not be visible before write")

	assert.NoError(t, batch.Write())

	assert.Equal(t, 0, batch.Len(), "write empties the batch")

	it := db.NewIterator(kv.PrefixRange([]byte("a")))
	defer it.Release()
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.NoError(t, it.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}

func TestLevelDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.db")

	db, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	stats, err := db.Property("leveldb.stats")
	assert.NoError(t, err)
	assert.NotEmpty(t, stats)
	require.NoError(t, db.Close())

	db, err = New(path, Options{NoSync: true})
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	_, err = db.Property("leveldb.no-such-property")
	assert.Error(t, err)
}
