package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshot_SaveLoadRoundTrip(t *testing.T) {
	db := openTemp(t)
	assert.False(t, db.HasSnapshot())

	doc := map[string]json.RawMessage{
		"clock": json.RawMessage(`{"sim_now_ms":123456,"day_index":0}`),
		"tick":  json.RawMessage(`42`),
	}
	require.NoError(t, db.SaveSnapshot(doc))
	assert.True(t, db.HasSnapshot())

	loaded, err := db.LoadSnapshot()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.JSONEq(t, string(doc["clock"]), string(loaded["clock"]))
	assert.JSONEq(t, string(doc["tick"]), string(loaded["tick"]))
}

func TestSnapshot_SaveReplacesPriorDocument(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveSnapshot(map[string]json.RawMessage{
		"clock": json.RawMessage(`{}`),
		"tick":  json.RawMessage(`1`),
	}))
	require.NoError(t, db.SaveSnapshot(map[string]json.RawMessage{
		"tick": json.RawMessage(`2`),
	}))

	loaded, err := db.LoadSnapshot()
	require.NoError(t, err)
	require.Len(t, loaded, 1, "stale keys from the prior save are gone")
	assert.JSONEq(t, `2`, string(loaded["tick"]))
}

func TestSnapshot_EmptyDatabase(t *testing.T) {
	db := openTemp(t)
	loaded, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMeta_RoundTripAndMissing(t *testing.T) {
	db := openTemp(t)

	got, err := db.GetMeta("run_id")
	require.NoError(t, err)
	assert.Equal(t, "", got, "missing keys read as empty")

	require.NoError(t, db.SaveMeta("run_id", "abc-123"))
	require.NoError(t, db.SaveMeta("run_id", "def-456"))
	got, err = db.GetMeta("run_id")
	require.NoError(t, err)
	assert.Equal(t, "def-456", got, "save upserts")
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveSnapshot(map[string]json.RawMessage{"tick": json.RawMessage(`7`)}))
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()
	assert.True(t, db2.HasSnapshot())
}
