package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-indexdb/pkg/config"
	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/query"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage.InMemory = true
	cfg.Storage.Sync = false
	return cfg
}

func openTestDB(t *testing.T, cfg *config.Config, options ...Option) *DB {
	t.Helper()
	db, err := Open(cfg, options...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_DeclaresConfiguredIndexes(t *testing.T) {
	cfg := testConfig()
	cfg.Index.Declare = [][]string{{"title"}, {"date desc", "count"}}
	db := openTestDB(t, cfg)

	var names []string
	for _, def := range db.Indexes() {
		names = append(names, def.Name())
	}
	assert.Equal(t, []string{`idx("date"-,"count"+)`, `idx("title"+)`}, names)

	cfg.Index.Declare = [][]string{{}}
	_, err := Open(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidIndexSpec)

	cfg.Storage.Codec = "yaml"
	_, err = Open(cfg)
	assert.Error(t, err)
}

func TestDB_PutAndFind(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, testConfig(), WithRegisterer(prometheus.NewRegistry()))

	_, err := db.EnsureIndex("date desc", "count")
	require.NoError(t, err)

	require.NoError(t, db.Put(ctx, "a", map[string]interface{}{"date": time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), "count": 5}))
	require.NoError(t, db.Put(ctx, "b", map[string]interface{}{"date": time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), "count": 1}))
	require.NoError(t, db.Put(ctx, "c", map[string]interface{}{"date": time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), "count": 4}))

	items, err := db.FindBy(ctx, []string{"date desc", "count"}, query.Query{Projection: query.KeysOnly})
	require.NoError(t, err)
	assert.Equal(t, []query.Item{{Key: "b"}, {Key: "c"}, {Key: "a"}}, items)

	seq, err := db.StreamBy(ctx, []string{"date:DESC", "count asc"}, query.Query{Stages: []query.Stage{query.Limit(1)}})
	require.NoError(t, err)
	var streamed []string
	for item, err := range seq {
		require.NoError(t, err)
		streamed = append(streamed, item.Key)
	}
	assert.Equal(t, []string{"b"}, streamed)

	require.NoError(t, db.Del(ctx, "b"))
	_, err = db.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, err = db.FindBy(ctx, []string{"date desc", "count"}, query.Query{Projection: query.KeysOnly})
	require.NoError(t, err)
	assert.Equal(t, []query.Item{{Key: "c"}, {Key: "a"}}, items)
}

func TestDB_Insert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, testConfig())

	pk, err := db.Insert(ctx, map[string]interface{}{"title": "Hello"})
	require.NoError(t, err)
	_, err = uuid.Parse(pk)
	assert.NoError(t, err)

	got, err := db.Get(ctx, pk)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.(map[string]interface{})["title"])

	// Indexes declared later do not see earlier records
	items, err := db.FindBy(ctx, []string{"title"}, query.Query{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDB_CreateOnDemandDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Index.CreateOnDemand = false
	db := openTestDB(t, cfg)

	_, err := db.FindBy(ctx, []string{"title"}, query.Query{})
	assert.ErrorIs(t, err, domain.ErrIndexNotDefined)
	_, err = db.StreamBy(ctx, []string{"title"}, query.Query{})
	assert.ErrorIs(t, err, domain.ErrIndexNotDefined)

	_, err = db.FindBy(ctx, []string{""}, query.Query{})
	assert.ErrorIs(t, err, domain.ErrInvalidIndexSpec)

	_, err = db.EnsureIndex("title")
	require.NoError(t, err)
	_, err = db.FindBy(ctx, []string{"title"}, query.Query{})
	assert.NoError(t, err)
}

func TestDB_IndexesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "data")
	cfg.Storage.Sync = false
	cfg.Index.Declare = [][]string{{"title"}}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "2", map[string]interface{}{"title": "b"}))
	require.NoError(t, db.Put(ctx, "1", map[string]interface{}{"title": "a"}))
	require.NoError(t, db.Close())

	db, err = Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	items, err := db.FindBy(ctx, []string{"title"}, query.Query{Projection: query.KeysOnly})
	require.NoError(t, err)
	assert.Equal(t, []query.Item{{Key: "1"}, {Key: "2"}}, items)
}

func TestNew_WrapsExistingKeySpace(t *testing.T) {
	ctx := context.Background()
	owner := openTestDB(t, testConfig())

	db, err := New(owner.Records().Sub("other"), WithCreateOnDemand(false))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.EnsureIndex("n")
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "x", map[string]interface{}{"n": 1}))

	items, err := db.FindBy(ctx, []string{"n"}, query.Query{Start: []interface{}{1}, End: []interface{}{1}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].Key)

	_, err = owner.Get(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
