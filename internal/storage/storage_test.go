package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qihuang-chef/internal/database"
	"qihuang-chef/internal/plan"
)

func newTestStore(t *testing.T) (*Store, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL, zerolog.Nop()), db
}

func TestLoadMissingKeysReturnNil(t *testing.T) {
	store, _ := newTestStore(t)

	favs, err := store.LoadFavorites()
	require.NoError(t, err)
	assert.Nil(t, favs)

	ids, err := store.LoadPurchased()
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestFavoritesRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	favs := []plan.Recipe{
		{Name: "山药排骨汤", TCMBenefit: "健脾益气", Steps: []string{"焯水", "炖40分钟"}, StepKeys: []string{"山药排骨汤#0", "山药排骨汤#1"}},
		{Name: "银耳羹", TCMBenefit: "润肺"},
	}
	require.NoError(t, store.SaveFavorites(favs))

	got, err := store.LoadFavorites()
	require.NoError(t, err)
	assert.Equal(t, favs, got)

	// A rewrite replaces the payload in full.
	require.NoError(t, store.SaveFavorites(favs[:1]))
	got, err = store.LoadFavorites()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "山药排骨汤", got[0].Name)
}

func TestPurchasedRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SavePurchased([]string{"0-0", "1-2"}))
	got, err := store.LoadPurchased()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0-0", "1-2"}, got)

	require.NoError(t, store.SavePurchased(nil))
	got, err = store.LoadPurchased()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadMigratesLegacyBareArrayPayload(t *testing.T) {
	store, db := newTestStore(t)

	// Pre-envelope writes stored the value as a bare JSON array.
	_, err := db.SQL.Exec(`INSERT INTO app_state (key, payload, updated_at) VALUES (?, ?, ?)`,
		purchasedKey, []byte(`["0-1","2-3"]`), time.Now().UTC())
	require.NoError(t, err)

	got, err := store.LoadPurchased()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0-1", "2-3"}, got)
}

func TestLoadDiscardsUnknownVersion(t *testing.T) {
	store, db := newTestStore(t)

	_, err := db.SQL.Exec(`INSERT INTO app_state (key, payload, updated_at) VALUES (?, ?, ?)`,
		favoritesKey, []byte(`{"version":99,"data":[{"name":"未来菜"}]}`), time.Now().UTC())
	require.NoError(t, err)

	got, err := store.LoadFavorites()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadRejectsCorruptPayload(t *testing.T) {
	store, db := newTestStore(t)

	_, err := db.SQL.Exec(`INSERT INTO app_state (key, payload, updated_at) VALUES (?, ?, ?)`,
		favoritesKey, []byte(`{{not json`), time.Now().UTC())
	require.NoError(t, err)

	_, err = store.LoadFavorites()
	assert.Error(t, err)
}
