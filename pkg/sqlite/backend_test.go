package sqlite_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/apiconf/pkg/sqlite"
	"github.com/mesh-intelligence/apiconf/pkg/tracking"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

func TestTrackedRecordsThroughStore(t *testing.T) {
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer store.Detach()

	tbl, err := store.GetTable(types.TableSecurity)
	require.NoError(t, err)

	coll := tracking.NewCollection[types.SecurityRule](nil)
	rec, err := coll.Create(types.SecurityRule{ID: "public", Scheme: types.SchemeNone})
	require.NoError(t, err)
	require.NoError(t, rec.Update(types.Patch{"scheme": types.SchemeAPIKey, "roles": []string{"reader"}}))

	for _, v := range coll.Export() {
		_, err := tbl.Set(v)
		require.NoError(t, err)
	}

	raw, err := tbl.Get("public")
	require.NoError(t, err)
	var got types.SecurityRule
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, types.SchemeAPIKey, got.Scheme)
	assert.Equal(t, []string{"reader"}, got.Roles)
}

func TestDetachedStore(t *testing.T) {
	store := sqlite.NewBackend()
	_, err := store.GetTable(types.TableEntities)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
