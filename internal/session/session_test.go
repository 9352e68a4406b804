package session

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/apiconf/internal/sqlite"
	"github.com/mesh-intelligence/apiconf/internal/tracking"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

func setupStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func seed(t *testing.T, store types.Store, tableName string, values ...any) {
	t.Helper()
	tbl, err := store.GetTable(tableName)
	require.NoError(t, err)
	for _, v := range values {
		_, err := tbl.Set(v)
		require.NoError(t, err)
	}
}

func TestLoad(t *testing.T) {
	store := setupStore(t)
	seed(t, store, types.TableEntities,
		types.Entity{ID: "book", Name: "Book"},
		types.Entity{ID: "author", Name: "Author"},
	)

	s := New(store, WithIDGenerator(tracking.SequentialIDs("rec")))
	coll, err := Load[types.Entity](s, types.TableEntities)
	require.NoError(t, err)

	require.Equal(t, 2, coll.Len())
	r, ok := coll.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, types.StatusPristine, r.Status())
	v, _ := r.Current()
	assert.Equal(t, "Book", v.Name)
}

func TestLoadErrors(t *testing.T) {
	store := setupStore(t)
	s := New(store)

	_, err := Load[types.Entity](s, "nope")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	seed(t, store, types.TableDeployment, map[string]any{"id": "d1", "port": "not-a-number"})
	_, err = Load[types.Deployment](s, types.TableDeployment)
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestSave(t *testing.T) {
	store := setupStore(t)
	seed(t, store, types.TableEntities, types.Entity{ID: "book", Name: "Book"})
	seed(t, store, types.TableAttributes,
		types.Attribute{ID: "a1", EntityID: "book", Name: "title", Required: true},
		types.Attribute{ID: "a2", EntityID: "book", Name: "isbn"},
		types.Attribute{ID: "a3", EntityID: "book", Name: "notes"},
	)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(store, WithLogger(logger))

	coll, err := Load[types.Attribute](s, types.TableAttributes)
	require.NoError(t, err)

	title, _ := coll.Find(func(a types.Attribute) bool { return a.ID == "a1" })
	require.NoError(t, title.Update(types.Patch{"required": false}))

	isbn, _ := coll.Find(func(a types.Attribute) bool { return a.ID == "a2" })
	isbn.Delete()

	notes, _ := coll.Find(func(a types.Attribute) bool { return a.ID == "a3" })
	require.NoError(t, notes.Update(types.Patch{"name": "remarks"}))
	require.True(t, notes.Undo())

	created, err := coll.Create(types.Attribute{EntityID: "book", Name: "pages", Type: "integer"})
	require.NoError(t, err)
	scratch, err := coll.Create(types.Attribute{EntityID: "book", Name: "scratch"})
	require.NoError(t, err)
	scratch.Delete()

	report, err := Save(s, types.TableAttributes, coll)
	require.NoError(t, err)
	assert.Equal(t, Report{
		Table:     types.TableAttributes,
		Written:   2,
		Deleted:   1,
		Unchanged: 1,
		Discarded: 1,
	}, report)
	assert.Equal(t, types.StatusNew, created.Status())

	assert.Contains(t, logs.String(), "loaded table")
	assert.Contains(t, logs.String(), "saved table")
	assert.Contains(t, logs.String(), "written=2")

	reloaded, err := Load[types.Attribute](New(store), types.TableAttributes)
	require.NoError(t, err)
	got := reloaded.Export()
	require.Len(t, got, 3)
	assert.Equal(t, "title", got[0].Name)
	assert.False(t, got[0].Required)
	assert.Equal(t, "notes", got[1].Name)
	assert.Equal(t, "pages", got[2].Name)
	assert.NotEmpty(t, got[2].ID, "store assigns ids to new records")
}

func TestSaveRenamedID(t *testing.T) {
	store := setupStore(t)
	seed(t, store, types.TableDeployment, types.Deployment{ID: "staging", Environment: "staging"})

	s := New(store)
	coll, err := Load[types.Deployment](s, types.TableDeployment)
	require.NoError(t, err)
	require.NoError(t, coll.Records()[0].Update(types.Patch{"id": "preprod", "environment": "preprod"}))

	report, err := Save(s, types.TableDeployment, coll)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Written)
	assert.Equal(t, 1, report.Deleted)

	tbl, err := store.GetTable(types.TableDeployment)
	require.NoError(t, err)
	_, err = tbl.Get("staging")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = tbl.Get("preprod")
	assert.NoError(t, err)
}

func TestSaveDanglingReference(t *testing.T) {
	store := setupStore(t)
	s := New(store)

	coll := tracking.NewCollection[types.Attribute](nil)
	_, err := coll.Create(types.Attribute{EntityID: "ghost", Name: "title"})
	require.NoError(t, err)

	_, err = Save(s, types.TableAttributes, coll)
	assert.ErrorIs(t, err, types.ErrDanglingReference)
}
