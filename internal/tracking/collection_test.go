package tracking

import (
	"testing"

	"github.com/mesh-intelligence/apiconf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttrCollection(t *testing.T) *Collection[attr] {
	t.Helper()
	c := NewCollection[attr](SequentialIDs("attr"))
	require.NoError(t, c.Load(
		attr{Name: "id", Required: true},
		attr{Name: "title", Required: true},
		attr{Name: "notes"},
	))
	return c
}

func TestCollectionLoad(t *testing.T) {
	c := newAttrCollection(t)

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Dirty())
	assert.Equal(t, map[types.Status]int{types.StatusPristine: 3}, c.Summary())

	r, ok := c.Get("attr-2")
	require.True(t, ok)
	assert.Equal(t, "title", mustCurrent(t, r).Name)

	_, ok = c.Get("attr-9")
	assert.False(t, ok)
}

func TestCollectionLoadRejectsNil(t *testing.T) {
	c := NewCollection[map[string]any](nil)
	err := c.Load(map[string]any{"a": 1}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.Equal(t, 1, c.Len())
}

func TestCollectionExport(t *testing.T) {
	c := newAttrCollection(t)

	title, _ := c.Get("attr-2")
	title.Delete()

	notes, _ := c.Get("attr-3")
	require.NoError(t, notes.Update(types.Patch{"required": true}))

	created, err := c.Create(attr{Name: "owner"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusNew, created.Status())

	assert.True(t, c.Dirty())
	assert.Equal(t, []attr{
		{Name: "id", Required: true},
		{Name: "notes", Required: true},
		{Name: "owner"},
	}, c.Export())
	assert.Equal(t, map[types.Status]int{
		types.StatusPristine: 1,
		types.StatusDeleted:  1,
		types.StatusModified: 1,
		types.StatusNew:      1,
	}, c.Summary())

	title.Restore()
	assert.Len(t, c.Export(), 4)
}

func TestCollectionAddAndFind(t *testing.T) {
	c := newAttrCollection(t)

	r, ok := c.Find(func(a attr) bool { return a.Name == "notes" })
	require.True(t, ok)
	assert.Equal(t, "attr-3", r.ID())

	r.Delete()
	_, ok = c.Find(func(a attr) bool { return a.Name == "notes" })
	assert.False(t, ok, "deleted records are not found")

	assert.False(t, c.Add(r), "duplicate ids are ignored")

	other, err := NewRecord(attr{Name: "x"}, WithIDGenerator(func() string { return "external" }))
	require.NoError(t, err)
	assert.True(t, c.Add(other))
	assert.Equal(t, 4, c.Len())

	records := c.Records()
	records[0] = nil
	assert.NotNil(t, c.Records()[0], "Records returns a copy")
}

func TestExportSkipsDeleted(t *testing.T) {
	a := mustRecord(t, counter{X: 1})
	b := mustRecord(t, counter{X: 2})
	b.Delete()
	assert.Equal(t, []counter{{X: 1}}, Export([]*Record[counter]{a, b}))
	assert.Empty(t, Export[counter](nil))
}
