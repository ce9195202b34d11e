package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroconnect/internal/models"
	"neuroconnect/pkg/dataset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCloud() *dataset.Cloud {
	return &dataset.Cloud{Points: []dataset.Point{
		{ID: "a", Group: "1", Value: 0.5, HasValue: true, Pos: models.Vec3{X: 1, Y: 2, Z: 3}},
		{ID: "b", Group: "2", Pos: models.Vec3{X: -4, Y: 5, Z: -6}},
	}}
}

func TestSaveLoadDataset(t *testing.T) {
	s := openTestStore(t)

	cloud := testCloud()
	id, err := s.SaveDataset("upload.csv", cloud)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, name, err := s.LoadDataset(id)
	require.NoError(t, err)
	assert.Equal(t, "upload.csv", name)
	require.Len(t, got.Points, 2)
	assert.Equal(t, cloud.Points, got.Points)

	// The second point had no value; it must come back value-less, not
	// as a zero.
	assert.False(t, got.Points[1].HasValue)
}

func TestLoadDatasetUnknown(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.LoadDataset("no-such-id")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListDatasets(t *testing.T) {
	s := openTestStore(t)

	infos, err := s.ListDatasets()
	require.NoError(t, err)
	assert.Empty(t, infos)

	first, err := s.SaveDataset("first.csv", testCloud())
	require.NoError(t, err)
	second, err := s.SaveDataset("second.csv", testCloud())
	require.NoError(t, err)

	infos, err = s.ListDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	ids := []string{infos[0].ID, infos[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
	for _, info := range infos {
		assert.Equal(t, 2, info.Points)
		assert.NotEmpty(t, info.Name)
	}
}
