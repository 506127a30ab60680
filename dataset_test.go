package geoann

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDatasetValidatesShape(t *testing.T) {
	_, err := NewDataset(0, 2, 2, nil, nil)
	require.Error(t, err)

	_, err = NewDataset(3, 0, 2, make([]float32, 6), make([]float32, 6))
	require.Error(t, err)

	_, err = NewDataset(3, 2, 2, make([]float32, 5), make([]float32, 6))
	require.Error(t, err)

	ds, err := NewDataset(3, 2, 2, make([]float32, 6), make([]float32, 6))
	require.NoError(t, err)
	require.Equal(t, 3, ds.N)
}

func TestDatasetRows(t *testing.T) {
	emb := []float32{1, 2, 3, 4, 5, 6}
	loc := []float32{10, 20, 30, 40}
	ds, err := NewDataset(2, 3, 2, emb, loc)
	require.NoError(t, err)

	require.Equal(t, []float32{1, 2, 3}, ds.EmbRow(0))
	require.Equal(t, []float32{4, 5, 6}, ds.EmbRow(1))
	require.Equal(t, []float32{10, 20}, ds.LocRow(0))
	require.Equal(t, []float32{30, 40}, ds.LocRow(1))
}
