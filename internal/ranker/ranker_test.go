package ranker

import (
	"math"
	"testing"

	"CardSync/internal/interfaces"
	"CardSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vecAtDistance 构造与查询向量(1,0)余弦距离恰为dist的单位向量
func vecAtDistance(dist float64) []float32 {
	sim := 1 - dist
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

func TestSearchOrdering(t *testing.T) {
	query := []float32{1, 0}
	entries := []*interfaces.EmbeddingEntry{
		{CardID: 30, Vector: vecAtDistance(0.9)},
		{CardID: 10, Vector: vecAtDistance(0.1)},
		{CardID: 20, Vector: vecAtDistance(0.5)},
	}

	matches, err := Search(entries, query, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// 距离升序：最近的两张
	assert.Equal(t, int64(10), matches[0].CardID)
	assert.Equal(t, int64(20), matches[1].CardID)
	assert.InDelta(t, 0.1, matches[0].Distance, 1e-5)
	assert.InDelta(t, 0.5, matches[1].Distance, 1e-5)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
}

func TestSearchTieBreakByID(t *testing.T) {
	query := []float32{1, 0}
	v := vecAtDistance(0.3)
	entries := []*interfaces.EmbeddingEntry{
		{CardID: 9, Vector: v},
		{CardID: 3, Vector: v},
		{CardID: 6, Vector: v},
	}

	matches, err := Search(entries, query, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// 等距时按ID升序，保证结果确定
	assert.Equal(t, int64(3), matches[0].CardID)
	assert.Equal(t, int64(6), matches[1].CardID)
	assert.Equal(t, int64(9), matches[2].CardID)
}

func TestSearchKLargerThanCandidates(t *testing.T) {
	matches, err := Search([]*interfaces.EmbeddingEntry{
		{CardID: 1, Vector: []float32{1, 0}},
	}, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.InDelta(t, 0, matches[0].Distance, 1e-5)
}

func TestSearchInvalidK(t *testing.T) {
	for _, k := range []int{0, -1} {
		_, err := Search(nil, []float32{1, 0}, k)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	_, err := Search([]*interfaces.EmbeddingEntry{
		{CardID: 1, Vector: []float32{1, 0, 0}},
	}, []float32{1, 0}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestSearchZeroVector(t *testing.T) {
	// 零向量相似度按0处理，距离为1
	matches, err := Search([]*interfaces.EmbeddingEntry{
		{CardID: 1, Vector: []float32{0, 0}},
	}, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1, matches[0].Distance, 1e-5)
}

func TestSearchEmptyCandidates(t *testing.T) {
	matches, err := Search(nil, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
