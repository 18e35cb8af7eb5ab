package ranker

import (
	"fmt"
	"math"
	"sort"

	"CardSync/internal/interfaces"
	"CardSync/internal/model"
)

// Match 单条检索结果：(卡牌ID, 余弦距离)
type Match struct {
	CardID   int64   `json:"card_id"`  // 卡牌ID
	Distance float64 `json:"distance"` // 余弦距离 1-cosine_similarity，取值[0,2]
}

// Search 对候选集做暴力近邻扫描，按余弦距离升序返回至多k条结果。
// 距离相等时按ID升序打破平局，保证结果确定。k<=0返回 model.ErrInvalidArgument，
// 查询向量与候选向量维度不一致同样视为参数错误。
// 复杂度O(N·D)，距离计算是主要开销；候选集由调用方从存储层取出。
func Search(entries []*interfaces.EmbeddingEntry, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k必须为正数，收到%d: %w", k, model.ErrInvalidArgument)
	}

	matches := make([]Match, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != len(query) {
			return nil, fmt.Errorf("卡牌%d向量维度%d与查询维度%d不符: %w",
				e.CardID, len(e.Vector), len(query), model.ErrInvalidArgument)
		}
		matches = append(matches, Match{
			CardID:   e.CardID,
			Distance: 1 - cosineSimilarity(query, e.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].CardID < matches[j].CardID // 平局按ID升序
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// cosineSimilarity 计算两个向量的余弦相似度，取值[-1,1]。
// 零向量的相似度按0处理（对应距离1）。
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
