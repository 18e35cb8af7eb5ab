package service

import (
	"context"
	"fmt"

	"CardSync/internal/interfaces"
	"CardSync/internal/ranker"

	"github.com/sirupsen/logrus"
)

// CardMatch 单条检索结果（带卡牌名称，便于前端直接展示）
type CardMatch struct {
	CardID   int64   `json:"card_id"`  // 卡牌ID
	Name     string  `json:"name"`     // 卡牌名称
	Distance float64 `json:"distance"` // 余弦距离（越小越相似）
}

// SearchService 语义检索服务：自由文本→向量→近邻排序
type SearchService struct {
	repo     interfaces.CardRepository
	embedder interfaces.Embedder
	logger   *logrus.Logger
}

// NewSearchService 创建检索服务
func NewSearchService(repo interfaces.CardRepository, embedder interfaces.Embedder, logger *logrus.Logger) *SearchService {
	return &SearchService{
		repo:     repo,
		embedder: embedder,
		logger:   logger,
	}
}

// SearchCards 检索入口：对查询文本做向量化，再对存量向量做近邻扫描，
// 返回至多limit条按距离升序的结果。仅已计算向量的卡牌参与排序。
func (s *SearchService) SearchCards(ctx context.Context, query string, limit int) ([]CardMatch, error) {
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询向量化失败: %w", err)
	}

	entries, err := s.repo.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取存量向量失败: %w", err)
	}

	matches, err := ranker.Search(entries, queryVec, limit)
	if err != nil {
		return nil, err
	}

	// 补齐卡牌名称
	results := make([]CardMatch, 0, len(matches))
	for _, m := range matches {
		card, err := s.repo.GetCard(ctx, m.CardID)
		if err != nil {
			return nil, fmt.Errorf("补齐卡牌%d信息失败: %w", m.CardID, err)
		}
		results = append(results, CardMatch{
			CardID:   m.CardID,
			Name:     card.Name,
			Distance: m.Distance,
		})
	}
	return results, nil
}
