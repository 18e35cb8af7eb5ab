package interfaces

import (
	"context"

	"CardSync/internal/model"
)

// EmbeddingEntry 参与相似度检索的最小单元（仅含主键与向量）
type EmbeddingEntry struct {
	CardID int64     // 卡牌ID
	Vector []float32 // 描述向量
}

// CardRepository 本地存储通用操作接口（按主键upsert，不产生重复记录）
type CardRepository interface {
	// UpsertCards 批量落库：同ID记录整体替换（含关联子表），事务内完成
	UpsertCards(ctx context.Context, cards []*model.Card, sets []*model.CardSet, images []*model.CardImage, prices []*model.CardPrice, banlist []*model.BanlistInfo) error
	// GetCard 按ID查询单卡，未命中返回 model.ErrNotFound
	GetCard(ctx context.Context, id int64) (*model.Card, error)
	// UpsertEmbedding 写入/覆盖指定卡牌的描述向量，维度不匹配返回 model.ErrInvalidArgument
	UpsertEmbedding(ctx context.Context, id int64, vec []float32) error
	// SetImagePath 关联本地卡图路径（下载完成后调用）
	SetImagePath(ctx context.Context, id int64, path string) error
	// ListEmbeddings 列出所有已计算向量的卡牌（向量为NULL的静默排除）
	ListEmbeddings(ctx context.Context) ([]*EmbeddingEntry, error)
}
