package interfaces

import (
	"context"

	"CardSync/internal/model"
)

// CatalogueAdapter 远端卡牌目录源必须实现的核心接口
type CatalogueAdapter interface {
	GetName() string                                                 // 目录源名称
	FetchCatalogue(ctx context.Context) ([]*model.RemoteCard, error) // 拉取全量目录（失败时不返回部分结果）
}

// Embedder 文本向量化接口（外部模型，视为黑盒函数 embed(text) -> vector）
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error) // 文本转固定维度向量
	Dim() int                                                  // 向量维度D
}
