package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"CardSync/internal/interfaces"
	"CardSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CardRepo 卡牌本地存储仓储（按主键upsert，同ID整体替换，不产生重复记录）
type CardRepo struct {
	db  *gorm.DB
	dim int // 向量维度D
}

// NewCardRepository 创建CardRepository实例
func NewCardRepository(db *gorm.DB, dim int) interfaces.CardRepository {
	return &CardRepo{db: db, dim: dim}
}

// UpsertCards 批量落库。主表按主键冲突时整行更新；关联子表先删后插，
// 保证同ID重复入库后子表内容与最新目录一致。全部在单个事务内完成，
// 并发读不会观察到半写状态。
func (r *CardRepo) UpsertCards(ctx context.Context, cards []*model.Card, sets []*model.CardSet, images []*model.CardImage, prices []*model.CardPrice, banlist []*model.BanlistInfo) error {
	if len(cards) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, 0, len(cards))
		for _, c := range cards {
			ids = append(ids, c.ID)
		}

		// 1. 主表upsert（保留已有的向量与本地卡图路径，重新入库不应清空它们）
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type", "frame_type", "description", "race", "archetype",
				"atk", "def", "level", "attribute", "pend_desc", "monster_desc",
				"scale", "linkval", "linkmarkers", "updated_at",
			}),
		}).CreateInBatches(cards, 200).Error; err != nil {
			return fmt.Errorf("保存卡牌主表失败: %w", err)
		}

		// 2. 关联子表：先清理本批次卡牌的旧行，再写入新行
		for _, m := range []interface{}{&model.CardSet{}, &model.CardImage{}, &model.CardPrice{}, &model.BanlistInfo{}} {
			if err := tx.Where("card_id IN ?", ids).Delete(m).Error; err != nil {
				return fmt.Errorf("清理关联表失败: %w", err)
			}
		}
		if len(sets) > 0 {
			if err := tx.CreateInBatches(sets, 500).Error; err != nil {
				return fmt.Errorf("保存卡包表失败: %w", err)
			}
		}
		if len(images) > 0 {
			if err := tx.CreateInBatches(images, 500).Error; err != nil {
				return fmt.Errorf("保存卡图表失败: %w", err)
			}
		}
		if len(prices) > 0 {
			if err := tx.CreateInBatches(prices, 500).Error; err != nil {
				return fmt.Errorf("保存价格表失败: %w", err)
			}
		}
		if len(banlist) > 0 {
			if err := tx.CreateInBatches(banlist, 500).Error; err != nil {
				return fmt.Errorf("保存禁限表失败: %w", err)
			}
		}
		return nil
	})
}

// GetCard 按ID查询单卡，未命中返回 model.ErrNotFound（非致命错误）
func (r *CardRepo) GetCard(ctx context.Context, id int64) (*model.Card, error) {
	var card model.Card
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("卡牌%d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("查询卡牌%d失败: %w", id, err)
	}
	return &card, nil
}

// UpsertEmbedding 写入/覆盖指定卡牌的描述向量。
// 维度不匹配返回 model.ErrInvalidArgument，卡牌不存在返回 model.ErrNotFound。
func (r *CardRepo) UpsertEmbedding(ctx context.Context, id int64, vec []float32) error {
	if len(vec) != r.dim {
		return fmt.Errorf("向量维度%d与期望维度%d不符: %w", len(vec), r.dim, model.ErrInvalidArgument)
	}

	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("向量序列化失败: %w: %v", model.ErrSerialization, err)
	}

	res := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", id).
		Update("desc_embedding", data)
	if res.Error != nil {
		return fmt.Errorf("写入向量失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("卡牌%d: %w", id, model.ErrNotFound)
	}
	return nil
}

// SetImagePath 关联本地卡图路径（下载完成后调用）
func (r *CardRepo) SetImagePath(ctx context.Context, id int64, path string) error {
	res := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", id).
		Update("image_path", path)
	if res.Error != nil {
		return fmt.Errorf("写入卡图路径失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("卡牌%d: %w", id, model.ErrNotFound)
	}
	return nil
}

// ListEmbeddings 列出所有已计算向量的卡牌。向量为NULL的卡牌静默排除（不是错误）。
func (r *CardRepo) ListEmbeddings(ctx context.Context) ([]*interfaces.EmbeddingEntry, error) {
	var rows []struct {
		ID            int64
		DescEmbedding []byte
	}
	if err := r.db.WithContext(ctx).Model(&model.Card{}).
		Select("id", "desc_embedding").
		Where("desc_embedding IS NOT NULL").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询向量列表失败: %w", err)
	}

	entries := make([]*interfaces.EmbeddingEntry, 0, len(rows))
	for _, row := range rows {
		var vec []float32
		if err := json.Unmarshal(row.DescEmbedding, &vec); err != nil {
			return nil, fmt.Errorf("卡牌%d向量解码失败: %w: %v", row.ID, model.ErrSerialization, err)
		}
		entries = append(entries, &interfaces.EmbeddingEntry{CardID: row.ID, Vector: vec})
	}
	return entries, nil
}
