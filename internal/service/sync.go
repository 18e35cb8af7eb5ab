package service

import (
	"context"
	"encoding/json"
	"fmt"

	"CardSync/internal/archive"
	"CardSync/internal/config"
	"CardSync/internal/downloader"
	"CardSync/internal/interfaces"
	"CardSync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// SyncResult 单次同步的汇总结果（按结果计数，单卡失败不使整次同步失败）
type SyncResult struct {
	RunID           string `json:"run_id"`           // 本次同步运行ID
	TotalCards      int    `json:"total_cards"`      // 去重后的唯一卡牌数
	ArchiveBytes    int64  `json:"archive_bytes"`    // 归档压缩后字节数
	SplitWritten    int    `json:"split_written"`    // 本次逐卡拆分写入的文件数
	ImagesSucceeded int    `json:"images_succeeded"` // 卡图下载成功数
	ImagesSkipped   int    `json:"images_skipped"`   // 卡图已存在跳过数
	ImagesFailed    int    `json:"images_failed"`    // 卡图下载失败数
	Embedded        int    `json:"embedded"`         // 向量计算成功数
	EmbedFailed     int    `json:"embed_failed"`     // 向量计算失败数（向量留空，下次同步重算）
}

// SyncService 目录同步服务：拉取→归档→拆分→下载卡图→落库→计算向量
type SyncService struct {
	adapter  interfaces.CatalogueAdapter
	repo     interfaces.CardRepository
	dl       *downloader.Downloader
	embedder interfaces.Embedder // 可空：未配置向量化服务时跳过向量计算
	cfg      *config.Config
	logger   *logrus.Logger
}

// NewSyncService 创建同步服务（依赖在进程启动时构造一次后注入）
func NewSyncService(adapter interfaces.CatalogueAdapter, repo interfaces.CardRepository, dl *downloader.Downloader, embedder interfaces.Embedder, cfg *config.Config, logger *logrus.Logger) *SyncService {
	return &SyncService{
		adapter:  adapter,
		repo:     repo,
		dl:       dl,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// SyncCatalogue 执行一次全量同步。目录拉取失败直接中止（下游无目录不可继续）；
// 卡图下载与向量计算的单卡失败只计数，不中止整次同步。
func (s *SyncService) SyncCatalogue(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", result.RunID)

	// 1. 拉取全量目录（适配器内部已按ID去重）
	cards, err := s.adapter.FetchCatalogue(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s目录拉取失败: %w", s.adapter.GetName(), err)
	}
	result.TotalCards = len(cards)

	// 2. 写压缩归档
	bytesWritten, err := archive.WriteArchive(cards, s.cfg.Archive.Path)
	if err != nil {
		return nil, fmt.Errorf("写归档失败: %w", err)
	}
	result.ArchiveBytes = bytesWritten
	log.Infof("归档写入完成: %s（%d字节）", s.cfg.Archive.Path, bytesWritten)

	// 3. 逐卡拆分（可选）
	if s.cfg.Archive.Split {
		written, err := archive.SplitPerCard(cards, s.cfg.Archive.SplitDir)
		if err != nil {
			return nil, fmt.Errorf("逐卡拆分失败: %w", err)
		}
		result.SplitWritten = written
		log.Infof("逐卡拆分完成，本次写入%d个文件", written)
	}

	// 4. 并发下载卡图
	pairs := make([]downloader.Pair, 0, len(cards))
	for _, c := range cards {
		if url := c.FirstImageURL(); url != "" {
			pairs = append(pairs, downloader.Pair{ID: c.ID, URL: url})
		}
	}
	report, err := s.dl.DownloadAll(ctx, pairs, s.cfg.Assets.Dir, s.cfg.Assets.Workers)
	if err != nil {
		return nil, fmt.Errorf("卡图下载中止: %w", err)
	}
	result.ImagesSucceeded, result.ImagesSkipped, result.ImagesFailed = report.Counts()
	log.Infof("卡图下载完成: 成功%d 跳过%d 失败%d", result.ImagesSucceeded, result.ImagesSkipped, result.ImagesFailed)

	// 5. 落库（已落盘的卡图记录本地路径）
	present := make(map[int64]string)
	for _, id := range report.Succeeded() {
		present[id] = downloader.PathFor(s.cfg.Assets.Dir, id)
	}
	for _, id := range report.Skipped() {
		present[id] = downloader.PathFor(s.cfg.Assets.Dir, id)
	}
	dbCards, sets, images, prices, banlist := buildModels(cards, present)
	if err := s.repo.UpsertCards(ctx, dbCards, sets, images, prices, banlist); err != nil {
		return nil, fmt.Errorf("卡牌落库失败: %w", err)
	}
	// 同ID再次入库时upsert不覆盖image_path，上次失败本次下载成功的卡需单独回填路径
	for id, path := range present {
		if err := s.repo.SetImagePath(ctx, id, path); err != nil {
			return nil, fmt.Errorf("卡牌%d关联卡图路径失败: %w", id, err)
		}
	}
	log.Infof("卡牌落库完成，共%d张", len(dbCards))

	// 6. 计算描述向量（单卡失败留空，计数后继续）
	if s.embedder != nil {
		for _, c := range cards {
			vec, err := s.embedder.Embed(ctx, c.Desc)
			if err != nil {
				log.Warnf("卡牌%d向量计算失败: %v", c.ID, err)
				result.EmbedFailed++
				continue
			}
			if err := s.repo.UpsertEmbedding(ctx, c.ID, vec); err != nil {
				log.Warnf("卡牌%d向量写入失败: %v", c.ID, err)
				result.EmbedFailed++
				continue
			}
			result.Embedded++
		}
		log.Infof("向量计算完成: 成功%d 失败%d", result.Embedded, result.EmbedFailed)
	}

	return result, nil
}

// buildModels 将归一化的远端卡牌转换为数据库模型（主表+关联子表）。
// present为已落盘卡图的ID到本地路径映射。
func buildModels(cards []*model.RemoteCard, present map[int64]string) ([]*model.Card, []*model.CardSet, []*model.CardImage, []*model.CardPrice, []*model.BanlistInfo) {
	dbCards := make([]*model.Card, 0, len(cards))
	var sets []*model.CardSet
	var images []*model.CardImage
	var prices []*model.CardPrice
	var banlist []*model.BanlistInfo

	for _, c := range cards {
		card := &model.Card{
			ID:          c.ID,
			Name:        c.Name,
			Type:        c.Type,
			FrameType:   c.FrameType,
			Desc:        c.Desc,
			Race:        c.Race,
			Archetype:   c.Archetype,
			Atk:         c.Atk,
			Def:         c.Def,
			Level:       c.Level,
			Attribute:   c.Attribute,
			PendDesc:    c.PendDesc,
			MonsterDesc: c.MonsterDesc,
			Scale:       c.Scale,
			LinkVal:     c.LinkVal,
		}
		if len(c.LinkMarkers) > 0 {
			if data, err := json.Marshal(c.LinkMarkers); err == nil {
				card.LinkMarkers = datatypes.JSON(data)
			}
		}
		if path, ok := present[c.ID]; ok {
			card.ImagePath = &path
		}
		dbCards = append(dbCards, card)

		for _, s := range c.CardSets {
			sets = append(sets, &model.CardSet{
				CardID:        c.ID,
				SetName:       s.SetName,
				SetCode:       s.SetCode,
				SetRarity:     s.SetRarity,
				SetRarityCode: s.SetRarityCode,
				SetPrice:      s.SetPrice,
			})
		}
		for _, img := range c.CardImages {
			images = append(images, &model.CardImage{
				CardID:          c.ID,
				ImageURL:        img.ImageURL,
				ImageURLSmall:   img.ImageURLSmall,
				ImageURLCropped: img.ImageURLCropped,
			})
		}
		for _, p := range c.CardPrices {
			prices = append(prices, &model.CardPrice{
				CardID:            c.ID,
				CardmarketPrice:   p.CardmarketPrice,
				TcgplayerPrice:    p.TcgplayerPrice,
				EbayPrice:         p.EbayPrice,
				AmazonPrice:       p.AmazonPrice,
				CoolstuffincPrice: p.CoolstuffincPrice,
			})
		}
		if c.BanlistInfo != nil {
			banlist = append(banlist, &model.BanlistInfo{
				CardID:  c.ID,
				BanTCG:  c.BanlistInfo.BanTCG,
				BanOCG:  c.BanlistInfo.BanOCG,
				BanGoat: c.BanlistInfo.BanGoat,
			})
		}
	}

	return dbCards, sets, images, prices, banlist
}
