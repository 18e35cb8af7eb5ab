package ygopro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CardSync/internal/config"
	"CardSync/internal/interfaces"
	"CardSync/internal/model"
	"CardSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Adapter YGOPRODeck目录源适配器
type Adapter struct {
	cfg        *config.CatalogueConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建YGOPRODeck适配器
func NewAdapter(cfg *config.CatalogueConfig, logger *logrus.Logger) interfaces.CatalogueAdapter {
	return &Adapter{
		cfg: cfg,
		httpClient: httpclient.New(httpclient.Options{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
			Proxy:   cfg.Proxy,
		}, logger),
		logger: logger,
	}
}

// GetName ========== 实现CatalogueAdapter接口 ==========
func (a *Adapter) GetName() string {
	return "YGOPRODeck"
}

// FetchCatalogue 一次GET拉取全量目录并按ID去重。失败时不返回部分结果，
// 重试策略由调用方决定（全量拉取失败重跑成本很低，组件内不做重试）。
func (a *Adapter) FetchCatalogue(ctx context.Context) ([]*model.RemoteCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构造目录请求失败: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("拉取目录失败: %w: %v", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("拉取目录失败: %w: 状态码%d", model.ErrNetwork, resp.StatusCode)
	}

	var payload model.CatalogueResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析目录响应失败: %w: %v", model.ErrNetwork, err)
	}

	cards := Normalize(payload.Data)
	a.logger.Infof("目录拉取完成，共%d条原始记录，去重后%d张唯一卡牌", len(payload.Data), len(cards))
	return cards, nil
}

// Normalize 按ID去重，保留首次出现的条目（异画重复卡只保留首个卡图URL），
// 输出顺序与首次出现顺序一致。
func Normalize(raw []*model.RemoteCard) []*model.RemoteCard {
	seen := make(map[int64]struct{}, len(raw))
	cards := make([]*model.RemoteCard, 0, len(raw))
	for _, c := range raw {
		if c == nil {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue // 后出现的同ID条目静默丢弃
		}
		seen[c.ID] = struct{}{}
		cards = append(cards, c)
	}
	return cards
}
