package embedding

import (
	"bytes"
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

// Client 外部向量化服务客户端。模型本身视为黑盒：POST文本，返回固定维度向量。
type Client struct {
	cfg        *config.EmbeddingConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient 创建向量化服务客户端
func NewClient(cfg *config.EmbeddingConfig, logger *logrus.Logger) interfaces.Embedder {
	return &Client{
		cfg: cfg,
		httpClient: httpclient.New(httpclient.Options{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}, logger),
		logger: logger,
	}
}

// Dim 向量维度D
func (c *Client) Dim() int {
	return c.cfg.Dim
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed 文本转向量。传输失败、非2xx、维度不符均视为网络类错误向上传递。
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("构造向量化请求失败: %w: %v", model.ErrSerialization, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造向量化请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("向量化服务调用失败: %w: %v", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("向量化服务调用失败: %w: 状态码%d", model.ErrNetwork, resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析向量化响应失败: %w: %v", model.ErrNetwork, err)
	}
	if len(out.Embedding) != c.cfg.Dim {
		return nil, fmt.Errorf("向量化服务返回维度%d，期望%d: %w", len(out.Embedding), c.cfg.Dim, model.ErrNetwork)
	}
	return out.Embedding, nil
}
