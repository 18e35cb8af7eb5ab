package api

import (
	"net/http"

	"CardSync/internal/adapter/ygopro"
	"CardSync/internal/config"
	"CardSync/internal/downloader"
	"CardSync/internal/embedding"
	"CardSync/internal/interfaces"
	"CardSync/internal/repository"
	"CardSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *logrus.Logger
}

func NewSyncHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *SyncHandler {
	adapter := ygopro.NewAdapter(&cfg.Catalogue, logger)
	dl := downloader.New(&cfg.Assets, logger)

	// 未配置向量化服务时跳过向量计算（同步仍可正常执行）
	var embedder interfaces.Embedder
	dim := cfg.Embedding.Dim
	if cfg.Embedding.Endpoint != "" {
		embedder = embedding.NewClient(&cfg.Embedding, logger)
		dim = embedder.Dim()
	}
	repo := repository.NewCardRepository(db, dim)

	return &SyncHandler{
		syncService: service.NewSyncService(adapter, repo, dl, embedder, cfg, logger),
		logger:      logger,
	}
}

// SyncCatalogueHandler 执行一次全量目录同步
// POST /sync/catalogue
func (h *SyncHandler) SyncCatalogueHandler(c *gin.Context) {
	result, err := h.syncService.SyncCatalogue(c.Request.Context())
	if err != nil {
		h.logger.Errorf("目录同步失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
