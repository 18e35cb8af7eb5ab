package api

import (
	"errors"
	"net/http"
	"strconv"

	"CardSync/internal/config"
	"CardSync/internal/embedding"
	"CardSync/internal/interfaces"
	"CardSync/internal/model"
	"CardSync/internal/repository"
	"CardSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CardHandler 提供给前端的卡牌查询接口
type CardHandler struct {
	repo          interfaces.CardRepository
	searchService *service.SearchService
	logger        *logrus.Logger
}

// NewCardHandler 创建CardHandler
func NewCardHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *CardHandler {
	embedder := embedding.NewClient(&cfg.Embedding, logger)
	repo := repository.NewCardRepository(db, embedder.Dim())
	return &CardHandler{
		repo:          repo,
		searchService: service.NewSearchService(repo, embedder, logger),
		logger:        logger,
	}
}

// SearchCards 语义检索接口
// GET /api/cards/search?query=dragon&limit=10
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	results, err := h.searchService.SearchCards(c.Request.Context(), query, limit)
	if err != nil {
		if errors.Is(err, model.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("SearchCards failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetCardDetail 卡牌详情接口
// GET /api/cards/:id
func (h *CardHandler) GetCardDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	card, err := h.repo.GetCard(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		h.logger.WithError(err).Error("GetCardDetail failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, card)
}
