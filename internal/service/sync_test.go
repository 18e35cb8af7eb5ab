package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"CardSync/internal/config"
	"CardSync/internal/downloader"
	"CardSync/internal/interfaces"
	"CardSync/internal/model"
	"CardSync/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDim = 3

// fakeAdapter 固定返回预置目录的适配器
type fakeAdapter struct {
	cards []*model.RemoteCard
	err   error
}

func (f *fakeAdapter) GetName() string { return "fake" }

func (f *fakeAdapter) FetchCatalogue(ctx context.Context) ([]*model.RemoteCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cards, nil
}

// fakeEmbedder 对指定文本返回固定向量，其余文本返回错误（模拟单卡向量化失败）
type fakeEmbedder struct {
	failOn string
}

func (f *fakeEmbedder) Dim() int { return testDim }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == f.failOn {
		return nil, fmt.Errorf("embed failed: %w", model.ErrNetwork)
	}
	return []float32{1, 0, 0}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cards.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Card{},
		&model.CardSet{},
		&model.CardImage{},
		&model.CardPrice{},
		&model.BanlistInfo{},
	))
	return db
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Assets: config.AssetsConfig{
			Dir:     filepath.Join(base, "imgs"),
			Workers: 2,
			Timeout: 5,
		},
		Archive: config.ArchiveConfig{
			Path:     filepath.Join(base, "cardinfo.json.zst"),
			Split:    true,
			SplitDir: filepath.Join(base, "split"),
		},
		Embedding: config.EmbeddingConfig{Dim: testDim},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestSyncCatalogue(t *testing.T) {
	// 卡图服务：/ok/{id}.jpg 正常返回，/bad 恒定失败
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.jpg" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer imgSrv.Close()

	cards := []*model.RemoteCard{
		{ID: 1, Name: "Blue-Eyes White Dragon", Desc: "legendary dragon",
			CardImages: []model.RemoteCardImage{{ImageURL: imgSrv.URL + "/1.jpg"}},
			CardSets:   []model.RemoteCardSet{{SetName: "LOB", SetCode: "LOB-001"}}},
		{ID: 2, Name: "Dark Magician", Desc: "the ultimate wizard",
			CardImages: []model.RemoteCardImage{{ImageURL: imgSrv.URL + "/2.jpg"}}},
		{ID: 3, Name: "Pot of Greed", Desc: "draw two cards",
			CardImages: []model.RemoteCardImage{{ImageURL: imgSrv.URL + "/bad.jpg"}}},
	}

	cfg := testConfig(t)
	db := newTestDB(t)
	repo := repository.NewCardRepository(db, testDim)
	dl := downloader.New(&cfg.Assets, quietLogger())
	embedder := &fakeEmbedder{failOn: "draw two cards"}

	svc := NewSyncService(&fakeAdapter{cards: cards}, repo, dl, embedder, cfg, quietLogger())
	result, err := svc.SyncCatalogue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCards)
	assert.Greater(t, result.ArchiveBytes, int64(0))
	assert.Equal(t, 3, result.SplitWritten)
	assert.Equal(t, 2, result.ImagesSucceeded)
	assert.Equal(t, 1, result.ImagesFailed)
	assert.Equal(t, 2, result.Embedded)
	assert.Equal(t, 1, result.EmbedFailed)

	// 归档与逐卡文件落盘
	_, err = os.Stat(cfg.Archive.Path)
	require.NoError(t, err)
	for _, id := range []int64{1, 2, 3} {
		_, err := os.Stat(filepath.Join(cfg.Archive.SplitDir, fmt.Sprintf("%d.json", id)))
		require.NoError(t, err)
	}

	// 下载成功的卡记录了本地路径，失败的留空
	card1, err := repo.GetCard(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, card1.ImagePath)
	assert.Equal(t, downloader.PathFor(cfg.Assets.Dir, 1), *card1.ImagePath)

	card3, err := repo.GetCard(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, card3.ImagePath)

	// 向量化失败的卡不参与检索
	entries, err := repo.ListEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSyncCatalogueFetchFailureAborts(t *testing.T) {
	cfg := testConfig(t)
	repo := repository.NewCardRepository(newTestDB(t), testDim)
	dl := downloader.New(&cfg.Assets, quietLogger())

	fetchErr := fmt.Errorf("boom: %w", model.ErrNetwork)
	svc := NewSyncService(&fakeAdapter{err: fetchErr}, repo, dl, nil, cfg, quietLogger())

	_, err := svc.SyncCatalogue(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNetwork)

	// 目录拉取失败时下游不产生任何产物
	_, statErr := os.Stat(cfg.Archive.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSyncCatalogueRerunSkipsDownloads(t *testing.T) {
	var requests int
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer imgSrv.Close()

	cards := []*model.RemoteCard{
		{ID: 1, Name: "Card", Desc: "text",
			CardImages: []model.RemoteCardImage{{ImageURL: imgSrv.URL + "/1.jpg"}}},
	}

	cfg := testConfig(t)
	repo := repository.NewCardRepository(newTestDB(t), testDim)
	dl := downloader.New(&cfg.Assets, quietLogger())
	svc := NewSyncService(&fakeAdapter{cards: cards}, repo, dl, nil, cfg, quietLogger())

	_, err := svc.SyncCatalogue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)

	// 重跑：卡图已存在，不再发起网络请求
	result, err := svc.SyncCatalogue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, result.ImagesSkipped)
}

func TestSyncCatalogueBackfillsImagePathOnResync(t *testing.T) {
	// 第一次同步卡图下载失败，第二次成功：本地路径必须在第二次同步后落库
	var fail bool
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer imgSrv.Close()

	cards := []*model.RemoteCard{
		{ID: 1, Name: "Card", Desc: "text",
			CardImages: []model.RemoteCardImage{{ImageURL: imgSrv.URL + "/1.jpg"}}},
	}

	cfg := testConfig(t)
	repo := repository.NewCardRepository(newTestDB(t), testDim)
	dl := downloader.New(&cfg.Assets, quietLogger())
	svc := NewSyncService(&fakeAdapter{cards: cards}, repo, dl, nil, cfg, quietLogger())
	ctx := context.Background()

	fail = true
	result, err := svc.SyncCatalogue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImagesFailed)

	card, err := repo.GetCard(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, card.ImagePath) // 未落盘的卡不得记录路径

	fail = false
	result, err = svc.SyncCatalogue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImagesSucceeded)

	card, err = repo.GetCard(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, card.ImagePath)
	assert.Equal(t, downloader.PathFor(cfg.Assets.Dir, 1), *card.ImagePath)
}

var _ interfaces.CatalogueAdapter = (*fakeAdapter)(nil)
var _ interfaces.Embedder = (*fakeEmbedder)(nil)
